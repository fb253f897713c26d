package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataDir_OverrideWins(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	t.Setenv(EnvDataDir, filepath.Join(t.TempDir(), "env"))

	got, err := ResolveDataDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, got)
}

func TestResolveDataDir_EnvFallback(t *testing.T) {
	envDir := filepath.Join(t.TempDir(), "env")
	t.Setenv(EnvDataDir, envDir)

	got, err := ResolveDataDir("")
	require.NoError(t, err)
	assert.Equal(t, envDir, got)
	assert.DirExists(t, got)
}

func TestDevSafeDir_RespectsExplicitPath(t *testing.T) {
	// An explicit path is never rerooted, dev run or not.
	assert.Equal(t, "/data/notes", DevSafeDir("/data/notes", true))
}

func TestDevSafeDir_NonDevRunKeepsPath(t *testing.T) {
	if IsDevRun() {
		t.Skip("running from the go-build cache")
	}
	assert.Equal(t, "/data/notes", DevSafeDir("/data/notes", false))
}
