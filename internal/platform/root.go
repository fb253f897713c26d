// Package platform resolves where notaspat keeps its data and guards
// development runs against touching the real data directory.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvDataDir overrides the data directory when set.
const EnvDataDir = "NOTASPAT_DIR"

// appDirName is the directory created under the user config root.
const appDirName = "notaspat"

// ResolveDataDir picks the data directory: explicit override, then the
// NOTASPAT_DIR environment variable, then the platform user config dir.
// The directory is created if missing.
func ResolveDataDir(override string) (string, error) {
	dir := override
	if dir == "" {
		dir = os.Getenv(EnvDataDir)
	}
	if dir == "" {
		configRoot, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate user config dir: %w", err)
		}
		dir = filepath.Join(configRoot, appDirName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}
	return abs, nil
}

// IsDevRun reports whether the binary looks like a `go run` build, which
// lives in the go-build temp cache.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return strings.Contains(exe, string(filepath.Separator)+"go-build")
}

// DevSafeDir reroots dir under the system temp directory for development
// runs, so experiments never write into the real data directory. Explicit
// overrides are respected as-is.
func DevSafeDir(dir string, explicit bool) string {
	if explicit || !IsDevRun() {
		return dir
	}
	return filepath.Join(os.TempDir(), appDirName+"-dev")
}
