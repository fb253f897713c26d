package migrate_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notaspat/notaspat/pkg/adapters/memory"
	"github.com/notaspat/notaspat/pkg/core"
	"github.com/notaspat/notaspat/pkg/migrate"
	"github.com/notaspat/notaspat/pkg/notes"
)

func TestRun_MigratesLegacyBlob(t *testing.T) {
	storage := memory.New()
	defer storage.Close()
	ctx := context.Background()

	storage.Seed(map[string]json.RawMessage{
		core.LegacyNotesKey: json.RawMessage(`{
			"12345678901": {"text":"ligar","color":"#fff8c6","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"},
			"55566677788": {"text":"analisar","color":"#c6f8cf","tags":["urgente"],"createdAt":"2025-02-01T00:00:00Z","updatedAt":"2025-02-01T00:00:00Z"}
		}`),
	})

	require.NoError(t, migrate.New(storage, nil).Run(ctx))

	// Legacy key gone, granular keys present.
	raw, err := storage.Get(ctx, []string{core.LegacyNotesKey})
	require.NoError(t, err)
	assert.Empty(t, raw)

	store := notes.New(storage)
	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ligar", all["12345678901"].Text)
	assert.Equal(t, []string{}, all["12345678901"].Tags, "missing tags are backfilled")
	assert.Equal(t, []string{"urgente"}, all["55566677788"].Tags)
}

func TestRun_NoLegacyKeyIsNoOp(t *testing.T) {
	storage := memory.New()
	defer storage.Close()
	ctx := context.Background()

	storage.Seed(map[string]json.RawMessage{
		"note_11111": json.RawMessage(`{"id":"11111","text":"granular"}`),
	})

	require.NoError(t, migrate.New(storage, nil).Run(ctx))

	raw, err := storage.Get(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestRun_EmptyBlobRemoved(t *testing.T) {
	storage := memory.New()
	defer storage.Close()
	ctx := context.Background()

	storage.Seed(map[string]json.RawMessage{
		core.LegacyNotesKey: json.RawMessage(`{}`),
	})

	require.NoError(t, migrate.New(storage, nil).Run(ctx))

	raw, err := storage.Get(ctx, []string{core.LegacyNotesKey})
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestRun_Idempotent(t *testing.T) {
	storage := memory.New()
	defer storage.Close()
	ctx := context.Background()

	// Legacy blobs occasionally carry non-numeric ids; migration moves them
	// as-is instead of validating.
	storage.Seed(map[string]json.RawMessage{
		core.LegacyNotesKey: json.RawMessage(`{"A1":{"text":"a","color":"#fff8c6"}}`),
	})

	engine := migrate.New(storage, nil)
	require.NoError(t, engine.Run(ctx))
	require.NoError(t, engine.Run(ctx))

	store := notes.New(storage)
	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRun_BadBlobAborts(t *testing.T) {
	storage := memory.New()
	defer storage.Close()
	ctx := context.Background()

	storage.Seed(map[string]json.RawMessage{
		core.LegacyNotesKey: json.RawMessage(`{broken`),
	})

	err := migrate.New(storage, nil).Run(ctx)
	assert.Error(t, err)

	// The legacy key must survive a failed run.
	raw, err := storage.Get(ctx, []string{core.LegacyNotesKey})
	require.NoError(t, err)
	assert.Contains(t, raw, core.LegacyNotesKey)
}
