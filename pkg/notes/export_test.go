package notes_test

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notaspat/notaspat/pkg/core"
)

func TestExportAll_Golden(t *testing.T) {
	store, _, _ := newStore(t, t0)
	ctx := context.Background()

	reminder := t0.Add(24 * time.Hour)
	_, err := store.Save(ctx, "12345678901", "call back", "#c6f8cf", []string{"urgente"}, &reminder)
	require.NoError(t, err)

	data, err := store.ExportAll(ctx)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "export", data)
}

func TestImportAll_Merges(t *testing.T) {
	store, _, _ := newStore(t, t0)
	ctx := context.Background()

	// Pre-existing note that the snapshot does not mention.
	_, err := store.Save(ctx, "99999", "keep me", "", nil, nil)
	require.NoError(t, err)
	// Pre-existing note the snapshot overwrites.
	_, err = store.Save(ctx, "11111", "stale", "", nil, nil)
	require.NoError(t, err)

	snapshot := `{
		"version": "1.3.0",
		"exportDate": "2026-08-20T10:00:00Z",
		"notes": {
			"11111": {"id":"11111","text":"fresh","color":"#fff8c6","tags":["lembrete"],"reminder":null,"createdAt":"2026-08-01T00:00:00Z","updatedAt":"2026-08-02T00:00:00Z"},
			"22222": {"id":"22222","text":"new","color":"#c6e5f8","tags":[],"reminder":null,"createdAt":"2026-08-01T00:00:00Z","updatedAt":"2026-08-01T00:00:00Z"}
		}
	}`

	imported, err := store.ImportAll(ctx, []byte(snapshot))
	require.NoError(t, err)
	assert.Len(t, imported, 2)

	got, err := store.Get(ctx, "11111")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fresh", got.Text)

	got, err = store.Get(ctx, "99999")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "keep me", got.Text, "notes absent from the snapshot stay untouched")

	got, err = store.Get(ctx, "22222")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Text)
}

func TestImportAll_BackfillsOldSnapshots(t *testing.T) {
	store, _, _ := newStore(t, t0)
	ctx := context.Background()

	// v1.2-era snapshot: no tags, no reminder, embedded id missing.
	snapshot := `{
		"version": "1.2.0",
		"notes": {
			"33333": {"text":"old-school","color":"#fff8c6","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}
		}
	}`

	imported, err := store.ImportAll(ctx, []byte(snapshot))
	require.NoError(t, err)
	require.Contains(t, imported, "33333")
	assert.Equal(t, "33333", imported["33333"].ID)
	assert.Equal(t, []string{}, imported["33333"].Tags)
	assert.Nil(t, imported["33333"].Reminder)
}

func TestImportAll_Errors(t *testing.T) {
	store, _, _ := newStore(t, t0)
	ctx := context.Background()

	_, err := store.ImportAll(ctx, []byte(`not json at all`))
	assert.ErrorIs(t, err, core.ErrParse)

	_, err = store.ImportAll(ctx, []byte(`{"version":"1.3.0"}`))
	assert.ErrorIs(t, err, core.ErrBadFormat)

	// Nothing may have been written on the failure paths.
	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExportImport_RoundTrip(t *testing.T) {
	store, _, _ := newStore(t, t0)
	ctx := context.Background()

	reminder := t0.Add(time.Hour)
	_, err := store.Save(ctx, "12345", "round trip", "#f8c6d4", []string{"pendencia"}, &reminder)
	require.NoError(t, err)

	data, err := store.ExportAll(ctx)
	require.NoError(t, err)

	fresh, _, _ := newStore(t, t0)
	imported, err := fresh.ImportAll(ctx, data)
	require.NoError(t, err)
	require.Len(t, imported, 1)

	got, err := fresh.Get(ctx, "12345")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "round trip", got.Text)
	assert.Equal(t, []string{"pendencia"}, got.Tags)
	require.NotNil(t, got.Reminder)
	assert.True(t, got.Reminder.Equal(reminder))
}
