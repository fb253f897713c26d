package bolt_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notaspat/notaspat/pkg/adapters/bolt"
	"github.com/notaspat/notaspat/pkg/core"
)

func newStore(t *testing.T) *bolt.Store {
	t.Helper()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, map[string]json.RawMessage{
		"note_123456": json.RawMessage(`{"id":"123456"}`),
		"templates":   json.RawMessage(`[]`),
	}))

	got, err := s.Get(ctx, []string{"note_123456"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"123456"}`, string(got["note_123456"]))

	all, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	keys, err := s.Keys(ctx, "note_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"note_123456"}, keys)

	require.NoError(t, s.Remove(ctx, "note_123456"))
	got, err = s.Get(ctx, []string{"note_123456"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := bolt.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)}))
	require.NoError(t, s.Close())

	s, err = bolt.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, []string{"theme"})
	require.NoError(t, err)
	assert.JSONEq(t, `"dark"`, string(got["theme"]))
}

func TestStore_WatchOldValues(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	stream, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, map[string]json.RawMessage{"note_1": json.RawMessage(`{"text":"a"}`)}))
	require.NoError(t, s.Set(ctx, map[string]json.RawMessage{"note_1": json.RawMessage(`{"text":"b"}`)}))

	batch := recvBatch(t, stream)
	assert.Nil(t, batch[0].Old)

	batch = recvBatch(t, stream)
	assert.JSONEq(t, `{"text":"a"}`, string(batch[0].Old))
	assert.JSONEq(t, `{"text":"b"}`, string(batch[0].New))
}

func recvBatch(t *testing.T, stream <-chan []core.Change) []core.Change {
	t.Helper()
	select {
	case batch := <-stream:
		return batch
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}
