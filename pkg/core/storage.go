package core

import (
	"context"
	"encoding/json"
)

// Change describes one key transition inside a write batch. Old is nil when
// the key did not exist before, New is nil when the key was removed.
type Change struct {
	Key string
	Old json.RawMessage
	New json.RawMessage
}

// Storage is the key-value persistence contract. Values are opaque JSON.
// There are no cross-key transactions: multi-key Set/Remove calls are not
// atomic, and callers must be written idempotent-retry-safe around partial
// writes (migration and import both are).
//
// Every successful Set/Remove emits exactly one change batch, carrying the
// old and new value per touched key, to all Watch subscribers. Batches are
// delivered in write order.
type Storage interface {
	// Get returns the values for the requested keys, omitting absent ones.
	// A nil key slice enumerates the whole store.
	Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error)

	// Set writes every item in the map. Overwrites are silent.
	Set(ctx context.Context, items map[string]json.RawMessage) error

	// Remove deletes the given keys. Removing an absent key is a no-op and
	// produces no change entry.
	Remove(ctx context.Context, keys ...string) error

	// Keys lists keys matching a doublestar pattern; "" matches everything.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Watch subscribes to change batches. The subscription ends when ctx is
	// canceled or the storage is closed.
	Watch(ctx context.Context) (<-chan []Change, error)

	// Close releases resources and terminates all subscriptions.
	Close() error
}
