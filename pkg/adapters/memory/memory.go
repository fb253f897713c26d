// Package memory implements core.Storage as an in-process map. It backs the
// test suites and serves as the reference implementation of the change-event
// contract the persistent adapters must match.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/notaspat/notaspat/pkg/core"
)

// Store is an in-memory core.Storage.
type Store struct {
	mu    sync.Mutex
	pubMu sync.Mutex
	items map[string]json.RawMessage
	bc    *core.Broadcaster

	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		items: make(map[string]json.RawMessage),
		bc:    core.NewBroadcaster(core.DefaultEventBuffer),
	}
}

// Seed pre-populates the store without emitting change events. Test helper.
func (s *Store) Seed(items map[string]json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range items {
		s.items[k] = clone(v)
	}
}

// Get implements core.Storage.
func (s *Store) Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("storage is closed")
	}

	out := make(map[string]json.RawMessage)
	if keys == nil {
		for k, v := range s.items {
			out[k] = clone(v)
		}
		return out, nil
	}
	for _, k := range keys {
		if v, ok := s.items[k]; ok {
			out[k] = clone(v)
		}
	}
	return out, nil
}

// Set implements core.Storage.
func (s *Store) Set(ctx context.Context, items map[string]json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("storage is closed")
	}

	batch := make([]core.Change, 0, len(items))
	for k, v := range items {
		old := s.items[k]
		s.items[k] = clone(v)
		batch = append(batch, core.Change{Key: k, Old: old, New: clone(v)})
	}

	// Take the publish lock before releasing the data lock so batches reach
	// subscribers in write order without holding the data lock across sends.
	s.pubMu.Lock()
	s.mu.Unlock()
	s.bc.Publish(batch)
	s.pubMu.Unlock()

	return nil
}

// Remove implements core.Storage. Absent keys produce no change entry.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("storage is closed")
	}

	var batch []core.Change
	for _, k := range keys {
		old, ok := s.items[k]
		if !ok {
			continue
		}
		delete(s.items, k)
		batch = append(batch, core.Change{Key: k, Old: old})
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	s.bc.Publish(batch)
	s.pubMu.Unlock()

	return nil
}

// Keys implements core.Storage.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("storage is closed")
	}

	var out []string
	for k := range s.items {
		if pattern != "" {
			ok, err := doublestar.Match(pattern, k)
			if err != nil {
				return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, k)
	}
	return out, nil
}

// Watch implements core.Storage.
func (s *Store) Watch(ctx context.Context) (<-chan []core.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("storage is closed")
	}
	return s.bc.Subscribe(ctx), nil
}

// Close implements core.Storage.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.bc.Close()
	return nil
}

func clone(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
