// Package bolt implements core.Storage on top of a bbolt database. One
// bucket holds every key, value bytes are the JSON payloads. Old values for
// change events are captured inside the same update transaction.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.etcd.io/bbolt"

	"github.com/notaspat/notaspat/pkg/core"
)

var bucketName = []byte("kv")

// Store is a bbolt-backed core.Storage.
type Store struct {
	db     *bbolt.DB
	logger *slog.Logger

	pubMu  sync.Mutex
	bc     *core.Broadcaster
	mu     sync.Mutex
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens (creating if needed) the database at the given path.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: slog.Default(),
		bc:     core.NewBroadcaster(core.DefaultEventBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	s.db = db
	return s, nil
}

// Get implements core.Storage.
func (s *Store) Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if keys == nil {
			return b.ForEach(func(k, v []byte) error {
				out[string(k)] = append(json.RawMessage(nil), v...)
				return nil
			})
		}
		for _, key := range keys {
			if v := b.Get([]byte(key)); v != nil {
				out[key] = append(json.RawMessage(nil), v...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read keys: %w", err)
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

	batch := make([]core.Change, 0, len(items))
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		for key, value := range items {
			var old json.RawMessage
			if prev := b.Get([]byte(key)); prev != nil {
				old = append(json.RawMessage(nil), prev...)
			}
			if err := b.Put([]byte(key), value); err != nil {
				return fmt.Errorf("failed to write key %q: %w", key, err)
			}
			batch = append(batch, core.Change{Key: key, Old: old, New: append(json.RawMessage(nil), value...)})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bc.Publish(batch)
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

	var batch []core.Change
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, key := range keys {
			prev := b.Get([]byte(key))
			if prev == nil {
				continue
			}
			old := append(json.RawMessage(nil), prev...)
			if err := b.Delete([]byte(key)); err != nil {
				return fmt.Errorf("failed to remove key %q: %w", key, err)
			}
			batch = append(batch, core.Change{Key: key, Old: old})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bc.Publish(batch)
	return nil
}

// Keys implements core.Storage.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, _ []byte) error {
			key := string(k)
			if pattern != "" {
				match, err := doublestar.Match(pattern, key)
				if err != nil {
					return fmt.Errorf("invalid key pattern %q: %w", pattern, err)
				}
				if !match {
					return nil
				}
			}
			out = append(out, key)
			return nil
		})
	})
	if err != nil {
		return nil, err
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
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.bc.Close()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
