// Package fs implements core.Storage as a directory with one JSON file per
// key. Writes are atomic (temp file + rename) and an optional fsnotify watch
// worker turns external edits of the directory into change events.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/notaspat/notaspat/pkg/core"
)

// keyPattern restricts keys to names that are safe as file names on every
// platform. The core namespace (note_<digits>, theme, templates) fits.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Config holds the configuration for the filesystem storage adapter.
type Config struct {
	Path   string
	Logger *slog.Logger
}

// Store is a file-per-key core.Storage.
type Store struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	pubMu sync.Mutex
	// mirror tracks the last value this process observed per key. It supplies
	// old values for change events and lets the watch worker tell external
	// edits apart from our own writes.
	mirror map[string]json.RawMessage
	closed bool

	bc     *core.Broadcaster
	worker *watchWorker
}

// New opens (creating if needed) a storage directory and loads the key
// mirror from the existing files.
func New(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(config.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   config.Path,
		logger: logger,
		mirror: make(map[string]json.RawMessage),
		bc:     core.NewBroadcaster(core.DefaultEventBuffer),
	}
	if err := s.loadMirror(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadMirror() error {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return fmt.Errorf("failed to read storage directory: %w", err)
	}
	for _, e := range entries {
		key, ok := keyFromFile(e.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.path, e.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable storage file", "file", e.Name(), "error", err)
			continue
		}
		s.mirror[key] = json.RawMessage(data)
	}
	return nil
}

func (s *Store) fileFor(key string) string {
	return filepath.Join(s.path, key+".json")
}

func keyFromFile(name string) (string, bool) {
	if strings.HasPrefix(name, tempFilePrefix) {
		return "", false
	}
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	key := strings.TrimSuffix(name, ".json")
	if !keyPattern.MatchString(key) {
		return "", false
	}
	return key, true
}

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Get implements core.Storage. Disk is the source of truth; the mirror is
// refreshed opportunistically.
func (s *Store) Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("storage is closed")
	}

	if keys == nil {
		all, err := s.Keys(ctx, "")
		if err != nil {
			return nil, err
		}
		keys = all
	}

	out := make(map[string]json.RawMessage)
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(s.fileFor(key))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read key %q: %w", key, err)
		}
		out[key] = json.RawMessage(data)
		s.mirror[key] = json.RawMessage(data)
	}
	return out, nil
}

// Set implements core.Storage. Each key is written atomically; the batch as
// a whole is not transactional.
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
	for key, value := range items {
		if err := validateKey(key); err != nil {
			s.mu.Unlock()
			return err
		}
		old := s.mirror[key]
		if err := writeFileAtomic(s.fileFor(key), value, 0644); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to write key %q: %w", key, err)
		}
		s.mirror[key] = append(json.RawMessage(nil), value...)
		batch = append(batch, core.Change{Key: key, Old: old, New: append(json.RawMessage(nil), value...)})
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	s.bc.Publish(batch)
	s.pubMu.Unlock()
	return nil
}

// Remove implements core.Storage.
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
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			s.mu.Unlock()
			return err
		}
		old, existed := s.mirror[key]
		err := os.Remove(s.fileFor(key))
		if err != nil && !os.IsNotExist(err) {
			s.mu.Unlock()
			return fmt.Errorf("failed to remove key %q: %w", key, err)
		}
		if err == nil || existed {
			delete(s.mirror, key)
			batch = append(batch, core.Change{Key: key, Old: old})
		}
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

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		key, ok := keyFromFile(e.Name())
		if !ok {
			continue
		}
		if pattern != "" {
			match, err := doublestar.Match(pattern, key)
			if err != nil {
				return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, err)
			}
			if !match {
				continue
			}
		}
		out = append(out, key)
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

// StartExternalWatch runs an fsnotify worker that reconciles edits made to
// the storage directory by other processes into change events. Optional; the
// store works without it.
func (s *Store) StartExternalWatch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage is closed")
	}
	if s.worker != nil {
		return fmt.Errorf("external watch already started")
	}
	s.worker = newWatchWorker(s)
	return s.worker.Start(ctx)
}

// reconcileKey re-reads one key from disk and emits a change event if the
// value differs from the mirror. Called by the watch worker; self-writes are
// filtered out naturally because the mirror is updated before fsnotify
// delivers the event.
func (s *Store) reconcileKey(key string) {
	s.mu.Lock()

	var current json.RawMessage
	data, err := os.ReadFile(s.fileFor(key))
	switch {
	case err == nil:
		current = json.RawMessage(data)
	case os.IsNotExist(err):
		current = nil
	default:
		s.mu.Unlock()
		s.logger.Warn("external watch failed to read key", "key", key, "error", err)
		return
	}

	old, existed := s.mirror[key]
	if string(old) == string(current) {
		s.mu.Unlock()
		return
	}

	if current == nil {
		if !existed {
			s.mu.Unlock()
			return
		}
		delete(s.mirror, key)
	} else {
		s.mirror[key] = current
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	s.bc.Publish([]core.Change{{Key: key, Old: old, New: current}})
	s.pubMu.Unlock()
}

// Close implements core.Storage.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	worker := s.worker
	s.mu.Unlock()

	if worker != nil {
		_ = worker.Stop(context.Background())
	}
	s.bc.Close()
	return nil
}
