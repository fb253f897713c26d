// Package migrate moves the legacy single-blob note layout to the granular
// per-key layout. The engine runs on every startup and is idempotent.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/notaspat/notaspat/pkg/core"
)

// Engine performs the one-time schema migration.
type Engine struct {
	storage core.Storage
	logger  *slog.Logger
}

// New creates an Engine.
func New(storage core.Storage, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{storage: storage, logger: logger}
}

// Run migrates the legacy blob if present.
//
// Ordering is the load-bearing part: the granular keys are written before
// the legacy key is removed, so a crash mid-migration leaves the blob in
// place and the next startup retries. Granular writes are plain overwrites,
// which makes the retry converge instead of duplicating.
//
// Any storage error aborts the run without touching the legacy key.
func (e *Engine) Run(ctx context.Context) error {
	raw, err := e.storage.Get(ctx, []string{core.LegacyNotesKey})
	if err != nil {
		return fmt.Errorf("failed to read legacy blob: %w", err)
	}
	blob, ok := raw[core.LegacyNotesKey]
	if !ok {
		return nil
	}

	var legacy map[string]core.Note
	if err := json.Unmarshal(blob, &legacy); err != nil {
		return fmt.Errorf("failed to parse legacy blob: %w", err)
	}

	if len(legacy) == 0 {
		if err := e.storage.Remove(ctx, core.LegacyNotesKey); err != nil {
			return fmt.Errorf("failed to remove empty legacy key: %w", err)
		}
		e.logger.Info("removed empty legacy notes key")
		return nil
	}

	items := make(map[string]json.RawMessage, len(legacy))
	for id, note := range legacy {
		note.ID = id
		// Backfill fields older blobs predate.
		if note.Tags == nil {
			note.Tags = []string{}
		}
		data, err := json.Marshal(note)
		if err != nil {
			return fmt.Errorf("failed to serialize note %s: %w", id, err)
		}
		items[core.NoteKey(id)] = data
	}

	if err := e.storage.Set(ctx, items); err != nil {
		return fmt.Errorf("failed to write granular keys: %w", err)
	}
	if err := e.storage.Remove(ctx, core.LegacyNotesKey); err != nil {
		return fmt.Errorf("failed to remove legacy key: %w", err)
	}

	e.logger.Info("migrated legacy notes to granular storage", "count", len(legacy))
	return nil
}
