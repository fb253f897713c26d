package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notaspat/notaspat/pkg/core"
)

// SchemaVersion tags export snapshots. It tracks the storage schema
// generation (granular per-key layout), not the module version.
const SchemaVersion = "1.3.0"

// Snapshot is the export file format.
type Snapshot struct {
	Version    string               `json:"version"`
	ExportDate time.Time            `json:"exportDate"`
	Notes      map[string]core.Note `json:"notes"`
}

// ExportAll bundles every note into a serialized snapshot.
func (s *Store) ExportAll(ctx context.Context) ([]byte, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := Snapshot{
		Version:    SchemaVersion,
		ExportDate: s.now().UTC(),
		Notes:      all,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return data, nil
}

// ImportAll merges a snapshot into the store: every imported note is written
// as its own key (last-write-wins per id), notes absent from the snapshot
// are untouched, and missing tags/reminder fields are backfilled for
// forward compatibility.
//
// Returns core.ErrParse for input that is not well-formed JSON and
// core.ErrBadFormat for JSON lacking the note collection.
func (s *Store) ImportAll(ctx context.Context, data []byte) (map[string]core.Note, error) {
	var payload struct {
		Notes map[string]json.RawMessage `json:"notes"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	if payload.Notes == nil {
		return nil, core.ErrBadFormat
	}

	items := make(map[string]json.RawMessage, len(payload.Notes))
	imported := make(map[string]core.Note, len(payload.Notes))
	for id, raw := range payload.Notes {
		note, err := decodeNote(id, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: note %s: %v", core.ErrBadFormat, id, err)
		}
		encoded, err := json.Marshal(note)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize note %s: %w", id, err)
		}
		items[core.NoteKey(id)] = encoded
		imported[id] = note
	}

	if err := s.storage.Set(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to persist imported notes: %w", err)
	}
	return imported, nil
}
