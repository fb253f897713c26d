// Package notes implements the note store: CRUD and query operations over
// the granular key-value layout, one storage key per note.
//
// Every per-note operation is a read-modify-write of a single key. The
// historical single-blob layout serialized all writers on one key and scaled
// linearly with note count; the granular layout is the fix, and nothing in
// this package may reintroduce a whole-collection rewrite on the per-note
// paths.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/notaspat/notaspat/pkg/core"
)

// HealthWarnThreshold is the note count at which CountAndHealth starts
// flagging a soft warning. Advisory only; writes are never blocked.
const HealthWarnThreshold = 500

// Store provides note persistence over a core.Storage.
type Store struct {
	storage core.Storage
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the time source. Tests use this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store on top of the given storage.
func New(storage core.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll enumerates every stored note, keyed by protocol number. Keys
// outside the note namespace are ignored; an empty store yields an empty map.
func (s *Store) GetAll(ctx context.Context) (map[string]core.Note, error) {
	raw, err := s.storage.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate storage: %w", err)
	}

	notes := make(map[string]core.Note)
	for key, value := range raw {
		id, ok := core.NoteID(key)
		if !ok {
			continue
		}
		note, err := decodeNote(id, value)
		if err != nil {
			s.logger.Warn("skipping unparseable note", "key", key, "error", err)
			continue
		}
		notes[id] = note
	}
	return notes, nil
}

// Get returns the note for a protocol number, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*core.Note, error) {
	key := core.NoteKey(id)
	raw, err := s.storage.Get(ctx, []string{key})
	if err != nil {
		return nil, fmt.Errorf("failed to read note %s: %w", id, err)
	}
	value, ok := raw[key]
	if !ok {
		return nil, nil
	}
	note, err := decodeNote(id, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse note %s: %w", id, err)
	}
	return &note, nil
}

// GetMany batch-loads the notes for the requested protocol numbers. Only
// existing notes appear in the result; absent ids are simply omitted.
func (s *Store) GetMany(ctx context.Context, ids []string) (map[string]core.Note, error) {
	if len(ids) == 0 {
		return map[string]core.Note{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, core.NoteKey(id))
	}

	raw, err := s.storage.Get(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-read notes: %w", err)
	}

	notes := make(map[string]core.Note, len(raw))
	for key, value := range raw {
		id, ok := core.NoteID(key)
		if !ok {
			continue
		}
		note, err := decodeNote(id, value)
		if err != nil {
			s.logger.Warn("skipping unparseable note", "key", key, "error", err)
			continue
		}
		notes[id] = note
	}
	return notes, nil
}

// Save creates or updates one note. CreatedAt is preserved across updates;
// UpdatedAt always moves. Missing color falls back to the palette default,
// missing tags to an empty set.
func (s *Store) Save(ctx context.Context, id, text, color string, tags []string, reminder *time.Time) (*core.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("note id cannot be empty")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	note := core.Note{
		ID:        id,
		Text:      text,
		Color:     core.NormalizeColor(color),
		Tags:      normalizeTags(tags),
		Reminder:  reminder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		note.CreatedAt = existing.CreatedAt
	}

	if err := s.put(ctx, note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes one note and reports whether it existed. Repeated deletes
// are safe; the second call returns false.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := s.storage.Remove(ctx, core.NoteKey(id)); err != nil {
		return false, fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return true, nil
}

// UpdateColor changes only the color of an existing note. Returns nil when
// the note does not exist; never auto-creates.
func (s *Store) UpdateColor(ctx context.Context, id, color string) (*core.Note, error) {
	return s.patch(ctx, id, func(n *core.Note) {
		n.Color = core.NormalizeColor(color)
	})
}

// UpdateTags replaces the tag set of an existing note.
func (s *Store) UpdateTags(ctx context.Context, id string, tags []string) (*core.Note, error) {
	return s.patch(ctx, id, func(n *core.Note) {
		n.Tags = normalizeTags(tags)
	})
}

// SetReminder sets or clears (nil) the reminder of an existing note.
func (s *Store) SetReminder(ctx context.Context, id string, reminder *time.Time) (*core.Note, error) {
	return s.patch(ctx, id, func(n *core.Note) {
		n.Reminder = reminder
	})
}

// patch is the shared single-key read-modify-write for targeted updates.
func (s *Store) patch(ctx context.Context, id string, mutate func(*core.Note)) (*core.Note, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	mutate(note)
	note.UpdatedAt = s.now()

	if err := s.put(ctx, *note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Store) put(ctx context.Context, note core.Note) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to serialize note %s: %w", note.ID, err)
	}
	if err := s.storage.Set(ctx, map[string]json.RawMessage{core.NoteKey(note.ID): data}); err != nil {
		return fmt.Errorf("failed to write note %s: %w", note.ID, err)
	}
	return nil
}

// Count returns the number of stored notes.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.storage.Keys(ctx, core.NotePrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return len(keys), nil
}

// Health reports the outcome of CountAndHealth.
type Health struct {
	OK      bool   `json:"ok"`
	Count   int    `json:"count"`
	Warning string `json:"warning,omitempty"`
}

// CountAndHealth counts notes and flags a soft warning once the count
// reaches HealthWarnThreshold.
func (s *Store) CountAndHealth(ctx context.Context) (Health, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return Health{}, err
	}

	h := Health{OK: count < HealthWarnThreshold, Count: count}
	if !h.OK {
		h.Warning = fmt.Sprintf(
			"you have %d saved notes; consider deleting notes for finished tasks to keep lookups fast", count)
	}
	return h, nil
}

// PendingReminders returns the notes whose reminder is set and in the future.
func (s *Store) PendingReminders(ctx context.Context) ([]core.Note, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []core.Note
	for _, note := range all {
		if note.Reminder != nil && note.Reminder.After(now) {
			out = append(out, note)
		}
	}
	slices.SortFunc(out, func(a, b core.Note) int {
		return a.Reminder.Compare(*b.Reminder)
	})
	return out, nil
}

// Theme returns the stored theme flag, defaulting to light.
func (s *Store) Theme(ctx context.Context) (string, error) {
	raw, err := s.storage.Get(ctx, []string{core.ThemeKey})
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	value, ok := raw[core.ThemeKey]
	if !ok {
		return core.ThemeLight, nil
	}
	var theme string
	if err := json.Unmarshal(value, &theme); err != nil {
		return core.ThemeLight, nil
	}
	if theme != core.ThemeDark {
		theme = core.ThemeLight
	}
	return theme, nil
}

// SetTheme stores the theme flag.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if theme != core.ThemeDark {
		theme = core.ThemeLight
	}
	data, _ := json.Marshal(theme)
	if err := s.storage.Set(ctx, map[string]json.RawMessage{core.ThemeKey: data}); err != nil {
		return fmt.Errorf("failed to write theme: %w", err)
	}
	return nil
}

// decodeNote parses a stored payload and pins the embedded id to the key
// suffix, which is authoritative.
func decodeNote(id string, value json.RawMessage) (core.Note, error) {
	var note core.Note
	if err := json.Unmarshal(value, &note); err != nil {
		return core.Note{}, err
	}
	note.ID = id
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

// normalizeTags drops empties and duplicates and fixes an order so tag sets
// compare deterministically.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}
