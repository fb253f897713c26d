// Package core defines the domain entities and the host-subsystem contracts
// the rest of the module is built against.
package core

import (
	"strings"
	"time"
)

// Key layout of the persistence namespace. Everything the core writes lives
// under one of these names; keys outside the namespace are ignored.
const (
	// NotePrefix + protocol number is the key of a single note.
	NotePrefix = "note_"
	// ThemeKey holds the UI theme flag ("light" or "dark").
	ThemeKey = "theme"
	// TemplatesKey holds the ordered template list as one value.
	TemplatesKey = "templates"
	// LegacyNotesKey is the pre-granular single-blob key, kept only so the
	// migration engine can find and retire it.
	LegacyNotesKey = "notes"
)

// MaxTextLen is the soft cap on note text. The store does not enforce it;
// presentation layers truncate at this length.
const MaxTextLen = 500

// Note is one sticky note attached to a protocol row.
// JSON field names match the storage payloads written by every prior version,
// so export files and migrated blobs round-trip unchanged.
type Note struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Color     string     `json:"color"`
	Tags      []string   `json:"tags"`
	Reminder  *time.Time `json:"reminder"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Template is a reusable canned note text, independent of any note.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// NoteKey returns the storage key for a protocol number.
func NoteKey(id string) string {
	return NotePrefix + id
}

// NoteID recovers the protocol number from a storage key.
// Returns false for keys outside the note namespace.
func NoteID(key string) (string, bool) {
	if !strings.HasPrefix(key, NotePrefix) {
		return "", false
	}
	id := key[len(NotePrefix):]
	if id == "" {
		return "", false
	}
	return id, true
}

// Themes recognized by the presentation layers.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)
