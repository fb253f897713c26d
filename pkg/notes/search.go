package notes

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/notaspat/notaspat/pkg/core"
)

// foldTransformer strips combining marks so "pendência" matches "pendencia".
// Note text is predominantly Portuguese; plain ToLower is not enough.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// Search returns the notes whose id, text, or any tag contains the query,
// case- and accent-insensitively. The match runs in memory over a full read.
func (s *Store) Search(ctx context.Context, query string) (map[string]core.Note, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := fold(query)
	results := make(map[string]core.Note)
	for id, note := range all {
		if matchesNote(id, note, needle) {
			results[id] = note
		}
	}
	return results, nil
}

func matchesNote(id string, note core.Note, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(fold(id), needle) {
		return true
	}
	if strings.Contains(fold(note.Text), needle) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(fold(tag), needle) {
			return true
		}
	}
	return false
}
