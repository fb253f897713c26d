package fs

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	MirrorSize    int    `json:"mirror_size"`
	WatcherActive bool   `json:"watcher_active"`
	Closed        bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StoreState{
		Path:          s.path,
		MirrorSize:    len(s.mirror),
		WatcherActive: s.worker != nil,
		Closed:        s.closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "storage"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
