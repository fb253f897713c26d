package notaspat

import (
	"github.com/aretw0/introspection"
)

// AppState exposes internal state for observability.
type AppState struct {
	Started     bool   `json:"started"`
	StorageType string `json:"storage_type"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	a.mu.Lock()
	defer a.mu.Unlock()

	storageType := "storage"
	if comp, ok := a.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	return AppState{
		Started:     a.started,
		StorageType: storageType,
	}
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
var _ introspection.Component = (*App)(nil)
