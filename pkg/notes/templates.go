package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/notaspat/notaspat/pkg/core"
)

// DefaultTemplates returns the canned follow-up texts seeded on first run.
func DefaultTemplates() []core.Template {
	return []core.Template{
		{ID: "aguardando-doc", Name: "Aguardando documentação", Body: "Aguardando envio de documentação complementar pelo interessado."},
		{ID: "ligar", Name: "Ligar para interessado", Body: "Ligar para o interessado para esclarecer pendências."},
		{ID: "analise", Name: "Em análise", Body: "Processo em análise técnica."},
		{ID: "retorno", Name: "Aguardando retorno", Body: "Aguardando retorno do interessado."},
	}
}

// Templates returns the stored template list, empty when unset.
func (s *Store) Templates(ctx context.Context) ([]core.Template, error) {
	raw, err := s.storage.Get(ctx, []string{core.TemplatesKey})
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	value, ok := raw[core.TemplatesKey]
	if !ok {
		return []core.Template{}, nil
	}

	var templates []core.Template
	if err := json.Unmarshal(value, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// AddTemplate appends a template. A fresh id is generated when none is given.
func (s *Store) AddTemplate(ctx context.Context, tpl core.Template) (core.Template, error) {
	if tpl.Name == "" {
		return core.Template{}, fmt.Errorf("template name cannot be empty")
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	templates, err := s.Templates(ctx)
	if err != nil {
		return core.Template{}, err
	}
	for _, existing := range templates {
		if existing.ID == tpl.ID {
			return core.Template{}, fmt.Errorf("template %s already exists", tpl.ID)
		}
	}

	templates = append(templates, tpl)
	if err := s.writeTemplates(ctx, templates); err != nil {
		return core.Template{}, err
	}
	return tpl, nil
}

// RemoveTemplate deletes a template by id, reporting whether it existed.
func (s *Store) RemoveTemplate(ctx context.Context, id string) (bool, error) {
	templates, err := s.Templates(ctx)
	if err != nil {
		return false, err
	}

	kept := templates[:0]
	removed := false
	for _, tpl := range templates {
		if tpl.ID == id {
			removed = true
			continue
		}
		kept = append(kept, tpl)
	}
	if !removed {
		return false, nil
	}
	return true, s.writeTemplates(ctx, kept)
}

// EnsureDefaults seeds the template list and theme flag on first run.
// Idempotent: existing values are left alone.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, []string{core.TemplatesKey, core.ThemeKey})
	if err != nil {
		return fmt.Errorf("failed to read defaults: %w", err)
	}

	items := make(map[string]json.RawMessage)
	if _, ok := raw[core.TemplatesKey]; !ok {
		data, err := json.Marshal(DefaultTemplates())
		if err != nil {
			return fmt.Errorf("failed to serialize default templates: %w", err)
		}
		items[core.TemplatesKey] = data
	}
	if _, ok := raw[core.ThemeKey]; !ok {
		data, _ := json.Marshal(core.ThemeLight)
		items[core.ThemeKey] = data
	}

	if len(items) == 0 {
		return nil
	}
	if err := s.storage.Set(ctx, items); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}
	return nil
}

func (s *Store) writeTemplates(ctx context.Context, templates []core.Template) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("failed to serialize templates: %w", err)
	}
	if err := s.storage.Set(ctx, map[string]json.RawMessage{core.TemplatesKey: data}); err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	return nil
}
