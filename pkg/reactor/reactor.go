// Package reactor consumes storage change batches and fans their effects out
// to the reminder scheduler, the action badge, and the theme applier.
package reactor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/notaspat/notaspat/pkg/core"
	"github.com/notaspat/notaspat/pkg/notes"
	"github.com/notaspat/notaspat/pkg/reminders"
)

// BadgeColor is the badge background used by hosts that support one.
const BadgeColor = "#1351b4"

// Badge displays the note count on the extension action. An empty string
// hides the badge.
type Badge interface {
	SetText(ctx context.Context, text string) error
}

// ThemeApplier pushes a theme change to open surfaces.
type ThemeApplier interface {
	ApplyTheme(ctx context.Context, theme string) error
}

// Reactor reacts to storage changes.
type Reactor struct {
	store     *notes.Store
	scheduler *reminders.Scheduler
	badge     Badge
	theme     ThemeApplier
	logger    *slog.Logger
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithBadge sets the badge target.
func WithBadge(b Badge) Option {
	return func(r *Reactor) {
		r.badge = b
	}
}

// WithThemeApplier sets the theme target.
func WithThemeApplier(t ThemeApplier) Option {
	return func(r *Reactor) {
		r.theme = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reactor) {
		r.logger = logger
	}
}

// New creates a Reactor.
func New(store *notes.Store, scheduler *reminders.Scheduler, opts ...Option) *Reactor {
	r := &Reactor{
		store:     store,
		scheduler: scheduler,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run consumes change batches until the channel closes or ctx is cancelled.
// Batches are handled strictly in order, each to completion before the next
// is taken, so effects never interleave across batches.
func (r *Reactor) Run(ctx context.Context, batches <-chan []core.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batches:
			if !ok {
				return
			}
			r.HandleBatch(ctx, batch)
		}
	}
}

// HandleBatch applies one batch: per-note reminder reconciliation and theme
// propagation per change, then a single badge refresh if any note changed.
// Individual failures are logged and skipped; one bad change must not stall
// the rest of the batch.
func (r *Reactor) HandleBatch(ctx context.Context, batch []core.Change) {
	notesTouched := false
	for _, change := range batch {
		if id, ok := core.NoteID(change.Key); ok {
			notesTouched = true
			oldReminder := reminderOf(change.Old)
			newReminder := reminderOf(change.New)
			if err := r.scheduler.ReconcileOne(ctx, id, oldReminder, newReminder); err != nil {
				r.logger.Error("failed to reconcile reminder", "id", id, "error", err)
			}
			continue
		}
		if change.Key == core.ThemeKey && r.theme != nil {
			var theme string
			if err := json.Unmarshal(change.New, &theme); err != nil {
				r.logger.Warn("failed to parse theme change", "error", err)
				continue
			}
			if err := r.theme.ApplyTheme(ctx, theme); err != nil {
				r.logger.Warn("failed to apply theme", "error", err)
			}
		}
	}

	if notesTouched {
		if err := r.UpdateBadge(ctx); err != nil {
			r.logger.Error("failed to update badge", "error", err)
		}
	}
}

// UpdateBadge recounts the notes and pushes the count to the badge. Zero
// hides the badge.
func (r *Reactor) UpdateBadge(ctx context.Context) error {
	if r.badge == nil {
		return nil
	}
	count, err := r.store.Count(ctx)
	if err != nil {
		return err
	}
	text := ""
	if count > 0 {
		text = strconv.Itoa(count)
	}
	return r.badge.SetText(ctx, text)
}

// reminderOf pulls the reminder field out of a raw note payload. A missing
// payload (creation's old side, deletion's new side) or an unparseable one
// reads as no reminder.
func reminderOf(raw json.RawMessage) *time.Time {
	if raw == nil {
		return nil
	}
	var note core.Note
	if err := json.Unmarshal(raw, &note); err != nil {
		return nil
	}
	return note.Reminder
}
