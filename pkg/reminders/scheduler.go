// Package reminders maps notes with future reminder timestamps onto the
// host alarm subsystem and handles alarm firings. The host subsystem owns
// firing; this package owns intent.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notaspat/notaspat/pkg/notes"
)

// AlarmPrefix + protocol number names the alarm for one note's reminder.
const AlarmPrefix = "reminder_"

// NotificationPrefix + protocol number names the fired notification.
const NotificationPrefix = "notification_"

// previewLen is where notification previews cut the note text.
const previewLen = 100

// Alarms is the timed-alarm subsystem contract. Create replaces an existing
// alarm of the same name.
type Alarms interface {
	Create(ctx context.Context, name string, when time.Time) error
	Clear(ctx context.Context, name string) error
	ClearAll(ctx context.Context) error
}

// FiringAlarms is an Alarms implementation that also delivers firings.
// Fired yields alarm names as they expire.
type FiringAlarms interface {
	Alarms
	Fired() <-chan string
}

// Notification is a user-facing message.
type Notification struct {
	Title   string
	Message string
}

// Notifier is the user notification subsystem contract.
type Notifier interface {
	Notify(ctx context.Context, id string, n Notification) error
	Clear(ctx context.Context, id string) error
}

// Focuser brings the host page into the foreground. Best-effort.
type Focuser interface {
	Focus(ctx context.Context) error
}

// Scheduler reconciles note reminders with alarms and reacts to firings.
type Scheduler struct {
	store    *notes.Store
	alarms   Alarms
	notifier Notifier
	focuser  Focuser
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithFocuser sets the page focuser used on notification clicks.
func WithFocuser(f Focuser) Option {
	return func(s *Scheduler) {
		s.focuser = f
	}
}

// New creates a Scheduler.
func New(store *notes.Store, alarms Alarms, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		alarms:   alarms,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RebuildAll clears every alarm and re-derives one per note with a future
// reminder. Full rebuild is expensive; it runs only at install/update time.
// The incremental path is ReconcileOne.
func (s *Scheduler) RebuildAll(ctx context.Context) error {
	if err := s.alarms.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear alarms: %w", err)
	}

	pending, err := s.store.PendingReminders(ctx)
	if err != nil {
		return err
	}
	for _, note := range pending {
		if err := s.alarms.Create(ctx, AlarmPrefix+note.ID, *note.Reminder); err != nil {
			return fmt.Errorf("failed to create alarm for %s: %w", note.ID, err)
		}
		s.logger.Debug("alarm created", "id", note.ID, "when", note.Reminder)
	}
	return nil
}

// ReconcileOne applies the reminder policy for one changed note:
//
//	unchanged           -> no-op
//	new future instant  -> (re)create the alarm at that instant
//	anything else       -> cancel the alarm (covers deletion, cleared
//	                       reminders, and past timestamps; "exactly now"
//	                       counts as not-future)
func (s *Scheduler) ReconcileOne(ctx context.Context, id string, oldReminder, newReminder *time.Time) error {
	if equalReminder(oldReminder, newReminder) {
		return nil
	}

	name := AlarmPrefix + id
	if newReminder != nil && newReminder.After(s.now()) {
		if err := s.alarms.Create(ctx, name, *newReminder); err != nil {
			return fmt.Errorf("failed to create alarm for %s: %w", id, err)
		}
		s.logger.Debug("alarm updated", "id", id, "when", newReminder)
		return nil
	}

	if err := s.alarms.Clear(ctx, name); err != nil {
		return fmt.Errorf("failed to clear alarm for %s: %w", id, err)
	}
	s.logger.Debug("alarm cleared", "id", id)
	return nil
}

// HandleAlarm processes one fired alarm: notify the user with a text
// preview, then null the note's reminder with a single-key update so it
// cannot re-fire. Alarms outside the reminder namespace are ignored, as are
// alarms whose note disappeared in the meantime.
func (s *Scheduler) HandleAlarm(ctx context.Context, name string) error {
	id, ok := strings.CutPrefix(name, AlarmPrefix)
	if !ok {
		return nil
	}

	note, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}

	err = s.notifier.Notify(ctx, NotificationPrefix+id, Notification{
		Title:   "Lembrete - NotasPat",
		Message: fmt.Sprintf("Protocolo %s: %s", id, truncate(note.Text, previewLen)),
	})
	if err != nil {
		s.logger.Error("failed to notify reminder", "id", id, "error", err)
	}

	if _, err := s.store.SetReminder(ctx, id, nil); err != nil {
		return fmt.Errorf("failed to consume reminder for %s: %w", id, err)
	}
	return nil
}

// HandleNotificationClick focuses the host page and clears the clicked
// notification. Focus failure is logged, never surfaced.
func (s *Scheduler) HandleNotificationClick(ctx context.Context, notificationID string) {
	if !strings.HasPrefix(notificationID, NotificationPrefix) {
		return
	}
	if s.focuser != nil {
		if err := s.focuser.Focus(ctx); err != nil {
			s.logger.Warn("failed to focus host page", "error", err)
		}
	}
	if err := s.notifier.Clear(ctx, notificationID); err != nil {
		s.logger.Debug("failed to clear notification", "id", notificationID, "error", err)
	}
}

func equalReminder(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// truncate cuts s at max runes, appending an ellipsis when something was
// dropped.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
