package notaspat

import (
	"log/slog"
	"time"

	"github.com/notaspat/notaspat/pkg/core"
	"github.com/notaspat/notaspat/pkg/reactor"
	"github.com/notaspat/notaspat/pkg/reminders"
)

// options holds the internal configuration of an App.
type options struct {
	storage  core.Storage
	path     string
	explicit bool
	adapter  string
	logger   *slog.Logger
	now      func() time.Time
	alarms   reminders.FiringAlarms
	notifier reminders.Notifier
	focuser  reminders.Focuser
	badge    reactor.Badge
	theme    reactor.ThemeApplier
}

// Option defines a functional option for configuring the App.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		now: time.Now,
	}
}

// WithStorage injects a storage implementation directly, bypassing the
// adapter/path selection.
func WithStorage(storage core.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithPath sets the data directory. Paths set this way are treated as
// explicit and skip the dev-run rerooting.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
		o.explicit = path != ""
	}
}

// WithAdapter selects the storage adapter by name: "fs", "bolt" or "memory".
// Overrides the config file; when neither names one, "fs" is used.
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the time source. Useful for testing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithAlarms injects the alarm subsystem. Defaults to in-process timers.
func WithAlarms(alarms reminders.FiringAlarms) Option {
	return func(o *options) {
		o.alarms = alarms
	}
}

// WithNotifier injects the notification subsystem.
func WithNotifier(n reminders.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithFocuser injects the page focuser used on notification clicks.
func WithFocuser(f reminders.Focuser) Option {
	return func(o *options) {
		o.focuser = f
	}
}

// WithBadge injects the action badge target.
func WithBadge(b reactor.Badge) Option {
	return func(o *options) {
		o.badge = b
	}
}

// WithThemeApplier injects the theme target.
func WithThemeApplier(t reactor.ThemeApplier) Option {
	return func(o *options) {
		o.theme = t
	}
}
