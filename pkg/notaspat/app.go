// Package notaspat is the public facade: it wires storage, the note store,
// the migration engine, the reminder scheduler and the change reactor into
// one App.
package notaspat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/notaspat/notaspat/internal/platform"
	"github.com/notaspat/notaspat/pkg/adapters/bolt"
	"github.com/notaspat/notaspat/pkg/adapters/fs"
	"github.com/notaspat/notaspat/pkg/adapters/memory"
	"github.com/notaspat/notaspat/pkg/adapters/timer"
	"github.com/notaspat/notaspat/pkg/core"
	"github.com/notaspat/notaspat/pkg/inject"
	"github.com/notaspat/notaspat/pkg/migrate"
	"github.com/notaspat/notaspat/pkg/notes"
	"github.com/notaspat/notaspat/pkg/reactor"
	"github.com/notaspat/notaspat/pkg/reminders"
)

// App owns the wired components and their background loops.
type App struct {
	storage   core.Storage
	notes     *notes.Store
	scheduler *reminders.Scheduler
	reactor   *reactor.Reactor
	alarms    reminders.FiringAlarms
	config    Config
	logger    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// New builds an App. Storage is resolved from the options: an injected
// implementation wins, otherwise the named adapter is opened under the
// resolved data directory.
func New(opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	storage := o.storage
	cfg := DefaultConfig()
	if storage == nil {
		dir, err := platform.ResolveDataDir(o.path)
		if err != nil {
			return nil, err
		}
		dir = platform.DevSafeDir(dir, o.explicit)

		cfg, err = LoadConfig(filepath.Join(dir, ConfigFileName))
		if err != nil {
			return nil, err
		}
		// A path in the config file is as deliberate as a flag, but an
		// explicitly passed option still wins.
		if o.path == "" && cfg.Path != "" {
			if dir, err = platform.ResolveDataDir(cfg.Path); err != nil {
				return nil, err
			}
			dir = platform.DevSafeDir(dir, true)
		}

		adapter := o.adapter
		if adapter == "" {
			adapter = cfg.Adapter
		}
		switch adapter {
		case "fs":
			storage, err = fs.New(fs.Config{Path: filepath.Join(dir, "storage"), Logger: logger})
		case "bolt":
			storage, err = bolt.Open(filepath.Join(dir, "notaspat.db"), bolt.WithLogger(logger))
		case "memory":
			storage = memory.New()
		default:
			return nil, fmt.Errorf("unknown storage adapter %q", adapter)
		}
		if err != nil {
			return nil, err
		}
	}

	store := notes.New(storage, notes.WithLogger(logger), notes.WithClock(o.now))

	alarms := o.alarms
	if alarms == nil {
		alarms = timer.New()
	}
	notifier := o.notifier
	if notifier == nil {
		notifier = logNotifier{logger: logger}
	}

	scheduler := reminders.New(store, alarms, notifier,
		reminders.WithLogger(logger),
		reminders.WithClock(o.now),
		reminders.WithFocuser(o.focuser),
	)

	reactorOpts := []reactor.Option{reactor.WithLogger(logger)}
	if o.badge != nil {
		reactorOpts = append(reactorOpts, reactor.WithBadge(o.badge))
	}
	if o.theme != nil {
		reactorOpts = append(reactorOpts, reactor.WithThemeApplier(o.theme))
	}

	return &App{
		storage:   storage,
		notes:     store,
		scheduler: scheduler,
		reactor:   reactor.New(store, scheduler, reactorOpts...),
		alarms:    alarms,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Config returns the effective configuration: the notaspat.yaml of the data
// directory merged with defaults. When storage is injected directly no file
// is read and the defaults apply.
func (a *App) Config() Config {
	return a.config
}

// InjectorOptions translates the configured debounce and lookup timeout into
// injector options. Page hosts pass these to inject.New alongside their own.
func (a *App) InjectorOptions() []inject.Option {
	return []inject.Option{
		inject.WithDebounce(a.config.Debounce()),
		inject.WithLookupTimeout(a.config.LookupTimeout()),
	}
}

// Notes exposes the note store.
func (a *App) Notes() *notes.Store {
	return a.notes
}

// Storage exposes the underlying storage.
func (a *App) Storage() core.Storage {
	return a.storage
}

// Scheduler exposes the reminder scheduler.
func (a *App) Scheduler() *reminders.Scheduler {
	return a.scheduler
}

// Reactor exposes the change reactor.
func (a *App) Reactor() *reactor.Reactor {
	return a.reactor
}

// Start runs the startup sequence (migration, default seeding, alarm
// rebuild, badge refresh) and launches the background loops: the change
// reactor over storage events and the alarm firing handler.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app already started")
	}

	if err := migrate.New(a.storage, a.logger).Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := a.notes.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}
	if err := a.scheduler.RebuildAll(ctx); err != nil {
		return fmt.Errorf("failed to rebuild alarms: %w", err)
	}
	if err := a.reactor.UpdateBadge(ctx); err != nil {
		a.logger.Warn("failed to set initial badge", "error", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	batches, err := a.storage.Watch(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch storage: %w", err)
	}

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		a.reactor.Run(ctx, batches)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		a.logger.Error("reactor loop failed", "error", err)
	}))

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		a.runAlarmLoop(ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		a.logger.Error("alarm loop failed", "error", err)
	}))

	a.started = true
	return nil
}

func (a *App) runAlarmLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-a.alarms.Fired():
			if !ok {
				return
			}
			if err := a.scheduler.HandleAlarm(ctx, name); err != nil {
				a.logger.Error("failed to handle alarm", "alarm", name, "error", err)
			}
		}
	}
}

// Close stops the background loops and closes the storage.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if closer, ok := a.alarms.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	a.started = false
	return a.storage.Close()
}

// logNotifier is the fallback Notifier for daemon runs without a host
// notification subsystem.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(_ context.Context, id string, notif reminders.Notification) error {
	n.logger.Info("reminder", "notification", id, "title", notif.Title, "message", notif.Message)
	return nil
}

func (n logNotifier) Clear(context.Context, string) error {
	return nil
}
