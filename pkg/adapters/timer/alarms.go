// Package timer provides an in-process reminders.FiringAlarms backed by
// time.Timer. It stands in for a host alarm subsystem when the module runs
// as a standalone daemon.
package timer

import (
	"context"
	"sync"
	"time"
)

// firedBuffer bounds how many firings can queue before delivery drops.
const firedBuffer = 16

// Alarms schedules named one-shot timers and reports their firings.
type Alarms struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fired  chan string
	closed bool
	now    func() time.Time
}

// New creates an Alarms ready for use.
func New() *Alarms {
	return &Alarms{
		timers: make(map[string]*time.Timer),
		fired:  make(chan string, firedBuffer),
		now:    time.Now,
	}
}

// Create schedules an alarm, replacing any existing alarm of the same name.
// Instants at or before now fire immediately.
func (a *Alarms) Create(_ context.Context, name string, when time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}

	if timer, ok := a.timers[name]; ok {
		timer.Stop()
	}

	delay := when.Sub(a.now())
	if delay < 0 {
		delay = 0
	}
	a.timers[name] = time.AfterFunc(delay, func() {
		a.deliver(name)
	})
	return nil
}

// Clear cancels one alarm. Unknown names are a no-op.
func (a *Alarms) Clear(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if timer, ok := a.timers[name]; ok {
		timer.Stop()
		delete(a.timers, name)
	}
	return nil
}

// ClearAll cancels every pending alarm.
func (a *Alarms) ClearAll(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for name, timer := range a.timers {
		timer.Stop()
		delete(a.timers, name)
	}
	return nil
}

// Fired yields alarm names as they expire. The channel is closed by Close.
func (a *Alarms) Fired() <-chan string {
	return a.fired
}

// Close cancels all alarms and closes the fired channel.
func (a *Alarms) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	for name, timer := range a.timers {
		timer.Stop()
		delete(a.timers, name)
	}
	close(a.fired)
	return nil
}

func (a *Alarms) deliver(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	delete(a.timers, name)
	select {
	case a.fired <- name:
	default:
		// Consumer fell behind; dropping beats blocking the timer goroutine.
	}
}
