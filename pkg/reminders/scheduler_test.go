package reminders_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notaspat/notaspat/pkg/adapters/memory"
	"github.com/notaspat/notaspat/pkg/notes"
	"github.com/notaspat/notaspat/pkg/reminders"
)

var t0 = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

type fakeAlarms struct {
	mu      sync.Mutex
	alarms  map[string]time.Time
	cleared []string
}

func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{alarms: make(map[string]time.Time)}
}

func (f *fakeAlarms) Create(_ context.Context, name string, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alarms[name] = when
	return nil
}

func (f *fakeAlarms) Clear(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.alarms, name)
	f.cleared = append(f.cleared, name)
	return nil
}

func (f *fakeAlarms) ClearAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alarms = make(map[string]time.Time)
	return nil
}

func (f *fakeAlarms) get(name string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	when, ok := f.alarms[name]
	return when, ok
}

func (f *fakeAlarms) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alarms)
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified map[string]reminders.Notification
	cleared  []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(map[string]reminders.Notification)}
}

func (f *fakeNotifier) Notify(_ context.Context, id string, n reminders.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified[id] = n
	return nil
}

func (f *fakeNotifier) Clear(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, id)
	return nil
}

type fakeFocuser struct {
	focused int
}

func (f *fakeFocuser) Focus(context.Context) error {
	f.focused++
	return nil
}

func newScheduler(t *testing.T) (*reminders.Scheduler, *notes.Store, *fakeAlarms, *fakeNotifier, *fakeFocuser) {
	t.Helper()
	storage := memory.New()
	t.Cleanup(func() { _ = storage.Close() })

	store := notes.New(storage, notes.WithClock(func() time.Time { return t0 }))
	alarms := newFakeAlarms()
	notifier := newFakeNotifier()
	focuser := &fakeFocuser{}
	sched := reminders.New(store, alarms, notifier,
		reminders.WithClock(func() time.Time { return t0 }),
		reminders.WithFocuser(focuser),
	)
	return sched, store, alarms, notifier, focuser
}

func TestReconcileOne_PolicyTable(t *testing.T) {
	past := t0.Add(-time.Hour)
	future := t0.Add(time.Hour)
	further := t0.Add(2 * time.Hour)
	exactlyNow := t0

	tests := []struct {
		name      string
		old, new  *time.Time
		wantAlarm *time.Time
		wantClear bool
	}{
		{"both nil is a no-op", nil, nil, nil, false},
		{"unchanged instant is a no-op", &future, &future, nil, false},
		{"new future reminder creates", nil, &future, &future, false},
		{"moved reminder recreates", &future, &further, &further, false},
		{"cleared reminder cancels", &future, nil, nil, true},
		{"past reminder cancels", nil, &past, nil, true},
		{"exactly now counts as not-future", nil, &exactlyNow, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, _, alarms, _, _ := newScheduler(t)
			ctx := context.Background()

			require.NoError(t, sched.ReconcileOne(ctx, "12345", tt.old, tt.new))

			when, ok := alarms.get(reminders.AlarmPrefix + "12345")
			if tt.wantAlarm != nil {
				require.True(t, ok, "expected an alarm")
				assert.True(t, when.Equal(*tt.wantAlarm))
			} else {
				assert.False(t, ok)
			}
			if tt.wantClear {
				assert.Contains(t, alarms.cleared, reminders.AlarmPrefix+"12345")
			} else {
				assert.Empty(t, alarms.cleared)
			}
		})
	}
}

func TestRebuildAll(t *testing.T) {
	sched, store, alarms, _, _ := newScheduler(t)
	ctx := context.Background()

	// A stale alarm for a note that no longer has a reminder.
	require.NoError(t, alarms.Create(ctx, reminders.AlarmPrefix+"99999", t0.Add(time.Hour)))

	future := t0.Add(time.Hour)
	past := t0.Add(-time.Hour)
	_, err := store.Save(ctx, "11111", "future", "", nil, &future)
	require.NoError(t, err)
	_, err = store.Save(ctx, "22222", "past", "", nil, &past)
	require.NoError(t, err)
	_, err = store.Save(ctx, "33333", "none", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, sched.RebuildAll(ctx))

	assert.Equal(t, 1, alarms.count())
	when, ok := alarms.get(reminders.AlarmPrefix + "11111")
	require.True(t, ok)
	assert.True(t, when.Equal(future))
}

func TestHandleAlarm(t *testing.T) {
	sched, store, _, notifier, _ := newScheduler(t)
	ctx := context.Background()

	when := t0.Add(time.Hour)
	_, err := store.Save(ctx, "12345678901", "ligar para o interessado", "", nil, &when)
	require.NoError(t, err)

	require.NoError(t, sched.HandleAlarm(ctx, reminders.AlarmPrefix+"12345678901"))

	n, ok := notifier.notified[reminders.NotificationPrefix+"12345678901"]
	require.True(t, ok)
	assert.Contains(t, n.Message, "Protocolo 12345678901")
	assert.Contains(t, n.Message, "ligar para o interessado")

	// The reminder is consumed so it cannot re-fire.
	note, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Nil(t, note.Reminder)
}

func TestHandleAlarm_TruncatesPreview(t *testing.T) {
	sched, store, _, notifier, _ := newScheduler(t)
	ctx := context.Background()

	long := strings.Repeat("ã", 150)
	_, err := store.Save(ctx, "11111", long, "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, sched.HandleAlarm(ctx, reminders.AlarmPrefix+"11111"))

	n := notifier.notified[reminders.NotificationPrefix+"11111"]
	assert.Contains(t, n.Message, strings.Repeat("ã", 100)+"...")
	assert.NotContains(t, n.Message, strings.Repeat("ã", 101))
}

func TestHandleAlarm_IgnoresForeignAndGoneNotes(t *testing.T) {
	sched, _, _, notifier, _ := newScheduler(t)
	ctx := context.Background()

	require.NoError(t, sched.HandleAlarm(ctx, "unrelated_alarm"))
	require.NoError(t, sched.HandleAlarm(ctx, reminders.AlarmPrefix+"40404"))
	assert.Empty(t, notifier.notified)
}

func TestHandleNotificationClick(t *testing.T) {
	sched, _, _, notifier, focuser := newScheduler(t)
	ctx := context.Background()

	sched.HandleNotificationClick(ctx, reminders.NotificationPrefix+"12345")
	assert.Equal(t, 1, focuser.focused)
	assert.Equal(t, []string{reminders.NotificationPrefix + "12345"}, notifier.cleared)

	// Foreign notifications are ignored outright.
	sched.HandleNotificationClick(ctx, "other_999")
	assert.Equal(t, 1, focuser.focused)
	assert.Len(t, notifier.cleared, 1)
}
