package inject

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/notaspat/notaspat/pkg/core"
	"github.com/notaspat/notaspat/pkg/notes"
)

const (
	// DefaultLookupTimeout bounds a single note lookup. On expiry the row
	// renders as note-less rather than blocking indefinitely.
	DefaultLookupTimeout = 5 * time.Second
	// DefaultDebounce is the mutation quiet period before a rescan.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultPollAttempts and DefaultPollInterval bound the wait for the
	// result table to appear after page load.
	DefaultPollAttempts = 20
	DefaultPollInterval = 500 * time.Millisecond
)

// Injector keeps note indicators on a page's result rows in sync with the
// store.
type Injector struct {
	page   Page
	store  *notes.Store
	cache  *lookupCache
	logger *slog.Logger

	lookupTimeout time.Duration
	debounce      time.Duration
	pollAttempts  int
	pollInterval  time.Duration

	// pending tracks rows with an in-flight lookup so overlapping rescans
	// never double-process a row.
	pendingMu sync.Mutex
	pending   map[string]struct{}

	// scanning is a re-entrancy guard: a rescan that fires while another is
	// running is dropped, not queued. The finishing scan sees the final DOM
	// state anyway.
	scanning atomic.Bool
}

// Option configures an Injector.
type Option func(*Injector)

// WithLookupTimeout sets the per-row lookup deadline.
func WithLookupTimeout(d time.Duration) Option {
	return func(i *Injector) {
		i.lookupTimeout = d
	}
}

// WithDebounce sets the mutation quiet period.
func WithDebounce(d time.Duration) Option {
	return func(i *Injector) {
		i.debounce = d
	}
}

// WithPollBudget sets how long to poll for the result table.
func WithPollBudget(attempts int, interval time.Duration) Option {
	return func(i *Injector) {
		i.pollAttempts = attempts
		i.pollInterval = interval
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Injector) {
		i.logger = logger
	}
}

// New creates an Injector for one page.
func New(page Page, store *notes.Store, opts ...Option) *Injector {
	inj := &Injector{
		page:          page,
		store:         store,
		cache:         newLookupCache(),
		logger:        slog.Default(),
		lookupTimeout: DefaultLookupTimeout,
		debounce:      DefaultDebounce,
		pollAttempts:  DefaultPollAttempts,
		pollInterval:  DefaultPollInterval,
		pending:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(inj)
	}
	return inj
}

// Run drives the injector until ctx is cancelled: poll for the result table,
// scan it, then keep rescanning on debounced DOM mutations. A page whose
// table never appears within the poll budget is still observed, since the
// host renders results asynchronously.
func (i *Injector) Run(ctx context.Context) {
	if i.waitForTable(ctx) {
		i.Scan(ctx)
	} else {
		i.logger.Debug("result table not found, observing mutations only")
	}

	rescan := newDebouncer(i.debounce, func() {
		i.Scan(ctx)
	})
	defer rescan.Stop()

	mutations := i.page.Mutations(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-mutations:
			if !ok {
				return
			}
			// Attaching indicators mutates the DOM; reacting to our own
			// writes would rescan forever.
			if m.FromInjected {
				continue
			}
			rescan.Arm()
		}
	}
}

// Scan walks every table row once, attaching indicators for protocols that
// have a note. At most one scan runs at a time.
func (i *Injector) Scan(ctx context.Context) {
	if !i.scanning.CompareAndSwap(false, true) {
		return
	}
	defer i.scanning.Store(false)

	for _, table := range i.page.Tables() {
		for _, row := range table.Rows() {
			if ctx.Err() != nil {
				return
			}
			i.processRow(ctx, row)
		}
	}
}

// InvalidateNote drops one protocol from the lookup cache and refreshes any
// row currently showing it. Consume feeds this from storage change events.
func (i *Injector) InvalidateNote(ctx context.Context, protocol string) {
	i.cache.Invalidate(protocol)
	for _, table := range i.page.Tables() {
		for _, row := range table.Rows() {
			if p, ok := ProtocolFromRow(row); ok && p == protocol {
				row.Detach()
				i.processRow(ctx, row)
			}
		}
	}
}

// Consume routes storage change batches into the injector: every changed
// note key is invalidated and any row showing it refreshed. Page hosts run
// this against a Storage.Watch channel; it returns when ctx is cancelled or
// the channel closes. Keys outside the note namespace are ignored.
func (i *Injector) Consume(ctx context.Context, batches <-chan []core.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batches:
			if !ok {
				return
			}
			for _, change := range batch {
				if id, ok := core.NoteID(change.Key); ok {
					i.InvalidateNote(ctx, id)
				}
			}
		}
	}
}

func (i *Injector) processRow(ctx context.Context, row Row) {
	if row.Rendered() {
		return
	}
	protocol, ok := ProtocolFromRow(row)
	if !ok {
		return
	}

	if !i.claim(row.Key()) {
		return
	}
	defer i.release(row.Key())

	// A timed-out or failed lookup is a soft miss: the row renders the
	// note-less affordance instead of blocking, and a change event can
	// refresh it later.
	note, _ := i.lookup(ctx, protocol)

	// The DOM may have changed while we waited on the lookup.
	if row.Rendered() {
		return
	}
	row.Attach(View{Protocol: protocol, Note: note})
}

// lookup resolves a protocol's note through the cache, falling back to the
// store with a deadline. A late store response is discarded rather than
// cached, since by then the page may show different data.
func (i *Injector) lookup(ctx context.Context, protocol string) (*core.Note, bool) {
	if note, ok := i.cache.Get(protocol); ok {
		return note, true
	}

	type result struct {
		note *core.Note
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		note, err := i.store.Get(ctx, protocol)
		ch <- result{note: note, err: err}
	}()

	deadline := time.NewTimer(i.lookupTimeout)
	defer deadline.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			i.logger.Warn("note lookup failed", "protocol", protocol, "error", res.err)
			return nil, false
		}
		i.cache.Put(protocol, res.note)
		return res.note, true
	case <-deadline.C:
		i.logger.Warn("note lookup timed out", "protocol", protocol, "error", core.ErrTimeout)
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

func (i *Injector) claim(key string) bool {
	i.pendingMu.Lock()
	defer i.pendingMu.Unlock()
	if _, busy := i.pending[key]; busy {
		return false
	}
	i.pending[key] = struct{}{}
	return true
}

func (i *Injector) release(key string) {
	i.pendingMu.Lock()
	defer i.pendingMu.Unlock()
	delete(i.pending, key)
}

func (i *Injector) waitForTable(ctx context.Context) bool {
	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()
	for attempt := 0; attempt < i.pollAttempts; attempt++ {
		if len(i.page.Tables()) > 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	return len(i.page.Tables()) > 0
}
