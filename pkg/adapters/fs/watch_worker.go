package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

// externalDebounce coalesces the event bursts editors and atomic renames
// produce for a single key.
const externalDebounce = 50 * time.Millisecond

// watchWorker tails the storage directory with fsnotify and reconciles keys
// touched by other processes.
type watchWorker struct {
	*worker.BaseWorker
	store   *Store
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newWatchWorker(store *Store) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-external-watch"),
		store:      store,
		timers:     make(map[string]*time.Timer),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.store.path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch storage directory: %w", err)
	}
	w.watcher = watcher

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// scheduleReconcile (re)arms the per-key debounce timer.
func (w *watchWorker) scheduleReconcile(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[key]; ok {
		t.Stop()
	}
	w.timers[key] = time.AfterFunc(externalDebounce, func() {
		w.mu.Lock()
		delete(w.timers, key)
		w.mu.Unlock()
		w.store.reconcileKey(key)
	})
}

func (w *watchWorker) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for key, t := range w.timers {
		t.Stop()
		delete(w.timers, key)
	}
}

func (w *watchWorker) run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			key, valid := keyFromFile(filepath.Base(event.Name))
			if !valid {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.store.logger.Debug("external storage event", "key", key, "op", event.Op.String())
			w.scheduleReconcile(key)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.logger.Error("fsnotify error", "error", wErr)
		}
	}
}
