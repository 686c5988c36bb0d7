package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/protodoc/protodoc/internal/logfields"
)

// Watcher monitors proto source directories and triggers a rebuild after
// changes settle. Rapid bursts of events collapse into one rebuild.
type Watcher struct {
	roots    []string
	rebuild  func(ctx context.Context) error
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
}

// NewWatcher creates a watcher over the given directories.
func NewWatcher(roots []string, rebuild func(ctx context.Context) error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		roots:    roots,
		rebuild:  rebuild,
		watcher:  fsw,
		debounce: 2 * time.Second,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins monitoring. It returns after the watch loop is running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, root := range w.roots {
		if err := w.watcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		slog.Info("Watching for proto changes", logfields.Path(root))
	}

	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Source change detected", logfields.Path(event.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			slog.Info("Rebuilding after source changes")
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}
