package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"quickmenu/internal/eventbus"
	"quickmenu/internal/logging"
)

// Watcher reloads the config file when it changes and publishes a
// ChangedEvent. It watches the parent directory because editors usually
// replace the file instead of writing it in place.
type Watcher struct {
	svc      ConfigService
	bus      eventbus.EventBus
	target   string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a watcher for the service's config file
func NewWatcher(svc ConfigService, bus eventbus.EventBus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		svc:      svc,
		bus:      bus,
		target:   filepath.Clean(svc.Path()),
		watcher:  fsw,
		debounce: 150 * time.Millisecond,
	}, nil
}

// Start begins watching. It is a no-op when already running.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.watcher.Add(filepath.Dir(w.target)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher and releases the fsnotify handle
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	err := w.watcher.Close()
	<-done
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Log.WithError(err).Warn("Config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.svc.LoadFromPath(w.target)
	if err != nil {
		logging.Log.WithError(err).WithField("path", w.target).Warn("Ignoring unreadable config change")
		return
	}
	logging.Log.WithField("path", w.target).Info("Config reloaded")
	w.bus.Publish(ChangedEvent{Path: w.target, Config: *cfg})
}
