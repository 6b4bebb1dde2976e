package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ledgerfaucet/internal/logging"
)

// Watcher reloads a config file when it changes on disk and hands the new
// value to a callback. The parent directory is watched so that editors that
// replace the file on save are picked up too.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	onChange    func(*Config)
	debounceDur time.Duration
	lastEvent   time.Time
	dirty       bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats counts watcher activity.
type WatcherStats struct {
	Events  int
	Reloads int
	Errors  int
}

// NewWatcher creates a watcher for path. onChange runs on the watcher
// goroutine after every successful reload.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Watcher{
		watcher:     w,
		path:        abs,
		onChange:    onChange,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching in the background.
func (cw *Watcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return nil
	}
	cw.running = true
	cw.mu.Unlock()

	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		cw.mu.Lock()
		cw.running = false
		cw.mu.Unlock()
		return err
	}
	logging.Get(logging.CategoryConfig).Info("watching %s", cw.path)

	go cw.run(ctx)
	return nil
}

// Run watches until ctx is canceled.
func (cw *Watcher) Run(ctx context.Context) error {
	if err := cw.Start(ctx); err != nil {
		cw.Stop()
		return err
	}
	<-ctx.Done()
	cw.Stop()
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (cw *Watcher) Stop() {
	cw.mu.Lock()
	wasRunning := cw.running
	cw.running = false
	cw.mu.Unlock()

	if wasRunning {
		close(cw.stopCh)
		<-cw.doneCh
	}
	if err := cw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryConfig).Error("closing watcher: %v", err)
	}
}

// Stats returns a copy of the counters.
func (cw *Watcher) Stats() WatcherStats {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.stats
}

func (cw *Watcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(event)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryConfig).Error("watch error: %v", err)
			cw.mu.Lock()
			cw.stats.Errors++
			cw.mu.Unlock()

		case <-ticker.C:
			cw.reloadIfSettled()
		}
	}
}

func (cw *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != cw.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	cw.mu.Lock()
	cw.stats.Events++
	cw.lastEvent = time.Now()
	cw.dirty = true
	cw.mu.Unlock()
}

func (cw *Watcher) reloadIfSettled() {
	cw.mu.Lock()
	if !cw.dirty || time.Since(cw.lastEvent) < cw.debounceDur {
		cw.mu.Unlock()
		return
	}
	cw.dirty = false
	cw.mu.Unlock()

	cfg, err := Load(cw.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logging.Get(logging.CategoryConfig).Warn("reload of %s rejected: %v", cw.path, err)
		cw.mu.Lock()
		cw.stats.Errors++
		cw.mu.Unlock()
		return
	}

	cw.mu.Lock()
	cw.stats.Reloads++
	cw.mu.Unlock()

	logging.Get(logging.CategoryConfig).Info("reloaded %s", cw.path)
	if cw.onChange != nil {
		cw.onChange(cfg)
	}
}
