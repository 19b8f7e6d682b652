package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watcher watches the config file's directory and invokes a callback when
// the file changes. Editors replace files by rename, so the directory is
// watched rather than the file itself.
type Watcher struct {
	path     string
	callback func()
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the given config path. Start must be
// called before any callbacks fire.
func NewWatcher(path string, logger *slog.Logger, callback func()) *Watcher {
	return &Watcher{
		path:     path,
		callback: callback,
		logger:   logger,
	}
}

// Start begins watching. It is an error to start a running watcher.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}

	w.watcher = fw
	w.done = make(chan struct{})
	go w.loop(fw, w.done)

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// Stop shuts the watcher down. Safe to call when not running.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return
	}
	w.watcher.Close()
	<-w.done
	w.watcher = nil
	w.logger.Debug("config watcher stopped")
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watcher != nil
}

// loop collapses bursts of filesystem events into one callback per
// debounce window. Editors commonly emit several writes per save.
func (w *Watcher) loop(fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.logger.Debug("config file changed", "path", w.path)
			w.callback()
		case err, ok := <-fw.Errors:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
