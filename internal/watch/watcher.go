package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"testafy/pkg/logging"
)

const (
	// DefaultDebounce is the quiet period after the last change before
	// OnChange fires.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultPollInterval is used when fsnotify cannot watch the file.
	DefaultPollInterval = time.Second
)

// Config holds configuration for a FileWatcher.
type Config struct {
	// Path is the file to watch.
	Path string

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// PollInterval is the fallback polling interval when fsnotify is not
	// available.
	PollInterval time.Duration

	// ForcePolling skips fsnotify.
	ForcePolling bool

	// OnChange is called once per burst of changes.
	OnChange func()
}

// FileWatcher reports changes to a single file. It watches the parent
// directory so that editors which save by renaming a temporary file are
// still seen.
type FileWatcher struct {
	mu sync.Mutex

	config Config
	name   string

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool
	polling   bool

	lastModTime time.Time
	lastSize    int64

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewFileWatcher creates a watcher for config.Path. The file must exist.
func NewFileWatcher(config Config) (*FileWatcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("no file to watch")
	}
	abs, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", config.Path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", config.Path, err)
	}
	config.Path = abs

	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	return &FileWatcher{
		config: config,
		name:   filepath.Base(abs),
	}, nil
}

// Start begins watching. It falls back to polling when fsnotify is
// unavailable or cannot watch the directory.
func (w *FileWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	if w.config.ForcePolling {
		w.startPolling()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Watch", "fsnotify not available, falling back to polling: %v", err)
		w.startPolling()
		return nil
	}

	dir := filepath.Dir(w.config.Path)
	if err := watcher.Add(dir); err != nil {
		logging.Warn("Watch", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		watcher.Close()
		w.startPolling()
		return nil
	}
	w.fsWatcher = watcher

	go w.processEvents(watcher.Events, watcher.Errors)

	logging.Info("Watch", "Watching %s for changes", w.config.Path)
	return nil
}

func (w *FileWatcher) startPolling() {
	w.polling = true
	w.lastModTime, w.lastSize = statFile(w.config.Path)
	go w.pollForChanges(w.stopCh)
}

func (w *FileWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Watch", err, "fsnotify error")
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != w.name {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("Watch", "File changed: %s (%s)", event.Name, event.Op)
	w.triggerDebounced()
}

func (w *FileWatcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

func (w *FileWatcher) pollForChanges(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("Watch", "Change to %s detected via polling", w.config.Path)
				w.triggerDebounced()
			}
		}
	}
}

// checkForChanges compares size as well as mtime, since coarse filesystem
// timestamps can hide a quick rewrite.
func (w *FileWatcher) checkForChanges() bool {
	modTime, size := statFile(w.config.Path)
	if modTime.IsZero() {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	changed := !modTime.Equal(w.lastModTime) || size != w.lastSize
	w.lastModTime, w.lastSize = modTime, size
	return changed
}

func statFile(path string) (time.Time, int64) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, 0
	}
	return info.ModTime(), info.Size()
}

// Stop stops the watcher. Pending debounced callbacks are dropped.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Watch", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Debug("Watch", "Stopped watching %s", w.config.Path)
	return nil
}

// IsRunning returns whether the watcher is active.
func (w *FileWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// IsPolling reports whether the watcher fell back to polling.
func (w *FileWatcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Loop calls fn once immediately and again after every change to the
// watched file, until ctx is done. Calls never overlap: changes seen while
// fn runs are collapsed into a single follow-up call.
func Loop(ctx context.Context, config Config, fn func(ctx context.Context)) error {
	pending := make(chan struct{}, 1)
	config.OnChange = func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	w, err := NewFileWatcher(config)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx)
		}
	}
}
