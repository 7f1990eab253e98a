package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/proplint/pkg/lint"
	"github.com/gnana997/proplint/pkg/parser"
)

// Watcher re-lints files as they change on disk, with per-file
// debouncing so editor save bursts collapse into one lint.
type Watcher struct {
	watcher *fsnotify.Watcher
	runner  *Runner
	opts    WatchOptions
	logger  *slog.Logger

	// onResult fires after every re-lint; onRemove when a watched file
	// disappears.
	onResult func(*lint.Result)
	onRemove func(path string)

	timers   map[string]*time.Timer
	timersMu sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over a runner. Either callback may be nil.
func NewWatcher(runner *Runner, opts WatchOptions, onResult func(*lint.Result), onRemove func(string), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if opts.DebounceMs == 0 {
		opts.DebounceMs = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  fsw,
		runner:   runner,
		opts:     opts,
		logger:   logger,
		onResult: onResult,
		onRemove: onRemove,
		timers:   make(map[string]*time.Timer),
		stopChan: make(chan struct{}),
	}, nil
}

// Start watches root and all its subdirectories and begins the event
// loop in the background.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.mu.Unlock()

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if w.shouldIgnore(root, path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("setup watches: %w", err)
	}

	w.logger.Info("watching for changes", "root", root)
	go w.eventLoop(root)
	return nil
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timersMu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.timersMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) eventLoop(root string) {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(root, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(root string, event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(root, path) {
		return
	}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if parser.DetectLanguage(path) == parser.LanguageUnknown {
		return
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.debounceLint(path)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.runner.Invalidate(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

// debounceLint schedules a lint after the debounce window; a newer event
// for the same file resets the timer.
func (w *Watcher) debounceLint(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(
		time.Duration(w.opts.DebounceMs)*time.Millisecond,
		func() {
			w.relint(path)
			w.timersMu.Lock()
			delete(w.timers, path)
			w.timersMu.Unlock()
		},
	)
}

func (w *Watcher) relint(path string) {
	w.runner.Invalidate(path)
	res, _, err := w.runner.LintOne(path)
	if err != nil {
		w.logger.Warn("re-lint failed", "file", path, "error", err)
		return
	}
	w.logger.Debug("re-linted", "file", path, "diagnostics", len(res.Diagnostics))
	if w.onResult != nil {
		w.onResult(res)
	}
}

func (w *Watcher) shouldIgnore(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	if matchesAny(w.opts.Exclude, rel) {
		return true
	}
	switch filepath.Base(path) {
	case "node_modules", ".git", "dist", "build", ".next":
		return true
	}
	return false
}
