package watcher

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher watches a directory for new or updated files and triggers a
// callback once per file after its events settle.
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	match    func(string) bool
	callback func(string)
	timers   map[string]*time.Timer
}

// NewDirWatcher creates a new directory watcher. Events for a single file
// are debounced so a mesh that is still being exported triggers only once.
func NewDirWatcher(debounce time.Duration, logger *slog.Logger) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &DirWatcher{
		watcher:  watcher,
		logger:   logger,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch starts watching dir. match filters file names; callback receives
// the base name of every settled matching file.
func (dw *DirWatcher) Watch(dir string, match func(string) bool, callback func(string)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}

	dw.mu.Lock()
	dw.match = match
	dw.callback = callback
	dw.mu.Unlock()

	if err := dw.watcher.Add(absPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absPath, err)
	}
	return nil
}

// Start begins watching for file changes
func (dw *DirWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-dw.watcher.Events:
				if !ok {
					return
				}

				// Only trigger on write or create events. Files renamed
				// into the directory arrive as create events.
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					dw.handleFileChange(event.Name)
				}

			case err, ok := <-dw.watcher.Errors:
				if !ok {
					return
				}
				dw.logger.Error("watcher error", "error", err)
			}
		}
	}()
}

// handleFileChange handles a file change event with debouncing
func (dw *DirWatcher) handleFileChange(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.match == nil || !dw.match(name) {
		return
	}

	if timer, exists := dw.timers[path]; exists {
		timer.Stop()
	}
	callback := dw.callback
	dw.timers[path] = time.AfterFunc(dw.debounce, func() {
		callback(name)
	})
}

// Close stops the watcher and cancels pending callbacks
func (dw *DirWatcher) Close() error {
	dw.mu.Lock()
	for _, timer := range dw.timers {
		timer.Stop()
	}
	dw.timers = make(map[string]*time.Timer)
	dw.mu.Unlock()

	return dw.watcher.Close()
}
