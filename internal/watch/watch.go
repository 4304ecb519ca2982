// Package watch reports debounced changes to a fixed set of files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/skinlog/internal/logger"
)

const DefaultDebounce = 250 * time.Millisecond

// FileWatcher watches the parent directory of its files so that files
// created after the watch starts (e.g. a sqlite -wal) are still seen.
type FileWatcher struct {
	dir      string
	names    map[string]bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *log.Logger

	mu      sync.Mutex
	pending bool
}

// New watches the given files, which must share a directory.
func New(debounce time.Duration, files ...string) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	dir := filepath.Dir(files[0])
	names := make(map[string]bool, len(files))
	for _, f := range files {
		if filepath.Dir(f) != dir {
			return nil, fmt.Errorf("watched files must share a directory: %s", f)
		}
		names[filepath.Base(f)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &FileWatcher{
		dir:      dir,
		names:    names,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger.With("watch"),
	}, nil
}

// Run calls fn at most once per debounce interval while any watched file
// changes. It blocks until ctx is done and closes the watcher on return.
func (w *FileWatcher) Run(ctx context.Context, fn func()) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if w.takePending() {
				fn()
			}
		}
	}
}

func (w *FileWatcher) handle(event fsnotify.Event) {
	if !w.names[filepath.Base(event.Name)] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()

	w.logger.Debug("file change detected", "path", event.Name, "op", event.Op.String())
}

func (w *FileWatcher) takePending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.pending
	w.pending = false
	return p
}
