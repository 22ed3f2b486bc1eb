// Package watcher detects configuration drift: it watches the managed host
// configuration files and reports when something other than systune rewrites
// them.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// Watcher watches a fixed set of files for modification.
type Watcher struct {
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	files   map[string]bool
	closed  bool
}

// New creates a Watcher for the given files. Editors and atomic writers
// replace files by rename, which drops a watch on the file itself, so the
// parent directories are watched and events are filtered by name.
func New(files []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		files:   make(map[string]bool),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run blocks, delivering change notifications for the watched files to
// onChange until the context is cancelled.
func (w *Watcher) Run(ctx context.Context, onChange func(path string, op fsnotify.Op)) {
	logger := logging.Get("watch")

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.watched(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Warn("managed file changed outside systune",
				"file", event.Name, "op", event.Op.String())
			if onChange != nil {
				onChange(event.Name, event.Op)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// watched reports whether path is one of the managed files.
func (w *Watcher) watched(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
