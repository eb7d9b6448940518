// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports batches of file changes under a project root.
package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Ignorer filters root-relative paths.
type Ignorer interface {
	Excluded(rel string, isDir bool) bool
}

// Files in the git directory whose change means history moved.
var gitTriggers = map[string]bool{"HEAD": true, "ORIG_HEAD": true, "FETCH_HEAD": true, "index": true}

// Watcher watches a directory tree recursively and debounces its events.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	ignore    Ignorer
	root      string
	gitDir    string
	logger    *slog.Logger
}

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration
	Ignore   Ignorer
	Logger   *slog.Logger
}

// New registers root and every non-ignored directory beneath it. The repository's .git
// directory is watched shallowly so commits and checkouts are noticed.
func New(root string, opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(opts.Debounce),
		ignore:    opts.Ignore,
		root:      root,
		gitDir:    filepath.Join(root, ".git"),
		logger:    logger,
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == w.gitDir {
			for _, dir := range []string{w.gitDir, w.headsDir()} {
				if watchErr := fsWatcher.Add(dir); watchErr != nil {
					w.logger.Warn("failed to watch git directory", "path", dir, "error", watchErr)
				}
			}
			return filepath.SkipDir
		}
		if path != root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// Events returns the channel of debounced batches.
func (w *Watcher) Events() <-chan []Event {
	return w.debouncer.Output()
}

// Run consumes filesystem events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	switch filepath.Dir(path) {
	case w.gitDir:
		if gitTriggers[filepath.Base(path)] {
			w.debouncer.Add(path, OpWrite)
		}
		return
	case w.headsDir():
		// Branch tips move on every commit; lock files are transient.
		if !strings.HasSuffix(path, ".lock") {
			w.debouncer.Add(path, OpWrite)
		}
		return
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.ignored(path, true) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if w.ignored(path, false) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}
	w.logger.Debug("file changed", "path", path, "op", op)
	w.debouncer.Add(path, op)
}

func (w *Watcher) headsDir() string {
	return filepath.Join(w.gitDir, "refs", "heads")
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.ignore.Excluded(filepath.ToSlash(rel), isDir)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
