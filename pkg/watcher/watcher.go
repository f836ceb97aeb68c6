// Package watcher reports changes to a fixed set of files, such as the
// manifest and settings files behind "hookcfg validate --watch".
package watcher

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/hookcfg/logging"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls onChange once a burst of events on a watched file has been
// quiet for the debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]string // event path -> path reported to onChange
	debounce time.Duration
	onChange func(path string)
	logger   *logrus.Entry

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]bool

	// flushMu keeps onChange calls from overlapping.
	flushMu sync.Mutex
}

// New watches the parent directory of every path, since editors and
// manifest.Save replace files by rename. Symlinked files are watched at
// their target as well.
func New(paths []string, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("watcher")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fsw,
		files:    make(map[string]string),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		pending:  make(map[string]bool),
	}

	watchedDirs := make(map[string]bool)
	addDir := func(dir string) error {
		if watchedDirs[dir] {
			return nil
		}
		if err := fsw.Add(dir); err != nil {
			return err
		}
		watchedDirs[dir] = true
		logger.Debugf("Watching directory: %s", dir)
		return nil
	}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = abs
		if err := addDir(filepath.Dir(abs)); err != nil {
			fsw.Close()
			return nil, err
		}

		if target, err := filepath.EvalSymlinks(abs); err == nil && target != abs {
			w.files[target] = abs
			if err := addDir(filepath.Dir(target)); err != nil {
				logger.WithError(err).Warnf("Failed to watch symlink target dir %s", filepath.Dir(target))
			}
		}
	}

	return w, nil
}

// Start processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if reported, ok := w.files[filepath.Clean(event.Name)]; ok {
				w.handleChange(reported)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			w.watcher.Close()
			return
		}
	}
}

// handleChange restarts the debounce timer for file.
func (w *Watcher) handleChange(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[file] = true
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) flush() {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	files := make([]string, 0, len(w.pending))
	for file := range w.pending {
		files = append(files, file)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(files)
	for _, file := range files {
		w.logger.Infof("File changed: %s", filepath.Base(file))
		if w.onChange != nil {
			w.onChange(file)
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
