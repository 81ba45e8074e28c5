// Package watch turns filesystem activity on Python files into document
// lifecycle changes.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/radonlens/pkg/config"
	"github.com/panbanda/radonlens/pkg/document"
)

// ChangeKind is the lifecycle meaning of a filesystem change.
type ChangeKind int

const (
	// Opened is a Python file that appeared.
	Opened ChangeKind = iota
	// Saved is a known file whose content changed.
	Saved
	// Closed is a known file that disappeared.
	Closed
)

func (k ChangeKind) String() string {
	switch k {
	case Opened:
		return "opened"
	case Saved:
		return "saved"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Change is one debounced lifecycle change. Content is empty for Closed.
type Change struct {
	Kind    ChangeKind
	Path    string
	Content string
}

// IsPython reports whether path names a Python source file.
func IsPython(path string) bool {
	return filepath.Ext(path) == ".py"
}

// Watcher monitors a directory tree and reports lifecycle changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	ignore    *ignorer
	debounce  time.Duration
	path      string
	callback  func(Change)
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	hashes  map[string]string
}

// NewWatcher creates a new file watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		ignore:    newIgnorer(abs, cfg.Watch.Gitignore, nil),
		debounce:  debounce,
		path:      abs,
		logger:    slog.New(slog.DiscardHandler),
		pending:   make(map[string]time.Time),
		hashes:    make(map[string]string),
	}, nil
}

// SetCallback sets the function to call for each lifecycle change.
func (w *Watcher) SetCallback(cb func(Change)) {
	w.callback = cb
}

// SetLogger sets the watcher logger.
func (w *Watcher) SetLogger(l *slog.Logger) {
	w.logger = l
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.path
}

func (w *Watcher) excludedDir(path string, name string) bool {
	if path == w.path {
		return false
	}
	for _, excluded := range w.config.Watch.Dirs {
		if name == excluded {
			return true
		}
	}
	return w.ignore.Ignored(path, true)
}

func (w *Watcher) excludedFile(path string) bool {
	return !IsPython(path) || w.config.ShouldExclude(path) || w.ignore.Ignored(path, false)
}

// Seed walks the tree, registers every directory with fsnotify and records
// the content hash of every Python file without reporting it. It returns
// the files found, sorted.
func (w *Watcher) Seed() ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.excludedDir(path, d.Name()) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if w.excludedFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		w.mu.Lock()
		w.hashes[path] = document.HashBytes(data)
		w.mu.Unlock()
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// Start seeds the watcher if needed and processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if len(w.fsWatcher.WatchList()) == 0 {
		if _, err := w.Seed(); err != nil {
			return err
		}
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent processes a filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excludedDir(path, info.Name()) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("cannot watch directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if w.excludedFile(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processDebounced processes pending changes after debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	tick := w.debounce / 5
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	if tick < 5*time.Millisecond {
		tick = 5 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range w.processPending(time.Now()) {
				if w.callback != nil {
					w.callback(c)
				}
			}
		}
	}
}

// processPending classifies files that have been stable for the debounce period.
func (w *Watcher) processPending(now time.Time) []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	changes := make([]Change, 0, len(ready))
	for _, path := range ready {
		delete(w.pending, path)
		if c, ok := w.classify(path); ok {
			changes = append(changes, c)
		}
	}
	return changes
}

// classify compares the file on disk with the last seen hash. Callers hold w.mu.
func (w *Watcher) classify(path string) (Change, bool) {
	prev, known := w.hashes[path]

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("cannot read changed file", "path", path, "error", err)
			return Change{}, false
		}
		if !known {
			return Change{}, false
		}
		delete(w.hashes, path)
		return Change{Kind: Closed, Path: path}, true
	}

	hash := document.HashBytes(data)
	w.hashes[path] = hash
	switch {
	case !known:
		return Change{Kind: Opened, Path: path, Content: string(data)}, true
	case hash != prev:
		return Change{Kind: Saved, Path: path, Content: string(data)}, true
	default:
		return Change{}, false
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the list of watched directories.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
