package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// defaultIgnoreSubstrings are the path-component substrings ignored by a
// Watcher unless overridden.
var defaultIgnoreSubstrings = []string{"node_modules", ".git", ".neex", "dist", ".next", "target"}

// ChangeKind classifies a single filesystem event.
type ChangeKind int

const (
	Create ChangeKind = iota
	Modify
	Delete
)

// FileChange is one classified filesystem event, as returned by Poll.
type FileChange struct {
	Path string
	Kind ChangeKind
}

// Watcher wraps fsnotify with recursive directory watching and
// substring-based ignore filtering, draining events non-blockingly via
// Poll rather than a push/callback model — the daemon's IPC loop pulls a
// batch once per 100ms tick instead of reacting to each event as it
// arrives.
type Watcher struct {
	logger  hclog.Logger
	ignores []string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a Watcher rooted at root, watching it and every subdirectory
// recursively except those matched by ignoreSubstrings (defaultIgnoreSubstrings
// if nil).
func New(root string, ignoreSubstrings []string, logger hclog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if ignoreSubstrings == nil {
		ignoreSubstrings = defaultIgnoreSubstrings
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating filesystem watcher")
	}

	w := &Watcher{logger: logger, ignores: ignoreSubstrings, watcher: fsw}
	if err := w.watchRecursively(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// isIgnored reports whether any component of path contains any configured
// ignore substring.
func (w *Watcher) isIgnored(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, ignore := range w.ignores {
			if strings.Contains(part, ignore) {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) watchRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if w.isIgnored(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

// onCreate papers over fsnotify backends that don't automatically watch
// new directories: any newly created directory gets its own recursive
// watch added, idempotently.
func (w *Watcher) onCreate(path string) {
	info, err := os.Lstat(path)
	if err != nil {
		return // raced with a subsequent removal; ignore
	}
	if info.IsDir() {
		if err := w.watchRecursively(path); err != nil {
			w.logger.Warn("failed recursive watch of new directory", "path", path, "error", err)
		}
	}
}

// Poll drains every currently-available fsnotify event non-blockingly and
// returns the classified, non-ignored results. It never blocks: once both
// channels report no ready event, it returns what it has collected so far.
func (w *Watcher) Poll() []FileChange {
	var changes []FileChange
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return changes
			}
			if w.isIgnored(ev.Name) {
				continue
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				w.onCreate(ev.Name)
				changes = append(changes, FileChange{Path: ev.Name, Kind: Create})
			case ev.Op&fsnotify.Write != 0:
				changes = append(changes, FileChange{Path: ev.Name, Kind: Modify})
			case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
				changes = append(changes, FileChange{Path: ev.Name, Kind: Delete})
			default:
				w.logger.Debug("dropping unclassified filesystem event", "path", ev.Name, "op", ev.Op.String())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return changes
			}
			w.logger.Warn("filesystem watcher error", "error", err)
		default:
			return changes
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watcher.Close()
}
