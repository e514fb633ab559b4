package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultRefDebounce coalesces bursts of ref writes (fetch, rebase) into one event.
const DefaultRefDebounce = 250 * time.Millisecond

// RefWatcher reports when the branch set of a local repository may have changed.
// Not restart-safe: once Stop is called, create a new instance.
type RefWatcher struct {
	gitDir        string
	debounce      time.Duration
	includeRemote bool
	watcher       *fsnotify.Watcher
	events        chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewRefWatcher creates a watcher for the repository at repoPath.
func NewRefWatcher(repoPath string, debounce time.Duration) (*RefWatcher, error) {
	gitDir := filepath.Join(repoPath, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		return nil, fmt.Errorf("cannot watch refs: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot watch refs: %s is not a directory", gitDir)
	}
	if debounce <= 0 {
		debounce = DefaultRefDebounce
	}

	return &RefWatcher{
		gitDir:   gitDir,
		debounce: debounce,
		events:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}, nil
}

// SetIncludeRemote also reports changes under refs/remotes. Call before Start.
func (w *RefWatcher) SetIncludeRemote(include bool) {
	w.includeRemote = include
}

// Events delivers one value per debounced burst of ref changes.
// The channel is closed when the watcher stops.
func (w *RefWatcher) Events() <-chan struct{} {
	return w.events
}

// Start begins watching. It returns once the watches are registered.
func (w *RefWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// The git dir covers HEAD and packed-refs. Loose refs live in nested dirs.
	if err := watcher.Add(w.gitDir); err != nil {
		watcher.Close()
		return fmt.Errorf("cannot watch %s: %w", w.gitDir, err)
	}
	for _, root := range w.refRoots() {
		if err := addTree(watcher, root); err != nil {
			watcher.Close()
			return err
		}
	}
	w.watcher = watcher

	go w.loop(ctx)
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *RefWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *RefWatcher) refRoots() []string {
	roots := []string{filepath.Join(w.gitDir, "refs", "heads")}
	if w.includeRemote {
		roots = append(roots, filepath.Join(w.gitDir, "refs", "remotes"))
	}
	return roots
}

// addTree watches root and every directory below it. A missing root is skipped.
func addTree(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("cannot watch %s: %w", path, err)
		}
		return nil
	})
	return err
}

// loop owns the events channel: it is the only sender and closes it on exit.
func (w *RefWatcher) loop(ctx context.Context) {
	defer close(w.events)
	defer w.watcher.Close()

	debounce := time.NewTimer(w.debounce)
	debounce.Stop()
	defer debounce.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 && w.underRefRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w.watcher, event.Name); err != nil {
						slog.Warn("ref watcher cannot follow new directory", "dir", event.Name, "err", err)
					}
				}
			}
			if !isRefEvent(w.gitDir, event, w.includeRemote) {
				continue
			}

			debounce.Stop()
			debounce.Reset(w.debounce)
			pending = debounce.C

		case <-pending:
			pending = nil
			select {
			case w.events <- struct{}{}:
			default:
				// A pending event already covers this change
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("ref watcher error", "git_dir", w.gitDir, "err", err)
		}
	}
}

func (w *RefWatcher) underRefRoot(path string) bool {
	for _, root := range w.refRoots() {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// isRefEvent filters out lock files and git dir churn unrelated to branches.
func isRefEvent(gitDir string, event fsnotify.Event, includeRemote bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasSuffix(event.Name, ".lock") {
		return false
	}

	rel, err := filepath.Rel(gitDir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == "HEAD", rel == "packed-refs", strings.HasPrefix(rel, "refs/heads/"):
		return true
	case includeRemote:
		return strings.HasPrefix(rel, "refs/remotes/")
	}
	return false
}
