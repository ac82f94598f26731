// Package watch keeps indexes in sync with directories on disk.
//
// File system events are collected per path and flushed after a quiet
// period. Created or written paths are indexed by every handling indexer;
// removed or renamed paths are unindexed.
package watch

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Dispatcher is the part of the controller the watcher drives.
type Dispatcher interface {
	DispatchIndexAll(uri *url.URL) *task.Task[*models.Report]
	Unindex(uri *url.URL)
}

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Ignore lists patterns skipped entirely, e.g. ".git" or "build/**".
	// Nil uses DefaultIgnore.
	Ignore []string
	// OnIndexed is called when an index task for a path finishes.
	OnIndexed func(uri *url.URL, report *models.Report, err error)
	// OnUnindexed is called after a path was unindexed.
	OnUnindexed func(uri *url.URL)
}

// Watcher watches directory trees and dispatches index work.
type Watcher struct {
	dispatcher Dispatcher
	watcher    *fsnotify.Watcher
	opts       Options
	ignore     ignoreMatcher

	mu    sync.RWMutex
	roots []string
}

// New creates a watcher. Call Add for each root, then Run.
func New(d Dispatcher, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	return &Watcher{dispatcher: d, watcher: fw, opts: opts, ignore: newIgnoreMatcher(opts.Ignore)}, nil
}

// Add watches root and every directory below it.
func (w *Watcher) Add(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}
	w.mu.Lock()
	w.roots = append(w.roots, abs)
	w.mu.Unlock()
	return w.watchDirRecursive(abs)
}

// watchDirRecursive adds all subdirectories to the watcher.
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if path != root && w.ignored(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		// We can only watch directories with fsnotify
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// ignored matches path relative to the innermost root containing it.
// Paths outside every root are matched by base name.
func (w *Watcher) ignored(path string) bool {
	rel := filepath.Base(path)
	best := -1
	w.mu.RLock()
	for _, root := range w.roots {
		r, err := filepath.Rel(root, path)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > best {
			best = len(root)
			rel = r
		}
	}
	w.mu.RUnlock()
	return w.ignore.match(filepath.ToSlash(rel))
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	list := w.watcher.WatchList()
	sort.Strings(list)
	return list
}

// Run processes events until ctx ends or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	// Debounce events - many editors create multiple events for a single save
	debounceTimer := time.NewTimer(w.opts.Debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	pending := make(map[string]fsnotify.Op)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchDirRecursive(event.Name); err != nil {
						log.Printf("[watch] %v", err)
					}
				}
			}
			pending[event.Name] = event.Op
			debounceTimer.Reset(w.opts.Debounce)

		case <-debounceTimer.C:
			w.flush(ctx, pending)
			pending = make(map[string]fsnotify.Op)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Log error but continue
			log.Printf("[watch] error: %v", err)
		}
	}
}

// flush dispatches the collected events in path order. Each index-all
// composite holds a pool worker while its children run, so paths are
// indexed one at a time and the next is dispatched only after the previous
// finished. A cancelled ctx stops the remaining paths.
func (w *Watcher) flush(ctx context.Context, pending map[string]fsnotify.Op) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for i, p := range paths {
		op := pending[p]
		uri := plugin.FileURI(p)
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			log.Printf("[watch] unindex %s (%s)", p, strings.ToLower(op.String()))
			w.dispatcher.Unindex(uri)
			if w.opts.OnUnindexed != nil {
				w.opts.OnUnindexed(uri)
			}
			continue
		}
		log.Printf("[watch] index %s (%s)", p, strings.ToLower(op.String()))
		report, err := w.dispatcher.DispatchIndexAll(uri).Wait(ctx)
		if err != nil && ctx.Err() != nil {
			log.Printf("[watch] stopped with %d paths pending", len(paths)-i)
			return
		}
		if err != nil {
			log.Printf("[watch] index %s failed: %v", p, err)
		}
		if w.opts.OnIndexed != nil {
			w.opts.OnIndexed(uri, report, err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
