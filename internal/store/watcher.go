package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle before reloading
const DefaultDebounce = 500 * time.Millisecond

// LoadFunc reads a snapshot from path
type LoadFunc func(ctx context.Context, path string) (*Snapshot, error)

// Watcher reloads the reference database when its file changes and publishes
// the new snapshot through a Holder. A failed reload keeps the previous snapshot.
type Watcher struct {
	path     string
	holder   *Holder
	load     LoadFunc
	debounce time.Duration

	// reloadMu serializes load and swap so a slow load of an older file
	// cannot land after a newer one
	reloadMu sync.Mutex

	mu        sync.Mutex
	timer     *time.Timer
	requested uint64 // generation of the latest reload request
	published uint64 // generation of the snapshot in the holder
	reloads   int
	failed    int
}

// NewWatcher creates a watcher for the database at path
func NewWatcher(path string, holder *Holder) *Watcher {
	return &Watcher{
		path:     path,
		holder:   holder,
		load:     Load,
		debounce: DefaultDebounce,
	}
}

// WithDebounce overrides the settle interval
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// WithLoader overrides how snapshots are read
func (w *Watcher) WithLoader(load LoadFunc) *Watcher {
	w.load = load
	return w
}

// Run watches until ctx is cancelled. The parent directory is watched so
// replace-by-rename updates are seen too.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	target, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	slog.Debug("watching reference database", "path", target)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("reference watcher error", "error", err)
		}
	}
}

// Stats returns how many reloads succeeded and failed
func (w *Watcher) Stats() (reloads, failed int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.failed
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.requested++
	gen := w.requested
	w.timer = time.AfterFunc(w.debounce, func() {
		_ = w.reloadGeneration(ctx, gen)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// reload loads the file once and swaps it in on success
func (w *Watcher) reload(ctx context.Context) error {
	w.mu.Lock()
	w.requested++
	gen := w.requested
	w.mu.Unlock()

	return w.reloadGeneration(ctx, gen)
}

// reloadGeneration loads the file for request gen. A result older than the
// published snapshot is dropped.
func (w *Watcher) reloadGeneration(ctx context.Context, gen uint64) error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	snap, err := w.load(ctx, w.path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.failed++
		slog.Warn("reference reload failed, keeping previous snapshot", "path", w.path, "error", err)
		return err
	}
	if gen < w.published {
		slog.Debug("dropping stale reference reload", "path", w.path, "generation", gen, "published", w.published)
		return nil
	}

	w.holder.Swap(snap)
	w.published = gen
	w.reloads++
	stats := snap.Stats()
	slog.Info("reference database reloaded", "path", w.path, "first_names", stats.FirstNames, "surnames", stats.Surnames)
	return nil
}
