package store

import "context"

// Reload exposes a single reload for tests
func (w *Watcher) Reload(ctx context.Context) error {
	return w.reload(ctx)
}

// Schedule exposes a debounced reload request for tests
func (w *Watcher) Schedule(ctx context.Context) {
	w.schedule(ctx)
}
