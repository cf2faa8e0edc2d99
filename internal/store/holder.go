package store

import "sync/atomic"

// Holder publishes the active snapshot. Readers take one snapshot per query;
// Swap replaces it with a single atomic store.
type Holder struct {
	snap atomic.Pointer[Snapshot]
}

// NewHolder creates a holder serving snap
func NewHolder(snap *Snapshot) *Holder {
	h := &Holder{}
	h.snap.Store(snap)
	return h
}

// Current returns the snapshot new queries should use
func (h *Holder) Current() *Snapshot {
	return h.snap.Load()
}

// Swap publishes next and returns the snapshot it replaced
func (h *Holder) Swap(next *Snapshot) *Snapshot {
	return h.snap.Swap(next)
}
