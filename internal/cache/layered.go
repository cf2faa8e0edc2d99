package cache

import (
	"log/slog"
	"time"
)

// LayeredCache answers from memory and falls back to documents persisted by
// earlier runs
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates the memory layer in front of dir
func NewLayeredCache(memoryTTL time.Duration, dir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(dir, diskTTL),
	}
}

// Get checks memory, then disk. A disk hit is promoted to memory for no
// longer than the disk entry has left.
func (c *LayeredCache) Get(url string) (*Document, bool) {
	if doc, ok := c.memory.Get(url); ok {
		return doc, true
	}

	doc, remaining, ok := c.disk.lookup(url)
	if !ok {
		return nil, false
	}
	if remaining > 0 {
		_ = c.memory.Put(doc, remaining)
	}
	return doc, true
}

// Put stores doc in both layers. A failed disk write only loses the document
// for later runs, so it is logged.
func (c *LayeredCache) Put(doc *Document, ttl time.Duration) error {
	if err := c.memory.Put(doc, ttl); err != nil {
		return err
	}
	if err := c.disk.Put(doc, ttl); err != nil {
		slog.Warn("disk cache write failed", "url", doc.URL, "error", err)
	}
	return nil
}

func (c *LayeredCache) Delete(url string) error {
	_ = c.memory.Delete(url)
	return c.disk.Delete(url)
}

func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
