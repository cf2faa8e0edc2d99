package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache persists fetched documents between runs, one JSON file per URL
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
}

type diskEntry struct {
	Document  *Document `json:"document"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the document stored for url if it has not expired
func (c *DiskCache) Get(url string) (*Document, bool) {
	doc, _, ok := c.lookup(url)
	return doc, ok
}

// lookup also reports how long the entry stays valid
func (c *DiskCache) lookup(url string) (*Document, time.Duration, bool) {
	entry, ok := c.read(c.path(CacheKey(url)))
	if !ok || entry.Document.URL != url {
		return nil, 0, false
	}
	return entry.Document, entry.ExpiresAt.Sub(c.now()), true
}

// read loads an entry, removing files that are expired or unreadable
func (c *DiskCache) read(path string) (diskEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return diskEntry{}, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Document == nil {
		_ = os.Remove(path)
		return diskEntry{}, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		_ = os.Remove(path)
		return diskEntry{}, false
	}
	return entry, true
}

// Put writes doc under a temporary name and renames it into place, so
// concurrent readers never see a partial entry. ttl 0 uses the cache default.
func (c *DiskCache) Put(doc *Document, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(diskEntry{Document: doc, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	path := c.path(CacheKey(doc.URL))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Delete removes the document stored for url; a missing entry is not an error
func (c *DiskCache) Delete(url string) error {
	err := os.Remove(c.path(CacheKey(url)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes the whole cache directory
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Prune deletes expired and unreadable entries and returns how many were removed
func (c *DiskCache) Prune() (int, error) {
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if _, ok := c.read(path); !ok {
			removed++
		}
		return nil
	})
	return removed, err
}

// path shards entries by the first two hex digits of the URL hash
func (c *DiskCache) path(key string) string {
	hash := key[strings.LastIndex(key, ":")+1:]
	shard := "00"
	if len(hash) >= 2 {
		shard = hash[:2]
	}
	return filepath.Join(c.dir, shard, hash+".json")
}
