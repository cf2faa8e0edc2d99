package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps decoded documents in process memory for the current run
type MemoryCache struct {
	docs *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for ttl unless
// Put says otherwise
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		docs: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns the document fetched for url
func (c *MemoryCache) Get(url string) (*Document, bool) {
	v, found := c.docs.Get(CacheKey(url))
	if !found {
		return nil, false
	}
	doc, ok := v.(*Document)
	return doc, ok
}

// Put stores doc under its request URL; ttl 0 uses the cache default
func (c *MemoryCache) Put(doc *Document, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.docs.Set(CacheKey(doc.URL), doc, ttl)
	return nil
}

func (c *MemoryCache) Delete(url string) error {
	c.docs.Delete(CacheKey(url))
	return nil
}

func (c *MemoryCache) Clear() error {
	c.docs.Flush()
	return nil
}

// Len counts stored documents, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.docs.ItemCount()
}
