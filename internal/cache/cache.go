// Package cache keeps fetched documents so repeated scans of the same URL
// skip the network. Memory (go-cache) sits in front of an on-disk layer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Cache stores fetched documents by request URL
type Cache interface {
	Get(url string) (*Document, bool)
	Put(doc *Document, ttl time.Duration) error
	Delete(url string) error
	Clear() error
}

// CacheKey derives the storage key of a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "namecrawler:v1:" + hex.EncodeToString(hash[:])
}

// Document is a fetched source as stored in the cache. Cached documents are
// shared between scans and must not be modified.
type Document struct {
	URL         string    `json:"url"`
	FinalURL    string    `json:"final_url"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// New builds the cache described by cfg; a disabled cache stores nothing
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Noop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Noop is a cache that never holds anything
type Noop struct{}

func (Noop) Get(string) (*Document, bool) { return nil, false }

func (Noop) Put(*Document, time.Duration) error { return nil }

func (Noop) Delete(string) error { return nil }

func (Noop) Clear() error { return nil }
