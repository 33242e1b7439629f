// Package myvariant provides a client for the MyVariant.info variant API
// with a persistent response cache.
package myvariant

import (
	"encoding/json"
	"sync"
)

// Cache memoizes MyVariant responses keyed by HGVS query string. There is no
// eviction; the cache only grows. Implementations must tolerate "null"
// payloads, which record a variant the service did not know.
type Cache interface {
	Get(key string) (json.RawMessage, bool, error)
	Put(key string, payload json.RawMessage) error
}

// MemoryCache is an in-memory Cache, primarily for tests and one-shot runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]json.RawMessage
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]json.RawMessage)}
}

func (c *MemoryCache) Get(key string) (json.RawMessage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *MemoryCache) Put(key string, payload json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}
