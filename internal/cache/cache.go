/**
 * @description
 * An in-process key-value cache with per-entry expiry, used to avoid
 * re-querying the persistent store for list endpoints on every request.
 * Keys follow the "{namespace}:{userID}" convention via Key(). The cache is an
 * injectable abstraction (the Store interface) so it can be swapped for a
 * distributed cache without touching callers.
 *
 * Concurrency: safe for concurrent readers and writers under last-write-wins
 * semantics. Entries are idempotently recomputable from the persistent store,
 * so no transactional guarantee is needed.
 */

package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the expiry applied by SetDefault.
const DefaultTTL = 30 * time.Second

// Store is the read-cache contract used by the API layer.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	SetDefault(key string, value interface{})
	Invalidate(keys ...string)
}

// Key builds the conventional "{namespace}:{userID}" cache key.
func Key(namespace, userID string) string {
	return namespace + ":" + userID
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is the in-memory Store implementation.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty TTLCache.
func New() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value if present and not expired. An expired entry is
// evicted and reported absent.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock in case a fresher value landed.
		if current, still := c.entries[key]; still && c.now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the given TTL.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// SetDefault stores a value with DefaultTTL.
func (c *TTLCache) SetDefault(key string, value interface{}) {
	c.Set(key, value, DefaultTTL)
}

// Invalidate removes the given keys immediately, regardless of TTL.
func (c *TTLCache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}
