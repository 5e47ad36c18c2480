package cache

import (
	"fmt"
	"sync"
	"time"

	"docqa/internal/domain"
)

// QueryCache caches retrieval results keyed by exact query text and k.
// Entries expire after the TTL and die wholesale when the index generation
// changes, so a cached result never outlives the index it came from.
type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
}

type cacheEntry struct {
	results   []domain.RetrievedChunk
	timestamp time.Time
	indexGen  uint64
}

// NewQueryCache creates a cache. Non-positive arguments fall back to
// 100 entries / 1 hour.
func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Exact text match, not semantic similarity: "what is revenue" and
// "what is revenue?" are different keys.
func cacheKey(query string, k int) string {
	return fmt.Sprintf("%d:%s", k, query)
}

// Get returns the cached results for the identical query text, if present
// and fresh. Lookup, expiry, and the LRU touch happen under one lock so a
// concurrent expiry can never leave a ghost slot in the order list.
func (c *QueryCache) Get(query string, k int) ([]domain.RetrievedChunk, bool) {
	key := cacheKey(query, k)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return entry.results, true
}

// Generation returns the current index generation. Callers capture it
// while the index they queried is pinned and hand it back to Put.
func (c *QueryCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexGen
}

// Put stores results computed against the given generation, evicting the
// least recently used entry at capacity. Results from a superseded
// generation are stored but never served; Get rejects them on sight.
func (c *QueryCache) Put(query string, k int, gen uint64, results []domain.RetrievedChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, k)
	entry := &cacheEntry{
		results:   results,
		timestamp: time.Now(),
		indexGen:  gen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Invalidate clears all entries and bumps the index generation.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

// Size returns the current number of live entries.
func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
