package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"docqa/internal/domain"
)

// QueryCache memoizes retrieval results per (question, topK). Entries are
// tied to the store generation they were computed against, so results from
// a replaced index are never served after a rebuild.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	results   []domain.QueryResult
	timestamp time.Time
	storeGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string, topK int) string {
	data := []byte(question)
	data = append(data, byte(topK>>8), byte(topK))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached results for the question when they are fresh and
// were computed against storeGen.
func (c *QueryCache) Get(question string, topK int, storeGen uint64) ([]domain.QueryResult, bool) {
	key := cacheKey(question, topK)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.storeGen != storeGen {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.results, true
}

func (c *QueryCache) Put(question string, topK int, storeGen uint64, results []domain.QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, topK)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{results: results, timestamp: time.Now(), storeGen: storeGen}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{results: results, timestamp: time.Now(), storeGen: storeGen}
	c.order = append(c.order, key)
}

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
