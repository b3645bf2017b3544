package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// SeriesKey identifies one built snapshot series. The deterministic hash key
// keeps cache writes idempotent: the same parameters always map to the same
// entry.
func SeriesKey(symbol, timeframe string, windowDays int, lastBar time.Time) string {
	data := fmt.Sprintf("%s|%s|%d|%d", symbol, timeframe, windowDays, lastBar.Unix())
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

// SeriesCache caches built snapshot series for the corpus iterator. It is an
// explicit handle passed by reference, never module-level state; callers that
// want no caching simply pass nil.
type SeriesCache struct {
	mu      sync.RWMutex
	entries map[string][]*model.StateSnapshot
}

// NewSeriesCache creates an empty cache
func NewSeriesCache() *SeriesCache {
	return &SeriesCache{entries: make(map[string][]*model.StateSnapshot)}
}

// Get returns the cached series for a key, if present
func (c *SeriesCache) Get(key string) ([]*model.StateSnapshot, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	series, ok := c.entries[key]
	return series, ok
}

// Put stores a built series under a key
func (c *SeriesCache) Put(key string, series []*model.StateSnapshot) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = series
}

// Len returns the number of cached series
func (c *SeriesCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
