package linkverify

import (
	"context"
	"sync"
	"time"
)

// CacheEntry is the last known result for an external URL.
type CacheEntry struct {
	URL             string    `json:"url"`
	Status          int       `json:"status"`
	IsValid         bool      `json:"is_valid"`
	Error           string    `json:"error,omitempty"`
	LastChecked     time.Time `json:"last_checked"`
	FailureCount    int       `json:"failure_count"`
	FirstFailedAt   time.Time `json:"first_failed_at,omitzero"`
	ConsecutiveFail bool      `json:"consecutive_fail"`
}

// Cache stores external link results between builds.
// Get returns (nil, nil) for an unknown URL.
type Cache interface {
	Get(ctx context.Context, url string) (*CacheEntry, error)
	Set(ctx context.Context, entry *CacheEntry) error
}

// Fresh reports whether entry can be reused at now. Failed results expire
// after failureTTL so broken links are retried sooner than healthy ones.
func Fresh(entry *CacheEntry, ttl, failureTTL time.Duration, now time.Time) bool {
	if entry == nil {
		return false
	}
	limit := ttl
	if !entry.IsValid {
		limit = failureTTL
	}
	return now.Sub(entry.LastChecked) < limit
}

// recordFailure carries failure tracking forward from the previous entry.
func recordFailure(entry, previous *CacheEntry, now time.Time) {
	entry.FailureCount = 1
	entry.FirstFailedAt = now
	if previous != nil && !previous.IsValid {
		entry.FailureCount = previous.FailureCount + 1
		if !previous.FirstFailedAt.IsZero() {
			entry.FirstFailedAt = previous.FirstFailedAt
		}
	}
	entry.ConsecutiveFail = true
}

// MemoryCache is a process-local Cache. The zero value is ready to use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]CacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (*CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *MemoryCache) Set(_ context.Context, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]CacheEntry)
	}
	c.entries[entry.URL] = *entry
	return nil
}

// Len returns the number of cached URLs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
