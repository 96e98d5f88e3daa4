// Package infra provides shared infrastructure used across the
// application: the analysis result cache and per-key locking.
package infra

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// ResultCache stores finished analyses keyed by (ticker, days).
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.SentimentReport, bool)
	Set(ctx context.Context, key string, report *models.SentimentReport)
}

// CacheKey builds the cache key for a ticker and window.
func CacheKey(ticker string, days int) string {
	return fmt.Sprintf("sentiment:%s:%d", strings.ToUpper(ticker), days)
}

// --- In-memory cache ---

// CacheEntry holds a cached report with expiration.
type CacheEntry struct {
	Value     *models.SentimentReport
	ExpiresAt time.Time
}

// MemoryCache is a thread-safe in-memory TTL cache. Expired entries are
// removed when a lookup finds them.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached report, evicting it first if it has expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*models.SentimentReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.Value, true
}

// Set stores a report with the cache TTL.
func (c *MemoryCache) Set(_ context.Context, key string, report *models.SentimentReport) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{Value: report, ExpiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cleanup removes expired entries. Can be called periodically.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	now := c.now()
	for k, v := range c.entries {
		if !now.Before(v.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// RunCleanup calls Cleanup every interval until ctx is done. A non-positive
// interval falls back to the cache TTL.
func (c *MemoryCache) RunCleanup(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = c.ttl
	}
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*models.SentimentReport, bool) { return nil, false }
func (NopCache) Set(context.Context, string, *models.SentimentReport)         {}

// --- Keyed locks ---

// KeyedMutex serializes work per key, e.g. storage writes for one ticker.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
