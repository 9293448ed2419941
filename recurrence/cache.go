package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// cacheEntry represents a cached expansion result.
type cacheEntry struct {
	dates      []time.Time
	expiresAt  time.Time
	accessedAt time.Time
}

// ExpansionCache memoizes expansion results per (series, window) pair.
//
// The cache spawns no goroutines: expired entries are dropped when accessed
// and excess entries are evicted inline on Set, keeping the core free of
// background work. Safe for concurrent use.
type ExpansionCache struct {
	entries    map[string]*cacheEntry
	mutex      sync.Mutex
	ttl        time.Duration
	maxEntries int
}

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL        time.Duration // How long entries stay valid
	MaxEntries int           // Maximum number of entries before eviction
}

// DefaultCacheConfig provides sensible defaults for expansion caching.
var DefaultCacheConfig = CacheConfig{
	TTL:        15 * time.Minute,
	MaxEntries: 1000,
}

// NewExpansionCache creates a new expansion cache with the given configuration.
func NewExpansionCache(config CacheConfig) *ExpansionCache {
	return &ExpansionCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
	}
}

// cacheKey hashes every input that influences an expansion result. Each
// field is delimited and the optional end date carries a presence marker,
// so a bounded series can never collide with an open-ended one whose skip
// days happen to line up with the end date.
func cacheKey(series Series, windowStart, windowEnd time.Time) string {
	hasher := sha256.New()

	fmt.Fprintf(hasher, "%s|%d|%d|", series.Rule.Frequency, series.Rule.Interval, series.Rule.MonthlyOrdinal)
	for _, d := range series.Rule.DaysOfWeek {
		fmt.Fprintf(hasher, "%d,", int(d))
	}

	fmt.Fprintf(hasher, "|%s|", series.StartDate.Format(time.RFC3339))
	if series.EndDate != nil {
		fmt.Fprintf(hasher, "until=%s|", series.EndDate.Format(time.RFC3339))
	} else {
		hasher.Write([]byte("open|"))
	}
	for _, d := range series.SkipDays.Dates() {
		fmt.Fprintf(hasher, "skip=%s,", d.Format(time.RFC3339))
	}

	fmt.Fprintf(hasher, "|%s|%s", windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached result if it exists and hasn't expired.
func (c *ExpansionCache) Get(series Series, windowStart, windowEnd time.Time) ([]time.Time, bool) {
	key := cacheKey(series, windowStart, windowEnd)
	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	entry.accessedAt = now
	return entry.dates, true
}

// Set stores an expansion result.
func (c *ExpansionCache) Set(series Series, windowStart, windowEnd time.Time, dates []time.Time) {
	key := cacheKey(series, windowStart, windowEnd)
	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &cacheEntry{
		dates:      dates,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}

	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
}

// evict removes expired entries, then the least recently accessed entries
// until the cache fits maxEntries again. Caller must hold the mutex.
func (c *ExpansionCache) evict(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldestAccess time.Time
		for key, entry := range c.entries {
			if oldestKey == "" || entry.accessedAt.Before(oldestAccess) {
				oldestKey = key
				oldestAccess = entry.accessedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Purge removes every entry.
func (c *ExpansionCache) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Stats returns cache statistics.
func (c *ExpansionCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	expired := 0
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			expired++
		}
	}

	return CacheStats{
		TotalEntries:   len(c.entries),
		ExpiredEntries: expired,
		ActiveEntries:  len(c.entries) - expired,
	}
}

// CacheStats provides information about cache occupancy.
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
