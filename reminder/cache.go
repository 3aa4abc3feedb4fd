package reminder

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cyp0633/calrecur/event"
)

type cacheEntry[V any] struct {
	value      V
	expiresAt  time.Time
	accessedAt time.Time
}

// ContextCache holds provider answers (weather, traffic) for a limited time
type ContextCache[V any] struct {
	entries         map[string]*cacheEntry[V]
	mutex           sync.Mutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	closed          bool
	now             func() time.Time
}

// CacheConfig holds configuration for a context cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before eviction
	CleanupInterval time.Duration // How often to purge expired entries, 0 disables the loop
}

// DefaultCacheConfig keeps answers for 15 minutes
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 0,
}

// NewContextCache creates a cache. A background cleanup goroutine is only
// started when config.CleanupInterval is positive; call Close to stop it.
func NewContextCache[V any](config CacheConfig) *ContextCache[V] {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}

	cache := &ContextCache[V]{
		entries:         make(map[string]*cacheEntry[V]),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	if cache.cleanupInterval > 0 {
		go cache.cleanupLoop()
	}

	return cache
}

// Get returns the cached value for key unless it has expired.
func (c *ContextCache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	entry, exists := c.entries[key]
	if !exists {
		return zero, false
	}

	now := c.now()
	if now.After(entry.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}

	entry.accessedAt = now
	return entry.value, true
}

// Set stores value under key. It does nothing once the cache is closed.
func (c *ContextCache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}

	now := c.now()
	c.entries[key] = &cacheEntry[V]{
		value:      value,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}

	if len(c.entries) > c.maxEntries {
		c.cleanup(now)
	}
}

// ClearOldCache drops expired entries and returns how many were removed.
func (c *ContextCache[V]) ClearOldCache() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.purgeExpired(c.now())
}

func (c *ContextCache[V]) purgeExpired(now time.Time) int {
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// cleanup removes expired entries, then the least recently used ones until
// the cache fits maxEntries. Caller holds the lock.
func (c *ContextCache[V]) cleanup(now time.Time) {
	c.purgeExpired(now)

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].accessedAt.Before(c.entries[keys[j]].accessedAt)
	})

	for _, key := range keys[:len(c.entries)-c.maxEntries] {
		delete(c.entries, key)
	}
}

func (c *ContextCache[V]) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.ClearOldCache()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache. Later Set calls
// are ignored. It is safe to call more than once.
func (c *ContextCache[V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry[V])
	c.closed = true
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *ContextCache[V]) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
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

// CacheStats provides information about cache occupancy
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

// LocationKey keys weather lookups. Coordinates are rounded to about 100m
// so nearby requests share an entry.
func LocationKey(p event.GeoPoint) string {
	return fmt.Sprintf("weather:%.3f,%.3f", p.Latitude, p.Longitude)
}

// RouteKey keys traffic lookups by origin, destination and departure slot.
// Departures are bucketed by the cache TTL granularity of 15 minutes.
func RouteKey(from, to event.GeoPoint, departAt time.Time) string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%.4f,%.4f|", from.Latitude, from.Longitude)
	fmt.Fprintf(hasher, "%.4f,%.4f|", to.Latitude, to.Longitude)
	hasher.Write([]byte(departAt.UTC().Truncate(15 * time.Minute).Format(time.RFC3339)))
	return fmt.Sprintf("traffic:%x", hasher.Sum(nil))
}
