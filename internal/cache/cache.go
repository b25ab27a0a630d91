// Package cache provides the in-process TTL cache used for sub-resource
// lookups (player stats, rosters, team info, matchup aggregates).
//
// Entries are not persisted: everything in here can be rebuilt from the
// durable daily store or a live fetch, so a restart simply starts cold.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry struct {
	value     interface{}
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a mutex-guarded map of string keys to values with expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	log     zerolog.Logger
}

// New creates an empty cache.
func New(log zerolog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
		log:     log.With().Str("component", "cache").Logger(),
	}
}

// NewWithNow creates a cache with an injected time source, for tests.
func NewWithNow(log zerolog.Logger, now func() time.Time) *Cache {
	c := New(log)
	c.now = now
	return c
}

// Get returns the value for key if present and not expired.
// An expired entry is evicted on the spot and reported as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// refreshed the entry between the two lock acquisitions.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Put inserts or overwrites the value for key with the given TTL.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// Clear evicts every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.log.Info().Int("evicted", n).Msg("Cache cleared")
}

// ClearPrefix evicts all entries whose key starts with prefix and
// returns the number evicted.
func (c *Cache) ClearPrefix(prefix string) int {
	c.mu.Lock()
	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	c.mu.Unlock()

	c.log.Info().Str("prefix", prefix).Int("evicted", n).Msg("Cache prefix cleared")
	return n
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
