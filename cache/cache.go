// Package cache provides the process-wide memoization store shared by the
// upstream API clients. Entries are keyed by (entity id, credential) and
// bounded by TTL plus a max-entry cap so a long-lived process cannot grow
// without limit.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Cache struct {
	entries    sync.Map // key → *entry
	ttl        time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	value     any
	expiresAt time.Time
}

func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{ttl: ttl, maxEntries: maxEntries}
}

// Key builds a deterministic cache key from parts. Credentials are part of
// the key, hashing keeps them out of memory dumps and log lines.
func Key(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("ys:%x", hash[:12])
}

func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	e := val.(*entry)
	if time.Now().After(e.expiresAt) {
		c.entries.Delete(key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.evictIfNeeded()
	c.entries.Store(key, &entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Stats returns cumulative hit/miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len counts live entries, expired ones included until swept.
func (c *Cache) Len() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// evictIfNeeded removes entries when the store exceeds maxEntries.
// Expired entries go first, then the oldest until under the cap.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := c.Len()
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.entries.Range(func(key, val any) bool {
		if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
			c.entries.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.entries.Range(func(key, val any) bool {
			if e, ok := val.(*entry); ok && e.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = e.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.entries.Delete(oldestKey)
		count--
	}
}
