package receipt

import (
	"sync"
	"time"
)

// Verification cache defaults.
const (
	DefaultCacheTTL   = 60 * time.Second
	DefaultCacheLimit = 1000
)

// VerificationCache memoizes successful receipt verifications, keyed by the
// raw token string. Entries live for at most the cache TTL, never beyond the
// receipt's own expiry. Eviction is lazy: when the cache grows past its
// limit, expired entries are swept and, if still over, arbitrary entries are
// dropped.
type VerificationCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	limit   int
}

type cacheEntry struct {
	receipt   *Receipt
	expiresAt time.Time
}

// NewVerificationCache creates a cache with the given TTL and entry limit.
// Zero values select the defaults.
func NewVerificationCache(ttl time.Duration, limit int) *VerificationCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &VerificationCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		limit:   limit,
	}
}

// Get returns the cached receipt for token, or nil when absent or expired.
func (c *VerificationCache) Get(token string) *Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[token]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, token)
		return nil
	}
	return entry.receipt
}

// Put stores a verified receipt. The cache entry expires at the earlier of
// now+TTL and the receipt's own expiry.
func (c *VerificationCache) Put(token string, r *Receipt) {
	expiresAt := time.Now().Add(c.ttl)
	if receiptExpiry := time.Unix(r.ExpiresAt, 0); receiptExpiry.Before(expiresAt) {
		expiresAt = receiptExpiry
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[token] = cacheEntry{receipt: r, expiresAt: expiresAt}
	if len(c.entries) > c.limit {
		c.evictLocked()
	}
}

// Len returns the number of cached entries.
func (c *VerificationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked removes expired entries, then arbitrary ones until the cache
// is back within its limit. Caller holds the lock.
func (c *VerificationCache) evictLocked() {
	now := time.Now()
	for token, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, token)
		}
	}
	for token := range c.entries {
		if len(c.entries) <= c.limit {
			break
		}
		delete(c.entries, token)
	}
}
