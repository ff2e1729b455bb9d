package agent

import (
	"sync"
	"time"
)

// sweepInterval is how many cache accesses pass between expiry sweeps.
const sweepInterval = 100

// ReceiptCache stores receipt tokens by content id so paid resources can be
// re-fetched without paying again. Expired entries are swept lazily every
// sweepInterval accesses.
type ReceiptCache struct {
	mu       sync.Mutex
	entries  map[string]receiptEntry
	accesses int
}

type receiptEntry struct {
	token     string
	expiresAt time.Time
}

// NewReceiptCache creates an empty cache.
func NewReceiptCache() *ReceiptCache {
	return &ReceiptCache{entries: make(map[string]receiptEntry)}
}

// Get returns the cached token for contentID, or "" when absent or expired.
func (c *ReceiptCache) Get(contentID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeSweepLocked()

	entry, ok := c.entries[contentID]
	if !ok {
		return ""
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, contentID)
		return ""
	}
	return entry.token
}

// Set stores a token for contentID until expiresAt.
func (c *ReceiptCache) Set(contentID, token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeSweepLocked()
	c.entries[contentID] = receiptEntry{token: token, expiresAt: expiresAt}
}

// Evict removes the entry for contentID, if any.
func (c *ReceiptCache) Evict(contentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, contentID)
}

// Size returns the number of live entries after sweeping expired ones.
func (c *ReceiptCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.entries)
}

// Keys returns the content ids of live entries after sweeping expired ones.
func (c *ReceiptCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *ReceiptCache) maybeSweepLocked() {
	c.accesses++
	if c.accesses >= sweepInterval {
		c.accesses = 0
		c.sweepLocked()
	}
}

func (c *ReceiptCache) sweepLocked() {
	now := time.Now()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}
