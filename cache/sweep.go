package cache

import (
	"context"
	"time"
)

// sweepLoop periodically removes expired entries so views that are written
// once and never read again do not sit in memory until evicted. The sweep
// is a ticker-driven full scan: predictable, and it avoids per-entry
// timers. Correctness does not depend on it; lazy expiry on lookup already
// treats expired entries as absent.
func (c *Cache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.removeExpired(now)
		}
	}
}

// removeExpired drops every entry expired at now, purging tag memberships,
// and returns the number removed.
func (c *Cache) removeExpired(now time.Time) int {
	c.mu.Lock()
	removed := c.store.removeExpired(now)
	for _, e := range removed {
		c.tags.removeEntry(e)
	}
	c.stats.Expirations += uint64(len(removed))
	c.mu.Unlock()

	for _, e := range removed {
		c.rec.Expired(context.Background(), e.key)
	}
	return len(removed)
}
