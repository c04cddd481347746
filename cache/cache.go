package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Options controls how a value is cached.
type Options struct {
	// TTL is how long the value stays valid. Must be positive.
	TTL time.Duration

	// Tags are the invalidation groups the entry joins. A write path that
	// touches an entity invalidates every entry tagged with it.
	Tags []string
}

// Producer computes a view on a cache miss.
type Producer func(ctx context.Context) (any, error)

// Cache is a bounded in-memory read-through cache with LRU eviction,
// per-entry TTLs, tag-based invalidation, and single-flight protection
// against duplicate concurrent computation of the same key.
//
// Contract:
// - Concurrency: safe for concurrent use from any number of goroutines.
// - Blocking: only GetOrSet may block, and only while its producer runs.
// - Errors: producer errors are propagated unchanged and never cached.
type Cache struct {
	mu     sync.Mutex
	store  *lruStore
	tags   *tagIndex
	stats  Stats
	closed bool

	flight *flightGroup
	rec    Recorder

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a cache from cfg. Capacity must be positive; a capacity of
// one is valid and evicts on every new insert.
func New(cfg Config) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}

	c := &Cache{
		store:  newLRUStore(cfg.Capacity),
		tags:   newTagIndex(),
		flight: newFlightGroup(),
		rec:    rec,
		done:   make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		c.wg.Add(1)
		go c.sweepLoop(cfg.SweepInterval)
	}

	return c, nil
}

// Get retrieves a cached value. Returns (nil, false) on miss or expiry.
// A hit promotes the entry to most-recently-used; a lookup that discovers
// an expired entry removes it and purges its tag memberships.
func (c *Cache) Get(ctx context.Context, key string) (any, bool) {
	return c.lookup(ctx, key, true)
}

// lookup is Get with control over miss accounting, so the re-check inside
// a single-flight run does not count the same miss twice.
func (c *Cache) lookup(ctx context.Context, key string, countMiss bool) (any, bool) {
	now := time.Now()

	c.mu.Lock()
	live, stale := c.store.get(key, now)
	if stale != nil {
		c.tags.removeEntry(stale)
		c.stats.Expirations++
	}
	if live == nil {
		if countMiss {
			c.stats.Misses++
		}
		c.mu.Unlock()
		if stale != nil {
			c.rec.Expired(ctx, key)
		}
		if countMiss {
			c.rec.Miss(ctx, key)
		}
		return nil, false
	}
	c.stats.Hits++
	v := live.value
	c.mu.Unlock()

	c.rec.Hit(ctx, key)
	return v, true
}

// Set stores value under key for opts.TTL and registers its tags. A TTL of
// zero or less is rejected: nothing may be cached forever by omission.
// Replacing an existing entry purges its previous tag memberships, and an
// insert that displaces the LRU entry purges the victim's tags as well.
func (c *Cache) Set(ctx context.Context, key string, value any, opts Options) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if opts.TTL <= 0 {
		return ErrInvalidTTL
	}

	now := time.Now()
	e := &entry{
		key:       key,
		value:     value,
		tags:      append([]string(nil), opts.Tags...),
		expiresAt: now.Add(opts.TTL),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	replaced, evicted := c.store.put(e)
	if replaced != nil {
		c.tags.removeEntry(replaced)
	}
	if evicted != nil {
		c.tags.removeEntry(evicted)
		c.stats.Evictions++
	}
	c.tags.addEntry(e)
	c.mu.Unlock()

	if evicted != nil {
		c.rec.Evicted(ctx, evicted.key)
	}
	return nil
}

// GetOrSet returns the cached value for key, computing and caching it via
// producer on a miss. Concurrent callers missing on the same key share one
// producer run and one result; a producer failure reaches every waiter
// unchanged and leaves nothing cached, so the next call starts fresh.
//
// A hit returns immediately without engaging the single-flight path.
//
// Known race, accepted by design: a producer already in flight when an
// invalidation removes its key will still store its result on completion,
// possibly re-caching data computed before the invalidation.
func (c *Cache) GetOrSet(ctx context.Context, key string, producer Producer, opts Options) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if opts.TTL <= 0 {
		return nil, ErrInvalidTTL
	}

	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	v, shared, err := c.flight.do(key, func() (any, error) {
		// A flight that finished between our miss and this run may have
		// cached the value already; don't compute it again.
		if v, ok := c.lookup(ctx, key, false); ok {
			return v, nil
		}
		v, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, v, opts); err != nil {
			return nil, err
		}
		return v, nil
	})

	c.mu.Lock()
	c.stats.Flights++
	if shared {
		c.stats.SharedFlights++
	}
	c.mu.Unlock()
	c.rec.Flight(ctx, key, shared)

	if err != nil {
		return nil, err
	}
	return v, nil
}

// InvalidateKey removes key from the cache, purging its tag memberships.
// Idempotent; reports whether an entry was removed.
func (c *Cache) InvalidateKey(ctx context.Context, key string) bool {
	c.mu.Lock()
	e := c.store.delete(key)
	if e != nil {
		c.tags.removeEntry(e)
		c.stats.Invalidations++
	}
	c.mu.Unlock()

	if e == nil {
		return false
	}
	c.rec.Invalidated(ctx, 1)
	return true
}

// InvalidateByTags removes every entry tagged with any of tags and returns
// the number of entries removed, so write paths can observe invalidation
// instead of discarding it. An entry under several of the requested tags is
// removed (and counted) once, and all of its tags are purged, not just the
// requested ones. The removal is atomic over the key set present at the
// time of the call. Unknown tags are a no-op.
func (c *Cache) InvalidateByTags(ctx context.Context, tags ...string) int {
	c.mu.Lock()
	keys := c.tags.collect(tags)
	for _, key := range keys {
		if e := c.store.delete(key); e != nil {
			c.tags.removeEntry(e)
		}
	}
	c.stats.Invalidations += uint64(len(keys))
	c.mu.Unlock()

	if len(keys) > 0 {
		c.rec.Invalidated(ctx, len(keys))
	}
	return len(keys)
}

// Stats returns a snapshot of the engine counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.store.len()
	return s
}

// Len returns the number of stored entries, including expired entries not
// yet discovered by a lookup or the sweep.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.len()
}

// Close stops the background sweep and rejects further writes.
// Safe to call multiple times.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()
	return nil
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
