package cache

import (
	"context"
	"strings"
)

// WriteFunc performs a portal write (create/update/delete through the
// persistence layer).
type WriteFunc func(ctx context.Context) error

// SkipRule determines whether a view should bypass the cache entirely.
// Returns true if caching should be skipped.
type SkipRule func(key string, tags []string) bool

// LiveTags mark views that must always be computed fresh.
var LiveTags = []string{"nocache", "realtime", "live"}

// DefaultSkipRule skips caching for views carrying a live tag.
// Tag matching is case-insensitive.
func DefaultSkipRule(_ string, tags []string) bool {
	for _, tag := range tags {
		tagLower := strings.ToLower(tag)
		for _, live := range LiveTags {
			if tagLower == live {
				return true
			}
		}
	}
	return false
}

// ViewMiddleware wraps portal read paths with read-through caching,
// applying skip rules and policy TTL defaults before reaching the engine.
type ViewMiddleware struct {
	cache    *Cache
	policy   Policy
	skipRule SkipRule
}

// NewViewMiddleware creates a new view middleware.
// If skipRule is nil, DefaultSkipRule is used.
func NewViewMiddleware(cache *Cache, policy Policy, skipRule SkipRule) *ViewMiddleware {
	if skipRule == nil {
		skipRule = DefaultSkipRule
	}
	return &ViewMiddleware{
		cache:    cache,
		policy:   policy,
		skipRule: skipRule,
	}
}

// Load serves the view for key, computing it on a miss. A zero opts.TTL
// takes the policy default; any TTL is clamped to the policy ceiling.
// Views matched by the skip rule, and all views when the policy disables
// caching, are computed directly and never stored.
func (m *ViewMiddleware) Load(ctx context.Context, key string, opts Options, compute Producer) (any, error) {
	if m.skipRule(key, opts.Tags) {
		return compute(ctx)
	}
	if !m.policy.ShouldCache() {
		return compute(ctx)
	}

	opts.TTL = m.policy.EffectiveTTL(opts.TTL)
	return m.cache.GetOrSet(ctx, key, compute, opts)
}

// Invalidator makes tag invalidation an explicit, observable step of every
// write path instead of a fire-and-forget side effect: the write runs, and
// on success the dirtied tags are invalidated with the removed-entry count
// reported back to the caller.
type Invalidator struct {
	cache *Cache
}

// NewInvalidator creates an invalidator bound to cache.
func NewInvalidator(cache *Cache) *Invalidator {
	return &Invalidator{cache: cache}
}

// CommitWrite runs write and, on success, drops every cached view tagged
// with any of tags. Returns the number of entries invalidated. If the
// write fails, nothing is invalidated and the write's error is returned
// unchanged.
func (inv *Invalidator) CommitWrite(ctx context.Context, write WriteFunc, tags ...string) (int, error) {
	if err := write(ctx); err != nil {
		return 0, err
	}
	return inv.cache.InvalidateByTags(ctx, tags...), nil
}
