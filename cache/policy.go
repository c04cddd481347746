package cache

import "time"

// Config configures the cache engine.
type Config struct {
	// Capacity is the maximum number of entries. Must be positive.
	Capacity int

	// SweepInterval enables a background sweep that reclaims expired
	// entries between lookups. Zero or negative disables the sweep; lazy
	// expiry on lookup still applies either way.
	SweepInterval time.Duration

	// Recorder receives engine events. Nil disables recording.
	Recorder Recorder
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Policy supplies caller-side TTL defaults for call sites that do not pick
// explicit durations. The engine itself rejects TTL <= 0 outright; Policy
// is applied by ViewMiddleware before the engine is reached.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 5 minutes, MaxTTL: 1 hour
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     1 * time.Hour,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
