package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/campuscache/cache"
)

// CacheRecorder exports cache engine events as OpenTelemetry counters.
// Plug it into the engine via cache.Config.Recorder.
//
// Contract:
// - Concurrency: safe for concurrent use; counter adds are atomic.
// - Blocking: callbacks return quickly and never block the engine.
// - Errors: callbacks must not panic.
type CacheRecorder struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	expirations   metric.Int64Counter
	evictions     metric.Int64Counter
	invalidations metric.Int64Counter
	flights       metric.Int64Counter
}

// NewCacheRecorder creates a CacheRecorder registering its instruments
// on the given meter.
func NewCacheRecorder(meter metric.Meter) (*CacheRecorder, error) {
	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Lookups served from the store"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Lookups that found no live entry"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	expirations, err := meter.Int64Counter(
		"cache.expirations",
		metric.WithDescription("Entries discarded because their TTL elapsed"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Entries displaced by the capacity bound"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	invalidations, err := meter.Int64Counter(
		"cache.invalidations.entries",
		metric.WithDescription("Entries removed by explicit invalidation"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	flights, err := meter.Int64Counter(
		"cache.flights",
		metric.WithDescription("Completed single-flight runs"),
		metric.WithUnit("{flight}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheRecorder{
		hits:          hits,
		misses:        misses,
		expirations:   expirations,
		evictions:     evictions,
		invalidations: invalidations,
		flights:       flights,
	}, nil
}

// Hit records a lookup served from the store.
func (r *CacheRecorder) Hit(ctx context.Context, key string) {
	r.hits.Add(ctx, 1)
}

// Miss records a lookup that found no live entry.
func (r *CacheRecorder) Miss(ctx context.Context, key string) {
	r.misses.Add(ctx, 1)
}

// Expired records an entry discarded because its TTL elapsed.
func (r *CacheRecorder) Expired(ctx context.Context, key string) {
	r.expirations.Add(ctx, 1)
}

// Evicted records an entry displaced by the capacity bound.
func (r *CacheRecorder) Evicted(ctx context.Context, key string) {
	r.evictions.Add(ctx, 1)
}

// Invalidated records entries removed by an explicit invalidation.
func (r *CacheRecorder) Invalidated(ctx context.Context, removed int) {
	r.invalidations.Add(ctx, int64(removed))
}

// Flight records a completed single-flight run. shared marks runs where
// the caller joined another caller's computation.
func (r *CacheRecorder) Flight(ctx context.Context, key string, shared bool) {
	r.flights.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("cache.flight.shared", shared),
	))
}

// Ensure CacheRecorder implements cache.Recorder
var _ cache.Recorder = (*CacheRecorder)(nil)
