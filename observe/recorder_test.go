package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/campuscache/cache"
)

func newTestRecorder(t *testing.T) (*CacheRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := NewCacheRecorder(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	return rec, reader
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	found := findMetric(rm, name)
	if found == nil {
		t.Fatalf("%s metric not found", name)
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestCacheRecorder_CountersIncrement verifies each callback feeds its counter.
func TestCacheRecorder_CountersIncrement(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.Hit(ctx, "view:dashboard:a")
	rec.Hit(ctx, "view:dashboard:b")
	rec.Miss(ctx, "view:roster:c")
	rec.Expired(ctx, "view:calendar:d")
	rec.Evicted(ctx, "view:gradebook:e")
	rec.Invalidated(ctx, 3)
	rec.Flight(ctx, "view:roster:c", false)
	rec.Flight(ctx, "view:roster:c", true)

	if got := counterValue(t, reader, "cache.hits"); got != 2 {
		t.Errorf("expected 2 hits, got %d", got)
	}
	if got := counterValue(t, reader, "cache.misses"); got != 1 {
		t.Errorf("expected 1 miss, got %d", got)
	}
	if got := counterValue(t, reader, "cache.expirations"); got != 1 {
		t.Errorf("expected 1 expiration, got %d", got)
	}
	if got := counterValue(t, reader, "cache.evictions"); got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
	if got := counterValue(t, reader, "cache.invalidations.entries"); got != 3 {
		t.Errorf("expected 3 invalidated entries, got %d", got)
	}
	if got := counterValue(t, reader, "cache.flights"); got != 2 {
		t.Errorf("expected 2 flights, got %d", got)
	}
}

// TestCacheRecorder_FlightSharedAttribute verifies shared flights carry the
// shared attribute on their data point.
func TestCacheRecorder_FlightSharedAttribute(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.Flight(ctx, "view:dashboard:a", true)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	found := findMetric(rm, "cache.flights")
	if found == nil {
		t.Fatal("cache.flights metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(sum.DataPoints))
	}

	var foundShared bool
	for iter := sum.DataPoints[0].Attributes.Iter(); iter.Next(); {
		kv := iter.Attribute()
		if string(kv.Key) == "cache.flight.shared" {
			foundShared = true
			if !kv.Value.AsBool() {
				t.Error("expected cache.flight.shared=true")
			}
		}
	}
	if !foundShared {
		t.Error("cache.flight.shared attribute not found")
	}
}

// TestCacheRecorder_DrivenByEngine verifies the recorder observes real engine
// events when plugged into cache.Config.Recorder.
func TestCacheRecorder_DrivenByEngine(t *testing.T) {
	rec, reader := newTestRecorder(t)

	c, err := cache.New(cache.Config{Capacity: 8, Recorder: rec})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "view:dashboard:a", 1, cache.Options{TTL: time.Minute, Tags: []string{"student:jordan"}}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := c.Get(ctx, "view:dashboard:a"); !ok {
		t.Fatal("expected hit for view:dashboard:a")
	}
	if _, ok := c.Get(ctx, "view:dashboard:missing"); ok {
		t.Fatal("expected miss for view:dashboard:missing")
	}
	if got := c.InvalidateByTags(ctx, "student:jordan"); got != 1 {
		t.Fatalf("expected 1 invalidated entry, got %d", got)
	}

	if got := counterValue(t, reader, "cache.hits"); got != 1 {
		t.Errorf("expected 1 hit, got %d", got)
	}
	if got := counterValue(t, reader, "cache.misses"); got != 1 {
		t.Errorf("expected 1 miss, got %d", got)
	}
	if got := counterValue(t, reader, "cache.invalidations.entries"); got != 1 {
		t.Errorf("expected 1 invalidated entry, got %d", got)
	}
}
