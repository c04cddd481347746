package cache

import "context"

// Stats is a point-in-time snapshot of engine counters.
//
// Hit ratio is Hits / (Hits + Misses). Expirations counts entries dropped
// because their TTL elapsed (lazily on lookup or by the sweep); Evictions
// counts entries displaced by the capacity bound; Invalidations counts
// entries removed by InvalidateKey and InvalidateByTags.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Expirations   uint64
	Evictions     uint64
	Invalidations uint64
	Flights       uint64
	SharedFlights uint64
	Entries       int
}

// Recorder receives engine events, for exporting cache behavior to a
// metrics backend.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Blocking: callbacks run on the caller's goroutine and must return quickly.
// - Errors: implementations must not panic.
type Recorder interface {
	// Hit is called when a lookup is served from the store.
	Hit(ctx context.Context, key string)

	// Miss is called when a lookup finds no live entry.
	Miss(ctx context.Context, key string)

	// Expired is called when a lookup or sweep discards a dead entry.
	Expired(ctx context.Context, key string)

	// Evicted is called when the capacity bound displaces an entry.
	Evicted(ctx context.Context, key string)

	// Invalidated is called after an invalidation removes removed entries.
	Invalidated(ctx context.Context, removed int)

	// Flight is called when a GetOrSet miss completes its single-flight
	// run. shared reports whether the caller joined another caller's run.
	Flight(ctx context.Context, key string, shared bool)
}

// nopRecorder is the default Recorder. It does nothing.
type nopRecorder struct{}

func (nopRecorder) Hit(context.Context, string)          {}
func (nopRecorder) Miss(context.Context, string)         {}
func (nopRecorder) Expired(context.Context, string)      {}
func (nopRecorder) Evicted(context.Context, string)      {}
func (nopRecorder) Invalidated(context.Context, int)     {}
func (nopRecorder) Flight(context.Context, string, bool) {}

// Ensure nopRecorder implements Recorder
var _ Recorder = nopRecorder{}
