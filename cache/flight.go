package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// flightGroup collapses concurrent producer runs for the same key into one
// execution whose result (success or failure) is shared by every waiter.
//
// The underlying singleflight.Group removes its in-flight record before any
// waiter observes the result, so a call arriving just after completion
// starts a fresh run instead of rejoining a finished one. Its bookkeeping
// lock is never held while a producer executes, so a slow producer for one
// key never blocks lookups for other keys.
type flightGroup struct {
	group singleflight.Group

	mu      sync.Mutex
	waiters map[string]int
}

func newFlightGroup() *flightGroup {
	return &flightGroup{waiters: make(map[string]int)}
}

// do runs fn under single-flight for key. shared reports whether the
// returned result came from a run that served more than one caller.
// Producer errors pass through unchanged and are shared by all waiters.
func (f *flightGroup) do(key string, fn func() (any, error)) (v any, shared bool, err error) {
	f.mu.Lock()
	f.waiters[key]++
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.waiters[key]--
		if f.waiters[key] <= 0 {
			delete(f.waiters, key)
		}
		f.mu.Unlock()
	}()

	v, err, shared = f.group.Do(key, fn)
	return v, shared, err
}

// waiting reports how many callers are currently joined on key.
// Diagnostic only; the value is stale the moment it is returned.
func (f *flightGroup) waiting(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waiters[key]
}
