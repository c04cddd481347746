// Package cache provides the read-through cache for computed portal views.
//
// It provides a bounded LRU store with per-entry TTLs, tag-based group
// invalidation for write paths, and single-flight deduplication of
// concurrent view computations.
package cache
