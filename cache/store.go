package cache

import (
	"container/list"
	"time"
)

// entry is one cached view held by the store.
type entry struct {
	key       string
	value     any
	tags      []string
	expiresAt time.Time
}

// expired reports whether e is no longer valid at now.
// An entry is valid strictly before its expiry instant.
func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.After(now)
}

// lruStore holds cached entries with O(1) lookup and LRU recency tracking.
//
// A doubly-linked list keeps recency order (front = most recently used) and
// a map indexes list elements by key. The store does no locking and no tag
// bookkeeping of its own: the Cache serializes access and purges tag
// memberships for every entry the store hands back.
type lruStore struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

func newLRUStore(capacity int) *lruStore {
	return &lruStore{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// get returns the live entry for key, promoting it to most-recently-used.
// If the entry exists but has expired, it is removed and returned as stale
// so the caller can purge its tag memberships.
func (s *lruStore) get(key string, now time.Time) (live, stale *entry) {
	el, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	e := el.Value.(*entry)
	if e.expired(now) {
		s.unlink(el)
		return nil, e
	}
	s.order.MoveToFront(el)
	return e, nil
}

// put inserts or replaces the entry for key and promotes it.
//
// When key already exists the previous entry is returned as replaced so its
// old tag memberships can be purged. When key is new and the store is full,
// the least-recently-used entry is removed first and returned as evicted.
// The entry being inserted is never an eviction candidate.
func (s *lruStore) put(e *entry) (replaced, evicted *entry) {
	if el, ok := s.items[e.key]; ok {
		replaced = el.Value.(*entry)
		el.Value = e
		s.order.MoveToFront(el)
		return replaced, nil
	}
	if s.order.Len() >= s.capacity {
		back := s.order.Back()
		evicted = back.Value.(*entry)
		s.unlink(back)
	}
	s.items[e.key] = s.order.PushFront(e)
	return nil, evicted
}

// delete removes key and returns the removed entry, or nil if absent.
func (s *lruStore) delete(key string) *entry {
	el, ok := s.items[key]
	if !ok {
		return nil
	}
	e := el.Value.(*entry)
	s.unlink(el)
	return e
}

// removeExpired drops every entry that has expired at now and returns them
// so the caller can purge their tags. Used by the optional sweep.
func (s *lruStore) removeExpired(now time.Time) []*entry {
	var removed []*entry
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if e := el.Value.(*entry); e.expired(now) {
			s.unlink(el)
			removed = append(removed, e)
		}
		el = prev
	}
	return removed
}

func (s *lruStore) len() int {
	return len(s.items)
}

func (s *lruStore) unlink(el *list.Element) {
	e := el.Value.(*entry)
	s.order.Remove(el)
	delete(s.items, e.key)
}
