package cache

// tagIndex maps each tag to the set of keys currently carrying it, so a
// write path can drop every cached view for an entity without knowing the
// individual keys. The Cache serializes access; the index does no locking.
//
// Invariant: a key appears under a tag exactly while the entry store holds
// an entry whose tags include it. Empty buckets are pruned immediately so
// the index cannot grow unboundedly with dead tags.
type tagIndex struct {
	members map[string]map[string]struct{}
}

func newTagIndex() *tagIndex {
	return &tagIndex{members: make(map[string]map[string]struct{})}
}

// add records key under tag. Idempotent.
func (t *tagIndex) add(tag, key string) {
	bucket, ok := t.members[tag]
	if !ok {
		bucket = make(map[string]struct{})
		t.members[tag] = bucket
	}
	bucket[key] = struct{}{}
}

// remove drops key from tag's bucket. Idempotent; unknown tags are a no-op.
func (t *tagIndex) remove(tag, key string) {
	bucket, ok := t.members[tag]
	if !ok {
		return
	}
	delete(bucket, key)
	if len(bucket) == 0 {
		delete(t.members, tag)
	}
}

// addEntry registers every tag membership of e.
func (t *tagIndex) addEntry(e *entry) {
	for _, tag := range e.tags {
		t.add(tag, e.key)
	}
}

// removeEntry purges every tag membership of e.
func (t *tagIndex) removeEntry(e *entry) {
	for _, tag := range e.tags {
		t.remove(tag, e.key)
	}
}

// keys returns the keys currently tagged with tag. Unknown tags yield an
// empty result, not an error.
func (t *tagIndex) keys(tag string) []string {
	bucket := t.members[tag]
	out := make([]string, 0, len(bucket))
	for key := range bucket {
		out = append(out, key)
	}
	return out
}

// collect returns the union of keys across tags, without duplicates. A key
// tagged with several of the requested tags appears once.
func (t *tagIndex) collect(tags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range tags {
		for key := range t.members[tag] {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

// size returns the number of live tags. Diagnostic only.
func (t *tagIndex) size() int {
	return len(t.members)
}
