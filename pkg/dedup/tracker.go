// Package dedup tracks which entities have already been handed out during
// this process lifetime. Entries are never evicted; the service is redeployed
// per snapshot, so the set is bounded by snapshot size.
package dedup

import "sync"

// Tracker is the volatile half of tile de-duplication (the durable half is
// the decision log). Safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// CheckAndMark reports whether id is new and, if so, marks it served. Check
// and mark are one critical section so two concurrent requests can never both
// claim the same entity. Callers mark before any failing downstream step, so
// each entity is attempted at most once per process lifetime.
func (t *Tracker) CheckAndMark(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = struct{}{}
	return true
}

// Served returns all ids marked so far.
func (t *Tracker) Served() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.seen))
	for id := range t.seen {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of marked ids.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
