// entry.go: cache entry and its time-based lifecycle
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

// entry is a single cached value together with its eviction-order node.
// The prev/next links form the intrusive doubly linked list owned by the
// namespace's eviction policy; combining the entry and its node in one
// struct keeps the map and the list in 1:1 correspondence by construction.
//
// Entries are owned exclusively by the store that created them and are only
// mutated under that store's lock. Callers always receive the stored value,
// never a reference into the store.
type entry struct {
	key            string
	value          interface{}
	insertedAt     int64
	lastAccessedAt int64
	expiresAt      int64 // absolute deadline in nanoseconds, 0 = never expires
	staleAt        int64 // SWR threshold in nanoseconds, 0 = never stale
	size           int64 // approximate footprint in bytes

	prev, next *entry
}

// Entry lifecycle: absent -> fresh -> stale -> expired -> absent.
// Capacity eviction can remove a fresh or stale entry at any point; there is
// no distinct "deleted" state, deletion is indistinguishable from never
// having existed.
const (
	stateMiss = iota
	stateFresh
	stateStale
)

// expired reports whether the TTL deadline has passed. An expired entry must
// never be returned by a lookup; it is treated as absent and lazily purged.
func (e *entry) expired(now int64) bool {
	return e.expiresAt > 0 && e.expiresAt <= now
}

// stale reports whether the entry has crossed its SWR threshold while still
// being within its TTL. TTL is the hard cutoff: once expired, an entry is
// not stale, it is gone.
func (e *entry) stale(now int64) bool {
	return e.staleAt > 0 && e.staleAt <= now && !e.expired(now)
}
