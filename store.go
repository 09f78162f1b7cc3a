// store.go: per-namespace entry map with eviction-order maintenance
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import (
	"sync"
	"sync/atomic"
)

// removal reasons, they decide which counters and callbacks fire
const (
	reasonDeleted = iota
	reasonExpired
	reasonCapacity
)

// store is the container for one namespace: an entry map plus the eviction
// policy's recency structure. A single mutex serializes every mutation,
// including Get, because a lookup reorders the recency list as a side
// effect - there is no separate read path.
//
// Stat counters are atomic so stats snapshots and resets never contend with
// the entry lock.
type store struct {
	namespace string
	capacity  int

	mu      sync.Mutex
	entries map[string]*entry
	policy  EvictionPolicy

	clock    TimeProvider
	metrics  MetricsCollector
	onEvict  func(namespace, key string, value interface{})
	onExpire func(namespace, key string, value interface{})

	hits      int64
	misses    int64
	evictions int64
}

func newStore(namespace string, cfg *Config) *store {
	return &store{
		namespace: namespace,
		capacity:  cfg.Capacity,
		entries:   make(map[string]*entry),
		policy:    cfg.Policy(),
		clock:     cfg.TimeProvider,
		metrics:   cfg.MetricsCollector,
		onEvict:   cfg.OnEvict,
		onExpire:  cfg.OnExpire,
	}
}

// get returns the value for key, treating expired entries as absent and
// purging them lazily. A hit promotes the entry in the eviction order.
func (s *store) get(key string) (interface{}, bool) {
	value, state := s.getWithState(key)
	return value, state != stateMiss
}

// getWithState is get plus SWR classification of the returned value.
// A stale entry is still a hit: the value is returned and promoted, the
// caller (GetOrFetch) decides whether to trigger a refresh.
func (s *store) getWithState(key string) (interface{}, int) {
	now := s.clock.Now()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		atomic.AddInt64(&s.misses, 1)
		return nil, stateMiss
	}

	if e.expired(now) {
		s.removeLocked(e, reasonExpired)
		s.mu.Unlock()
		atomic.AddInt64(&s.misses, 1)
		return nil, stateMiss
	}

	e.lastAccessedAt = now
	s.policy.Accessed(e)

	state := stateFresh
	if e.stale(now) {
		state = stateStale
	}
	value := e.value
	s.mu.Unlock()

	atomic.AddInt64(&s.hits, 1)
	return value, state
}

// set inserts or updates an entry. Updating an existing key never creates
// capacity pressure; inserting into a full store unconditionally evicts the
// policy's victim first, regardless of whether that victim has expired.
func (s *store) set(key string, value interface{}, expiresAt, staleAt int64) {
	now := s.clock.Now()
	size := approxSize(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		e.staleAt = staleAt
		e.lastAccessedAt = now
		e.size = size
		s.policy.Accessed(e)
		return
	}

	if len(s.entries) >= s.capacity {
		if victim := s.policy.Victim(); victim != nil {
			s.removeLocked(victim, reasonCapacity)
		}
	}

	e := &entry{
		key:            key,
		value:          value,
		insertedAt:     now,
		lastAccessedAt: now,
		expiresAt:      expiresAt,
		staleAt:        staleAt,
		size:           size,
	}
	s.entries[key] = e
	s.policy.Added(e)
}

// delete removes an entry if present and reports whether it existed.
// Deleting an absent key is not an error.
func (s *store) delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.removeLocked(e, reasonDeleted)
	return true
}

// has reports whether key exists with an unexpired value. Unlike get it
// neither promotes the entry nor touches the hit/miss counters, but it does
// purge a discovered expired entry.
func (s *store) has(key string) bool {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.expired(now) {
		s.removeLocked(e, reasonExpired)
		return false
	}
	return true
}

// clear drops all entries and resets the eviction order. The hit/miss and
// eviction counters are cumulative for the namespace's lifetime and survive
// a clear; resetStats exists for zeroing them.
func (s *store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.policy.Reset()
}

// len returns the current number of entries.
func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// removeExpired purges every entry whose TTL deadline has passed. Called by
// the background sweeper; lazy expiry on read keeps the store correct
// without it.
func (s *store) removeExpired(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*entry
	for _, e := range s.entries {
		if e.expired(now) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		s.removeLocked(e, reasonExpired)
	}
	return len(expired)
}

// approxBytes returns the summed size estimates of all live entries.
func (s *store) approxBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, e := range s.entries {
		total += e.size
	}
	return total
}

// stats returns a snapshot of the namespace statistics.
func (s *store) stats() Stats {
	return Stats{
		Hits:      uint64(atomic.LoadInt64(&s.hits)),      // #nosec G115 - stats counters are always positive
		Misses:    uint64(atomic.LoadInt64(&s.misses)),    // #nosec G115 - stats counters are always positive
		Evictions: uint64(atomic.LoadInt64(&s.evictions)), // #nosec G115 - stats counters are always positive
		Size:      s.len(),
		Capacity:  s.capacity,
	}
}

// resetStats zeroes the cumulative counters.
func (s *store) resetStats() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.evictions, 0)
}

// removeLocked unlinks e from both the entry map and the eviction order.
// The two structures must stay in 1:1 correspondence, so this is the only
// removal path. Caller holds s.mu.
func (s *store) removeLocked(e *entry, reason int) {
	delete(s.entries, e.key)
	s.policy.Removed(e)

	switch reason {
	case reasonExpired:
		atomic.AddInt64(&s.evictions, 1)
		s.metrics.RecordEviction()
		if s.onExpire != nil {
			s.onExpire(s.namespace, e.key, e.value)
		}
	case reasonCapacity:
		atomic.AddInt64(&s.evictions, 1)
		s.metrics.RecordEviction()
		if s.onEvict != nil {
			s.onEvict(s.namespace, e.key, e.value)
		}
	}
}
