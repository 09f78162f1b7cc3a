// policy.go: pluggable capacity-eviction policies
//
// Every namespace applies TTL-based lazy expiry on read regardless of the
// policy configured here; the policy only decides which entry to sacrifice
// when an insert would exceed capacity.
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

// EvictionPolicy maintains the eviction order for one namespace and selects
// the victim when the namespace is full. Implementations are not safe for
// concurrent use on their own; the owning store serializes all calls under
// its lock.
type EvictionPolicy interface {
	// Name identifies the policy in logs and diagnostics.
	Name() string

	// Added is called after a new entry is inserted into the store.
	Added(e *entry)

	// Accessed is called after a lookup returns an entry, or after an
	// existing entry is updated in place.
	Accessed(e *entry)

	// Removed is called after an entry leaves the store for any reason
	// (delete, expiry, capacity eviction).
	Removed(e *entry)

	// Victim returns the entry to evict when the store is at capacity,
	// or nil if the policy tracks no entries. Victim selection is
	// unconditional on capacity: it does not matter whether the candidate
	// has already expired.
	Victim() *entry

	// Reset drops all tracked order, mirroring a store clear.
	Reset()
}

// PolicyFactory constructs a fresh EvictionPolicy for a newly created
// namespace. Policies are per-namespace and never shared.
type PolicyFactory func() EvictionPolicy

// lruPolicy evicts the least recently used entry. Accessed entries move to
// the front of the recency list, so the tail is always the coldest entry.
type lruPolicy struct {
	order evictionList
}

// NewLRUPolicy returns the default least-recently-used eviction policy.
func NewLRUPolicy() EvictionPolicy {
	return &lruPolicy{}
}

func (p *lruPolicy) Name() string { return "lru" }

func (p *lruPolicy) Added(e *entry) { p.order.pushFront(e) }

func (p *lruPolicy) Accessed(e *entry) { p.order.moveToFront(e) }

func (p *lruPolicy) Removed(e *entry) { p.order.remove(e) }

func (p *lruPolicy) Victim() *entry { return p.order.back() }

func (p *lruPolicy) Reset() { p.order.reset() }

// fifoPolicy evicts in insertion order. Accesses do not promote, which
// makes eviction order fully predictable for scan-heavy workloads.
type fifoPolicy struct {
	order evictionList
}

// NewFIFOPolicy returns a first-in-first-out eviction policy.
func NewFIFOPolicy() EvictionPolicy {
	return &fifoPolicy{}
}

func (p *fifoPolicy) Name() string { return "fifo" }

func (p *fifoPolicy) Added(e *entry) { p.order.pushFront(e) }

func (p *fifoPolicy) Accessed(e *entry) {}

func (p *fifoPolicy) Removed(e *entry) { p.order.remove(e) }

func (p *fifoPolicy) Victim() *entry { return p.order.back() }

func (p *fifoPolicy) Reset() { p.order.reset() }
