// manager.go: namespace registry and public cache API
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import (
	"sync"
	"time"
)

// Manager owns one store per namespace and exposes the public cache API.
// It is an explicit, dependency-injected object rather than a process-wide
// singleton: construct one at the application's composition root, pass it
// down, and tests can build as many independent instances as they need.
//
// All methods are safe for concurrent use. Operations on different
// namespaces never block each other.
type Manager struct {
	mu         sync.RWMutex
	namespaces map[string]*store
	cfg        Config

	// inflight maps "namespace<delim>key" to the *inflightFetch currently
	// loading that key. It has its own synchronization, distinct from any
	// store lock, so a running fetcher holds no lock and may reenter the
	// cache without deadlock.
	inflight sync.Map

	clock   TimeProvider
	logger  Logger
	metrics MetricsCollector

	// sweepMu guards the sweeper lifecycle: the sweeper can be started,
	// retimed, or stopped at runtime by hot reload. sweepStop is nil while
	// no sweeper is running.
	sweepMu     sync.Mutex
	sweepStop   chan struct{}
	sweepClosed bool
	sweepWG     sync.WaitGroup

	closeOnce sync.Once
}

// SetOptions controls the lifetime of a written entry.
// The zero value applies the namespace defaults.
type SetOptions struct {
	// TTL is the relative time-to-live. 0 applies Config.DefaultTTL,
	// NoExpiration disables expiry for this entry.
	TTL time.Duration

	// StaleTTL is the relative stale-while-revalidate threshold. 0 applies
	// Config.DefaultStaleTTL. A threshold at or beyond the effective TTL
	// is discarded: expiry is the hard cutoff beyond which SWR no longer
	// applies.
	StaleTTL time.Duration
}

// FetchOptions controls the lifetime of a value stored by GetOrFetch.
// Semantics match SetOptions.
type FetchOptions struct {
	TTL      time.Duration
	StaleTTL time.Duration
}

// Item is one key-value pair of a SetMany batch.
type Item struct {
	Key   string
	Value interface{}
}

// GetResult is one positional result of a GetMany batch.
type GetResult struct {
	Value interface{}
	Found bool
}

// New creates a Manager with the given configuration. Defaults are applied
// via Config.Validate. If CleanupInterval is set, a background sweeper is
// started; it is stopped by Close.
func New(cfg Config) *Manager {
	_ = cfg.Validate()

	m := &Manager{
		namespaces: make(map[string]*store),
		cfg:        cfg,
		clock:      cfg.TimeProvider,
		logger:     cfg.Logger,
		metrics:    cfg.MetricsCollector,
	}

	m.applySweepInterval(cfg.CleanupInterval)

	return m
}

// namespace returns the store for ns, creating it lazily on first access.
func (m *Manager) namespace(ns string) (*store, error) {
	if err := ValidateNamespace(ns); err != nil {
		return nil, err
	}

	m.mu.RLock()
	st := m.namespaces[ns]
	m.mu.RUnlock()
	if st != nil {
		return st, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if st = m.namespaces[ns]; st != nil {
		return st, nil
	}
	st = newStore(ns, &m.cfg)
	m.namespaces[ns] = st
	return st, nil
}

// peek returns the store for ns only if it already exists.
func (m *Manager) peek(ns string) *store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.namespaces[ns]
}

// Get retrieves a value. The boolean result is false on a miss, on an
// expired entry (purged as a side effect), and on an invalid namespace.
// A miss is not an error.
func (m *Manager) Get(ns, key string) (interface{}, bool) {
	start := m.clock.Now()

	st, err := m.namespace(ns)
	if err != nil {
		return nil, false
	}

	value, found := st.get(key)
	m.metrics.RecordGet(m.clock.Now()-start, found)
	return value, found
}

// Set stores a value under (ns, key). An existing entry is updated in place
// and promoted; a new entry may evict the namespace's coldest entry first.
// Returns a validation error for malformed namespaces or keys, in which
// case no store is touched.
func (m *Manager) Set(ns, key string, value interface{}, opts SetOptions) error {
	start := m.clock.Now()

	st, err := m.namespace(ns)
	if err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	expiresAt, staleAt := m.resolveDeadlines(start, opts.TTL, opts.StaleTTL)
	st.set(key, value, expiresAt, staleAt)
	m.metrics.RecordSet(m.clock.Now() - start)
	return nil
}

// Delete removes (ns, key) and reports whether it existed. Deleting an
// absent key or an unknown namespace returns false without error.
func (m *Manager) Delete(ns, key string) bool {
	start := m.clock.Now()

	st := m.peek(ns)
	if st == nil {
		return false
	}

	existed := st.delete(key)
	m.metrics.RecordDelete(m.clock.Now() - start)
	return existed
}

// Has reports whether (ns, key) holds an unexpired value, without promoting
// the entry or touching the hit/miss counters.
func (m *Manager) Has(ns, key string) bool {
	st := m.peek(ns)
	if st == nil {
		return false
	}
	return st.has(key)
}

// Clear drops every entry of the namespace. Statistics counters are
// cumulative and survive a clear; use ResetStats to zero them.
func (m *Manager) Clear(ns string) {
	if st := m.peek(ns); st != nil {
		st.clear()
	}
}

// Len returns the number of live entries in the namespace.
func (m *Manager) Len(ns string) int {
	st := m.peek(ns)
	if st == nil {
		return 0
	}
	return st.len()
}

// GetMany is the batch form of Get. The result slice is index-aligned with
// keys. Per-key semantics are identical to Get; there is no cross-key
// atomicity.
func (m *Manager) GetMany(ns string, keys []string) []GetResult {
	results := make([]GetResult, len(keys))
	for i, key := range keys {
		results[i].Value, results[i].Found = m.Get(ns, key)
	}
	return results
}

// SetMany is the batch form of Set. Items are written in order and the
// first failure aborts the batch; previously written items stay mutated.
func (m *Manager) SetMany(ns string, items []Item, opts SetOptions) error {
	for _, item := range items {
		if err := m.Set(ns, item.Key, item.Value, opts); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany is the batch form of Delete. The result slice is index-aligned
// with keys and reports per-key existence.
func (m *Manager) DeleteMany(ns string, keys []string) []bool {
	existed := make([]bool, len(keys))
	for i, key := range keys {
		existed[i] = m.Delete(ns, key)
	}
	return existed
}

// Stats returns a snapshot of the namespace statistics. An unknown
// namespace yields the zero Stats.
func (m *Manager) Stats(ns string) Stats {
	st := m.peek(ns)
	if st == nil {
		return Stats{}
	}
	return st.stats()
}

// GlobalStats returns a per-namespace statistics snapshot for every
// namespace created so far.
func (m *Manager) GlobalStats() map[string]Stats {
	m.mu.RLock()
	stores := make(map[string]*store, len(m.namespaces))
	for name, st := range m.namespaces {
		stores[name] = st
	}
	m.mu.RUnlock()

	stats := make(map[string]Stats, len(stores))
	for name, st := range stores {
		stats[name] = st.stats()
	}
	return stats
}

// ResetStats zeroes the cumulative counters of the namespace.
func (m *Manager) ResetStats(ns string) {
	if st := m.peek(ns); st != nil {
		st.resetStats()
	}
}

// Close stops the background sweeper and drops all namespaces. A closed
// Manager must not be used again. Close is idempotent.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.sweepMu.Lock()
		m.sweepClosed = true
		stop := m.sweepStop
		m.sweepStop = nil
		m.sweepMu.Unlock()

		if stop != nil {
			close(stop)
			m.sweepWG.Wait()
		}

		m.mu.Lock()
		m.namespaces = make(map[string]*store)
		m.mu.Unlock()
	})
	return nil
}

// resolveDeadlines turns relative TTLs into absolute deadlines, applying
// the configured defaults and enforcing staleAt < expiresAt. A stale
// threshold at or beyond the expiry deadline can never trigger a refresh,
// so it is dropped.
func (m *Manager) resolveDeadlines(now int64, ttl, staleTTL time.Duration) (expiresAt, staleAt int64) {
	m.mu.RLock()
	defaultTTL := m.cfg.DefaultTTL
	defaultStale := m.cfg.DefaultStaleTTL
	m.mu.RUnlock()

	expiresAt = deadline(now, ttl, defaultTTL)
	staleAt = deadline(now, staleTTL, defaultStale)

	if expiresAt > 0 && staleAt >= expiresAt {
		staleAt = 0
	}
	return expiresAt, staleAt
}

// currentDefaults returns a snapshot of the reloadable configuration.
// HotConfig seeds its parse from this snapshot, so a config file that omits
// a key leaves that setting untouched.
func (m *Manager) currentDefaults() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// applyDefaults installs new per-namespace defaults, used by HotConfig.
// Capacity changes only affect namespaces created afterwards; rebuilding a
// live store's eviction structure in place is not supported. A negative
// cleanupInterval leaves the sweeper as it is; any other change to the
// interval restarts it.
func (m *Manager) applyDefaults(capacity int, ttl, staleTTL, cleanupInterval time.Duration) {
	m.mu.Lock()
	if capacity > 0 {
		m.cfg.Capacity = capacity
	}
	if ttl >= 0 {
		m.cfg.DefaultTTL = ttl
	}
	if staleTTL >= 0 {
		m.cfg.DefaultStaleTTL = staleTTL
	}
	sweepChanged := cleanupInterval >= 0 && cleanupInterval != m.cfg.CleanupInterval
	if sweepChanged {
		m.cfg.CleanupInterval = cleanupInterval
	}
	m.mu.Unlock()

	if sweepChanged {
		m.applySweepInterval(cleanupInterval)
	}
}
