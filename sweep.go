// sweep.go: optional background purge of expired entries
//
// Lazy expiry on read keeps the cache correct on its own; the sweeper only
// bounds memory growth from entries that are written once and never read
// again.
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import "time"

// applySweepInterval starts, retimes, or stops the background sweeper.
// A running sweeper is stopped first; a positive interval then starts a
// fresh one. Zero stops sweeping entirely. No-op after Close.
func (m *Manager) applySweepInterval(interval time.Duration) {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()

	if m.sweepClosed {
		return
	}

	if m.sweepStop != nil {
		close(m.sweepStop)
		m.sweepStop = nil
		m.sweepWG.Wait()
	}

	if interval > 0 {
		stop := make(chan struct{})
		m.sweepStop = stop
		m.sweepWG.Add(1)
		go m.sweepLoop(interval, stop)
	}
}

// sweepLoop periodically purges expired entries from every namespace.
// It runs until its stop channel closes and takes each store's lock only
// for the duration of that store's scan, so namespaces keep serving during
// a sweep.
func (m *Manager) sweepLoop(interval time.Duration, stop <-chan struct{}) {
	defer m.sweepWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.sweepOnce()
		}
	}
}

// sweepOnce scans all namespaces once and returns the number of entries
// purged. Exposed to tests through the deterministic clock rather than
// the ticker.
func (m *Manager) sweepOnce() int {
	now := m.clock.Now()

	m.mu.RLock()
	stores := make([]*store, 0, len(m.namespaces))
	for _, st := range m.namespaces {
		stores = append(stores, st)
	}
	m.mu.RUnlock()

	total := 0
	for _, st := range stores {
		total += st.removeExpired(now)
	}

	if total > 0 {
		m.logger.Debug("sweeper purged expired entries", "count", total)
	}
	return total
}
