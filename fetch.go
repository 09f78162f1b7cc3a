// fetch.go: GetOrFetch with in-flight deduplication and SWR refresh
//
// This file implements the read-through path of the cache: concurrent
// callers missing on the same (namespace, key) collapse into a single
// fetcher execution, and stale entries are served immediately while at most
// one background refresh runs.
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0
package vtcache

import (
	"context"
	"sync"
	"sync/atomic"
)

// inflightFetch represents an in-flight fetcher call with its waitgroup and
// result. Uses atomic.Value for race-free access to val and err fields.
// Note: atomic.Value cannot store nil, so we use wrapper types.
//
// done is closed when the fetcher completes, allowing efficient broadcast
// to multiple waiters without spawning goroutines per waiter.
type inflightFetch struct {
	wg   sync.WaitGroup
	val  atomic.Value  // stores *resultWrapper
	err  atomic.Value  // stores *errorWrapper
	done chan struct{} // closed when the fetcher completes
}

// resultWrapper wraps a value to allow storing nil in atomic.Value
type resultWrapper struct {
	value interface{}
}

// errorWrapper wraps an error to allow storing nil in atomic.Value
type errorWrapper struct {
	err error
}

func newInflightFetch() *inflightFetch {
	f := &inflightFetch{done: make(chan struct{})}
	f.wg.Add(1) // initialized before any other goroutine can see the flight
	return f
}

func (f *inflightFetch) finish(value interface{}, err error) {
	f.val.Store(&resultWrapper{value: value})
	f.err.Store(&errorWrapper{err: err})
}

func (f *inflightFetch) result() (interface{}, error) {
	valWrapper, _ := f.val.Load().(*resultWrapper)
	errWrapper, _ := f.err.Load().(*errorWrapper)
	if valWrapper == nil || errWrapper == nil {
		return nil, nil // should never happen
	}
	return valWrapper.value, errWrapper.err
}

// GetOrFetch returns the cached value for (ns, key), or fetches it with the
// provided fetcher. For any set of concurrent callers on the same key while
// no fresh value exists, the fetcher executes at most once and every caller
// receives the result of that single execution, success or failure.
//
// A stale entry (past its StaleTTL but within its TTL) is returned
// immediately while at most one background refresh runs; the caller is
// never blocked on the refresh.
//
// On fetcher failure the error is propagated verbatim, the cache is not
// mutated, and the in-flight marker is cleared so the next caller retries -
// a failing key is never poisoned. Fetcher panics are recovered and
// surfaced as a VTCACHE_PANIC_RECOVERED error.
//
// A fetcher that succeeds with a nil value has that nil returned to every
// waiter but nothing is cached: the next lookup runs the fetcher again.
// Callers that need to cache "not found" should store a sentinel value.
func (m *Manager) GetOrFetch(ns, key string, fetcher func() (interface{}, error), opts FetchOptions) (interface{}, error) {
	st, err := m.validateFetch(ns, key)
	if err != nil {
		return nil, err
	}

	value, state := st.getWithState(key)
	switch state {
	case stateFresh:
		return value, nil
	case stateStale:
		if fetcher != nil {
			m.refreshAsync(st, key, func(context.Context) (interface{}, error) {
				return fetcher()
			}, opts)
		}
		return value, nil
	}

	if fetcher == nil {
		return nil, NewErrInvalidFetcher(key)
	}

	flightKey := ns + namespaceDelimiter + key
	newFlight := newInflightFetch()

	actual, loaded := m.inflight.LoadOrStore(flightKey, newFlight)
	flight := actual.(*inflightFetch)

	if loaded {
		// Another goroutine is fetching, wait for its result.
		flight.wg.Wait()
		return flight.result()
	}

	// We are the first (we inserted newFlight), execute the fetcher.
	defer func() {
		// Close done first to broadcast to context-aware waiters.
		close(flight.done)
		flight.wg.Done()
		m.inflight.Delete(flightKey)
	}()

	fetchedValue, fetchErr := runFetcher("GetOrFetch:"+key, context.Background(),
		func(context.Context) (interface{}, error) { return fetcher() })
	flight.finish(fetchedValue, fetchErr)

	if fetchErr == nil && fetchedValue != nil {
		m.storeFetched(st, key, fetchedValue, opts)
	}

	return fetchedValue, fetchErr
}

// GetOrFetchWithContext is like GetOrFetch but respects context cancellation
// and timeout. The context is passed to the fetcher function.
//
// A waiter whose context is cancelled stops waiting immediately, but the
// shared fetch keeps running for the remaining waiters; one caller's
// deadline never cancels the computation other callers depend on.
func (m *Manager) GetOrFetchWithContext(ctx context.Context, ns, key string, fetcher func(context.Context) (interface{}, error), opts FetchOptions) (interface{}, error) {
	st, err := m.validateFetch(ns, key)
	if err != nil {
		return nil, err
	}

	value, state := st.getWithState(key)
	switch state {
	case stateFresh:
		return value, nil
	case stateStale:
		if fetcher != nil {
			m.refreshAsync(st, key, fetcher, opts)
		}
		return value, nil
	}

	if fetcher == nil {
		return nil, NewErrInvalidFetcher(key)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flightKey := ns + namespaceDelimiter + key
	newFlight := newInflightFetch()

	actual, loaded := m.inflight.LoadOrStore(flightKey, newFlight)
	flight := actual.(*inflightFetch)

	if loaded {
		// Another goroutine is fetching; wait on the broadcast channel so
		// no goroutine per waiter is needed, and bail out on cancellation
		// without disturbing the fetch.
		select {
		case <-flight.done:
			return flight.result()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	defer func() {
		close(flight.done)
		flight.wg.Done()
		m.inflight.Delete(flightKey)
	}()

	fetchedValue, fetchErr := runFetcher("GetOrFetchWithContext:"+key, ctx, fetcher)
	flight.finish(fetchedValue, fetchErr)

	if fetchErr == nil && fetchedValue != nil {
		m.storeFetched(st, key, fetchedValue, opts)
	}

	return fetchedValue, fetchErr
}

// refreshAsync starts a background refresh for a stale key unless one is
// already in flight. True misses arriving while the refresh runs join it as
// waiters through the same registry entry.
func (m *Manager) refreshAsync(st *store, key string, fetcher func(context.Context) (interface{}, error), opts FetchOptions) {
	flightKey := st.namespace + namespaceDelimiter + key
	flight := newInflightFetch()

	if _, loaded := m.inflight.LoadOrStore(flightKey, flight); loaded {
		// A refresh or fetch is already running for this key.
		return
	}

	go func() {
		defer func() {
			close(flight.done)
			flight.wg.Done()
			m.inflight.Delete(flightKey)
		}()

		// The refresh is detached from any caller's context: every caller
		// already holds the stale value, nobody's deadline should abort it.
		value, err := runFetcher("refresh:"+key, context.Background(), fetcher)
		flight.finish(value, err)

		if err != nil {
			// The stale value stays cached and the marker is cleared, so
			// the next stale read triggers a fresh attempt.
			m.logger.Warn("background refresh failed",
				"namespace", st.namespace, "key", key, "error", err)
			return
		}
		if value != nil {
			m.storeFetched(st, key, value, opts)
		}
	}()
}

// validateFetch checks the namespace and key shape and resolves the store.
func (m *Manager) validateFetch(ns, key string) (*store, error) {
	st, err := m.namespace(ns)
	if err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return st, nil
}

// storeFetched writes a successfully fetched value with the resolved
// deadlines. This is the only cache mutation on the fetch path.
func (m *Manager) storeFetched(st *store, key string, value interface{}, opts FetchOptions) {
	now := m.clock.Now()
	expiresAt, staleAt := m.resolveDeadlines(now, opts.TTL, opts.StaleTTL)
	st.set(key, value, expiresAt, staleAt)
}

// runFetcher executes a fetcher with panic recovery. A panicking fetcher
// surfaces as an error to its waiters instead of tearing the process down.
func runFetcher(operation string, ctx context.Context, fetcher func(context.Context) (interface{}, error)) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = NewErrPanicRecovered(operation, r)
		}
	}()
	return fetcher(ctx)
}
