// Package vtcache provides a namespaced, thread-safe, in-process cache
// engine combining bounded-size LRU eviction, time-based (TTL) expiry,
// stale-while-revalidate (SWR) serving and deduplicated get-or-fetch access.
//
// # Overview
//
// The engine is organised around three layers:
//
//   - Manager: a dependency-injected registry owning one store per
//     namespace, exposing the public API, batch operations and statistics
//     aggregation. There is no hidden global; construct a Manager at your
//     composition root and pass it down.
//   - store: the per-namespace container, an entry map plus an intrusive
//     doubly linked eviction list, serialized by a single mutex.
//   - EvictionPolicy: a pluggable capacity policy (LRU by default, FIFO
//     available) deciding which entry to sacrifice on overflow. TTL expiry
//     applies on every read regardless of policy.
//
// # Quick Start
//
//	cache := vtcache.New(vtcache.Config{
//		Capacity:   10_000,
//		DefaultTTL: time.Hour,
//	})
//	defer cache.Close()
//
//	cache.Set("users", "user:123", profile, vtcache.SetOptions{})
//	if value, found := cache.Get("users", "user:123"); found {
//		fmt.Println(value)
//	}
//
// Type-safe access for namespaces holding homogeneous values:
//
//	users, _ := vtcache.View[User](cache, "users")
//	users.Set("user:123", alice, vtcache.SetOptions{})
//	if user, found := users.Get("user:123"); found {
//		fmt.Println(user.Name)
//	}
//
// # Cache Stampede Prevention
//
// GetOrFetch collapses concurrent misses on the same (namespace, key) into
// a single fetcher execution; every caller receives the result of that one
// call:
//
//	profile, err := cache.GetOrFetch("users", "user:123", func() (interface{}, error) {
//		return loadProfileFromDB(123)
//	}, vtcache.FetchOptions{TTL: time.Hour})
//
// On fetcher failure the error is propagated verbatim to all waiters, the
// cache is left untouched, and the in-flight marker is cleared so the next
// caller retries. A failing key is never poisoned.
//
// # Stale-While-Revalidate
//
// Entries written with a StaleTTL below their TTL serve their value
// immediately even after crossing the staleness threshold, while GetOrFetch
// triggers at most one background refresh:
//
//	price, err := cache.GetOrFetch("quotes", "AAPL", fetchQuote, vtcache.FetchOptions{
//		TTL:      time.Minute,
//		StaleTTL: 15 * time.Second,
//	})
//
// TTL is the hard cutoff: once an entry expires it is treated as absent and
// SWR no longer applies. Entry lifecycle:
//
//	absent -> fresh -> stale -> expired -> absent
//
// Capacity eviction can remove a fresh or stale entry at any point.
//
// # Concurrency Model
//
// Each namespace is serialized by its own mutex; operations on different
// namespaces never block each other. Get takes the lock too, because every
// lookup reorders the recency list. The in-flight fetch registry has its
// own synchronization, so a running fetcher holds no store lock and may
// call back into the cache without deadlock. A waiter whose context is
// cancelled stops waiting without cancelling the shared fetch.
//
// # Expiry
//
// Expired entries are purged lazily on read; no background work is needed
// for correctness. Setting Config.CleanupInterval starts an optional
// sweeper that bounds memory growth from entries written once and never
// read again.
//
// # Observability
//
// Statistics are tracked per namespace (hits, misses, evictions, size) and
// aggregated with GlobalStats; Stats.HitRate is computed on demand. The
// MetricsCollector interface plugs operation latencies and eviction counts
// into external monitoring systems; the optional otel/ submodule provides
// an OpenTelemetry implementation. Config.Logger accepts any structured
// keyvals logger.
//
// # Errors
//
// A cache miss is not an error. Validation failures (malformed namespaces
// or keys), key-serialization failures and recovered fetcher panics are
// reported as coded errors built on github.com/agilira/go-errors; fetcher
// errors pass through GetOrFetch unwrapped.
package vtcache
