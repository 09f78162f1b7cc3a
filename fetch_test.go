// fetch_test.go: tests for GetOrFetch dedupe, SWR refresh and failure paths
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls the condition until it holds or the timeout elapses.
// Background refreshes complete on real goroutine scheduling, not on the
// mock clock, so assertions about them have to poll.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached within timeout")
}

func TestGetOrFetch_CacheHit(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	cache.Set("ns", "key1", "cached_value", SetOptions{})

	fetcherCalled := false
	fetcher := func() (interface{}, error) {
		fetcherCalled = true
		return "fetched_value", nil
	}

	value, err := cache.GetOrFetch("ns", "key1", fetcher, FetchOptions{})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if value != "cached_value" {
		t.Errorf("Expected 'cached_value', got: %v", value)
	}
	if fetcherCalled {
		t.Error("Fetcher should not be called on cache hit")
	}
}

func TestGetOrFetch_MissFetchesAndCaches(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	fetcherCalled := false
	fetcher := func() (interface{}, error) {
		fetcherCalled = true
		return "fetched_value", nil
	}

	value, err := cache.GetOrFetch("ns", "key1", fetcher, FetchOptions{TTL: time.Hour})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if value != "fetched_value" {
		t.Errorf("Expected 'fetched_value', got: %v", value)
	}
	if !fetcherCalled {
		t.Error("Fetcher should be called on cache miss")
	}

	// The fetched value must now be served from cache.
	if cached, found := cache.Get("ns", "key1"); !found || cached != "fetched_value" {
		t.Errorf("Expected fetched value to be cached, got %v found=%v", cached, found)
	}
}

func TestGetOrFetch_ConcurrentDedupe(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	const callers = 10
	var calls int32
	gate := make(chan struct{})

	fetcher := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-gate // hold every caller on the same in-flight fetch
		return "shared_value", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = cache.GetOrFetch("ns", "hot", fetcher, FetchOptions{})
		}(i)
	}

	// Give every caller time to join the flight before releasing it.
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 fetcher invocation, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d: unexpected error %v", i, errs[i])
		}
		if results[i] != "shared_value" {
			t.Errorf("caller %d: expected 'shared_value', got %v", i, results[i])
		}
	}
}

func TestGetOrFetch_ErrorPropagatedToAllWaiters(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	const callers = 5
	var calls int32
	gate := make(chan struct{})
	fetchErr := errors.New("upstream unavailable")

	fetcher := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return nil, fetchErr
	}

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = cache.GetOrFetch("ns", "failing", fetcher, FetchOptions{})
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 fetcher invocation, got %d", got)
	}
	for i := 0; i < callers; i++ {
		// Errors are propagated verbatim, never wrapped.
		if !errors.Is(errs[i], fetchErr) {
			t.Errorf("caller %d: expected fetch error, got %v", i, errs[i])
		}
	}
}

func TestGetOrFetch_FailureDoesNotPoison(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	fetchErr := errors.New("transient failure")

	_, err := cache.GetOrFetch("ns", "key", func() (interface{}, error) {
		return nil, fetchErr
	}, FetchOptions{})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Expected fetch error, got %v", err)
	}

	// The cache was never mutated on failure.
	if _, found := cache.Get("ns", "key"); found {
		t.Error("Expected key to stay absent after fetch failure")
	}

	// The in-flight marker was cleared, so the next caller retries.
	value, err := cache.GetOrFetch("ns", "key", func() (interface{}, error) {
		return "recovered", nil
	}, FetchOptions{})
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if value != "recovered" {
		t.Errorf("Expected 'recovered', got %v", value)
	}
}

func TestGetOrFetch_PanicRecovered(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	_, err := cache.GetOrFetch("ns", "key", func() (interface{}, error) {
		panic("fetcher exploded")
	}, FetchOptions{})

	if err == nil {
		t.Fatal("Expected error from panicking fetcher")
	}
	if !IsPanicRecovered(err) {
		t.Errorf("Expected VTCACHE_PANIC_RECOVERED, got %v", err)
	}
	if _, found := cache.Get("ns", "key"); found {
		t.Error("Expected no cache mutation after fetcher panic")
	}
}

func TestGetOrFetch_NilFetcher(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	// On a miss a nil fetcher is an error.
	_, err := cache.GetOrFetch("ns", "key", nil, FetchOptions{})
	if GetErrorCode(err) != ErrCodeInvalidFetcher {
		t.Errorf("Expected VTCACHE_INVALID_FETCHER, got %v", err)
	}

	// On a hit the fetcher is never needed.
	cache.Set("ns", "key", "value", SetOptions{})
	value, err := cache.GetOrFetch("ns", "key", nil, FetchOptions{})
	if err != nil {
		t.Errorf("Expected no error on hit with nil fetcher, got %v", err)
	}
	if value != "value" {
		t.Errorf("Expected 'value', got %v", value)
	}
}

func TestGetOrFetch_NilValueNotCached(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	var calls int32
	fetcher := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}

	if _, err := cache.GetOrFetch("ns", "key", fetcher, FetchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.GetOrFetch("ns", "key", fetcher, FetchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A nil result is returned to callers but not stored.
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected 2 fetcher invocations for nil results, got %d", got)
	}
}

func TestGetOrFetch_StaleServesImmediatelyAndRefreshes(t *testing.T) {
	mockTime := &MockTimeProvider{currentTime: 1000000000}
	cache := New(Config{Capacity: 100, TimeProvider: mockTime})
	defer cache.Close()

	cache.Set("ns", "key", "old", SetOptions{TTL: time.Hour, StaleTTL: time.Minute})
	mockTime.Advance(2 * time.Minute) // stale, far from expired

	var calls int32
	fetcher := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "new", nil
	}

	// The stale value comes back immediately, the refresh runs behind.
	value, err := cache.GetOrFetch("ns", "key", fetcher, FetchOptions{TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "old" {
		t.Errorf("Expected stale 'old' served immediately, got %v", value)
	}

	waitFor(t, time.Second, func() bool {
		v, _ := cache.Get("ns", "key")
		return v == "new"
	})
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 background refresh, got %d", got)
	}
}

func TestGetOrFetch_StaleSingleRefresh(t *testing.T) {
	mockTime := &MockTimeProvider{currentTime: 1000000000}
	cache := New(Config{Capacity: 100, TimeProvider: mockTime})
	defer cache.Close()

	cache.Set("ns", "key", "old", SetOptions{TTL: time.Hour, StaleTTL: time.Minute})
	mockTime.Advance(2 * time.Minute)

	var calls int32
	gate := make(chan struct{})
	fetcher := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "new", nil
	}

	// Several stale reads while the refresh is still in flight must not
	// start additional refreshes.
	for i := 0; i < 5; i++ {
		value, err := cache.GetOrFetch("ns", "key", fetcher, FetchOptions{TTL: time.Hour})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "old" {
			t.Errorf("Expected stale 'old', got %v", value)
		}
	}

	close(gate)
	waitFor(t, time.Second, func() bool {
		v, _ := cache.Get("ns", "key")
		return v == "new"
	})
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", got)
	}
}

func TestGetOrFetch_RefreshFailureKeepsStaleValue(t *testing.T) {
	mockTime := &MockTimeProvider{currentTime: 1000000000}
	cache := New(Config{Capacity: 100, TimeProvider: mockTime})
	defer cache.Close()

	cache.Set("ns", "key", "old", SetOptions{TTL: time.Hour, StaleTTL: time.Minute})
	mockTime.Advance(2 * time.Minute)

	refreshDone := make(chan struct{})
	fetcher := func() (interface{}, error) {
		defer close(refreshDone)
		return nil, errors.New("upstream down")
	}

	value, err := cache.GetOrFetch("ns", "key", fetcher, FetchOptions{TTL: time.Hour})
	if err != nil {
		t.Fatalf("stale read must not surface the refresh error, got %v", err)
	}
	if value != "old" {
		t.Errorf("Expected stale 'old', got %v", value)
	}

	<-refreshDone
	waitFor(t, time.Second, func() bool {
		_, inflight := cache.inflight.Load("ns" + namespaceDelimiter + "key")
		return !inflight
	})

	// The stale value survives the failed refresh.
	if v, found := cache.Get("ns", "key"); !found || v != "old" {
		t.Errorf("Expected stale value to remain cached, got %v found=%v", v, found)
	}
}

func TestGetOrFetchWithContext_WaiterCancellation(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	var calls int32
	gate := make(chan struct{})
	fetcher := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "value", nil
	}

	// First caller owns the fetch.
	var wg sync.WaitGroup
	var winnerValue interface{}
	var winnerErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		winnerValue, winnerErr = cache.GetOrFetchWithContext(context.Background(), "ns", "key", fetcher, FetchOptions{})
	}()
	time.Sleep(50 * time.Millisecond)

	// Second caller joins with a short deadline and gives up.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := cache.GetOrFetchWithContext(ctx, "ns", "key", fetcher, FetchOptions{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded for cancelled waiter, got %v", err)
	}

	// The shared fetch keeps running for the winner.
	close(gate)
	wg.Wait()
	if winnerErr != nil {
		t.Errorf("winner: unexpected error %v", winnerErr)
	}
	if winnerValue != "value" {
		t.Errorf("winner: expected 'value', got %v", winnerValue)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 fetcher invocation, got %d", got)
	}
}

func TestGetOrFetchWithContext_AlreadyCancelled(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := cache.GetOrFetchWithContext(ctx, "ns", "key", func(ctx context.Context) (interface{}, error) {
		called = true
		return "value", nil
	}, FetchOptions{})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("Fetcher must not run under a cancelled context")
	}
}

func TestGetOrFetchWithContext_PassesContext(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	value, err := cache.GetOrFetchWithContext(ctx, "ns", "key", func(ctx context.Context) (interface{}, error) {
		return ctx.Value(ctxKey{}), nil
	}, FetchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "marker" {
		t.Errorf("Expected fetcher to receive the caller context, got %v", value)
	}
}

func TestGetOrFetch_FetcherReentrancy(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	cache.Set("ns", "base", 40, SetOptions{})

	// The fetcher runs with no store lock held, so it may read other keys.
	value, err := cache.GetOrFetch("ns", "derived", func() (interface{}, error) {
		base, _ := cache.Get("ns", "base")
		return base.(int) + 2, nil
	}, FetchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %v", value)
	}
}

func TestGetOrFetch_NamespaceValidation(t *testing.T) {
	cache := New(Config{Capacity: 100})
	defer cache.Close()

	_, err := cache.GetOrFetch("", "key", func() (interface{}, error) {
		return "value", nil
	}, FetchOptions{})
	if !IsNamespaceInvalid(err) {
		t.Errorf("Expected namespace validation error, got %v", err)
	}

	_, err = cache.GetOrFetch("ns", "bad"+namespaceDelimiter+"key", func() (interface{}, error) {
		return "value", nil
	}, FetchOptions{})
	if !IsInvalidKey(err) {
		t.Errorf("Expected key validation error, got %v", err)
	}
}
