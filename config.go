// config.go: configuration for vtcache
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Config holds configuration parameters for a cache Manager.
// The zero value is usable; Validate applies defaults.
type Config struct {
	// Capacity is the maximum number of entries each namespace can hold.
	// Must be > 0. Default: DefaultCapacity.
	Capacity int

	// DefaultTTL is the time-to-live applied to entries written without an
	// explicit TTL. If 0, such entries never expire. Default: 0.
	DefaultTTL time.Duration

	// DefaultStaleTTL is the stale-while-revalidate threshold applied to
	// entries written without an explicit one. After this duration an
	// entry is still served but GetOrFetch triggers a background refresh.
	// Must be shorter than the effective TTL; values at or above it are
	// clamped at write time. If 0, entries never become stale. Default: 0.
	DefaultStaleTTL time.Duration

	// CleanupInterval is how often the background sweeper purges expired
	// entries. Lazy expiry on read keeps the cache correct without it;
	// the sweeper only bounds memory growth from entries that are set and
	// never read again. If 0, no sweeper runs. Default: 0.
	CleanupInterval time.Duration

	// Policy constructs the capacity-eviction policy for each namespace.
	// If nil, NewLRUPolicy is used. Default: NewLRUPolicy.
	Policy PolicyFactory

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for TTL and staleness decisions.
	// If nil, a default implementation is used. Default: system time.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics (latencies,
	// hit/miss rates). If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector

	// OnEvict is called when an entry is removed by capacity pressure.
	// This callback must be fast and non-blocking; it runs while the
	// namespace lock is held.
	OnEvict func(namespace, key string, value interface{})

	// OnExpire is called when an entry is removed because its TTL elapsed,
	// either lazily on read or by the background sweeper. Same constraints
	// as OnEvict.
	OnExpire func(namespace, key string, value interface{})
}

// Validate checks configuration parameters and applies sensible defaults.
// Returns nil (no actual validation errors, only normalization).
//
// This method is automatically called by New, so you typically don't need
// to call it manually. However, it's provided as a public API if you want
// to inspect the normalized configuration before creating a Manager.
//
// Default values applied:
//   - Capacity: DefaultCapacity (10,000) if <= 0
//   - DefaultStaleTTL: clamped to 0 if negative
//   - Policy: NewLRUPolicy if nil
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}

	if c.DefaultTTL < 0 {
		c.DefaultTTL = 0
	}

	if c.DefaultStaleTTL < 0 {
		c.DefaultStaleTTL = 0
	}

	if c.CleanupInterval < 0 {
		c.CleanupInterval = 0
	}

	if c.Policy == nil {
		c.Policy = NewLRUPolicy
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:         DefaultCapacity,
		Policy:           NewLRUPolicy,
		Logger:           NoOpLogger{},
		TimeProvider:     &systemTimeProvider{},
		MetricsCollector: NoOpMetricsCollector{},
	}
}

// systemTimeProvider is the default time provider using go-timecache.
// This provides much faster time access compared to time.Now() with zero
// allocations.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
