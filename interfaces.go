// interfaces.go: public interfaces for vtcache
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

// Stats provides statistics about a single namespace.
// Counters are cumulative for the namespace's lifetime: Clear drops the
// entries but keeps the counters, ResetStats zeroes them.
type Stats struct {
	// Hits is the number of successful Get lookups
	Hits uint64

	// Misses is the number of failed Get lookups, including lookups that
	// found an already-expired entry
	Misses uint64

	// Evictions is the number of entries removed by capacity pressure or
	// lazy TTL expiry
	Evictions uint64

	// Size is the current number of entries in the namespace
	Size int

	// Capacity is the maximum number of entries the namespace can hold
	Capacity int
}

// HitRate returns hits / (hits + misses) as a ratio between 0 and 1.
// Returns 0.0 if no lookups have been performed yet. The rate is computed
// on demand from the counters, never stored.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time for TTL and staleness decisions.
// This interface allows injecting optimized or mock time implementations.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector defines an interface for collecting cache operation metrics.
// Implementations can send metrics to Prometheus, DataDog, StatsD, or other
// monitoring systems. This interface is designed for zero overhead when nil -
// no metrics are collected.
//
// Thread-safety: all methods must be safe for concurrent use; multiple
// goroutines will call them simultaneously.
type MetricsCollector interface {
	// RecordGet records a Get operation with its latency and hit/miss result.
	RecordGet(latencyNs int64, hit bool)

	// RecordSet records a Set operation with its latency.
	RecordSet(latencyNs int64)

	// RecordDelete records a Delete operation with its latency.
	RecordDelete(latencyNs int64)

	// RecordEviction records an eviction event, whether triggered by
	// capacity pressure or by lazy TTL expiry.
	RecordEviction()
}

// NoOpMetricsCollector is a metrics collector that does nothing.
// Used as default to avoid nil checks and ensure zero overhead.
type NoOpMetricsCollector struct{}

// RecordGet does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}

// RecordSet does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordSet(latencyNs int64) {}

// RecordDelete does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordDelete(latencyNs int64) {}

// RecordEviction does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordEviction() {}
