// vtcache.go: package constants and defaults
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

// Package vtcache provides a namespaced, in-process cache engine with
// bounded-size LRU eviction, TTL expiry, stale-while-revalidate semantics
// and deduplicated get-or-fetch access for expensive upstream computations.
//
// Example usage:
//
//	cache := vtcache.New(vtcache.Config{
//		Capacity:   10_000,
//		DefaultTTL: time.Hour,
//	})
//	defer cache.Close()
//
//	cache.Set("users", "user:123", profile, vtcache.SetOptions{})
//	value, found := cache.Get("users", "user:123")
package vtcache

import "time"

const (
	// Version of the vtcache library
	Version = "v0.1.0-dev"

	// DefaultCapacity is the default maximum number of entries per namespace
	DefaultCapacity = 10_000

	// NoExpiration marks an entry that never expires, regardless of the
	// namespace default TTL.
	NoExpiration time.Duration = -1

	// namespaceDelimiter separates namespace from key in the in-flight
	// fetch registry. It must never appear inside a namespace or a raw
	// key, or isolation between namespaces could be violated by a key
	// colliding across the delimiter boundary.
	namespaceDelimiter = "\x1f"
)
