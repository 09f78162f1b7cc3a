// keys.go: cache key construction and namespace validation
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import (
	"encoding/json"
	"strings"
	"time"
)

// BuildKey constructs a deterministic cache key from an entity type, an
// entity id and an optional parameter set. Semantically identical parameter
// sets always produce identical keys regardless of construction order:
// params are encoded as JSON, and encoding/json writes map keys in sorted
// order.
//
// The resulting key has the shape "type:id" or "type:id:{params}".
//
// Returns a VTCACHE_SERIALIZATION_FAILED error if params contain a value
// that cannot be encoded (channels, functions, cyclic structures), and a
// validation error if any part contains the reserved delimiter.
func BuildKey(entityType, entityID string, params map[string]interface{}) (string, error) {
	if entityType == "" || entityID == "" {
		return "", NewErrEmptyKey("BuildKey")
	}
	if strings.Contains(entityType, namespaceDelimiter) || strings.Contains(entityID, namespaceDelimiter) {
		return "", NewErrInvalidKey(entityType + ":" + entityID)
	}

	if len(params) == 0 {
		return entityType + ":" + entityID, nil
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return "", NewErrSerializationFailed(entityType, err)
	}
	if strings.Contains(string(encoded), namespaceDelimiter) {
		return "", NewErrInvalidKey(entityType + ":" + entityID)
	}

	return entityType + ":" + entityID + ":" + string(encoded), nil
}

// ValidateNamespace rejects empty namespaces and namespaces containing the
// reserved delimiter character. The delimiter separates namespace from key
// in the in-flight fetch registry, so allowing it inside a namespace could
// break isolation between namespaces.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return NewErrNamespaceEmpty("ValidateNamespace")
	}
	if strings.Contains(namespace, namespaceDelimiter) {
		return NewErrNamespaceDelimiter(namespace)
	}
	return nil
}

// ValidateKey rejects empty keys and keys containing the reserved delimiter
// character, for the same isolation reason as ValidateNamespace.
func ValidateKey(key string) error {
	if key == "" {
		return NewErrEmptyKey("ValidateKey")
	}
	if strings.Contains(key, namespaceDelimiter) {
		return NewErrInvalidKey(key)
	}
	return nil
}

// deadline converts a relative TTL to an absolute nanosecond deadline on the
// provided clock. A zero ttl falls back to the namespace default, and
// NoExpiration (or any negative ttl) yields 0, meaning "never".
func deadline(now int64, ttl, fallback time.Duration) int64 {
	if ttl == 0 {
		ttl = fallback
	}
	if ttl <= 0 {
		return 0
	}
	return now + int64(ttl)
}

// approxSize estimates the in-memory footprint of a value in bytes. The
// estimate is intentionally cheap and coarse: exact accounting would require
// deep reflection on every write, which is not worth the cost for a bound
// that is only reported through statistics.
func approxSize(v interface{}) int64 {
	const wordSize = 8

	switch value := v.(type) {
	case nil:
		return 0
	case bool, int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int, int64, uint, uint64, uintptr, float64, complex64, time.Duration:
		return wordSize
	case complex128:
		return 16
	case string:
		return int64(len(value)) + 2*wordSize
	case []byte:
		return int64(len(value)) + 3*wordSize
	case time.Time:
		return 3 * wordSize
	default:
		// Fallback: serialize and measure. Unencodable values get a flat
		// pointer-sized charge rather than an error, since size is purely
		// informational.
		if encoded, err := json.Marshal(v); err == nil {
			return int64(len(encoded)) + 2*wordSize
		}
		return 2 * wordSize
	}
}
