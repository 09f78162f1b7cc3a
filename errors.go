// errors.go: structured error handling for vtcache operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all cache operations.
//
// A cache miss is not an error: Get reports it through its boolean result.
// Fetcher errors from GetOrFetch are propagated verbatim to all waiters and
// are never wrapped, cached, or retried by the engine.
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0
package vtcache

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for vtcache operations
const (
	// Validation errors
	ErrCodeNamespaceInvalid errors.ErrorCode = "VTCACHE_NAMESPACE_INVALID"
	ErrCodeEmptyKey         errors.ErrorCode = "VTCACHE_EMPTY_KEY"
	ErrCodeInvalidKey       errors.ErrorCode = "VTCACHE_INVALID_KEY"

	// Key construction errors
	ErrCodeSerializationFailed errors.ErrorCode = "VTCACHE_SERIALIZATION_FAILED"

	// Fetch errors
	ErrCodeInvalidFetcher errors.ErrorCode = "VTCACHE_INVALID_FETCHER"
	ErrCodePanicRecovered errors.ErrorCode = "VTCACHE_PANIC_RECOVERED"

	// Internal errors
	ErrCodeInternalError errors.ErrorCode = "VTCACHE_INTERNAL_ERROR"
)

// Common error messages
const (
	msgNamespaceEmpty      = "namespace cannot be empty"
	msgNamespaceDelimiter  = "namespace cannot contain the reserved delimiter"
	msgEmptyKey            = "key cannot be empty"
	msgKeyDelimiter        = "key cannot contain the reserved delimiter"
	msgSerializationFailed = "cache key parameters cannot be serialized"
	msgInvalidFetcher      = "fetcher function cannot be nil"
	msgPanicRecovered      = "panic recovered in cache operation"
	msgInternalError       = "internal cache error"
)

// NewErrNamespaceEmpty creates an error for an empty namespace string.
func NewErrNamespaceEmpty(operation string) error {
	return errors.NewWithField(ErrCodeNamespaceInvalid, msgNamespaceEmpty, "operation", operation)
}

// NewErrNamespaceDelimiter creates an error for a namespace containing the
// reserved delimiter character.
func NewErrNamespaceDelimiter(namespace string) error {
	return errors.NewWithContext(ErrCodeNamespaceInvalid, msgNamespaceDelimiter, map[string]interface{}{
		"namespace": namespace,
		"delimiter": fmt.Sprintf("%q", namespaceDelimiter),
	})
}

// NewErrEmptyKey creates an error when a key is empty.
func NewErrEmptyKey(operation string) error {
	return errors.NewWithField(ErrCodeEmptyKey, msgEmptyKey, "operation", operation)
}

// NewErrInvalidKey creates an error for a key containing the reserved
// delimiter character.
func NewErrInvalidKey(key string) error {
	return errors.NewWithContext(ErrCodeInvalidKey, msgKeyDelimiter, map[string]interface{}{
		"key":       key,
		"delimiter": fmt.Sprintf("%q", namespaceDelimiter),
	})
}

// NewErrSerializationFailed creates an error when BuildKey parameters cannot
// be deterministically encoded. The cache state is never touched when this
// error is returned.
func NewErrSerializationFailed(entityType string, cause error) error {
	return errors.Wrap(cause, ErrCodeSerializationFailed, msgSerializationFailed).
		WithContext("entity_type", entityType)
}

// NewErrInvalidFetcher creates an error when a fetcher function is nil.
func NewErrInvalidFetcher(key string) error {
	return errors.NewWithField(ErrCodeInvalidFetcher, msgInvalidFetcher, "key", key)
}

// NewErrPanicRecovered creates an error when a panic is recovered from a
// fetcher function.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// IsNamespaceInvalid checks if error is a namespace validation error.
func IsNamespaceInvalid(err error) bool {
	return errors.HasCode(err, ErrCodeNamespaceInvalid)
}

// IsEmptyKey checks if error is an empty key error.
func IsEmptyKey(err error) bool {
	return errors.HasCode(err, ErrCodeEmptyKey)
}

// IsInvalidKey checks if error is a malformed key error.
func IsInvalidKey(err error) bool {
	return errors.HasCode(err, ErrCodeInvalidKey)
}

// IsSerializationFailed checks if error is a key serialization error.
func IsSerializationFailed(err error) bool {
	return errors.HasCode(err, ErrCodeSerializationFailed)
}

// IsPanicRecovered checks if error was produced by recovering a fetcher panic.
func IsPanicRecovered(err error) bool {
	return errors.HasCode(err, ErrCodePanicRecovered)
}

// IsValidationError checks if error is any pre-store validation failure
// (namespace or key shape). Validation errors are rejected before any
// namespace store is touched.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeNamespaceInvalid || code == ErrCodeEmptyKey || code == ErrCodeInvalidKey
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var cacheErr *errors.Error
	if goerrors.As(err, &cacheErr) {
		return cacheErr.Context
	}
	return nil
}
