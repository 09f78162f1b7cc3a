// generic.go: type-safe namespace view using generics
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import "context"

// Namespace provides a type-safe view over one namespace of a Manager,
// removing the type assertions from call sites that store homogeneous
// values.
//
// Example:
//
//	users, _ := vtcache.View[User](cache, "users")
//	users.Set("user:123", alice, vtcache.SetOptions{})
//	if user, found := users.Get("user:123"); found {
//	    fmt.Println(user.Name)
//	}
type Namespace[V any] struct {
	manager *Manager
	name    string
}

// View creates a typed view over the given namespace. The namespace is
// validated up front; the underlying store is still created lazily on first
// access and is shared with the untyped Manager API.
func View[V any](m *Manager, namespace string) (*Namespace[V], error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	return &Namespace[V]{manager: m, name: namespace}, nil
}

// Name returns the namespace this view is bound to.
func (n *Namespace[V]) Name() string {
	return n.name
}

// Get retrieves a value. Returns the zero value and false on a miss or if
// the stored value has a different dynamic type.
func (n *Namespace[V]) Get(key string) (V, bool) {
	var zero V
	value, found := n.manager.Get(n.name, key)
	if !found {
		return zero, false
	}
	typed, ok := value.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores a value under key.
func (n *Namespace[V]) Set(key string, value V, opts SetOptions) error {
	return n.manager.Set(n.name, key, value, opts)
}

// Delete removes key and reports whether it existed.
func (n *Namespace[V]) Delete(key string) bool {
	return n.manager.Delete(n.name, key)
}

// Has reports whether key holds an unexpired value.
func (n *Namespace[V]) Has(key string) bool {
	return n.manager.Has(n.name, key)
}

// GetOrFetch is the typed version of Manager.GetOrFetch.
func (n *Namespace[V]) GetOrFetch(key string, fetcher func() (V, error), opts FetchOptions) (V, error) {
	var zero V

	var wrapped func() (interface{}, error)
	if fetcher != nil {
		wrapped = func() (interface{}, error) {
			return fetcher()
		}
	}

	result, err := n.manager.GetOrFetch(n.name, key, wrapped, opts)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(V)
	if !ok {
		return zero, NewErrInternal("GetOrFetch", nil)
	}
	return typed, nil
}

// GetOrFetchWithContext is the typed version of Manager.GetOrFetchWithContext.
func (n *Namespace[V]) GetOrFetchWithContext(ctx context.Context, key string, fetcher func(context.Context) (V, error), opts FetchOptions) (V, error) {
	var zero V

	var wrapped func(context.Context) (interface{}, error)
	if fetcher != nil {
		wrapped = func(ctx context.Context) (interface{}, error) {
			return fetcher(ctx)
		}
	}

	result, err := n.manager.GetOrFetchWithContext(ctx, n.name, key, wrapped, opts)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(V)
	if !ok {
		return zero, NewErrInternal("GetOrFetchWithContext", nil)
	}
	return typed, nil
}

// Clear drops every entry of the namespace, keeping the counters.
func (n *Namespace[V]) Clear() {
	n.manager.Clear(n.name)
}

// Stats returns the namespace statistics snapshot.
func (n *Namespace[V]) Stats() Stats {
	return n.manager.Stats(n.name)
}
