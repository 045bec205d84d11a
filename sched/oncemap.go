// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package sched

import "sync"

// onceMap is a map of key/value pairs safe for concurrent initialization:
// the first caller of GetOrInit for a key creates the value, every other
// caller observes that same value. Keys keep their insertion order.
type onceMap[K comparable, V any] struct {
	mtx   sync.RWMutex
	order []K
	data  map[K]V
}

func newOnceMap[K comparable, V any]() *onceMap[K, V] {
	return &onceMap[K, V]{data: make(map[K]V)}
}

// GetOrInit obtains the value for the given key if it exists in the map,
// or initializes it with the given init function. It reports whether this
// call created the value. It is safe to call concurrently.
func (m *onceMap[K, V]) GetOrInit(k K, init func() V) (V, bool) {
	// Read-lock and check if the value already exists.
	m.mtx.RLock()
	v, found := m.data[k]
	m.mtx.RUnlock()

	if found {
		return v, false
	}

	// If not, write-lock, check again, and maybe initialize it.
	m.mtx.Lock()
	defer m.mtx.Unlock()

	v, found = m.data[k]
	if found {
		return v, false
	}

	v = init()
	m.data[k] = v
	m.order = append(m.order, k)
	return v, true
}

// Keys returns a snapshot of the keys in insertion order.
func (m *onceMap[K, V]) Keys() []K {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return append([]K(nil), m.order...)
}

// Get returns the value stored under k, if any.
func (m *onceMap[K, V]) Get(k K) (V, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	v, ok := m.data[k]
	return v, ok
}
