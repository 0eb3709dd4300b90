// Licensed to Elasticsearch B.V. under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Elasticsearch B.V. licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package fluormap implements a parameterized cell: a key -> cell table
// that creates a child cell on demand and forgets it entirely (not just
// marks it uncached) the moment that child is invalidated or cleared.
//
// The table itself is a plain key -> entry map guarded by a mutex, the
// same shape as unison.LockManager's key -> lockEntry table, since a Map
// may be shared and have Apply called from several goroutines even though
// each individual child cell it creates is, like any fluor.Cell, only ever
// touched by the goroutine that created it.
package fluormap

import (
	"sync"

	"github.com/eb2501/fluor-core"
)

// Event mirrors fluor.Event[T], with the originating key prepended, as
// delivered to a Map's listener for every event except Invalidated/Cleared
// (which the Map consumes itself to drive eviction).
type Event[K comparable, T any] struct {
	Key     K
	Kind    fluor.EventKind
	Value   T
	Callees []fluor.GraphNode
	Caller  fluor.GraphNode
}

// Listener receives keyed events forwarded from a Map's child cells.
type Listener[K comparable, T any] func(Event[K, T])

// Option configures a Map at construction time.
type Option[K comparable, T any] func(*config[K, T])

type config[K comparable, T any] struct {
	listener Listener[K, T]
}

// WithListener installs fn to receive every event other than
// Invalidated/Cleared forwarded from the map's child cells, with the
// triggering key attached.
func WithListener[K comparable, T any](fn Listener[K, T]) Option[K, T] {
	return func(c *config[K, T]) { c.listener = fn }
}

// Map creates one fluor.Cell[T] per key, on demand, evaluating getter(key)
// to produce its value. Each child cell is Clearable, so a caller may
// explicitly Set a key's value (the key remains cached, under the
// explicitly assigned value, exactly like any other Set) or Clear it. A
// key is forgotten - not merely marked uncached - the moment its cell is
// invalidated or explicitly cleared; iterating the map (Keys) therefore
// always yields exactly the currently cached keys, in the order they were
// first created.
type Map[K comparable, T any] struct {
	mu       sync.Mutex
	getter   func(K) (T, error)
	listener Listener[K, T]
	cells    map[K]*fluor.Cell[T]
	order    []K
}

// New creates an empty Map backed by getter.
func New[K comparable, T any](getter func(K) (T, error), opts ...Option[K, T]) *Map[K, T] {
	var cfg config[K, T]
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Map[K, T]{
		getter:   getter,
		listener: cfg.listener,
		cells:    make(map[K]*fluor.Cell[T]),
	}
}

// Apply returns the existing cell for key, or creates one by wrapping
// getter(key) as the new cell's expression. The returned cell is
// Clearable: Get lazily computes and caches getter(key); Set overrides it
// with an explicit value that persists until invalidated or cleared; Clear
// forces it back to uncached.
func (m *Map[K, T]) Apply(key K) *fluor.Cell[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.cells[key]; ok {
		return c
	}

	k := key
	c := fluor.NewClearable(
		func() (T, error) { return m.getter(k) },
		fluor.WithListener(m.childListener(k)),
	)
	m.cells[key] = c
	m.order = append(m.order, key)
	return c
}

// Keys returns the currently cached keys in insertion order. A key whose
// child cell exists but has never been evaluated (Apply was called, Get
// never was) is not yet cached and so is omitted.
func (m *Map[K, T]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]K, 0, len(m.order))
	for _, k := range m.order {
		if c, ok := m.cells[k]; ok && c.IsCached() {
			out = append(out, k)
		}
	}
	return out
}

// childListener is installed as the listener of every cell Apply creates.
// It is the map's own eviction hook, consuming Invalidated/Cleared and
// forwarding everything else.
func (m *Map[K, T]) childListener(key K) fluor.Listener[T] {
	return func(ev fluor.Event[T]) {
		switch ev.Kind {
		case fluor.Invalidated, fluor.Cleared:
			m.evict(key)
			return
		}

		if m.listener != nil {
			m.listener(Event[K, T]{
				Key:     key,
				Kind:    ev.Kind,
				Value:   ev.Value,
				Callees: ev.Callees,
				Caller:  ev.Caller,
			})
		}
	}
}

func (m *Map[K, T]) evict(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cells[key]; !ok {
		return
	}
	delete(m.cells, key)

	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
