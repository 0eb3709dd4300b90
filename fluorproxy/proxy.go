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

// Package fluorproxy implements a non-caching capability shim: a
// Readable/Writable/Clearable that delegates to user-supplied callbacks
// and never itself becomes a node in the dependency graph. If a proxy's
// getter reads fluor cells, those reads are tracked normally by whichever
// fluor.Context is current on the calling goroutine - the proxy is simply
// invisible to that tracking, not a barrier to it.
package fluorproxy

import "errors"

// ErrNotSettable is returned by Set when the proxy was built with a nil
// setter.
var ErrNotSettable = errors.New("fluorproxy: proxy has no setter")

// ErrNotClearable is returned by Clear when the proxy was built with a nil
// clearer.
var ErrNotClearable = errors.New("fluorproxy: proxy has no clearer")

// Proxy implements fluor.Readable[T]/Writable[T]/Clearable[T] by
// delegating every call to a user-supplied callback. It holds no nucleus
// and participates in no graph: fluor.GraphNode is deliberately not
// implemented, so a Proxy is substitutable anywhere a Writable[T] is
// expected (e.g. in place of a fluor.Cell[T]) without anyone being able to
// ask it for callees/callers.
type Proxy[T any] struct {
	get   func() (T, error)
	set   func(T) error
	clear func() error
}

// New builds a Proxy[T] from callbacks. get is required; set and clear may
// be nil, in which case Set/Clear return ErrNotSettable/ErrNotClearable.
func New[T any](get func() (T, error), set func(T) error, clear func() error) *Proxy[T] {
	return &Proxy[T]{get: get, set: set, clear: clear}
}

// Get delegates to the getter callback. This is the one call a subclass
// typically overrides: redirecting a cell-typed member to some other cell
// (or to a plain computed value) without interposing an extra graph node.
func (p *Proxy[T]) Get() (T, error) {
	return p.get()
}

// Set delegates to the setter callback, or fails with ErrNotSettable.
func (p *Proxy[T]) Set(value T) error {
	if p.set == nil {
		return ErrNotSettable
	}
	return p.set(value)
}

// Clear delegates to the clearer callback, or fails with ErrNotClearable.
func (p *Proxy[T]) Clear() error {
	if p.clear == nil {
		return ErrNotClearable
	}
	return p.clear()
}
