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

package fluor

import "errors"

// capabilityLevel records, per cell, which of the nested capability levels
// its constructor granted. A single concrete Cell[T] implements
// Readable/Writable/Clearable/GraphNode uniformly so that graph
// introspection is always available on an engine-backed cell, while
// Set/Clear enforce the requested capability level at the call, returning
// ErrCapabilityNotSupported rather than refusing to compile. See
// DESIGN.md OQ-2 for why a runtime check was chosen over three distinct
// static return types.
type capabilityLevel uint8

const (
	levelReadable capabilityLevel = iota
	levelWritable
	levelClearable
)

// ErrCapabilityNotSupported is returned by Set or Clear when the cell was
// constructed at a capability level that does not include that operation.
var ErrCapabilityNotSupported = errors.New("fluor: operation not supported at this cell's capability level")

// Cell is a reactive node: an expression thunk, an optional listener, and
// the current nucleus (or none). Cell[T] is the typed facade; the untyped
// state machine lives in node.go so that caller-set bookkeeping
// (nucleus.go) can hold heterogeneous cell types behind one concrete
// pointer type.
type Cell[T any] struct {
	n     *node
	level capabilityLevel
}

// Option configures a Cell[T] at construction time.
type Option[T any] func(*cellConfig[T])

type cellConfig[T any] struct {
	listener Listener[T]
}

// WithListener installs fn as the cell's listener. The listener is invoked
// synchronously, on the goroutine that triggered the transition,
// immediately after the corresponding state change. A panicking listener
// is recovered and logged; it never corrupts graph state.
func WithListener[T any](fn Listener[T]) Option[T] {
	return func(c *cellConfig[T]) { c.listener = fn }
}

// newNode allocates the untyped graph node, wiring emitAny (already closed
// over the caller's typed listener, see emitFor) as its event sink.
func newNode(owner *Context, expr func() (any, error), emitAny func(EventKind, any, []*node, *node)) *node {
	return &node{owner: owner, expr: expr, emit: emitAny}
}

func buildConfig[T any](opts []Option[T]) cellConfig[T] {
	var cfg cellConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewReadable constructs a lazily-evaluated, non-assignable cell: the only
// way its value changes is by one of its callees changing and propagating
// invalidation to it. expr is the suspended computation; it may freely call
// Get on other cells created on the same goroutine, which is how the
// dependency graph is discovered.
func NewReadable[T any](expr func() (T, error), opts ...Option[T]) *Cell[T] {
	return newCell(levelReadable, expr, opts)
}

// NewWritable constructs a cell that starts cached at initial and can
// subsequently only be replaced wholesale via Set; it is never lazily
// recomputed and is never a Clear target (Clear returns
// ErrCapabilityNotSupported). This mirrors a plain mutable signal such as
// unison.Cell's broadcast-latest-value slot, just participating in the
// dependency graph instead of being polled/waited on directly.
func NewWritable[T any](initial T, opts ...Option[T]) *Cell[T] {
	cfg := buildConfig(opts)
	owner := currentContext()
	n := newNode(owner, nil, emitFor(cfg))
	n.slot = &nucleus{value: initial}
	return &Cell[T]{n: n, level: levelWritable}
}

// NewClearable constructs a cell that, like NewReadable, lazily computes
// its value from expr, but additionally allows the caller to force it back
// to uncached via Clear (in addition to replacing its value via Set:
// Clearable extends Writable extends Readable).
func NewClearable[T any](expr func() (T, error), opts ...Option[T]) *Cell[T] {
	return newCell(levelClearable, expr, opts)
}

func newCell[T any](level capabilityLevel, expr func() (T, error), opts []Option[T]) *Cell[T] {
	cfg := buildConfig(opts)
	owner := currentContext()
	wrapped := func() (any, error) { return expr() }
	n := newNode(owner, wrapped, emitFor(cfg))
	return &Cell[T]{n: n, level: level}
}

// emitFor builds the untyped event sink a node calls on every transition,
// closing over cfg.listener so the sink can hand the listener back a
// properly typed Event[T]. Returns nil if no listener was configured, so
// node.fire can skip dispatch entirely.
func emitFor[T any](cfg cellConfig[T]) func(EventKind, any, []*node, *node) {
	if cfg.listener == nil {
		return nil
	}
	listener := cfg.listener
	return func(kind EventKind, value any, callees []*node, caller *node) {
		ev := Event[T]{Kind: kind}
		if v, ok := value.(T); ok {
			ev.Value = v
		}
		if callees != nil {
			ev.Callees = make([]GraphNode, len(callees))
			for i, c := range callees {
				ev.Callees[i] = graphNode{c}
			}
		}
		if caller != nil {
			ev.Caller = graphNode{caller}
		}
		listener(ev)
	}
}

// Get returns the cell's value, computing and caching it first if the cell
// is currently uncached.
func (c *Cell[T]) Get() (T, error) {
	v, err := c.n.get()
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Set replaces the cell's value, silently invalidating any current state
// (and the transitive caller closure that implies) before installing the
// new value with an empty callee list, then firing exactly one Set event.
// It fails with ErrForbiddenDuringEvaluation if an evaluation is in
// progress on the calling goroutine, and with ErrCapabilityNotSupported if
// the cell was constructed via NewReadable.
func (c *Cell[T]) Set(value T) error {
	if c.level == levelReadable {
		return ErrCapabilityNotSupported
	}
	return c.n.set(value)
}

// Clear forces the cell back to uncached, invalidating its transitive
// caller closure, then firing exactly one Cleared event. It fails with
// ErrCapabilityNotSupported unless the cell was constructed via
// NewClearable.
func (c *Cell[T]) Clear() error {
	if c.level != levelClearable {
		return ErrCapabilityNotSupported
	}
	return c.n.clear()
}

// IsCached reports whether the cell currently holds a memoized value.
func (c *Cell[T]) IsCached() bool { return graphNode{c.n}.IsCached() }

// Callees returns the ordered, de-duplicated list of cells read while
// producing the cell's current cached value, or (nil, false) if uncached.
func (c *Cell[T]) Callees() ([]GraphNode, bool) { return graphNode{c.n}.Callees() }

// Callers returns the cells that read this cell while computing their own
// value, in first-insertion order, skipping any that have since been
// garbage collected.
func (c *Cell[T]) Callers() []GraphNode { return graphNode{c.n}.Callers() }
