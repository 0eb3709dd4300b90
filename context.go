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

import (
	"sync"

	"github.com/go-logr/logr"
)

// Context is the per-goroutine engine state: it owns the evaluation stack
// that Get() pushes and pops frames on, and the logger used to report
// suppressed listener panics. There is exactly one Context per goroutine.
// Every Cell is bound, at construction, to the Context of its creating
// goroutine; every subsequent operation on the cell verifies that the
// calling goroutine's Context is that same instance, failing with
// ErrInvalidThread otherwise.
type Context struct {
	log   logr.Logger
	stack []*frame
}

// registry maps goroutine id -> *Context, lazily populated on first access
// from a new goroutine. Guarded the same way unison.LockManager guards its
// key -> entry table: a plain mutex around a plain map, since contention
// here is rare (one registration per goroutine, ever) and the access
// pattern is a simple find-or-create.
var registry = struct {
	mu    sync.Mutex
	byGID map[int64]*Context
}{byGID: make(map[int64]*Context)}

// currentContext returns the calling goroutine's Context, creating it (with
// the package-default logger) on first access.
func currentContext() *Context {
	gid := goroutineID()

	registry.mu.Lock()
	defer registry.mu.Unlock()

	ctx, ok := registry.byGID[gid]
	if !ok {
		ctx = &Context{log: currentDefaultLogger()}
		registry.byGID[gid] = ctx
	}
	return ctx
}

// Forget drops the calling goroutine's Context from the registry, so a
// later cell operation on this same goroutine is bound to a freshly
// created Context instead of the one that was just retired. A long-lived
// worker-pool goroutine that is about to be returned to its pool (and may
// later be reused by unrelated work, or whose numeric id the runtime may
// hand to an entirely different goroutine once this one exits) should call
// Forget before retiring, so its registry entry cannot be mistaken for a
// still-live owner. Cells already bound to the retired Context keep
// failing every operation with ErrInvalidThread, exactly as if they had
// been created on a different goroutine; it is safe to call Forget even if
// no Context was ever created for this goroutine.
func Forget() {
	forgetContext()
}

func forgetContext() {
	gid := goroutineID()

	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.byGID, gid)
}

// SetLogger overrides the logger used by this specific Context.
func (c *Context) SetLogger(log logr.Logger) {
	c.log = log
}

// evaluating reports whether this Context currently has an evaluation in
// progress, i.e. whether its evaluation stack is non-empty.
func (c *Context) evaluating() bool {
	return len(c.stack) > 0
}

// top returns the frame on top of the evaluation stack, or nil if empty.
func (c *Context) top() *frame {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// push starts a new frame for a nested evaluation.
func (c *Context) push() *frame {
	f := newFrame()
	c.stack = append(c.stack, f)
	return f
}

// pop removes the topmost frame. node.get calls this immediately after its
// expression returns, whether or not it returned an error, so the stack is
// always empty again by the time control returns to user code.
func (c *Context) pop() {
	c.stack = c.stack[:len(c.stack)-1]
}

// recoverListener catches a listener panic, logs it, and never lets it escape.
func (c *Context) recoverListener(kind EventKind) {
	if r := recover(); r != nil {
		c.log.Error(nil, "fluor: listener panicked", "event", kind.String(), "panic", r)
	}
}
