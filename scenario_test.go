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
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fluorView stands in for a user-facing grouping construct - a struct
// whose fields are cells - which is an external collaborator the core
// engine itself has no notion of. It exists here purely as a test fixture
// for the caller-ordering scenario below.
type fluorView struct {
	seed int
	u    *Cell[int]
}

func newFluorView(seed int, t *Cell[int]) *fluorView {
	v := &fluorView{seed: seed}
	v.u = NewReadable(func() (int, error) {
		tv, err := t.Get()
		return tv % seed, err
	})
	return v
}

// Recompute transparency: a writable's new value is visible through a
// reader only after the reader is re-evaluated, and is evaluated no more
// than once per change.
func TestRecomputeTransparency(t *testing.T) {
	var evalCount int
	n := NewWritable(0)
	tt := NewReadable(func() (int, error) {
		evalCount++
		v, err := n.Get()
		if err != nil {
			return 0, err
		}
		return (v+2)+3 + (v+2)*2, nil
	})

	v, err := tt.Get()
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	require.NoError(t, n.Set(1))
	v, err = tt.Get()
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	assert.Equal(t, 2, evalCount, "t must have been evaluated exactly twice total")
}

// Caller order: callers are reported in first-read order.
func TestCallerOrder(t *testing.T) {
	n := NewWritable(0)
	tt := NewReadable(func() (int, error) {
		v, err := n.Get()
		if err != nil {
			return 0, err
		}
		return (v+2+3) + (v+2)*2, nil
	})

	v1 := newFluorView(7, tt)
	v2 := newFluorView(12, tt)

	_, err := v1.u.Get()
	require.NoError(t, err)
	_, err = v2.u.Get()
	require.NoError(t, err)

	callers := tt.Callers()
	require.Len(t, callers, 2)
	assert.Same(t, graphNode{v1.u.n}.n, callers[0].(graphNode).n)
	assert.Same(t, graphNode{v2.u.n}.n, callers[1].(graphNode).n)
}

// Dynamic topology: callee sets can shrink across a recompute when a
// branch stops being taken.
func TestDynamicTopology(t *testing.T) {
	x := NewClearable(func() (int, error) { return 0, nil })
	y := NewWritable(11)
	flag := NewWritable(true)

	tt := NewReadable(func() (int, error) {
		xv, err := x.Get()
		if err != nil {
			return 0, err
		}
		a := xv * 2
		flagv, err := flag.Get()
		if err != nil {
			return 0, err
		}
		if flagv {
			yv, err := y.Get()
			if err != nil {
				return 0, err
			}
			return a + yv, nil
		}
		return a + 1, nil
	})

	v, err := tt.Get()
	require.NoError(t, err)
	assert.Equal(t, 11, v)

	callees, ok := tt.Callees()
	require.True(t, ok)
	require.Len(t, callees, 3)

	require.NoError(t, flag.Set(false))

	v, err = tt.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	callees, ok = tt.Callees()
	require.True(t, ok)
	require.Len(t, callees, 2, "y must no longer be a callee once flag is false")
}

// Weak callers: a caller with no remaining strong references is dropped
// from the callee's caller set once collected.
func TestWeakCallers(t *testing.T) {
	type reader struct {
		y *Cell[int]
	}

	mx := NewWritable(1)

	newReader := func() *reader {
		r := &reader{}
		r.y = NewReadable(func() (int, error) {
			v, err := mx.Get()
			return v + 1, err
		})
		return r
	}

	r := newReader()
	_, err := r.y.Get()
	require.NoError(t, err)
	require.Len(t, mx.Callers(), 1)

	r = nil
	_ = r

	for i := 0; i < 10 && len(mx.Callers()) != 0; i++ {
		runtime.GC()
		runtime.Gosched()
	}

	assert.Len(t, mx.Callers(), 0, "dropped reader's cell must eventually vanish from the caller set")
}

// Forbidden side effect: a Set issued from within an expression under
// evaluation is rejected, leaving the target cell untouched.
func TestForbiddenSideEffectDuringEvaluation(t *testing.T) {
	x := NewWritable(1)
	y := NewWritable(true)

	z := NewReadable(func() (int, error) {
		_ = y.Set(false)
		v, err := x.Get()
		return v + 1, err
	})

	_, err := z.Get()
	// The expression itself swallows the Set error above (mirroring a read
	// expression that attempts a Set before reading x); what must be true is
	// that y.Set actually failed and never mutated y.
	require.NoError(t, err)

	yv, err := y.Get()
	require.NoError(t, err)
	assert.True(t, yv, "y must be unchanged: the Set inside z's expression must have been rejected")
}

// Goroutine isolation: a cell may only be accessed from the goroutine
// that created it.
func TestGoroutineIsolation(t *testing.T) {
	var mx *Cell[int]
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		mx = NewWritable(1)
	}()
	wg.Wait()

	err := mx.Set(2)
	assert.ErrorIs(t, err, ErrInvalidThread)
}
