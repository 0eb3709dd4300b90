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

package fluorproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb2501/fluor-core"
)

func TestGetDelegatesToGetter(t *testing.T) {
	p := New(func() (int, error) { return 7, nil }, nil, nil)

	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSetWithoutSetterFails(t *testing.T) {
	p := New(func() (int, error) { return 0, nil }, nil, nil)
	assert.ErrorIs(t, p.Set(1), ErrNotSettable)
}

func TestClearWithoutClearerFails(t *testing.T) {
	p := New(func() (int, error) { return 0, nil }, nil, nil)
	assert.ErrorIs(t, p.Clear(), ErrNotClearable)
}

func TestSetAndClearDelegate(t *testing.T) {
	var stored int
	var cleared bool

	p := New(
		func() (int, error) { return stored, nil },
		func(v int) error { stored = v; return nil },
		func() error { cleared = true; return nil },
	)

	require.NoError(t, p.Set(5))
	v, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	require.NoError(t, p.Clear())
	assert.True(t, cleared)
}

// A proxy is transparent to dependency tracking: reads a proxy's getter
// performs against engine cells are recorded by whatever fluor.Context is
// current on the calling goroutine, even though the proxy itself never
// appears as a node in the graph.
func TestProxyGetterIsTransparentToDependencyTracking(t *testing.T) {
	backing := fluor.NewWritable(3)
	p := New(func() (int, error) { return backing.Get() }, nil, nil)

	derived := fluor.NewReadable(func() (int, error) {
		v, err := p.Get()
		return v * 2, err
	})

	v, err := derived.Get()
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	callers := backing.Callers()
	require.Len(t, callers, 1, "the proxy must not interpose a node between derived and backing")
}
