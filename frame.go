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

// frame accumulates, in first-read order and with O(1) duplicate
// suppression, the nodes read while one expression is being evaluated. A
// frame is strictly stack-scoped: it lives on the owning Context's
// evaluation stack for exactly the duration of the get() that created it
// and never escapes it.
type frame struct {
	order []*node
	seen  map[*node]struct{}
}

func newFrame() *frame {
	return &frame{seen: make(map[*node]struct{})}
}

// record adds n to the frame if it is not already present.
func (f *frame) record(n *node) {
	if _, ok := f.seen[n]; ok {
		return
	}
	f.seen[n] = struct{}{}
	f.order = append(f.order, n)
}

// snapshot returns the recorded nodes in first-read order.
func (f *frame) snapshot() []*node {
	return f.order
}
