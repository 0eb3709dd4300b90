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
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the numeric id the Go runtime assigns to the calling
// goroutine. Go deliberately exposes no public API for this; the standard
// workaround, used by a number of goroutine-local-storage libraries in the
// ecosystem, is to parse the leading "goroutine NNN [...]" line of a stack
// trace captured for just the current goroutine.
//
// In Go the unit of concurrent execution an application author reasons
// about is the goroutine, not the OS thread, so the engine's single-owner
// Context is scoped per-goroutine rather than per-thread (see DESIGN.md
// OQ-1).
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	b = bytes.TrimPrefix(b, []byte(prefix))

	if idx := bytes.IndexByte(b, ' '); idx >= 0 {
		b = b[:idx]
	}

	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		// Should be unreachable: the runtime's stack trace format is
		// stable. Fall back to 0, which forces every caller sharing this
		// fallback onto the same (wrong, but at least consistent) bucket
		// rather than panicking.
		return 0
	}
	return id
}
