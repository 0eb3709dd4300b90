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
	"errors"
	"fmt"

	"github.com/urso/sderr"
)

// ErrInvalidThread is returned (wrapped) when a cell operation runs on a
// goroutine whose Context is not the cell's owning Context.
var ErrInvalidThread = errors.New("fluor: cell accessed from a goroutine other than its owner")

// ErrForbiddenDuringEvaluation is returned (wrapped) when Set or Clear is
// invoked while an evaluation is in progress on the current goroutine.
var ErrForbiddenDuringEvaluation = errors.New("fluor: set/clear forbidden while an evaluation is in progress")

func invalidThreadErr(owner, current *Context) error {
	msg := fmt.Sprintf("fluor: owning context %p, current context %p", owner, current)
	return sderr.Wrap(ErrInvalidThread, msg)
}

func forbiddenDuringEvaluationErr() error {
	return sderr.Wrap(ErrForbiddenDuringEvaluation, "fluor: evaluation stack is not empty")
}

func expressionFailureErr(cause error) error {
	return sderr.Wrap(cause, "fluor: expression failed")
}
