// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package optimize

import (
	"context"

	"github.com/penny-vault/pv-optimize/dataframe"
)

// EqualWeight assigns 1/n to every asset
type EqualWeight struct {
	constraints  Constraints
	riskFreeRate float64
}

func NewEqualWeight(constraints Constraints, riskFreeRate float64) Optimizer {
	return &EqualWeight{
		constraints:  constraints,
		riskFreeRate: riskFreeRate,
	}
}

func (ew *EqualWeight) Optimize(_ context.Context, returns *dataframe.DataFrame) (*Result, error) {
	if err := validateReturns(returns); err != nil {
		return nil, err
	}

	n := returns.ColCount()
	if err := ew.constraints.Validate(n); err != nil {
		return nil, err
	}

	w := make([]float64, n)
	for ii := range w {
		w[ii] = 1.0 / float64(n)
	}
	w = ew.constraints.Project(w)

	return buildResult("equal_weight", w, returns, ew.riskFreeRate), nil
}
