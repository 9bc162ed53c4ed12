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

// InverseVolatility weights each asset proportional to the reciprocal
// of its volatility; a cheap approximation of risk parity that ignores
// correlations
type InverseVolatility struct {
	constraints  Constraints
	riskFreeRate float64
}

func NewInverseVolatility(constraints Constraints, riskFreeRate float64) Optimizer {
	return &InverseVolatility{
		constraints:  constraints,
		riskFreeRate: riskFreeRate,
	}
}

func (iv *InverseVolatility) Optimize(_ context.Context, returns *dataframe.DataFrame) (*Result, error) {
	if err := validateReturns(returns); err != nil {
		return nil, err
	}

	n := returns.ColCount()
	if err := iv.constraints.Validate(n); err != nil {
		return nil, err
	}

	dev := returns.StdDev()

	w := make([]float64, n)
	total := 0.0
	for ii, sd := range dev {
		if sd <= 0 {
			return nil, ErrSingularCovariance
		}
		w[ii] = 1.0 / sd
		total += w[ii]
	}
	for ii := range w {
		w[ii] /= total
	}
	w = iv.constraints.Project(w)

	return buildResult("inv_vol", w, returns, iv.riskFreeRate), nil
}
