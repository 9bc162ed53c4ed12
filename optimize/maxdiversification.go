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
	"math"

	"github.com/penny-vault/pv-optimize/dataframe"
)

// MaxDiversification maximizes the diversification ratio: the weighted
// average of individual asset volatilities divided by the portfolio
// volatility
type MaxDiversification struct {
	constraints  Constraints
	riskFreeRate float64
}

func NewMaxDiversification(constraints Constraints, riskFreeRate float64) Optimizer {
	return &MaxDiversification{
		constraints:  constraints,
		riskFreeRate: riskFreeRate,
	}
}

func (md *MaxDiversification) Optimize(_ context.Context, returns *dataframe.DataFrame) (*Result, error) {
	if err := validateReturns(returns); err != nil {
		return nil, err
	}

	n := returns.ColCount()
	if err := md.constraints.Validate(n); err != nil {
		return nil, err
	}

	sigma := returns.CovarianceMatrix()

	objective := func(x []float64) float64 {
		w := md.constraints.Project(x)
		ratio := diversificationRatio(w, sigma)
		if math.IsNaN(ratio) {
			return math.Inf(1)
		}
		return -ratio
	}

	w, err := searchWeights(objective, n)
	if err != nil {
		return nil, err
	}
	w = md.constraints.Project(w)

	return buildResult("max_div", w, returns, md.riskFreeRate), nil
}
