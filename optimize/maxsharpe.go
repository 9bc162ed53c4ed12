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
	"github.com/rs/zerolog/log"
	gopt "gonum.org/v1/gonum/optimize"
)

// MaxSharpe maximizes the annualized Sharpe ratio subject to the
// weight bounds
type MaxSharpe struct {
	constraints  Constraints
	riskFreeRate float64
}

func NewMaxSharpe(constraints Constraints, riskFreeRate float64) Optimizer {
	return &MaxSharpe{
		constraints:  constraints,
		riskFreeRate: riskFreeRate,
	}
}

func (ms *MaxSharpe) Optimize(_ context.Context, returns *dataframe.DataFrame) (*Result, error) {
	if err := validateReturns(returns); err != nil {
		return nil, err
	}

	n := returns.ColCount()
	if err := ms.constraints.Validate(n); err != nil {
		return nil, err
	}

	sigma := returns.CovarianceMatrix()
	means := returns.Mean()
	freq := periodsPerYear(returns)

	// Constraints are enforced by projecting the candidate point inside
	// the objective, so the search itself is unconstrained and
	// derivative free.
	objective := func(x []float64) float64 {
		w := ms.constraints.Project(x)

		expReturn := 0.0
		for ii, wi := range w {
			expReturn += wi * means[ii]
		}
		expReturn *= freq

		vol := math.Sqrt(portfolioVariance(w, sigma)) * math.Sqrt(freq)
		if vol <= 0 {
			return math.Inf(1)
		}

		return -(expReturn - ms.riskFreeRate) / vol
	}

	w, err := searchWeights(objective, n)
	if err != nil {
		return nil, err
	}
	w = ms.constraints.Project(w)

	return buildResult("max_sharpe", w, returns, ms.riskFreeRate), nil
}

// searchWeights runs a Nelder-Mead search from the equal weight
// portfolio and returns the best point found
func searchWeights(objective func([]float64) float64, n int) ([]float64, error) {
	problem := gopt.Problem{
		Func: objective,
	}

	x0 := make([]float64, n)
	for ii := range x0 {
		x0[ii] = 1.0 / float64(n)
	}

	result, err := gopt.Minimize(problem, x0, &gopt.Settings{
		Converger: &gopt.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 100,
		},
	}, &gopt.NelderMead{})
	if err != nil {
		log.Error().Err(err).Msg("weight search failed")
		return nil, err
	}

	return result.X, nil
}
