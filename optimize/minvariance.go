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
	"gonum.org/v1/gonum/floats"
)

// MinVariance finds the fully invested portfolio with the smallest
// variance subject to the weight bounds
type MinVariance struct {
	constraints  Constraints
	riskFreeRate float64
}

func NewMinVariance(constraints Constraints, riskFreeRate float64) Optimizer {
	return &MinVariance{
		constraints:  constraints,
		riskFreeRate: riskFreeRate,
	}
}

func (mv *MinVariance) Optimize(_ context.Context, returns *dataframe.DataFrame) (*Result, error) {
	if err := validateReturns(returns); err != nil {
		return nil, err
	}

	n := returns.ColCount()
	if err := mv.constraints.Validate(n); err != nil {
		return nil, err
	}

	sigma := returns.CovarianceMatrix()

	// Projected gradient descent on w'Σw. The objective is convex so a
	// monotone line search from the equal weight portfolio is enough.
	w := make([]float64, n)
	for ii := range w {
		w[ii] = 1.0 / float64(n)
	}
	w = mv.constraints.Project(w)

	const maxIterations = 2000
	tol := 1e-12

	fw := portfolioVariance(w, sigma)
	converged := false
	for iter := 0; iter < maxIterations; iter++ {
		grad := marginalRisk(w, sigma) // ∇(w'Σw) = 2Σw; the factor of 2 folds into the step size

		// Exact line-minimizing step for the quadratic along -g where
		// g = Σw: f(w - s g) = f(w) - 2s g'g + s² g'Σg, minimized at
		// s = (g'g) / (g'Σg). The projection perturbs the step so a
		// backtracking halving search guards the descent.
		gg := floats.Dot(grad, grad)
		gSg := portfolioVariance(grad, sigma)
		if gg == 0 || gSg <= 0 {
			converged = true
			break
		}
		step := gg / gSg

		var next []float64
		var fNext float64
		for {
			candidate := make([]float64, n)
			for ii := range w {
				candidate[ii] = w[ii] - step*grad[ii]
			}
			candidate = mv.constraints.Project(candidate)

			fNext = portfolioVariance(candidate, sigma)
			if fNext <= fw || step < 1e-16 {
				next = candidate
				break
			}
			step /= 2
		}

		improvement := fw - fNext
		w = next
		fw = fNext

		if improvement >= 0 && improvement < tol*math.Max(1, fw) {
			converged = true
			break
		}
	}

	if !converged {
		return nil, ErrDidNotConverge
	}

	return buildResult("min_variance", w, returns, mv.riskFreeRate), nil
}
