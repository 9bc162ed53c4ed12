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
	"gonum.org/v1/gonum/floats"
)

// RiskParity targets equal risk contribution per asset: each asset
// should account for 1/n of the total portfolio variance
type RiskParity struct {
	constraints  Constraints
	riskFreeRate float64
}

func NewRiskParity(constraints Constraints, riskFreeRate float64) Optimizer {
	return &RiskParity{
		constraints:  constraints,
		riskFreeRate: riskFreeRate,
	}
}

func (rp *RiskParity) Optimize(_ context.Context, returns *dataframe.DataFrame) (*Result, error) {
	if err := validateReturns(returns); err != nil {
		return nil, err
	}

	n := returns.ColCount()
	if err := rp.constraints.Validate(n); err != nil {
		return nil, err
	}

	sigma := returns.CovarianceMatrix()
	for ii := 0; ii < n; ii++ {
		if sigma.At(ii, ii) <= 0 {
			return nil, ErrSingularCovariance
		}
	}

	// Cyclical coordinate descent on the equal risk contribution
	// condition: at the solution w_i (Σw)_i = w'Σw / n for every asset.
	// Each pass holds all other weights fixed and solves the scalar
	// equation x (c_i + σ_ii x) = θ for asset i, where
	// c_i = (Σw)_i - σ_ii w_i. The left side is monotone increasing for
	// x > 0 so the root is bracketed and solved with fsolve.
	w := make([]float64, n)
	for ii := range w {
		w[ii] = 1.0 / float64(n)
	}

	const maxPasses = 200
	tol := 1e-10

	for pass := 0; pass < maxPasses; pass++ {
		maxDelta := 0.0

		for ii := 0; ii < n; ii++ {
			mrc := marginalRisk(w, sigma)
			variance := portfolioVariance(w, sigma)
			theta := variance / float64(n)

			ci := mrc[ii] - sigma.At(ii, ii)*w[ii]
			f := func(x float64) float64 {
				return x*(ci+sigma.At(ii, ii)*x) - theta
			}

			// the root lies in (0, hi]: f(0) = -theta < 0 and f is
			// increasing, grow hi until it brackets
			hi := 1.0
			for f(hi) < 0 && hi < 1e6 {
				hi *= 2
			}

			x, err := fsolve(f, 0, hi)
			if err != nil {
				log.Warn().Err(err).Int("Asset", ii).Msg("risk parity coordinate solve did not converge")
				continue
			}

			maxDelta = math.Max(maxDelta, math.Abs(x-w[ii]))
			w[ii] = x
		}

		// renormalize; the fixed point is scale invariant
		total := floats.Sum(w)
		if total > 0 {
			floats.Scale(1.0/total, w)
		}

		if maxDelta < tol {
			break
		}
	}

	w = rp.constraints.Project(w)

	return buildResult("risk_parity", w, returns, rp.riskFreeRate), nil
}
