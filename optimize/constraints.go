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
	"math"
)

// Constraints bound individual asset weights. Weights are always
// non-negative and sum to 1; MinWeight and MaxWeight additionally bound
// each asset's fraction of the portfolio.
type Constraints struct {
	MinWeight float64 `json:"minWeight"`
	MaxWeight float64 `json:"maxWeight"`
}

// DefaultConstraints are long-only weights with no per-asset cap
func DefaultConstraints() Constraints {
	return Constraints{
		MinWeight: 0,
		MaxWeight: 1,
	}
}

// Validate checks that a fully invested portfolio of n assets can
// satisfy the constraints
func (c Constraints) Validate(n int) error {
	if c.MinWeight < 0 || c.MaxWeight > 1 || c.MinWeight > c.MaxWeight {
		return ErrInfeasibleConstraints
	}
	if float64(n)*c.MinWeight > 1+1e-9 || float64(n)*c.MaxWeight < 1-1e-9 {
		return ErrInfeasibleConstraints
	}
	return nil
}

func clip(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

// Project maps an arbitrary weight vector onto the feasible set
// {w : sum(w) = 1, MinWeight <= w_i <= MaxWeight}. The projection
// shifts every weight by a common offset tau and clips to the bounds;
// the offset that restores a fully invested portfolio is found with a
// root solve since sum(clip(w+tau)) is monotone in tau.
func (c Constraints) Project(w []float64) []float64 {
	n := len(w)
	res := make([]float64, n)

	if n == 0 {
		return res
	}

	if n == 1 {
		res[0] = 1
		return res
	}

	shifted := func(tau float64) []float64 {
		out := make([]float64, n)
		for ii, v := range w {
			out[ii] = clip(v+tau, c.MinWeight, c.MaxWeight)
		}
		return out
	}

	sum := func(tau float64) float64 {
		total := 0.0
		for _, v := range shifted(tau) {
			total += v
		}
		return total
	}

	// bracket tau such that sum crosses 1
	minV, maxV := w[0], w[0]
	for _, v := range w {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	lo := c.MinWeight - maxV
	hi := c.MaxWeight - minV

	tau, err := fsolve(func(t float64) float64 { return sum(t) - 1.0 }, lo, hi)
	if err != nil {
		// fall back to simple normalization of the clipped weights
		out := shifted(0)
		total := 0.0
		for _, v := range out {
			total += v
		}
		if total > 0 {
			for ii := range out {
				out[ii] /= total
			}
		}
		return out
	}

	return shifted(tau)
}
