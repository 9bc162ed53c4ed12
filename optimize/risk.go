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
	"sort"

	"github.com/penny-vault/pv-optimize/dataframe"
	"gonum.org/v1/gonum/mat"
)

// portfolioVariance computes w'Σw
func portfolioVariance(w []float64, sigma *mat.SymDense) float64 {
	vec := mat.NewVecDense(len(w), w)
	return mat.Inner(vec, sigma, vec)
}

// marginalRisk computes Σw
func marginalRisk(w []float64, sigma *mat.SymDense) []float64 {
	n := len(w)
	res := make([]float64, n)
	vec := mat.NewVecDense(n, w)
	out := mat.NewVecDense(n, res)
	out.MulVec(sigma, vec)
	return res
}

// riskContributions returns each asset's share of total portfolio
// variance: w_i (Σw)_i / w'Σw. Shares sum to 1.
func riskContributions(w []float64, sigma *mat.SymDense) []float64 {
	variance := portfolioVariance(w, sigma)
	mrc := marginalRisk(w, sigma)

	res := make([]float64, len(w))
	if variance <= 0 {
		return res
	}

	for ii := range w {
		res[ii] = w[ii] * mrc[ii] / variance
	}
	return res
}

// diversificationRatio computes the ratio of the weighted average of
// individual asset volatilities to the portfolio volatility; 1.0 means
// no diversification benefit
func diversificationRatio(w []float64, sigma *mat.SymDense) float64 {
	vol := math.Sqrt(portfolioVariance(w, sigma))
	if vol == 0 {
		return math.NaN()
	}

	weightedVol := 0.0
	for ii, wi := range w {
		weightedVol += wi * math.Sqrt(sigma.At(ii, ii))
	}
	return weightedVol / vol
}

// periodsPerYear infers the annualization constant from the median
// spacing of the frame's date index
func periodsPerYear(returns *dataframe.DataFrame) float64 {
	if returns.Len() < 2 {
		return 252
	}

	gaps := make([]float64, 0, returns.Len()-1)
	for ii := 1; ii < len(returns.Dates); ii++ {
		gaps = append(gaps, returns.Dates[ii].Sub(returns.Dates[ii-1]).Hours()/24)
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]

	switch {
	case median <= 4:
		return 252
	case median <= 10:
		return 52
	case median <= 45:
		return 12
	default:
		return 1
	}
}

// buildResult computes the full metric set for a weight vector. The
// returned weights are keyed by the column names of the returns frame.
func buildResult(method string, w []float64, returns *dataframe.DataFrame, riskFreeRate float64) *Result {
	sigma := returns.CovarianceMatrix()
	means := returns.Mean()
	freq := periodsPerYear(returns)

	expReturn := 0.0
	for ii, wi := range w {
		expReturn += wi * means[ii]
	}
	expReturn *= freq

	vol := math.Sqrt(portfolioVariance(w, sigma)) * math.Sqrt(freq)

	sharpe := math.NaN()
	if vol > 0 {
		sharpe = (expReturn - riskFreeRate) / vol
	}

	weights := make(map[string]float64, len(w))
	contributions := make(map[string]float64, len(w))
	rc := riskContributions(w, sigma)
	for ii, colName := range returns.ColNames {
		weights[colName] = w[ii]
		contributions[colName] = rc[ii]
	}

	return &Result{
		Method:               method,
		Weights:              weights,
		ExpectedReturn:       expReturn,
		Volatility:           vol,
		SharpeRatio:          sharpe,
		DiversificationRatio: diversificationRatio(w, sigma),
		RiskContributions:    contributions,
		PeriodsPerYear:       freq,
	}
}
