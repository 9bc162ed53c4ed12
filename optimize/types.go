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
	"errors"

	"github.com/penny-vault/pv-optimize/dataframe"
)

var (
	ErrInsufficientData      = errors.New("returns table must have at least 2 rows and 1 column")
	ErrInfeasibleConstraints = errors.New("weight constraints cannot produce a fully invested portfolio")
	ErrUnknownMethod         = errors.New("unknown optimization method")
	ErrDidNotConverge        = errors.New("did not converge")
	ErrSingularCovariance    = errors.New("covariance matrix is singular")
)

// Result holds the output of a single optimization method. Expected
// return, volatility, and the Sharpe ratio are annualized using the
// sampling frequency of the input returns.
type Result struct {
	Method               string             `json:"method"`
	Weights              map[string]float64 `json:"weights"`
	ExpectedReturn       float64            `json:"expectedReturn"`
	Volatility           float64            `json:"volatility"`
	SharpeRatio          float64            `json:"sharpeRatio"`
	DiversificationRatio float64            `json:"diversificationRatio"`
	RiskContributions    map[string]float64 `json:"riskContributions"`
	PeriodsPerYear       float64            `json:"periodsPerYear"`
}

// Optimizer computes portfolio weights from a table of periodic returns
type Optimizer interface {
	Optimize(ctx context.Context, returns *dataframe.DataFrame) (*Result, error)
}

// Factory creates an optimizer bound to a set of constraints and a
// risk-free rate
type Factory func(constraints Constraints, riskFreeRate float64) Optimizer

// validateReturns checks that the returns frame is usable for
// optimization
func validateReturns(returns *dataframe.DataFrame) error {
	if returns == nil || returns.ColCount() < 1 || returns.Len() < 2 {
		return ErrInsufficientData
	}
	return nil
}
