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

package dataframe

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PercentChange computes the percent change between successive rows of
// each column and returns a new dataframe. The first row of the input is
// consumed; a price frame of N rows yields a return frame of N-1 rows.
func (df *DataFrame) PercentChange() *DataFrame {
	newDf := New(df.ColNames...)
	if df.Len() < 2 {
		return newDf
	}

	for rowIdx := 1; rowIdx < df.Len(); rowIdx++ {
		vals := make([]float64, len(df.ColNames))
		for colIdx := range df.Vals {
			prev := df.Vals[colIdx][rowIdx-1]
			curr := df.Vals[colIdx][rowIdx]
			if prev == 0 {
				vals[colIdx] = math.NaN()
			} else {
				vals[colIdx] = curr/prev - 1.0
			}
		}
		newDf.InsertRow(df.Dates[rowIdx], vals...)
	}

	return newDf
}

// Mean returns the arithmetic mean of each column
func (df *DataFrame) Mean() []float64 {
	means := make([]float64, len(df.Vals))
	for colIdx, col := range df.Vals {
		means[colIdx] = stat.Mean(col, nil)
	}
	return means
}

// StdDev returns the sample standard deviation of each column
func (df *DataFrame) StdDev() []float64 {
	dev := make([]float64, len(df.Vals))
	for colIdx, col := range df.Vals {
		dev[colIdx] = stat.StdDev(col, nil)
	}
	return dev
}

// CovarianceMatrix computes the sample covariance matrix of the
// dataframe's columns
func (df *DataFrame) CovarianceMatrix() *mat.SymDense {
	rows := df.Len()
	cols := df.ColCount()

	// gonum expects observations in rows and variables in columns
	obs := mat.NewDense(rows, cols, nil)
	for colIdx, col := range df.Vals {
		for rowIdx, v := range col {
			obs.Set(rowIdx, colIdx, v)
		}
	}

	sigma := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(sigma, obs, nil)
	return sigma
}

// CorrelationMatrix computes the sample correlation matrix of the
// dataframe's columns
func (df *DataFrame) CorrelationMatrix() *mat.SymDense {
	rows := df.Len()
	cols := df.ColCount()

	obs := mat.NewDense(rows, cols, nil)
	for colIdx, col := range df.Vals {
		for rowIdx, v := range col {
			obs.Set(rowIdx, colIdx, v)
		}
	}

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, obs, nil)
	return corr
}
