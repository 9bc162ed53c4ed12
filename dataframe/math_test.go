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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-optimize/dataframe"
)

var _ = Describe("Math", func() {
	Context("when computing percent change", func() {
		It("computes returns from prices", func() {
			df := dataframe.New("VFINX")
			df.InsertRow(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC), 100)
			df.InsertRow(time.Date(2021, 3, 2, 16, 0, 0, 0, time.UTC), 110)
			df.InsertRow(time.Date(2021, 3, 3, 16, 0, 0, 0, time.UTC), 99)

			rets := df.PercentChange()
			Expect(rets.Len()).To(Equal(2))
			Expect(rets.Vals[0][0]).To(BeNumerically("~", 0.10, 1e-9))
			Expect(rets.Vals[0][1]).To(BeNumerically("~", -0.10, 1e-9))
		})

		It("marks division by zero as NaN", func() {
			df := dataframe.New("VFINX")
			df.InsertRow(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC), 0)
			df.InsertRow(time.Date(2021, 3, 2, 16, 0, 0, 0, time.UTC), 10)

			rets := df.PercentChange()
			Expect(math.IsNaN(rets.Vals[0][0])).To(BeTrue())
		})

		It("returns an empty frame for a single row", func() {
			df := dataframe.New("VFINX")
			df.InsertRow(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC), 100)
			Expect(df.PercentChange().Len()).To(Equal(0))
		})
	})

	Context("when computing summary statistics", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = dataframe.New("A", "B")
			vals := [][]float64{
				{0.01, 0.02},
				{-0.01, 0.0},
				{0.02, 0.04},
				{0.0, -0.02},
			}
			for ii, row := range vals {
				df.InsertRow(time.Date(2021, 3, 1+ii, 16, 0, 0, 0, time.UTC), row...)
			}
		})

		It("computes the column means", func() {
			means := df.Mean()
			Expect(means[0]).To(BeNumerically("~", 0.005, 1e-9))
			Expect(means[1]).To(BeNumerically("~", 0.01, 1e-9))
		})

		It("computes a symmetric covariance matrix", func() {
			sigma := df.CovarianceMatrix()
			r, c := sigma.Dims()
			Expect(r).To(Equal(2))
			Expect(c).To(Equal(2))
			Expect(sigma.At(0, 1)).To(BeNumerically("~", sigma.At(1, 0), 1e-12))

			// diagonal of the covariance matrix matches the column variances
			dev := df.StdDev()
			Expect(sigma.At(0, 0)).To(BeNumerically("~", dev[0]*dev[0], 1e-12))
			Expect(sigma.At(1, 1)).To(BeNumerically("~", dev[1]*dev[1], 1e-12))
		})

		It("computes unit diagonal correlation", func() {
			corr := df.CorrelationMatrix()
			Expect(corr.At(0, 0)).To(BeNumerically("~", 1.0, 1e-12))
			Expect(corr.At(1, 1)).To(BeNumerically("~", 1.0, 1e-12))
		})
	})
})
