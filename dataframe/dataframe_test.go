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

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on dropna", func() {
			df = df.DropNA()
			Expect(df.Len()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})

		It("returns the zero time for start and end", func() {
			Expect(df.Start()).To(Equal(time.Time{}))
			Expect(df.End()).To(Equal(time.Time{}))
		})
	})

	Context("with a week of daily values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = dataframe.New("VFINX", "PRIDX")
			for ii := 0; ii < 5; ii++ {
				df.InsertRow(time.Date(2021, 3, 1+ii, 16, 0, 0, 0, time.UTC), float64(ii+1), float64(ii+4))
			}
		})

		It("has the expected dimensions", func() {
			Expect(df.Len()).To(Equal(5))
			Expect(df.ColCount()).To(Equal(2))
		})

		It("looks up columns by name", func() {
			Expect(df.ColIndex("PRIDX")).To(Equal(1))
			Expect(df.ColIndex("VUSTX")).To(Equal(-1))
			Expect(df.Col("VFINX")).To(Equal([]float64{1, 2, 3, 4, 5}))
		})

		It("returns rows as a map", func() {
			row := df.Row(2)
			Expect(row["VFINX"]).To(Equal(3.0))
			Expect(row["PRIDX"]).To(Equal(6.0))
		})

		It("copies without aliasing the original", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 99
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("trims to a date range inclusive of the end date", func() {
			df2 := df.Trim(time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2021, 3, 4, 16, 0, 0, 0, time.UTC))
			Expect(df2.Len()).To(Equal(3))
			Expect(df2.Vals[0]).To(Equal([]float64{2, 3, 4}))
		})

		It("returns an empty frame when the range is before the data", func() {
			df2 := df.Trim(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
			Expect(df2.Len()).To(Equal(0))
		})

		It("selects the last row", func() {
			df2 := df.Last()
			Expect(df2.Len()).To(Equal(1))
			Expect(df2.Vals[0][0]).To(Equal(5.0))
			Expect(df2.Vals[1][0]).To(Equal(8.0))
		})

		It("inserts an aligned column", func() {
			df.Insert("VUSTX", []float64{9, 10, 11, 12, 13})
			Expect(df.ColCount()).To(Equal(3))
			Expect(df.Col("VUSTX")).To(Equal([]float64{9, 10, 11, 12, 13}))
		})

		It("panics when an inserted column does not align with the date index", func() {
			Expect(func() {
				df.Insert("VUSTX", []float64{9, 10})
			}).To(Panic())
		})

		It("panics when a row is inserted out of order", func() {
			Expect(func() {
				df.InsertRow(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC), 1, 1)
			}).To(Panic())
		})

		It("panics when the wrong number of vals is inserted", func() {
			Expect(func() {
				df.InsertRow(time.Date(2021, 4, 1, 16, 0, 0, 0, time.UTC), 1)
			}).To(Panic())
		})

		It("renders a table", func() {
			out := df.Table()
			Expect(out).To(ContainSubstring("VFINX"))
			Expect(out).To(ContainSubstring("2021-03-01"))
		})
	})

	Context("with NaN values", func() {
		It("drops rows containing NaN", func() {
			df := dataframe.New("VFINX")
			df.InsertRow(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC), 1)
			df.InsertRow(time.Date(2021, 3, 2, 16, 0, 0, 0, time.UTC), math.NaN())
			df.InsertRow(time.Date(2021, 3, 3, 16, 0, 0, 0, time.UTC), 3)

			df = df.DropNA()
			Expect(df.Len()).To(Equal(2))
			Expect(df.Vals[0]).To(Equal([]float64{1, 3}))
		})
	})

	Context("when resampling", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = dataframe.New("VFINX")
			for ii := 0; ii < 60; ii++ {
				df.InsertRow(time.Date(2021, 1, 1, 16, 0, 0, 0, time.UTC).AddDate(0, 0, ii), float64(ii))
			}
		})

		It("keeps the last row of each month", func() {
			monthly := df.Frequency(dataframe.Monthly)
			Expect(monthly.Len()).To(Equal(3))
			Expect(monthly.Dates[0]).To(Equal(time.Date(2021, 1, 31, 16, 0, 0, 0, time.UTC)))
			Expect(monthly.Dates[1]).To(Equal(time.Date(2021, 2, 28, 16, 0, 0, 0, time.UTC)))
		})

		It("keeps the last row of each week", func() {
			weekly := df.Frequency(dataframe.Weekly)
			// Jan 1 2021 is a Friday; the first ISO week ends Jan 3
			Expect(weekly.Dates[0]).To(Equal(time.Date(2021, 1, 3, 16, 0, 0, 0, time.UTC)))
		})

		It("returns a copy at the daily frequency", func() {
			daily := df.Frequency(dataframe.Daily)
			Expect(daily.Len()).To(Equal(df.Len()))
		})
	})
})
