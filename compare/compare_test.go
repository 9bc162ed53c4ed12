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

package compare_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-optimize/compare"
	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/penny-vault/pv-optimize/optimize"
)

func testReturns() *dataframe.DataFrame {
	df := dataframe.New("AAA", "BBB")
	patternA := []float64{1, 1, -1, -1}
	patternB := []float64{1, -1, 1, -1}
	start := time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC)
	for ii := 0; ii < 4; ii++ {
		df.InsertRow(start.AddDate(0, 0, ii),
			0.002+0.02*patternA[ii],
			0.001+0.01*patternB[ii])
	}
	return df
}

var _ = Describe("Compare", func() {
	var (
		ctx     context.Context
		returns *dataframe.DataFrame
		opts    compare.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		returns = testReturns()
		opts = compare.Options{
			Methods:     []string{"equal_weight", "inv_vol", "min_variance"},
			Constraints: optimize.DefaultConstraints(),
		}
	})

	Context("when running multiple methods", func() {
		It("returns a result per method", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Results).To(HaveLen(3))
			Expect(comparison.Errors).To(BeEmpty())
		})

		It("preserves the requested method order", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Results[0].Method).To(Equal("equal_weight"))
			Expect(comparison.Results[1].Method).To(Equal("inv_vol"))
			Expect(comparison.Results[2].Method).To(Equal("min_variance"))
		})

		It("records the input window", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.NumObservations).To(Equal(4))
			Expect(comparison.StartDate).To(Equal(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC)))
			Expect(comparison.EndDate).To(Equal(time.Date(2021, 3, 4, 16, 0, 0, 0, time.UTC)))
			Expect(comparison.Assets).To(Equal([]string{"AAA", "BBB"}))
		})

		It("assigns a unique run id but a stable fingerprint", func() {
			first, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			second, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())

			Expect(first.RunID).NotTo(Equal(second.RunID))
			Expect(first.Fingerprint).To(Equal(second.Fingerprint))
			Expect(first.Fingerprint).To(HaveLen(32))
		})

		It("selects minimum variance as the lowest volatility winner", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Winners.LowestVolatility).To(Equal("min_variance"))
		})
	})

	Context("when inputs are invalid", func() {
		It("errors when no methods are requested", func() {
			opts.Methods = nil
			_, err := compare.Run(ctx, returns, opts)
			Expect(err).To(MatchError(compare.ErrNoMethods))
		})

		It("errors on an unknown method", func() {
			opts.Methods = []string{"equal_weight", "crystal_ball"}
			_, err := compare.Run(ctx, returns, opts)
			Expect(err).To(MatchError(optimize.ErrUnknownMethod))
		})

		It("errors when the returns table is too short", func() {
			short := dataframe.New("AAA")
			short.InsertRow(time.Date(2021, 3, 1, 16, 0, 0, 0, time.UTC), 0.01)
			_, err := compare.Run(ctx, short, opts)
			Expect(err).To(MatchError(optimize.ErrInsufficientData))
		})

		It("excludes failed methods from winners", func() {
			// a two asset cap of 0.25 cannot reach full investment
			opts.Constraints = optimize.Constraints{MinWeight: 0, MaxWeight: 0.25}
			_, err := compare.Run(ctx, returns, opts)
			Expect(err).To(MatchError(compare.ErrAllMethodsFailed))
		})
	})

	Context("when rendering reports", func() {
		It("builds a metric table with a column per method", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())

			tbl := comparison.Table()
			// tablewriter renders underscores in headers as spaces
			Expect(tbl).To(ContainSubstring("EQUAL WEIGHT"))
			Expect(tbl).To(ContainSubstring("MIN VARIANCE"))
			Expect(tbl).To(ContainSubstring("Sharpe Ratio"))
		})

		It("builds a weights table with a row per asset", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())

			tbl := comparison.WeightsTable()
			Expect(tbl).To(ContainSubstring("AAA"))
			Expect(tbl).To(ContainSubstring("BBB"))
		})

		It("names the winners in the summary", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Summary()).To(ContainSubstring("Lowest Volatility:    min_variance"))
		})
	})

	Context("when saving results", func() {
		var outputDir string

		BeforeEach(func() {
			outputDir = GinkgoT().TempDir()
		})

		It("writes all output files", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Save(outputDir, "demo")).To(Succeed())

			for _, fn := range []string{
				"demo_comparison.csv", "demo_weights.csv", "demo_summary.json",
				"demo_equal_weight.json", "demo_inv_vol.json", "demo_min_variance.json",
			} {
				_, err := os.Stat(filepath.Join(outputDir, fn))
				Expect(err).To(BeNil(), fn)
			}
		})

		It("writes one comparison row per method", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Save(outputDir, "demo")).To(Succeed())

			fh, err := os.Open(filepath.Join(outputDir, "demo_comparison.csv"))
			Expect(err).To(BeNil())
			defer fh.Close()

			records, err := csv.NewReader(fh).ReadAll()
			Expect(err).To(BeNil())
			Expect(records).To(HaveLen(4))
			Expect(records[0]).To(Equal([]string{"method", "expected_return", "volatility", "sharpe_ratio", "diversification_ratio"}))
			Expect(records[1][0]).To(Equal("equal_weight"))
		})

		It("round trips the summary json", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())
			Expect(comparison.Save(outputDir, "demo")).To(Succeed())

			raw, err := os.ReadFile(filepath.Join(outputDir, "demo_summary.json"))
			Expect(err).To(BeNil())

			var loaded compare.Comparison
			Expect(json.Unmarshal(raw, &loaded)).To(Succeed())
			Expect(loaded.RunID).To(Equal(comparison.RunID))
			Expect(loaded.Winners.LowestVolatility).To(Equal("min_variance"))
			Expect(loaded.Results).To(HaveLen(3))
		})

		It("creates the output directory when missing", func() {
			comparison, err := compare.Run(ctx, returns, opts)
			Expect(err).To(BeNil())

			nested := filepath.Join(outputDir, "reports", "2021")
			Expect(comparison.Save(nested, "demo")).To(Succeed())
			_, err = os.Stat(filepath.Join(nested, "demo_summary.json"))
			Expect(err).To(BeNil())
		})
	})
})
