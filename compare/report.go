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

package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Table renders the metric comparison as an ascii table with one
// column per method. Winning cells are marked with an asterisk.
func (c *Comparison) Table() string {
	header := []string{"Metric"}
	for _, res := range c.Results {
		header = append(header, res.Method)
	}

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(header)
	table.SetBorder(false)

	rows := []struct {
		label  string
		value  func(idx int) float64
		pct    bool
		winner string
	}{
		{"Expected Return", func(idx int) float64 { return c.Results[idx].ExpectedReturn }, true, ""},
		{"Volatility", func(idx int) float64 { return c.Results[idx].Volatility }, true, c.Winners.LowestVolatility},
		{"Sharpe Ratio", func(idx int) float64 { return c.Results[idx].SharpeRatio }, false, c.Winners.BestSharpe},
		{"Diversification", func(idx int) float64 { return c.Results[idx].DiversificationRatio }, false, c.Winners.BestDiversification},
	}

	for _, row := range rows {
		cells := []string{row.label}
		for idx, res := range c.Results {
			cell := formatMetric(row.value(idx), row.pct)
			if res.Method == row.winner {
				cell += " *"
			}
			cells = append(cells, cell)
		}
		table.Append(cells)
	}

	table.Render()
	return s.String()
}

// WeightsTable renders the weight each method assigns to each asset
func (c *Comparison) WeightsTable() string {
	header := []string{"Asset"}
	for _, res := range c.Results {
		header = append(header, res.Method)
	}

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(header)
	table.SetBorder(false)

	for _, asset := range c.Assets {
		cells := []string{asset}
		for _, res := range c.Results {
			cells = append(cells, formatMetric(res.Weights[asset], true))
		}
		table.Append(cells)
	}

	footer := make([]string, len(header))
	footer[0] = "Num Assets"
	footer[1] = fmt.Sprintf("%d", len(c.Assets))
	table.SetFooter(footer)

	table.Render()
	return s.String()
}

// Summary returns a short human readable description of the winners
func (c *Comparison) Summary() string {
	s := &strings.Builder{}
	fmt.Fprintf(s, "Compared %d methods over %d observations (%s to %s)\n",
		len(c.Results), c.NumObservations,
		c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
	fmt.Fprintf(s, "  Best Sharpe Ratio:    %s\n", c.Winners.BestSharpe)
	fmt.Fprintf(s, "  Best Diversification: %s\n", c.Winners.BestDiversification)
	fmt.Fprintf(s, "  Lowest Volatility:    %s\n", c.Winners.LowestVolatility)
	for method, msg := range c.Errors {
		fmt.Fprintf(s, "  FAILED %s: %s\n", method, msg)
	}
	return s.String()
}

func formatMetric(v float64, pct bool) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if pct {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return fmt.Sprintf("%.4f", v)
}
