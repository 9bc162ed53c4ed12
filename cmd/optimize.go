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

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-optimize/optimize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&beginStr, "begin", "", "Start of the price history (YYYY-MM-DD); default 5 years ago")
	optimizeCmd.Flags().StringVar(&endStr, "end", "", "End of the price history (YYYY-MM-DD); default today")
	optimizeCmd.Flags().StringVar(&frequencyStr, "frequency", "monthly", "Return sampling frequency: daily, weekly, monthly, or annually")
	optimizeCmd.Flags().Float64Var(&minWeight, "min-weight", 0, "Minimum weight per asset")
	optimizeCmd.Flags().Float64Var(&maxWeight, "max-weight", 1, "Maximum weight per asset")
	optimizeCmd.Flags().Float64Var(&riskFreeRate, "risk-free-rate", 0, "Annual risk free rate used in the Sharpe ratio, e.g. 0.02")
	optimizeCmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory to write the result file to")
	optimizeCmd.Flags().StringVar(&filePrefix, "prefix", "portfolio", "Filename prefix for the result file")
	optimizeCmd.Flags().BoolVar(&noSave, "no-save", false, "Print the result but don't write a result file")
}

var optimizeCmd = &cobra.Command{
	Use:        "optimize [flags] MethodShortcode TICKER...",
	Short:      "Run a single optimization method and show its weights and risk contributions",
	Args:       cobra.MinimumNArgs(2),
	ArgAliases: []string{"MethodShortcode", "TICKER"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		shortcode := args[0]

		optimize.InitializeMethodMap()
		opt, err := optimize.New(shortcode, optimize.Constraints{MinWeight: minWeight, MaxWeight: maxWeight}, riskFreeRate)
		if err != nil {
			log.Fatal().Err(err).Str("Method", shortcode).Msg("could not create optimizer")
		}

		returns, err := loadReturns(ctx, args[1:])
		if err != nil {
			log.Fatal().Err(err).Strs("Symbols", args[1:]).Msg("could not load returns")
		}

		result, err := opt.Optimize(ctx, returns)
		if err != nil {
			log.Fatal().Err(err).Str("Method", shortcode).Msg("optimization failed")
		}

		fmt.Println(resultTable(result))
		fmt.Printf("Expected Return:       %.2f%%\n", result.ExpectedReturn*100)
		fmt.Printf("Volatility:            %.2f%%\n", result.Volatility*100)
		fmt.Printf("Sharpe Ratio:          %.4f\n", result.SharpeRatio)
		fmt.Printf("Diversification Ratio: %.4f\n", result.DiversificationRatio)

		if !noSave {
			if err := saveResult(result); err != nil {
				log.Fatal().Err(err).Msg("could not save result")
			}
		}
	},
}

// resultTable renders the weight and risk contribution of each asset
func resultTable(result *optimize.Result) string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Asset", "Weight", "Risk Contribution"})
	table.SetBorder(false)

	for _, asset := range sortedAssets(result) {
		table.Append([]string{
			asset,
			fmt.Sprintf("%.2f%%", result.Weights[asset]*100),
			fmt.Sprintf("%.2f%%", result.RiskContributions[asset]*100),
		})
	}

	table.Render()
	return s.String()
}

func sortedAssets(result *optimize.Result) []string {
	assets := make([]string, 0, len(result.Weights))
	for asset := range result.Weights {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

func saveResult(result *optimize.Result) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	fn := filepath.Join(outputDir, fmt.Sprintf("%s_%s.json", filePrefix, result.Method))
	return os.WriteFile(fn, data, 0o644)
}
