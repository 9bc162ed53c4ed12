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
	"strings"
	"time"

	"github.com/penny-vault/pv-optimize/compare"
	"github.com/penny-vault/pv-optimize/data"
	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/penny-vault/pv-optimize/observability/opentelemetry"
	"github.com/penny-vault/pv-optimize/optimize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	beginStr     string
	endStr       string
	frequencyStr string
	methodsStr   string
	quick        bool
	minWeight    float64
	maxWeight    float64
	riskFreeRate float64
	outputDir    string
	filePrefix   string
	noSave       bool
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&beginStr, "begin", "", "Start of the price history (YYYY-MM-DD); default 5 years ago")
	compareCmd.Flags().StringVar(&endStr, "end", "", "End of the price history (YYYY-MM-DD); default today")
	compareCmd.Flags().StringVar(&frequencyStr, "frequency", "monthly", "Return sampling frequency: daily, weekly, monthly, or annually")
	compareCmd.Flags().StringVar(&methodsStr, "methods", "", "Comma separated list of method shortcodes; default all")
	compareCmd.Flags().BoolVar(&quick, "quick", false, "Only run methods with closed-form or near closed-form solutions")
	compareCmd.Flags().Float64Var(&minWeight, "min-weight", 0, "Minimum weight per asset")
	compareCmd.Flags().Float64Var(&maxWeight, "max-weight", 1, "Maximum weight per asset")
	compareCmd.Flags().Float64Var(&riskFreeRate, "risk-free-rate", 0, "Annual risk free rate used in the Sharpe ratio, e.g. 0.02")
	compareCmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory to write result files to")
	compareCmd.Flags().StringVar(&filePrefix, "prefix", "portfolio", "Filename prefix for result files")
	compareCmd.Flags().BoolVar(&noSave, "no-save", false, "Print the comparison but don't write result files")
}

var compareCmd = &cobra.Command{
	Use:        "compare [flags] TICKER...",
	Short:      "Run every optimization method against a set of assets and compare the results",
	Args:       cobra.MinimumNArgs(1),
	ArgAliases: []string{"TICKER"},
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Warn().Err(err).Msg("could not setup opentelemetry")
			} else {
				defer shutdown(context.Background())
			}
		}

		ctx := context.Background()

		returns, err := loadReturns(ctx, args)
		if err != nil {
			log.Fatal().Err(err).Strs("Symbols", args).Msg("could not load returns")
		}

		comparison, err := compare.Run(ctx, returns, compare.Options{
			Methods:      selectMethods(),
			Constraints:  optimize.Constraints{MinWeight: minWeight, MaxWeight: maxWeight},
			RiskFreeRate: riskFreeRate,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("comparison failed")
		}

		fmt.Println(comparison.Table())
		fmt.Println(comparison.WeightsTable())
		fmt.Println(comparison.Summary())

		if !noSave {
			if err := comparison.Save(outputDir, filePrefix); err != nil {
				log.Fatal().Err(err).Msg("could not save comparison")
			}
		}
	},
}

// selectMethods resolves the --methods / --quick flags into a list of
// method shortcodes
func selectMethods() []string {
	if methodsStr != "" {
		methods := strings.Split(methodsStr, ",")
		for ii := range methods {
			methods[ii] = strings.TrimSpace(methods[ii])
		}
		return methods
	}

	optimize.InitializeMethodMap()
	methods := make([]string, 0, len(optimize.MethodList))
	for _, info := range optimize.MethodList {
		if quick && !info.Quick {
			continue
		}
		methods = append(methods, info.Shortcode)
	}
	return methods
}

// loadReturns fetches prices for the requested window and converts
// them to periodic returns
func loadReturns(ctx context.Context, symbols []string) (*dataframe.DataFrame, error) {
	begin, end, err := parseDateRange()
	if err != nil {
		return nil, err
	}

	frequency, err := parseFrequency()
	if err != nil {
		return nil, err
	}

	manager := data.GetManagerInstance()
	return manager.Returns(ctx, symbols, begin, end, frequency)
}

func parseDateRange() (time.Time, time.Time, error) {
	end := time.Now()
	begin := end.AddDate(-5, 0, 0)

	var err error
	if beginStr != "" {
		if begin, err = time.Parse("2006-01-02", beginStr); err != nil {
			return begin, end, fmt.Errorf("invalid begin date %q: %w", beginStr, err)
		}
	}
	if endStr != "" {
		if end, err = time.Parse("2006-01-02", endStr); err != nil {
			return begin, end, fmt.Errorf("invalid end date %q: %w", endStr, err)
		}
	}
	if !begin.Before(end) {
		return begin, end, data.ErrInvalidTimeRange
	}

	return begin, end, nil
}

func parseFrequency() (dataframe.Frequency, error) {
	switch strings.ToLower(frequencyStr) {
	case "daily":
		return dataframe.Daily, nil
	case "weekly":
		return dataframe.Weekly, nil
	case "monthly":
		return dataframe.Monthly, nil
	case "annually":
		return dataframe.Annually, nil
	}
	return dataframe.Daily, fmt.Errorf("%w: %s", dataframe.ErrUnknownFrequency, frequencyStr)
}
