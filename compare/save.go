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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Save writes the comparison to outputDir using prefix as the filename
// stem: <prefix>_comparison.csv, <prefix>_weights.csv,
// <prefix>_summary.json, and one <prefix>_<method>.json per successful
// method. The output directory is created if it does not exist.
func (c *Comparison) Save(outputDir string, prefix string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Error().Stack().Err(err).Str("OutputDir", outputDir).Msg("could not create output directory")
		return err
	}

	if err := c.saveComparisonCSV(filepath.Join(outputDir, fmt.Sprintf("%s_comparison.csv", prefix))); err != nil {
		return err
	}
	if err := c.saveWeightsCSV(filepath.Join(outputDir, fmt.Sprintf("%s_weights.csv", prefix))); err != nil {
		return err
	}
	if err := c.saveSummaryJSON(filepath.Join(outputDir, fmt.Sprintf("%s_summary.json", prefix))); err != nil {
		return err
	}

	for _, res := range c.Results {
		fn := filepath.Join(outputDir, fmt.Sprintf("%s_%s.json", prefix, res.Method))
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			log.Error().Stack().Err(err).Str("Method", res.Method).Msg("could not marshal result")
			return err
		}
		if err := os.WriteFile(fn, data, 0o644); err != nil {
			log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not write result file")
			return err
		}
	}

	log.Info().Str("OutputDir", outputDir).Str("Prefix", prefix).Int("NumMethods", len(c.Results)).Msg("saved comparison")
	return nil
}

// saveComparisonCSV writes one row per method with its headline
// metrics
func (c *Comparison) saveComparisonCSV(fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not create comparison csv")
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if err := w.Write([]string{"method", "expected_return", "volatility", "sharpe_ratio", "diversification_ratio"}); err != nil {
		return err
	}
	for _, res := range c.Results {
		record := []string{
			res.Method,
			formatFloat(res.ExpectedReturn),
			formatFloat(res.Volatility),
			formatFloat(res.SharpeRatio),
			formatFloat(res.DiversificationRatio),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// saveWeightsCSV writes one row per asset with a column per method
func (c *Comparison) saveWeightsCSV(fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not create weights csv")
		return err
	}
	defer fh.Close()

	header := []string{"asset"}
	for _, res := range c.Results {
		header = append(header, res.Method)
	}

	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, asset := range c.Assets {
		record := []string{asset}
		for _, res := range c.Results {
			record = append(record, formatFloat(res.Weights[asset]))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (c *Comparison) saveSummaryJSON(fn string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not marshal comparison summary")
		return err
	}
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		log.Error().Stack().Err(err).Str("FileName", fn).Msg("could not write summary file")
		return err
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
