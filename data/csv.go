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

package data

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/rs/zerolog/log"
)

// CSVProvider loads prices from a wide CSV file: a date column followed
// by one column per symbol. Empty cells are treated as missing quotes.
type CSVProvider struct {
	path string
}

func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{path: path}
}

func (c *CSVProvider) Name() string {
	return "csv"
}

func (c *CSVProvider) Prices(_ context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	subLog := log.With().Str("Provider", c.Name()).Str("Path", c.path).Logger()

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	fh, err := os.Open(c.path)
	if err != nil {
		subLog.Error().Err(err).Msg("could not open price file")
		return nil, err
	}
	defer fh.Close()

	records, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		subLog.Error().Err(err).Msg("could not parse price file")
		return nil, err
	}

	if len(records) < 2 || len(records[0]) < 2 {
		return nil, ErrMalformedCSV
	}

	// map requested symbols to csv columns
	header := records[0]
	colIdx := make(map[string]int, len(symbols))
	for idx, name := range header[1:] {
		colIdx[strings.ToUpper(strings.TrimSpace(name))] = idx + 1
	}

	for _, symbol := range symbols {
		if _, ok := colIdx[symbol]; !ok {
			subLog.Error().Str("Symbol", symbol).Msg("symbol not present in price file")
			return nil, ErrNotFound
		}
	}

	quotes := make(map[string]map[time.Time]float64, len(symbols))
	for _, symbol := range symbols {
		quotes[symbol] = make(map[time.Time]float64)
	}

	for _, record := range records[1:] {
		dt, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			subLog.Warn().Str("Date", record[0]).Msg("skipping row with unparseable date")
			continue
		}

		if dt.Before(begin) || dt.After(end) {
			continue
		}

		for _, symbol := range symbols {
			cell := strings.TrimSpace(record[colIdx[symbol]])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			quotes[symbol][dt] = v
		}
	}

	df := buildFrame(symbols, quotes)
	if df.Len() == 0 {
		return nil, ErrEmptyResult
	}

	return df, nil
}
