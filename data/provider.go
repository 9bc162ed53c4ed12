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
	"math"
	"sort"
	"strings"
	"time"

	"github.com/penny-vault/pv-optimize/dataframe"
)

// Provider retrieves adjusted close prices for a set of symbols over a
// date range. The returned dataframe has one column per symbol; rows
// where a symbol has no quote are filled with NaN.
type Provider interface {
	Name() string
	Prices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error)
}

// normalizeSymbols uppercases and de-duplicates the requested symbols,
// preserving order of first occurrence
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	res := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		res = append(res, symbol)
	}
	return res
}

// buildFrame aligns per-symbol quote maps on the union of their dates
func buildFrame(symbols []string, quotes map[string]map[time.Time]float64) *dataframe.DataFrame {
	dateSet := make(map[time.Time]bool)
	for _, series := range quotes {
		for dt := range series {
			dateSet[dt] = true
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for dt := range dateSet {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	df := dataframe.New(symbols...)
	for _, dt := range dates {
		vals := make([]float64, len(symbols))
		for idx, symbol := range symbols {
			if v, ok := quotes[symbol][dt]; ok {
				vals[idx] = v
			} else {
				vals[idx] = math.NaN()
			}
		}
		df.InsertRow(dt, vals...)
	}

	return df
}
