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
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/penny-vault/pv-optimize/optimize"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAllMethodsFailed = errors.New("all optimization methods failed")
	ErrNoMethods        = errors.New("no optimization methods requested")
)

// Options control which methods run and under what constraints
type Options struct {
	Methods      []string             `json:"methods"`
	Constraints  optimize.Constraints `json:"constraints"`
	RiskFreeRate float64              `json:"riskFreeRate"`
}

// Winners names the best method for each headline metric. Failed
// methods never win a category.
type Winners struct {
	BestSharpe          string `json:"bestSharpe"`
	BestDiversification string `json:"bestDiversification"`
	LowestVolatility    string `json:"lowestVolatility"`
}

// Comparison holds the outcome of running a set of optimization
// methods against a single table of returns
type Comparison struct {
	RunID           string             `json:"runId"`
	ComputedOn      time.Time          `json:"computedOn"`
	Fingerprint     string             `json:"fingerprint"`
	StartDate       time.Time          `json:"startDate"`
	EndDate         time.Time          `json:"endDate"`
	Assets          []string           `json:"assets"`
	NumObservations int                `json:"numObservations"`
	Options         Options            `json:"options"`
	Results         []*optimize.Result `json:"results"`
	Errors          map[string]string  `json:"errors,omitempty"`
	Winners         Winners            `json:"winners"`
}

// Run executes each requested optimization method against the returns
// table and tabulates the outcome. Methods run concurrently; a method
// that fails is recorded in Errors and excluded from winner selection.
func Run(ctx context.Context, returns *dataframe.DataFrame, opts Options) (*Comparison, error) {
	ctx, span := otel.Tracer("github.com/penny-vault/pv-optimize").Start(ctx, "compare.Run")
	defer span.End()

	if len(opts.Methods) == 0 {
		return nil, ErrNoMethods
	}
	if returns == nil || returns.Len() < 2 {
		return nil, optimize.ErrInsufficientData
	}

	// fail fast on unknown shortcodes before spending time optimizing
	optimize.InitializeMethodMap()
	for _, shortcode := range opts.Methods {
		if _, ok := optimize.MethodMap[shortcode]; !ok {
			log.Error().Str("Method", shortcode).Msg("unknown optimization method")
			return nil, optimize.ErrUnknownMethod
		}
	}

	comparison := &Comparison{
		RunID:           uuid.New().String(),
		ComputedOn:      time.Now(),
		Fingerprint:     fingerprint(returns),
		StartDate:       returns.Start(),
		EndDate:         returns.End(),
		Assets:          returns.ColNames,
		NumObservations: returns.Len(),
		Options:         opts,
		Errors:          make(map[string]string),
	}

	resultSet := make([]*optimize.Result, len(opts.Methods))
	var errMutex sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for ii, shortcode := range opts.Methods {
		ii := ii
		shortcode := shortcode
		g.Go(func() error {
			opt, err := optimize.New(shortcode, opts.Constraints, opts.RiskFreeRate)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := opt.Optimize(ctx, returns)
			if err != nil {
				log.Warn().Err(err).Str("Method", shortcode).Msg("optimization method failed")
				errMutex.Lock()
				comparison.Errors[shortcode] = err.Error()
				errMutex.Unlock()
				return nil
			}

			log.Debug().Str("Method", shortcode).Dur("Elapsed", time.Since(start)).Msg("optimization method finished")
			resultSet[ii] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range resultSet {
		if res != nil {
			comparison.Results = append(comparison.Results, res)
		}
	}
	if len(comparison.Results) == 0 {
		return nil, ErrAllMethodsFailed
	}

	comparison.Winners = pickWinners(comparison.Results)
	return comparison, nil
}

// pickWinners scans successful results for the best method per metric.
// NaN metrics never win.
func pickWinners(results []*optimize.Result) Winners {
	var winners Winners
	bestSharpe := math.Inf(-1)
	bestDiv := math.Inf(-1)
	lowestVol := math.Inf(1)

	for _, res := range results {
		if !math.IsNaN(res.SharpeRatio) && res.SharpeRatio > bestSharpe {
			bestSharpe = res.SharpeRatio
			winners.BestSharpe = res.Method
		}
		if !math.IsNaN(res.DiversificationRatio) && res.DiversificationRatio > bestDiv {
			bestDiv = res.DiversificationRatio
			winners.BestDiversification = res.Method
		}
		if !math.IsNaN(res.Volatility) && res.Volatility < lowestVol {
			lowestVol = res.Volatility
			winners.LowestVolatility = res.Method
		}
	}

	return winners
}

// fingerprint calculates a 16-byte blake3 hash over the column names,
// dates, and values of the returns table. Two runs over identical
// inputs share a fingerprint even though their run ids differ.
func fingerprint(returns *dataframe.DataFrame) string {
	h := blake3.New()

	cols := make([]string, len(returns.ColNames))
	copy(cols, returns.ColNames)
	sort.Strings(cols)
	for _, name := range cols {
		if _, err := h.Write([]byte(name)); err != nil {
			log.Error().Stack().Err(err).Msg("could not write column name to blake3 hasher")
		}
	}

	buf := make([]byte, 8)
	for _, dt := range returns.Dates {
		binary.BigEndian.PutUint64(buf, uint64(dt.UTC().Unix()))
		if _, err := h.Write(buf); err != nil {
			log.Error().Stack().Err(err).Msg("could not write date to blake3 hasher")
		}
	}

	for _, name := range cols {
		colIdx := returns.ColIndex(name)
		for _, v := range returns.Vals[colIdx] {
			binary.BigEndian.PutUint64(buf, math.Float64bits(v))
			if _, err := h.Write(buf); err != nil {
				log.Error().Stack().Err(err).Msg("could not write value to blake3 hasher")
			}
		}
	}

	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:16])
}
