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
	"time"

	"github.com/penny-vault/pv-optimize/data/database"
	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/penny-vault/pv-optimize/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// PvDb loads end-of-day quotes from the penny-vault postgres database
type PvDb struct {
}

// NewPvDb create a new PvDb data provider
func NewPvDb() *PvDb {
	return &PvDb{}
}

func (p *PvDb) Name() string {
	return "pvdb"
}

// Prices queries the eod table for adjusted close quotes of the
// requested symbols
func (p *PvDb) Prices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "pvdb.Prices")
	defer span.End()

	subLog := log.With().Str("Provider", p.Name()).Time("Begin", begin).Time("End", end).Logger()

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to Prices")
		return nil, ErrInvalidTimeRange
	}

	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	pool, err := database.Pool()
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get database pool")
		return nil, err
	}

	sql := `SELECT ticker, event_date, adj_close FROM eod WHERE ticker = ANY($1) AND event_date BETWEEN $2 AND $3 ORDER BY event_date ASC, ticker ASC`
	rows, err := pool.Query(ctx, sql, symbols, begin, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "eod query failed")
		subLog.Error().Stack().Err(err).Msg("could not query eod prices")
		return nil, err
	}
	defer rows.Close()

	quotes := make(map[string]map[time.Time]float64, len(symbols))
	for _, symbol := range symbols {
		quotes[symbol] = make(map[time.Time]float64)
	}

	for rows.Next() {
		var (
			ticker    string
			eventDate time.Time
			adjClose  float64
		)
		if err := rows.Scan(&ticker, &eventDate, &adjClose); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan eod row")
			return nil, err
		}

		if series, ok := quotes[ticker]; ok {
			series[eventDate] = adjClose
		}
	}

	df := buildFrame(symbols, quotes)
	if df.Len() == 0 {
		return nil, ErrEmptyResult
	}

	return df, nil
}
