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
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/penny-vault/pv-optimize/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type tiingo struct {
	apikey string
}

type tiingoJSONResponse struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	Volume      int64   `json:"volume"`
	AdjClose    float64 `json:"adjClose"`
	AdjHigh     float64 `json:"adjHigh"`
	AdjLow      float64 `json:"adjLow"`
	AdjOpen     float64 `json:"adjOpen"`
	AdjVolume   int64   `json:"adjVolume"`
	DivCash     float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

var tiingoAPI = "https://api.tiingo.com"

// NewTiingo Create a new Tiingo data provider
func NewTiingo(key string) Provider {
	return &tiingo{
		apikey: key,
	}
}

func (t *tiingo) Name() string {
	return "tiingo"
}

// Prices downloads daily adjusted close quotes for each symbol and
// aligns them on the union of their trading days
func (t *tiingo) Prices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.Prices")
	defer span.End()

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	span.SetAttributes(
		attribute.Int("NumSymbols", len(symbols)),
		attribute.String("Begin", begin.Format("2006-01-02")),
		attribute.String("End", end.Format("2006-01-02")),
	)

	quotes := make(map[string]map[time.Time]float64, len(symbols))
	for _, symbol := range symbols {
		series, err := t.dailyQuotes(ctx, symbol, begin, end)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "tiingo download failed")
			return nil, err
		}
		quotes[symbol] = series
	}

	df := buildFrame(symbols, quotes)
	if df.Len() == 0 {
		return nil, ErrEmptyResult
	}

	return df, nil
}

func (t *tiingo) dailyQuotes(ctx context.Context, symbol string, begin, end time.Time) (map[time.Time]float64, error) {
	subLog := log.With().Str("Provider", t.Name()).Str("Symbol", symbol).Logger()

	url := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s&format=json&resampleFreq=daily&token=%s",
		tiingoAPI, symbol, begin.Format("2006-01-02"), end.Format("2006-01-02"), t.apikey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		subLog.Error().Err(err).Msg("tiingo http request failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		subLog.Error().Int("StatusCode", resp.StatusCode).Msg("tiingo returned an error status")
		return nil, ErrNotFound
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		subLog.Error().Err(err).Msg("could not read tiingo response body")
		return nil, err
	}

	quotes := []tiingoJSONResponse{}
	if err := json.Unmarshal(body, &quotes); err != nil {
		subLog.Error().Err(err).Msg("could not unmarshal tiingo response")
		return nil, err
	}

	series := make(map[time.Time]float64, len(quotes))
	for _, quote := range quotes {
		dt, err := time.Parse("2006-01-02T15:04:05.000Z", quote.Date)
		if err != nil {
			subLog.Warn().Str("Date", quote.Date).Msg("skipping quote with unparseable date")
			continue
		}
		dt = time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
		series[dt] = quote.AdjClose
	}

	return series, nil
}
