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

package data_test

import (
	"context"
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-optimize/data"
)

var _ = Describe("Tiingo", func() {
	var (
		ctx      context.Context
		provider data.Provider
		begin    time.Time
		end      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = data.NewTiingo("TEST")
		begin = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC)

		httpmock.Activate()

		httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/VFINX/prices`,
			httpmock.NewStringResponder(200, `[
{"date":"2021-03-01T00:00:00.000Z","close":100,"high":101,"low":99,"open":100,"volume":1000,"adjClose":100,"adjHigh":101,"adjLow":99,"adjOpen":100,"adjVolume":1000,"divCash":0,"splitFactor":1},
{"date":"2021-03-02T00:00:00.000Z","close":102,"high":103,"low":100,"open":101,"volume":1000,"adjClose":102,"adjHigh":103,"adjLow":100,"adjOpen":101,"adjVolume":1000,"divCash":0,"splitFactor":1},
{"date":"2021-03-03T00:00:00.000Z","close":101,"high":102,"low":100,"open":102,"volume":1000,"adjClose":101,"adjHigh":102,"adjLow":100,"adjOpen":102,"adjVolume":1000,"divCash":0,"splitFactor":1}]`))

		httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/PRIDX/prices`,
			httpmock.NewStringResponder(200, `[
{"date":"2021-03-01T00:00:00.000Z","close":50,"high":50,"low":50,"open":50,"volume":500,"adjClose":50,"adjHigh":50,"adjLow":50,"adjOpen":50,"adjVolume":500,"divCash":0,"splitFactor":1},
{"date":"2021-03-03T00:00:00.000Z","close":51,"high":51,"low":51,"open":51,"volume":500,"adjClose":51,"adjHigh":51,"adjLow":51,"adjOpen":51,"adjVolume":500,"divCash":0,"splitFactor":1}]`))

		httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/FAKETICKER/prices`,
			httpmock.NewStringResponder(404, `{"detail":"Not found."}`))
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	It("downloads adjusted close quotes", func() {
		df, err := provider.Prices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(df.Len()).To(Equal(3))
		Expect(df.Col("VFINX")).To(Equal([]float64{100, 102, 101}))
	})

	It("aligns symbols on the union of trading days", func() {
		df, err := provider.Prices(ctx, []string{"VFINX", "PRIDX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(df.Len()).To(Equal(3))
		// PRIDX has no quote on 2021-03-02
		pridx := df.Col("PRIDX")
		Expect(pridx[0]).To(Equal(50.0))
		Expect(pridx[2]).To(Equal(51.0))
	})

	It("errors for unknown symbols", func() {
		_, err := provider.Prices(ctx, []string{"FAKETICKER"}, begin, end)
		Expect(err).To(MatchError(data.ErrNotFound))
	})

	It("sends the configured token", func() {
		httpmock.Reset()
		var token string
		httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/VFINX/prices`,
			func(req *http.Request) (*http.Response, error) {
				token = req.URL.Query().Get("token")
				return httpmock.NewStringResponse(200, `[]`), nil
			})

		_, err := provider.Prices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(MatchError(data.ErrEmptyResult))
		Expect(token).To(Equal("TEST"))
	})
})
