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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/penny-vault/pv-optimize/data"
	"github.com/penny-vault/pv-optimize/data/database"
	"github.com/penny-vault/pv-optimize/pgxmockhelper"
)

var _ = Describe("PvDb", func() {
	var (
		ctx      context.Context
		dbPool   pgxmock.PgxConnIface
		provider *data.PvDb
		begin    time.Time
		end      time.Time
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)

		provider = data.NewPvDb()
		begin = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC)
	})

	It("builds a price frame from eod rows", func() {
		rows := pgxmock.NewRows([]string{"ticker", "event_date", "adj_close"}).
			AddRow("VFINX", time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), 100.0).
			AddRow("PRIDX", time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), 50.0).
			AddRow("VFINX", time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), 102.0).
			AddRow("PRIDX", time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), 51.0)
		dbPool.ExpectQuery("SELECT ticker, event_date, adj_close FROM eod").WillReturnRows(rows)

		df, err := provider.Prices(ctx, []string{"VFINX", "PRIDX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(df.Len()).To(Equal(2))
		Expect(df.Col("VFINX")).To(Equal([]float64{100, 102}))
		Expect(df.Col("PRIDX")).To(Equal([]float64{50, 51}))
	})

	It("loads eod rows from a csv fixture", func() {
		pgxmockhelper.MockEodQuery(dbPool, "testdata/eod.csv", begin, end)

		df, err := provider.Prices(ctx, []string{"VFINX", "PRIDX"}, begin, end)
		Expect(err).To(BeNil())
		// fixture rows outside [begin, end] are filtered out
		Expect(df.Len()).To(Equal(3))
		Expect(df.Col("VFINX")).To(Equal([]float64{100, 102, 101}))
		Expect(df.Col("PRIDX")).To(Equal([]float64{50, 51, 52}))
	})

	It("errors when no rows are returned", func() {
		rows := pgxmock.NewRows([]string{"ticker", "event_date", "adj_close"})
		dbPool.ExpectQuery("SELECT ticker, event_date, adj_close FROM eod").WillReturnRows(rows)

		_, err := provider.Prices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(MatchError(data.ErrEmptyResult))
	})

	It("rejects an invalid time range without querying", func() {
		_, err := provider.Prices(ctx, []string{"VFINX"}, end, begin)
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
	})
})
