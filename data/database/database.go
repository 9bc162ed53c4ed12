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

package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PgxIface is the subset of the pgx pool interface used by the eod
// provider; it is satisfied by both pgxpool.Pool and pgxmock conns
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

var (
	ErrNotConnected = errors.New("database not connected")

	pool PgxIface
)

// Connect to the database pointed at by database.url
func Connect(ctx context.Context) error {
	dbPool, err := pgxpool.Connect(ctx, viper.GetString("database.url"))
	if err != nil {
		log.Error().Err(err).Msg("could not connect to database")
		return err
	}

	pool = dbPool
	return nil
}

// SetPool replaces the active connection pool; used by tests to inject
// a mock connection
func SetPool(p PgxIface) {
	pool = p
}

// Pool returns the active connection pool
func Pool() (PgxIface, error) {
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool, nil
}
