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
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-optimize/common"
	"github.com/penny-vault/pv-optimize/data/database"
	"github.com/penny-vault/pv-optimize/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Manager resolves the configured data provider and caches price frames
// between requests
type Manager struct {
	provider Provider
	locker   sync.RWMutex
}

var (
	managerOnce     sync.Once
	managerInstance *Manager
)

// GetManagerInstance returns the data manager singleton, selecting a
// provider from configuration: an explicit csv file wins, then the
// penny-vault database, then tiingo
func GetManagerInstance() *Manager {
	managerOnce.Do(func() {
		managerInstance = &Manager{}

		switch {
		case viper.GetString("data.csv") != "":
			managerInstance.provider = NewCSVProvider(viper.GetString("data.csv"))
		case viper.GetString("database.url") != "":
			if err := database.Connect(context.Background()); err != nil {
				log.Error().Err(err).Msg("could not connect to database")
			} else {
				managerInstance.provider = NewPvDb()
			}
		case viper.GetString("tiingo.token") != "":
			managerInstance.provider = NewTiingo(viper.GetString("tiingo.token"))
		default:
			log.Warn().Msg("no data provider configured; set data.csv, database.url, or tiingo.token")
		}
	})

	return managerInstance
}

// SetProvider overrides the configured provider; used by tests
func (manager *Manager) SetProvider(provider Provider) {
	manager.locker.Lock()
	defer manager.locker.Unlock()
	manager.provider = provider
}

// Prices returns adjusted close prices for the requested symbols. Rows
// where any symbol is missing a quote are dropped so that downstream
// return calculations are aligned.
func (manager *Manager) Prices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	manager.locker.RLock()
	provider := manager.provider
	manager.locker.RUnlock()

	if provider == nil {
		return nil, ErrNoProvider
	}

	key := cacheKey(provider.Name(), symbols, begin, end)
	if raw, err := common.CacheGet(key); err == nil {
		df := &dataframe.DataFrame{}
		if err := json.Unmarshal(raw, df); err == nil {
			log.Debug().Str("Key", key).Msg("price cache hit")
			return df, nil
		}
	}

	df, err := provider.Prices(ctx, symbols, begin, end)
	if err != nil {
		return nil, err
	}

	df = df.DropNA()
	if df.Len() == 0 {
		return nil, ErrEmptyResult
	}

	if raw, err := json.Marshal(df); err == nil {
		if err := common.CacheSet(key, raw); err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not cache price frame")
		}
	}

	return df, nil
}

// Returns loads prices, resamples them to the requested frequency, and
// converts them to periodic returns
func (manager *Manager) Returns(ctx context.Context, symbols []string, begin, end time.Time, frequency dataframe.Frequency) (*dataframe.DataFrame, error) {
	prices, err := manager.Prices(ctx, symbols, begin, end)
	if err != nil {
		return nil, err
	}

	returns := prices.Frequency(frequency).PercentChange().DropNA()
	if returns.Len() == 0 {
		return nil, ErrEmptyResult
	}

	return returns, nil
}

func cacheKey(provider string, symbols []string, begin, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", provider, strings.Join(normalizeSymbols(symbols), ","),
		begin.Format("2006-01-02"), end.Format("2006-01-02"))
}
