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

package common

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ctx = context.Background()
var rdb *redis.Client
var cache *lru.Cache

var ErrCacheMiss = errors.New("key not found in cache")

func redisEnabled() bool {
	return viper.GetString("cache.redis_url") != ""
}

// SetupCache initializes the local LRU cache and, if configured, a
// redis tier shared between runs. Values are lz4 compressed before
// they are stored.
func SetupCache() {
	var err error
	if redisEnabled() {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			os.Exit(1)
		}

		rdb = redis.NewClient(opt)
	}

	localSize := viper.GetInt("cache.local_size")
	if localSize == 0 {
		localSize = 64
	}

	cache, err = lru.New(localSize)
	if err != nil {
		log.Error().Err(err).Msg("could not create LRU cache")
		os.Exit(1)
	}
}

func CacheSet(key string, data []byte) error {
	if cache == nil {
		SetupCache()
	}

	b2, err := Compress(data)
	if err != nil {
		return err
	}
	cache.Add(key, b2)

	if redisEnabled() {
		expires := time.Duration(viper.GetInt("cache.ttl")) * time.Second
		return rdb.Set(ctx, key, b2, expires).Err()
	}
	return nil
}

func CacheGet(key string) ([]byte, error) {
	if cache == nil {
		SetupCache()
	}

	if v2, ok := cache.Get(key); ok {
		return Decompress(v2.([]byte))
	}

	if redisEnabled() {
		expires := time.Duration(viper.GetInt("cache.ttl")) * time.Second
		val, err := rdb.GetEx(ctx, key, expires).Bytes()
		if err != nil {
			return nil, ErrCacheMiss
		}
		cache.Add(key, val)
		return Decompress(val)
	}

	return nil, ErrCacheMiss
}
