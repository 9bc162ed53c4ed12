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

package optimize

import (
	"embed"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

//go:embed descriptors/*.toml
var resources embed.FS

// MethodInfo describes a registered optimization method
type MethodInfo struct {
	Name        string  `toml:"name" json:"name"`
	Shortcode   string  `toml:"shortcode" json:"shortcode"`
	Description string  `toml:"description" json:"description"`
	Quick       bool    `toml:"quick" json:"quick"`
	Factory     Factory `toml:"-" json:"-"`
}

// MethodList list of all methods in registration order
var MethodList = []*MethodInfo{}

// MethodMap map of methods keyed by shortcode
var MethodMap = make(map[string]*MethodInfo)

// InitializeMethodMap configure the method registry
func InitializeMethodMap() {
	if len(MethodList) != 0 {
		return
	}

	Register("equal_weight", NewEqualWeight)
	Register("inv_vol", NewInverseVolatility)
	Register("risk_parity", NewRiskParity)
	Register("min_variance", NewMinVariance)
	Register("max_sharpe", NewMaxSharpe)
	Register("max_div", NewMaxDiversification)
}

// Register loads the method descriptor and adds the method to the
// registry
func Register(shortcode string, factory Factory) {
	fn := fmt.Sprintf("descriptors/%s.toml", shortcode)
	file, err := resources.Open(fn)
	if err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to open descriptor")
		return
	}
	defer file.Close()

	doc, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to read descriptor")
		return
	}

	var info MethodInfo
	if err := toml.Unmarshal(doc, &info); err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to parse descriptor")
		return
	}

	info.Factory = factory

	MethodList = append(MethodList, &info)
	MethodMap[info.Shortcode] = &info
}

// New creates an optimizer for the given shortcode
func New(shortcode string, constraints Constraints, riskFreeRate float64) (Optimizer, error) {
	info, ok := MethodMap[shortcode]
	if !ok {
		return nil, ErrUnknownMethod
	}
	return info.Factory(constraints, riskFreeRate), nil
}
