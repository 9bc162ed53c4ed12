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

package optimize_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-optimize/optimize"
)

func weightSum(w []float64) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

var _ = Describe("Constraints", func() {
	Context("when validating", func() {
		It("accepts the default constraints", func() {
			Expect(optimize.DefaultConstraints().Validate(5)).To(Succeed())
		})

		It("rejects negative minimum weights", func() {
			c := optimize.Constraints{MinWeight: -0.1, MaxWeight: 1}
			Expect(c.Validate(3)).To(MatchError(optimize.ErrInfeasibleConstraints))
		})

		It("rejects a cap too small to invest fully", func() {
			c := optimize.Constraints{MinWeight: 0, MaxWeight: 0.2}
			Expect(c.Validate(3)).To(MatchError(optimize.ErrInfeasibleConstraints))
		})

		It("rejects a floor above the cap", func() {
			c := optimize.Constraints{MinWeight: 0.5, MaxWeight: 0.25}
			Expect(c.Validate(3)).To(MatchError(optimize.ErrInfeasibleConstraints))
		})
	})

	Context("when projecting", func() {
		It("is a no-op for feasible weights", func() {
			c := optimize.DefaultConstraints()
			w := c.Project([]float64{0.25, 0.25, 0.5})
			Expect(w[0]).To(BeNumerically("~", 0.25, 1e-6))
			Expect(w[2]).To(BeNumerically("~", 0.5, 1e-6))
		})

		It("sums to one after projection", func() {
			c := optimize.Constraints{MinWeight: 0, MaxWeight: 0.4}
			w := c.Project([]float64{0.7, 0.2, 0.1})
			Expect(weightSum(w)).To(BeNumerically("~", 1.0, 1e-6))
		})

		It("caps weights at the maximum", func() {
			c := optimize.Constraints{MinWeight: 0, MaxWeight: 0.4}
			w := c.Project([]float64{0.5, 0.5, 0.0})
			Expect(w[0]).To(BeNumerically("<=", 0.4+1e-9))
			Expect(w[1]).To(BeNumerically("<=", 0.4+1e-9))
			Expect(w[2]).To(BeNumerically("~", 0.2, 1e-6))
		})

		It("raises weights to the minimum", func() {
			c := optimize.Constraints{MinWeight: 0.1, MaxWeight: 1}
			w := c.Project([]float64{1.0, 0.0, 0.0})
			Expect(w[1]).To(BeNumerically(">=", 0.1-1e-9))
			Expect(w[2]).To(BeNumerically(">=", 0.1-1e-9))
			Expect(weightSum(w)).To(BeNumerically("~", 1.0, 1e-6))
		})

		It("renormalizes weights that do not sum to one", func() {
			c := optimize.DefaultConstraints()
			w := c.Project([]float64{2.0, 2.0})
			Expect(w[0]).To(BeNumerically("~", 0.5, 1e-6))
			Expect(w[1]).To(BeNumerically("~", 0.5, 1e-6))
		})

		It("assigns everything to a single asset", func() {
			c := optimize.DefaultConstraints()
			Expect(c.Project([]float64{0.3})).To(Equal([]float64{1.0}))
		})
	})
})
