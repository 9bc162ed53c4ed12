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

package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-optimize/optimize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(methodsCmd)
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the available optimization methods",
	Run: func(cmd *cobra.Command, args []string) {
		optimize.InitializeMethodMap()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Shortcode", "Name", "Quick", "Description"})
		table.SetBorder(false)

		for _, info := range optimize.MethodList {
			table.Append([]string{
				info.Shortcode,
				info.Name,
				fmt.Sprintf("%t", info.Quick),
				info.Description,
			})
		}

		table.Render()
	},
}
