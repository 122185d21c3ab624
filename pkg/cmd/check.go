// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/consensys/go-ctl/pkg/ctl"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] trace_file lookup_file",
	Short: "Check a trace against a set of cross-table lookups.",
	Long: `Check a trace against a set of cross-table lookups by direct
multiset comparison.  This involves no cryptography: each lookup's filtered
payload rows are collected on both sides and compared for an exact multiset
match, with any discrepancy reported row by row.  Traces and lookups are
given as JSON files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Parse trace
		traces := readTraceFile(args[0])
		// Parse lookups
		lookups := readLookupsFile(args[1])
		// Go!
		if err := ctl.CheckCrossTableLookups(traces, lookups, nil); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		fmt.Printf("Checked %d lookups OK\n", len(lookups))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
