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
	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field/goldilocks"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit [flags] trace_file lookup_file",
	Short: "Run the full cross-table lookup argument over a trace.",
	Long: `Run the full cross-table lookup argument over a trace: derive
grand-product challenges from the trace by Fiat-Shamir, build the cumulative
product polynomials, re-evaluate the protocol constraints on every row, and
check the cross-table product identity.  This exercises exactly the algebra
a proof would commit to, and is useful for diagnosing why a proof over the
same trace fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		numChallenges := getUint(cmd, "challenges")
		// Parse trace
		traces := readTraceFile(args[0])
		// Parse lookups
		lookups := readLookupsFile(args[1])
		// Go!
		if err := audit(traces, lookups, numChallenges); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		fmt.Printf("Audited %d lookups OK (%d challenges)\n", len(lookups), numChallenges)
	},
}

// audit runs the complete argument over the given traces.
func audit(traces []trace.Module[goldilocks.Element],
	lookups []ctl.CrossTableLookup[goldilocks.Element], numChallenges uint) error {
	// Derive challenges from the trace contents.
	challenger := ctl.NewChallenger[goldilocks.Element]()
	//
	for _, module := range traces {
		for c := uint(0); c < module.Width(); c++ {
			challenger.Observe(module.Column(c)...)
		}
	}
	//
	challenges := challenger.GrandProductChallengeSet(numChallenges)
	// Build the Z polynomials.
	data, err := ctl.CrossTableLookupData(traces, lookups, challenges)
	// error check
	if err != nil {
		return err
	}
	// Re-evaluate the protocol constraints on every row of every table.
	for table := ctl.TableArithmetic; table < ctl.NumTables; table++ {
		if err := auditTable(&traces[table], table, &data[table]); err != nil {
			return err
		}
	}
	// Check the cross-table product identity.
	firsts := make([][]goldilocks.Element, ctl.NumTables)
	//
	for table := range firsts {
		firsts[table] = data[table].ZsFirst()
	}
	//
	return ctl.VerifyCrossTableLookups(lookups, firsts, nil, numChallenges)
}

// auditTable checks the constraints of one table on every row of its trace.
func auditTable(module *trace.Module[goldilocks.Element], table ctl.TableId,
	data *ctl.CtlData[goldilocks.Element]) error {
	//
	if data.IsEmpty() {
		return nil
	}
	//
	log.Debugf("auditing %d polynomials of table %s", data.Len(), table)
	//
	var height = module.Height()
	//
	for row := uint(0); row < height; row++ {
		var (
			checker = ctl.NewRowChecker[goldilocks.Element](row, height)
			local   = module.Row(row)
			next    = make([]goldilocks.Element, module.Width())
			vars    = make([]ctl.CtlCheckVars[goldilocks.Element], data.Len())
		)
		//
		if row+1 < height {
			next = module.Row(row + 1)
		}
		//
		for i, zData := range data.ZsColumns {
			var nextZ goldilocks.Element
			//
			if row+1 < height {
				nextZ = zData.Z[row+1]
			}
			//
			vars[i] = ctl.CtlCheckVars[goldilocks.Element]{
				LocalZ:    zData.Z[row],
				NextZ:     nextZ,
				Challenge: zData.Challenge,
				Columns:   zData.Columns,
				Filter:    zData.Filter,
			}
		}
		//
		ctl.EvalCrossTableLookupChecks(local, next, vars, checker)
		//
		if !checker.Ok() {
			return fmt.Errorf("table %s: %v", table, checker.Failures())
		}
	}
	//
	return nil
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Uint("challenges", 2, "number of grand-product challenges")
}
