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
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/go-ctl/pkg/ctl"
	"github.com/consensys/go-ctl/pkg/trace"
	tracejson "github.com/consensys/go-ctl/pkg/trace/json"
	"github.com/consensys/go-ctl/pkg/util/field/goldilocks"
	"github.com/spf13/cobra"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// Get an expected uint flag, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// readTraceFile parses a JSON trace file into one module per table.  Module
// names in the file must match table names; tables without a module are given
// an empty trace.  Unknown module names are rejected, since they indicate a
// trace produced for a different table system.
func readTraceFile(filename string) []trace.Module[goldilocks.Element] {
	bytes, err := os.ReadFile(filename)
	// error check
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	rawModules, err := tracejson.FromBytes[goldilocks.Element](bytes)
	// error check
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	traces := make([]trace.Module[goldilocks.Element], ctl.NumTables)
	//
	for name, columns := range rawModules {
		table, err := parseTable(name)
		// error check
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		traces[table] = trace.NewModuleFromRawColumns(columns)
	}
	//
	return traces
}

// jsonTableView is the file representation of one table's participation in a
// lookup: a table name, payload column indices, and an optional filter
// column index.
type jsonTableView struct {
	Table   string `json:"table"`
	Columns []uint `json:"columns"`
	Filter  *uint  `json:"filter"`
}

// jsonLookup is the file representation of one cross-table lookup.
type jsonLookup struct {
	Looking []jsonTableView `json:"looking"`
	Looked  jsonTableView   `json:"looked"`
}

// readLookupsFile parses a JSON lookup specification.  For example,
//
//	[{"looking": [{"table": "cpu", "columns": [0], "filter": 1}],
//	  "looked":  {"table": "keccak", "columns": [0]}}]
//
// declares one lookup whose looking side is the cpu table's column 0,
// selected by column 1, and whose looked side is the keccak table's column 0
// with every row selected.
func readLookupsFile(filename string) []ctl.CrossTableLookup[goldilocks.Element] {
	bytes, err := os.ReadFile(filename)
	// error check
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	var rawLookups []jsonLookup
	//
	if err := json.Unmarshal(bytes, &rawLookups); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	lookups := make([]ctl.CrossTableLookup[goldilocks.Element], len(rawLookups))
	//
	for i, raw := range rawLookups {
		looking := make([]ctl.TableWithColumns[goldilocks.Element], len(raw.Looking))
		//
		for j, view := range raw.Looking {
			looking[j] = parseTableView(view)
		}
		//
		lookups[i] = ctl.NewCrossTableLookup(looking, parseTableView(raw.Looked))
	}
	//
	return lookups
}

// parseTableView converts a file table view into its engine form.
func parseTableView(view jsonTableView) ctl.TableWithColumns[goldilocks.Element] {
	table, err := parseTable(view.Table)
	// error check
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	var filter *ctl.Column[goldilocks.Element]
	//
	if view.Filter != nil {
		column := ctl.Single[goldilocks.Element](*view.Filter)
		filter = &column
	}
	//
	return ctl.NewTableWithColumns(table, ctl.Singles[goldilocks.Element](view.Columns...), filter)
}

// parseTable maps a table name to its identifier.
func parseTable(name string) (ctl.TableId, error) {
	for table := ctl.TableArithmetic; table < ctl.NumTables; table++ {
		if table.String() == name {
			return table, nil
		}
	}
	//
	return 0, fmt.Errorf("unknown table %q", name)
}
