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
package ctl

import (
	"fmt"
	"strings"

	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field"
)

// Location identifies one selected row of one table, for diagnostics.
type Location struct {
	// Table the row was selected from.
	Table TableId
	// Row index within that table's trace.
	Row uint
}

// Failure describes a multiset discrepancy found by the consistency oracle:
// a payload row appearing a different number of times across the looking
// tables than in the looked table, along with every location it was found
// at.
type Failure struct {
	// Lookup index the discrepancy was found in.
	Lookup uint
	// Row is the offending payload row.
	Row []string
	// LookingLocations lists where the row occurs across the looking tables.
	LookingLocations []Location
	// LookedLocations lists where the row occurs in the looked table.
	LookedLocations []Location
}

// Error implementation for the error interface.
func (p *Failure) Error() string {
	return fmt.Sprintf("lookup %d: row [%s] is present %d times in the looking tables, "+
		"but %d times in the looked table (looking locations %v, looked locations %v)",
		p.Lookup, strings.Join(p.Row, ", "), len(p.LookingLocations), len(p.LookedLocations),
		p.LookingLocations, p.LookedLocations)
}

// multisetEntry records every location at which one distinct payload row was
// selected, on either side of a lookup.
type multisetEntry[F field.Element[F]] struct {
	row     []F
	looking []Location
	looked  []Location
}

// CheckCrossTableLookups checks that the given traces satisfy the multiset
// claim of every given lookup, by brute force and with no cryptography
// involved: the filtered payload rows of the union of a lookup's looking
// tables must form exactly the same multiset as the filtered payload rows of
// its looked table.  This defines the ground-truth semantics the algebraic
// argument enforces, and doubles as a debugging aid: unlike a failed product
// identity, a returned *Failure names the offending row and every place it
// was (or wasn't) found.
//
// extraLooking optionally supplies, per looked table (indexed by TableId),
// out-of-band payload rows folded into the looking side of any lookup
// targeting that table.  These mirror the extra looking products of the
// algebraic verifier.
func CheckCrossTableLookups[F field.Element[F]](traces []trace.Module[F],
	lookups []CrossTableLookup[F], extraLooking [][][]F) error {
	//
	if uint(len(traces)) != uint(NumTables) {
		panic(fmt.Sprintf("expected %d traces (got %d)", NumTables, len(traces)))
	}
	//
	for index, lookup := range lookups {
		if err := checkCrossTableLookup(traces, uint(index), lookup, extraLooking); err != nil {
			return err
		}
	}
	//
	return nil
}

func checkCrossTableLookup[F field.Element[F]](traces []trace.Module[F], index uint,
	lookup CrossTableLookup[F], extraLooking [][][]F) error {
	//
	var multiset = make(map[string]*multisetEntry[F])
	// Collect the looking side.
	for _, looking := range lookup.LookingTables {
		err := processTable(&traces[looking.Table], looking, multiset, false)
		// error check
		if err != nil {
			return err
		}
	}
	// Collect the looked side.
	err := processTable(&traces[lookup.LookedTable.Table], lookup.LookedTable, multiset, true)
	// error check
	if err != nil {
		return err
	}
	// Fold in any out-of-band looking rows targeting this lookup's looked
	// table.  Their origin is external, so the location is synthetic.
	looked := lookup.LookedTable.Table
	//
	if extraLooking != nil && uint(len(extraLooking)) > uint(looked) {
		for i, row := range extraLooking[looked] {
			entry := multisetLookup(multiset, row)
			entry.looking = append(entry.looking, Location{looked, uint(i)})
		}
	}
	// Every distinct row must occur equally often on both sides.
	for _, entry := range multiset {
		if len(entry.looking) != len(entry.looked) {
			return &Failure{
				Lookup:           index,
				Row:              formatRow(entry.row),
				LookingLocations: entry.looking,
				LookedLocations:  entry.looked,
			}
		}
	}
	//
	return nil
}

// processTable evaluates one table view's filtered payload rows into the
// multiset, tagged with their origin.
func processTable[F field.Element[F]](module *trace.Module[F], view TableWithColumns[F],
	multiset map[string]*multisetEntry[F], looked bool) error {
	//
	for i := uint(0); i < module.Height(); i++ {
		selected, err := evalFilter(module, view.Filter, i)
		// error check
		if err != nil {
			return fmt.Errorf("table %s: %w", view.Table, err)
		}
		//
		if !selected {
			continue
		}
		//
		row := make([]F, len(view.Columns))
		//
		for j, column := range view.Columns {
			row[j] = column.EvalTable(module, i)
		}
		//
		entry := multisetLookup(multiset, row)
		//
		if looked {
			entry.looked = append(entry.looked, Location{view.Table, i})
		} else {
			entry.looking = append(entry.looking, Location{view.Table, i})
		}
	}
	//
	return nil
}

// multisetLookup finds (or creates) the entry for a given payload row.
func multisetLookup[F field.Element[F]](multiset map[string]*multisetEntry[F], row []F) *multisetEntry[F] {
	var key strings.Builder
	//
	for _, value := range row {
		key.Write(value.Bytes())
	}
	//
	entry, ok := multiset[key.String()]
	//
	if !ok {
		entry = &multisetEntry[F]{row: row}
		multiset[key.String()] = entry
	}
	//
	return entry
}

func formatRow[F field.Element[F]](row []F) []string {
	var texts = make([]string, len(row))
	//
	for i, value := range row {
		texts[i] = value.Text(10)
	}
	//
	return texts
}
