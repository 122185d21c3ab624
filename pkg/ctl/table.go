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
	"github.com/consensys/go-ctl/pkg/util/field"
)

// TableId identifies one of the sub-machines making up the overall proof
// system.  The enumeration is closed and its ordering is the proof-layout
// order: traces, openings and Z polynomials are always indexed by it.
type TableId uint

const (
	// TableArithmetic is the arithmetic unit's trace.
	TableArithmetic TableId = iota
	// TableCpu is the central processing unit's trace.
	TableCpu
	// TableKeccak is the hashing unit's trace.
	TableKeccak
	// TableLogic is the bitwise-logic unit's trace.
	TableLogic
	// TableMemory is the memory unit's trace.
	TableMemory
	// NumTables is the number of sub-machine tables.
	NumTables
)

// String returns the name of this table.
func (p TableId) String() string {
	switch p {
	case TableArithmetic:
		return "arithmetic"
	case TableCpu:
		return "cpu"
	case TableKeccak:
		return "keccak"
	case TableLogic:
		return "logic"
	case TableMemory:
		return "memory"
	default:
		return "???"
	}
}

// TableWithColumns binds a table to the affine column combinations it
// exposes for lookup, along with an optional filter combination which
// determines the rows actually participating.  The filter must evaluate to
// exactly 0 or 1 on every row of the table's trace; a nil filter selects
// every row.
type TableWithColumns[F field.Element[F]] struct {
	// Table this view is taken over.
	Table TableId
	// Columns are the affine combinations exposed for lookup (the payload).
	Columns []Column[F]
	// Filter determines the selected rows, or nil for all rows.
	Filter *Column[F]
}

// NewTableWithColumns constructs a view of the given table exposing the
// given payload columns, selected by the given filter.
func NewTableWithColumns[F field.Element[F]](table TableId, columns []Column[F],
	filter *Column[F]) TableWithColumns[F] {
	//
	return TableWithColumns[F]{table, columns, filter}
}

// CrossTableLookup relates one looked table with the set of tables looking
// into it.  It represents the claim that the multiset of filtered payload
// rows, taken across the union of the looking tables, is identical to the
// multiset of filtered payload rows of the looked table.
type CrossTableLookup[F field.Element[F]] struct {
	// LookingTables are the views contributing rows into this lookup.
	LookingTables []TableWithColumns[F]
	// LookedTable is the view receiving the lookup claim.
	LookedTable TableWithColumns[F]
}

// NewCrossTableLookup constructs a cross-table lookup from the given looking
// tables and looked table.  Every view must expose the same number of payload
// columns; a mismatch is a programming error in the proof-system
// instantiation, hence panics.
func NewCrossTableLookup[F field.Element[F]](lookingTables []TableWithColumns[F],
	lookedTable TableWithColumns[F]) CrossTableLookup[F] {
	//
	for _, looking := range lookingTables {
		if len(looking.Columns) != len(lookedTable.Columns) {
			panic("inconsistent number of payload columns across lookup tables")
		}
	}
	//
	return CrossTableLookup[F]{lookingTables, lookedTable}
}

// NumCtlZs returns, for a given table, the number of Z polynomials that
// table must commit to: one per participation (looking or looked) in any of
// the given lookups, times the number of challenges.
func NumCtlZs[F field.Element[F]](lookups []CrossTableLookup[F], table TableId, numChallenges uint) uint {
	var count uint
	//
	for _, lookup := range lookups {
		if lookup.LookedTable.Table == table {
			count++
		}
		//
		for _, looking := range lookup.LookingTables {
			if looking.Table == table {
				count++
			}
		}
	}
	//
	return count * numChallenges
}
