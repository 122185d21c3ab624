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

	"github.com/consensys/go-ctl/pkg/util/field"
)

// VerifyCrossTableLookups checks the cross-table product identity of every
// lookup: for each challenge, the product of the first-row Z openings of all
// looking tables, times the matching extra looking product, must equal the
// looked table's first-row Z opening.
//
// ctlZsFirst holds, per table (indexed by TableId), the first-row openings
// of that table's Z polynomials in commitment order.  extraProducts holds,
// per looked table, one product term per challenge representing looking
// contributions originating outside the table system (a nil entry means no
// such contribution, i.e. 1).  Openings are consumed in the canonical order
// the prover produced them; any mismatch, and any opening left over once all
// lookups are processed, rejects the proof.
func VerifyCrossTableLookups[F field.Element[F]](lookups []CrossTableLookup[F],
	ctlZsFirst [][]F, extraProducts [][]F, numChallenges uint) error {
	//
	if uint(len(ctlZsFirst)) != uint(NumTables) {
		panic(fmt.Sprintf("expected openings for %d tables (got %d)", NumTables, len(ctlZsFirst)))
	}
	//
	var cursors = make([]uint, NumTables)
	//
	for index, lookup := range lookups {
		// Get contributions looking into the looked table that are not
		// associated with any traced table.
		extra := extraProductsFor(extraProducts, lookup.LookedTable.Table, numChallenges)
		//
		for c := uint(0); c < numChallenges; c++ {
			// Compute the product of all looking table openings.
			lookingProd := extra[c]
			//
			for _, looking := range lookup.LookingTables {
				opening, err := nextZFirst(ctlZsFirst, cursors, looking.Table)
				// error check
				if err != nil {
					return err
				}
				//
				lookingProd = lookingProd.Mul(opening)
			}
			// Get the looked table opening.
			lookedZ, err := nextZFirst(ctlZsFirst, cursors, lookup.LookedTable.Table)
			// error check
			if err != nil {
				return err
			}
			// The combined looking product must match it exactly.
			if !lookingProd.Equals(lookedZ) {
				return fmt.Errorf("cross-table lookup %d verification failed (challenge %d)", index, c)
			}
		}
	}
	// Every opening must have been consumed.
	for table, openings := range ctlZsFirst {
		if remaining := uint(len(openings)) - cursors[table]; remaining != 0 {
			return fmt.Errorf("table %s: %d unconsumed openings", TableId(table), remaining)
		}
	}
	//
	return nil
}

// nextZFirst consumes the next first-row opening of the given table.
func nextZFirst[F field.Element[F]](ctlZsFirst [][]F, cursors []uint, table TableId) (F, error) {
	var zero F
	//
	if cursors[table] >= uint(len(ctlZsFirst[table])) {
		return zero, fmt.Errorf("table %s: missing opening %d", table, cursors[table])
	}
	//
	opening := ctlZsFirst[table][cursors[table]]
	cursors[table]++
	//
	return opening, nil
}

// extraProductsFor returns the extra looking products of the given looked
// table, defaulting to 1 per challenge when absent.
func extraProductsFor[F field.Element[F]](extraProducts [][]F, table TableId, numChallenges uint) []F {
	if extraProducts != nil && uint(len(extraProducts)) > uint(table) && extraProducts[table] != nil {
		if uint(len(extraProducts[table])) != numChallenges {
			panic("extra looking products must supply one term per challenge")
		}
		//
		return extraProducts[table]
	}
	// Default to the multiplicative identity.
	var ones = make([]F, numChallenges)
	//
	for i := range ones {
		ones[i] = field.One[F]()
	}
	//
	return ones
}
