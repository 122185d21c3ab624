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
package gadget

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/go-ctl/pkg/ctl"
	"github.com/consensys/go-ctl/pkg/util/field"
)

// VerifyCrossTableLookups emits, inside the circuit, the cross-table product
// identity of every lookup: for each challenge, the product of the first-row
// Z openings of all looking tables, times the matching extra looking
// product, is asserted equal to the looked table's first-row Z opening.
//
// ctlZsFirst holds, per table (indexed by ctl.TableId), the first-row
// openings of that table's Z polynomials in commitment order.  extraProducts
// holds, per looked table, one product variable per challenge (a nil entry
// means no such contribution, i.e. 1).  Opening counts are structural facts
// about the circuit, so a shape mismatch surfaces as an error at
// circuit-build time rather than an unsatisfied constraint.
func VerifyCrossTableLookups[F field.Element[F]](api frontend.API, lookups []ctl.CrossTableLookup[F],
	ctlZsFirst [][]frontend.Variable, extraProducts [][]frontend.Variable, numChallenges uint) error {
	//
	if uint(len(ctlZsFirst)) != uint(ctl.NumTables) {
		return fmt.Errorf("expected openings for %d tables (got %d)", ctl.NumTables, len(ctlZsFirst))
	}
	//
	var cursors = make([]uint, ctl.NumTables)
	//
	for _, lookup := range lookups {
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
				lookingProd = api.Mul(lookingProd, opening)
			}
			// Get the looked table opening.
			lookedZ, err := nextZFirst(ctlZsFirst, cursors, lookup.LookedTable.Table)
			// error check
			if err != nil {
				return err
			}
			// The combined looking product must match it exactly.
			api.AssertIsEqual(lookingProd, lookedZ)
		}
	}
	// Every opening must have been consumed.
	for table, openings := range ctlZsFirst {
		if remaining := uint(len(openings)) - cursors[table]; remaining != 0 {
			return fmt.Errorf("table %s: %d unconsumed openings", ctl.TableId(table), remaining)
		}
	}
	//
	return nil
}

// nextZFirst consumes the next first-row opening of the given table.
func nextZFirst(ctlZsFirst [][]frontend.Variable, cursors []uint, table ctl.TableId) (frontend.Variable, error) {
	if cursors[table] >= uint(len(ctlZsFirst[table])) {
		return nil, fmt.Errorf("table %s: missing opening %d", table, cursors[table])
	}
	//
	opening := ctlZsFirst[table][cursors[table]]
	cursors[table]++
	//
	return opening, nil
}

// extraProductsFor returns the extra looking products of the given looked
// table, defaulting to 1 per challenge when absent.
func extraProductsFor(extraProducts [][]frontend.Variable, table ctl.TableId,
	numChallenges uint) []frontend.Variable {
	//
	if extraProducts != nil && uint(len(extraProducts)) > uint(table) && extraProducts[table] != nil {
		if uint(len(extraProducts[table])) != numChallenges {
			panic("extra looking products must supply one term per challenge")
		}
		//
		return extraProducts[table]
	}
	// Default to the multiplicative identity.
	var ones = make([]frontend.Variable, numChallenges)
	//
	for i := range ones {
		ones[i] = 1
	}
	//
	return ones
}
