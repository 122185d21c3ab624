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

// Consumer accepts circuit-variable constraints, mirroring ctl.Consumer.
// How a consumed value is forced to zero (typically by folding it into a
// quotient-polynomial accumulator weighted by the appropriate domain
// selector) is the caller's concern.
type Consumer interface {
	// Constraint consumes a value which must be zero on every row.
	Constraint(value frontend.Variable)
	// ConstraintTransition consumes a value which must be zero on every row
	// except the last.
	ConstraintTransition(value frontend.Variable)
	// ConstraintLastRow consumes a value which must be zero on the last row.
	ConstraintLastRow(value frontend.Variable)
}

// CtlCheckVars is the circuit-variable counterpart of ctl.CtlCheckVars: the
// openings of one Z polynomial at the evaluation point and its successor,
// plus the challenge and column combinations needed to re-derive the row's
// combined value.  Columns remain plain field data since they are protocol
// constants, not witness material.
type CtlCheckVars[F field.Element[F]] struct {
	// LocalZ is the opening of Z at the evaluation point.
	LocalZ frontend.Variable
	// NextZ is the opening of Z at the point's successor.
	NextZ frontend.Variable
	// Challenge the Z polynomial was built under.
	Challenge Challenge
	// Columns of the payload for the owning table.
	Columns []ctl.Column[F]
	// Filter for the owning table, or nil for all rows.
	Filter *ctl.Column[F]
}

// ProofOpenings exposes the auxiliary polynomial openings of one table's
// proof as circuit variables, at the evaluation point and at its successor.
// The first NumLookupColumns entries of each are reserved for the
// range-style lookup argument and are skipped by this engine.
type ProofOpenings struct {
	// AuxPolys holds openings at the evaluation point.
	AuxPolys []frontend.Variable
	// AuxPolysNext holds openings at the point's successor.
	AuxPolysNext []frontend.Variable
	// NumLookupColumns is the length of the reserved prefix.
	NumLookupColumns uint
}

// CtlCheckVarsFromProof reconstructs the CtlCheckVars of every Z polynomial
// one table committed to, from the openings of that table's proof.  Unlike
// the direct form, which walks all tables' proofs at once, a recursive
// verifier circuit handles one inner proof at a time; openings are still
// consumed in the canonical order (lookup, then challenge, then looking
// occurrences, then the looked table).  Since opening counts are structural
// facts about the circuit rather than witness data, a malformed proof shape
// surfaces as an error at circuit-build time.
func CtlCheckVarsFromProof[F field.Element[F]](openings ProofOpenings, table ctl.TableId,
	lookups []ctl.CrossTableLookup[F], challenges ChallengeSet) ([]CtlCheckVars[F], error) {
	//
	var (
		cursor uint
		vars   []CtlCheckVars[F]
	)
	//
	for _, lookup := range lookups {
		for _, challenge := range challenges.Challenges {
			for _, looking := range lookup.LookingTables {
				if looking.Table == table {
					v, err := nextCheckVars(&openings, &cursor, challenge, looking)
					// error check
					if err != nil {
						return nil, fmt.Errorf("table %s: %w", table, err)
					}
					//
					vars = append(vars, v)
				}
			}
			//
			if lookup.LookedTable.Table == table {
				v, err := nextCheckVars(&openings, &cursor, challenge, lookup.LookedTable)
				// error check
				if err != nil {
					return nil, fmt.Errorf("table %s: %w", table, err)
				}
				//
				vars = append(vars, v)
			}
		}
	}
	// Every opening must have been consumed.
	if remaining := ctlOpeningCount(&openings) - cursor; remaining != 0 {
		return nil, fmt.Errorf("table %s: %d unconsumed openings", table, remaining)
	}
	//
	return vars, nil
}

// nextCheckVars reads the next (local, next) opening pair of the proof, past
// the reserved lookup prefix, and packages it with the given challenge and
// table view.
func nextCheckVars[F field.Element[F]](openings *ProofOpenings, cursor *uint,
	challenge Challenge, view ctl.TableWithColumns[F]) (CtlCheckVars[F], error) {
	//
	var index = openings.NumLookupColumns + *cursor
	//
	if index >= uint(len(openings.AuxPolys)) || index >= uint(len(openings.AuxPolysNext)) {
		return CtlCheckVars[F]{}, fmt.Errorf("missing opening %d", *cursor)
	}
	//
	*cursor++
	//
	return CtlCheckVars[F]{
		LocalZ:    openings.AuxPolys[index],
		NextZ:     openings.AuxPolysNext[index],
		Challenge: challenge,
		Columns:   view.Columns,
		Filter:    view.Filter,
	}, nil
}

// ctlOpeningCount returns the number of CTL openings a proof carries.
func ctlOpeningCount(openings *ProofOpenings) uint {
	if uint(len(openings.AuxPolys)) < openings.NumLookupColumns {
		return 0
	}
	//
	return uint(len(openings.AuxPolys)) - openings.NumLookupColumns
}

// EvalCrossTableLookupChecks emits, inside the circuit, the two constraints
// forcing each committed Z sequence to be a valid cumulative product of the
// selected, challenge-combined rows.  It computes the same residuals as its
// direct counterpart:
//
//	last row:   local_Z − (f·c + 1 − f)
//	transition: next_Z·(f·c + 1 − f) − local_Z
//
// with f the filter and c the challenge-combined payload of the local row.
func EvalCrossTableLookupChecks[F field.Element[F]](api frontend.API,
	localValues []frontend.Variable, nextValues []frontend.Variable,
	ctlVars []CtlCheckVars[F], consumer Consumer) {
	//
	for _, vars := range ctlVars {
		var evals = make([]frontend.Variable, len(vars.Columns))
		//
		for i, column := range vars.Columns {
			evals[i] = EvalColumnWithNext(api, column, localValues, nextValues)
		}
		//
		combined := vars.Challenge.Combine(api, evals)
		//
		var localFilter frontend.Variable = 1
		if vars.Filter != nil {
			localFilter = EvalColumnWithNext(api, *vars.Filter, localValues, nextValues)
		}
		// select = f·c + (1 − f): unfiltered rows contribute a
		// multiplicative no-op.
		selected := api.Add(api.Sub(api.Mul(localFilter, combined), localFilter), 1)
		// Check value of Z on the final row.
		consumer.ConstraintLastRow(api.Sub(vars.LocalZ, selected))
		// Check Z(w) = Z(gw)·select(w).
		consumer.ConstraintTransition(api.Sub(api.Mul(vars.NextZ, selected), vars.LocalZ))
	}
}

// Collector is a Consumer which simply records the consumed values, sorted
// by kind, leaving it to the caller to decide what to assert of them.
type Collector struct {
	// Constraints holds values consumed via Constraint.
	Constraints []frontend.Variable
	// Transitions holds values consumed via ConstraintTransition.
	Transitions []frontend.Variable
	// LastRows holds values consumed via ConstraintLastRow.
	LastRows []frontend.Variable
}

// Constraint implementation for the Consumer interface.
func (p *Collector) Constraint(value frontend.Variable) {
	p.Constraints = append(p.Constraints, value)
}

// ConstraintTransition implementation for the Consumer interface.
func (p *Collector) ConstraintTransition(value frontend.Variable) {
	p.Transitions = append(p.Transitions, value)
}

// ConstraintLastRow implementation for the Consumer interface.
func (p *Collector) ConstraintLastRow(value frontend.Variable) {
	p.LastRows = append(p.LastRows, value)
}
