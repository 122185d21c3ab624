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

// Consumer accepts the constraints this engine emits and folds them into a
// table's overall constraint system.  Three kinds exist: unconditional
// constraints, constraints enforced on every transition (i.e. every row but
// the last), and constraints enforced on the last row only.  A valid proof
// makes every consumed value identically zero.
type Consumer[F field.Element[F]] interface {
	// Constraint consumes a value which must be zero on every row.
	Constraint(value F)
	// ConstraintTransition consumes a value which must be zero on every row
	// except the last.
	ConstraintTransition(value F)
	// ConstraintLastRow consumes a value which must be zero on the last row.
	ConstraintLastRow(value F)
}

// CtlCheckVars is the verifier-side projection of one Z polynomial's data:
// the openings of Z at the evaluation point and its successor, plus the
// challenge and column combinations needed to re-derive the row's combined
// value.  Instances are reconstructed per proof from committed polynomial
// openings, used once for constraint re-evaluation, then discarded.
type CtlCheckVars[F field.Element[F]] struct {
	// LocalZ is the opening of Z at the evaluation point.
	LocalZ F
	// NextZ is the opening of Z at the point's successor.
	NextZ F
	// Challenge the Z polynomial was built under.
	Challenge GrandProductChallenge[F]
	// Columns of the payload for the owning table.
	Columns []Column[F]
	// Filter for the owning table, or nil for all rows.
	Filter *Column[F]
}

// ProofOpenings exposes the auxiliary polynomial openings of one table's
// proof, at the evaluation point and at its successor.  The first
// NumLookupColumns entries of each are reserved for the range-style lookup
// argument and are skipped by this engine.
type ProofOpenings[F field.Element[F]] struct {
	// AuxPolys holds openings at the evaluation point.
	AuxPolys []F
	// AuxPolysNext holds openings at the point's successor.
	AuxPolysNext []F
	// NumLookupColumns is the length of the reserved prefix.
	NumLookupColumns uint
}

// CtlCheckVarsFromProofs reconstructs, for every table, the CtlCheckVars of
// every Z polynomial the table committed to, from the openings of all
// tables' proofs.  Openings are consumed in the canonical order (lookup,
// then challenge, then looking tables, then the looked table); a proof
// carrying too few or too many CTL openings is malformed and rejected.
func CtlCheckVarsFromProofs[F field.Element[F]](openings []ProofOpenings[F],
	lookups []CrossTableLookup[F], challenges GrandProductChallengeSet[F]) ([][]CtlCheckVars[F], error) {
	//
	if uint(len(openings)) != uint(NumTables) {
		panic(fmt.Sprintf("expected %d proofs (got %d)", NumTables, len(openings)))
	}
	//
	var (
		cursors = make([]uint, NumTables)
		vars    = make([][]CtlCheckVars[F], NumTables)
	)
	//
	for _, job := range zJobs(lookups, challenges) {
		var (
			table            = job.view.Table
			localZ, nextZ, e = nextOpening(&openings[table], &cursors[table])
		)
		// error check
		if e != nil {
			return nil, fmt.Errorf("table %s: %w", table, e)
		}
		//
		vars[table] = append(vars[table], CtlCheckVars[F]{
			LocalZ:    localZ,
			NextZ:     nextZ,
			Challenge: job.challenge,
			Columns:   job.view.Columns,
			Filter:    job.view.Filter,
		})
	}
	// Every opening must have been consumed.
	for table, opening := range openings {
		if remaining := ctlOpeningCount(&opening) - cursors[table]; remaining != 0 {
			return nil, fmt.Errorf("table %s: %d unconsumed openings", TableId(table), remaining)
		}
	}
	//
	return vars, nil
}

// nextOpening reads the next (local, next) opening pair of a proof, past the
// reserved lookup prefix.
func nextOpening[F field.Element[F]](opening *ProofOpenings[F], cursor *uint) (F, F, error) {
	var (
		index = opening.NumLookupColumns + *cursor
		zero  F
	)
	//
	if index >= uint(len(opening.AuxPolys)) || index >= uint(len(opening.AuxPolysNext)) {
		return zero, zero, fmt.Errorf("missing opening %d", *cursor)
	}
	//
	*cursor++
	//
	return opening.AuxPolys[index], opening.AuxPolysNext[index], nil
}

// ctlOpeningCount returns the number of CTL openings a proof carries.
func ctlOpeningCount[F field.Element[F]](opening *ProofOpenings[F]) uint {
	if uint(len(opening.AuxPolys)) < opening.NumLookupColumns {
		return 0
	}
	//
	return uint(len(opening.AuxPolys)) - opening.NumLookupColumns
}

// EvalCrossTableLookupChecks emits, for every Z polynomial of one table, the
// two constraints forcing the committed sequence to be a valid cumulative
// product of the selected, challenge-combined rows.  Given the filter f and
// combined payload c of the local row, the selected value is
//
//	select = f·c + (1 − f)
//
// so unfiltered rows contribute a multiplicative no-op.  The constraints are
//
//	last row:   local_Z − select
//	transition: next_Z·select − local_Z
//
// where the sequence's upside-down orientation makes both read only the
// local and next rows.  localValues and nextValues are the openings of the
// table's trace columns at the evaluation point and its successor.
func EvalCrossTableLookupChecks[F field.Element[F]](localValues []F, nextValues []F,
	ctlVars []CtlCheckVars[F], consumer Consumer[F]) {
	//
	for _, vars := range ctlVars {
		var (
			one   = field.One[F]()
			evals = make([]F, len(vars.Columns))
		)
		// Evaluate all payload combinations on the local row, and combine
		// them under the challenge.
		for i, column := range vars.Columns {
			evals[i] = column.EvalWithNext(localValues, nextValues)
		}
		//
		combined := vars.Challenge.Combine(evals)
		//
		localFilter := one
		if vars.Filter != nil {
			localFilter = vars.Filter.EvalWithNext(localValues, nextValues)
		}
		// If the filter evaluates to 1, the combined value passes through;
		// otherwise 1 does.
		selected := localFilter.Mul(combined).Add(one).Sub(localFilter)
		// Check value of Z on the final row.
		consumer.ConstraintLastRow(vars.LocalZ.Sub(selected))
		// Check Z(w) = Z(gw)·select(w).
		consumer.ConstraintTransition(vars.NextZ.Mul(selected).Sub(vars.LocalZ))
	}
}

// RowChecker is a Consumer which checks constraints directly against a
// designated row of an evaluation domain, recording every nonzero residual.
// It gives the protocol constraints a direct numeric reading: transition
// constraints are ignored on the final row, last-row constraints everywhere
// else.
type RowChecker[F field.Element[F]] struct {
	// Row this checker is evaluating at.
	row uint
	// Height of the evaluation domain.
	height uint
	// Failures recorded so far.
	failures []string
}

// NewRowChecker constructs a checker for the given row of a domain of the
// given height.
func NewRowChecker[F field.Element[F]](row uint, height uint) *RowChecker[F] {
	return &RowChecker[F]{row: row, height: height}
}

// Constraint implementation for the Consumer interface.
func (p *RowChecker[F]) Constraint(value F) {
	if !value.IsZero() {
		p.failures = append(p.failures, fmt.Sprintf("row %d: residual %s", p.row, value.String()))
	}
}

// ConstraintTransition implementation for the Consumer interface.
func (p *RowChecker[F]) ConstraintTransition(value F) {
	if p.row != p.height-1 {
		p.Constraint(value)
	}
}

// ConstraintLastRow implementation for the Consumer interface.
func (p *RowChecker[F]) ConstraintLastRow(value F) {
	if p.row == p.height-1 {
		p.Constraint(value)
	}
}

// Failures returns the recorded nonzero residuals, if any.
func (p *RowChecker[F]) Failures() []string {
	return p.failures
}

// Ok reports whether every consumed constraint held.
func (p *RowChecker[F]) Ok() bool {
	return len(p.failures) == 0
}
