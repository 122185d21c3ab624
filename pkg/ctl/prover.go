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

	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CtlZData is the cross-table lookup data associated with one Z polynomial:
// the committed cumulative-product sequence itself, the challenge it was
// built under, and the column combinations needed to re-derive the per-row
// combination during constraint evaluation.  It is created during proving
// and consumed when assembling the owning table's constraint system and
// opening set.
type CtlZData[F field.Element[F]] struct {
	// Z polynomial values, one per trace row.
	Z []F
	// Challenge used to combine payload rows.
	Challenge GrandProductChallenge[F]
	// Columns of the payload for the owning table.
	Columns []Column[F]
	// Filter for the owning table, or nil for all rows.
	Filter *Column[F]
}

// CtlData is the cross-table lookup data for one table: one CtlZData per
// (lookup, challenge) pair the table participates in, in the order the
// verifier will consume the corresponding openings.
type CtlData[F field.Element[F]] struct {
	// ZsColumns holds the data associated with all Z polynomials of one
	// table.
	ZsColumns []CtlZData[F]
}

// Len returns the number of Z polynomials for this table.
func (p *CtlData[F]) Len() uint {
	return uint(len(p.ZsColumns))
}

// IsEmpty returns whether this table participates in any lookup.
func (p *CtlData[F]) IsEmpty() bool {
	return len(p.ZsColumns) == 0
}

// ZPolys returns all Z polynomials for this table, in commitment order.
func (p *CtlData[F]) ZPolys() [][]F {
	var polys = make([][]F, len(p.ZsColumns))
	//
	for i, zs := range p.ZsColumns {
		polys[i] = zs.Z
	}
	//
	return polys
}

// ZsFirst returns the first-row opening of every Z polynomial for this
// table, in commitment order.  These are the values the cross-table product
// identity is checked over.
func (p *CtlData[F]) ZsFirst() []F {
	var firsts = make([]F, len(p.ZsColumns))
	//
	for i, zs := range p.ZsColumns {
		firsts[i] = zs.Z[0]
	}
	//
	return firsts
}

// CrossTableLookupData generates the cross-table lookup data for all tables:
// for every lookup, every challenge and every participating table, the
// cumulative-product Z sequence over that table's trace.  The traces slice
// is indexed by TableId and must cover every table.  Z sequences are
// independent of one another and are built concurrently; results are
// collected in a deterministic order (lookup, then challenge, then looking
// tables, then the looked table) which the verifier reproduces.
//
// A filter evaluating to neither 0 nor 1 aborts the pass, as does a
// participating table whose trace is empty: the prover owns its traces, so
// either indicates a bug rather than adversarial input.  The abort is
// reported as an error rather than a panic so callers can surface which
// table and row were at fault.
func CrossTableLookupData[F field.Element[F]](traces []trace.Module[F],
	lookups []CrossTableLookup[F], challenges GrandProductChallengeSet[F]) ([]CtlData[F], error) {
	//
	if uint(len(traces)) != uint(NumTables) {
		panic(fmt.Sprintf("expected %d traces (got %d)", NumTables, len(traces)))
	}
	//
	var (
		jobs    = zJobs(lookups, challenges)
		results = make([][]F, len(jobs))
		group   errgroup.Group
	)
	// Fan out, one unit of work per (lookup, challenge, table) triple.
	for i, job := range jobs {
		group.Go(func() error {
			var err error
			//
			results[i], err = partialProducts(&traces[job.view.Table], job.view.Columns,
				job.view.Filter, job.challenge)
			// error check
			if err != nil {
				return fmt.Errorf("table %s: %w", job.view.Table, err)
			}
			//
			return nil
		})
	}
	// Synchronise before collecting into per-table result sets.
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	data := make([]CtlData[F], NumTables)
	//
	for i, job := range jobs {
		data[job.view.Table].ZsColumns = append(data[job.view.Table].ZsColumns, CtlZData[F]{
			Z:         results[i],
			Challenge: job.challenge,
			Columns:   job.view.Columns,
			Filter:    job.view.Filter,
		})
	}
	//
	return data, nil
}

// zJob is one unit of Z-sequence construction work.
type zJob[F field.Element[F]] struct {
	view      TableWithColumns[F]
	challenge GrandProductChallenge[F]
}

// zJobs flattens the (lookup × challenge × table) space into the canonical
// ordering shared by prover and verifier.
func zJobs[F field.Element[F]](lookups []CrossTableLookup[F],
	challenges GrandProductChallengeSet[F]) []zJob[F] {
	//
	var jobs []zJob[F]
	//
	for _, lookup := range lookups {
		log.Debugf("processing cross-table lookup into %s", lookup.LookedTable.Table)
		//
		for _, challenge := range challenges.Challenges {
			for _, looking := range lookup.LookingTables {
				jobs = append(jobs, zJob[F]{looking, challenge})
			}
			//
			jobs = append(jobs, zJob[F]{lookup.LookedTable, challenge})
		}
	}
	//
	return jobs
}

// partialProducts computes the cumulative-product Z sequence for one table
// view under one challenge.  Walking rows from the last to the first with a
// running product p (initially 1): when the filter evaluates to 1 the row's
// payload combinations are evaluated, combined under the challenge and
// folded into p; when it evaluates to 0, p is carried forward unchanged.
// The sequence records p after visiting each row, so it comes out "upside
// down": Z[0] holds the complete product over all filtered rows while the
// last entry holds just the last row's contribution.  This orientation lets
// the transition constraint read rows i and i+1 only, never i-1.
func partialProducts[F field.Element[F]](module *trace.Module[F], columns []Column[F],
	filter *Column[F], challenge GrandProductChallenge[F]) ([]F, error) {
	//
	var (
		partialProd = field.One[F]()
		height      = module.Height()
		res         = make([]F, height)
		evals       = make([]F, len(columns))
	)
	// An empty trace has no first row for the product identity to open.
	if height == 0 {
		return nil, fmt.Errorf("empty trace for participating table")
	}
	//
	//
	for i := height; i > 0; i-- {
		row := i - 1
		//
		selected, err := evalFilter(module, filter, row)
		// error check
		if err != nil {
			return nil, err
		}
		//
		if selected {
			for j, column := range columns {
				evals[j] = column.EvalTable(module, row)
			}
			//
			partialProd = partialProd.Mul(challenge.Combine(evals))
		}
		//
		res[row] = partialProd
	}
	//
	return res, nil
}

// evalFilter evaluates a filter combination at a given row, enforcing that
// it is binary.  A nil filter selects every row.
func evalFilter[F field.Element[F]](module *trace.Module[F], filter *Column[F], row uint) (bool, error) {
	if filter == nil {
		return true, nil
	}
	//
	value := filter.EvalTable(module, row)
	//
	switch {
	case value.IsOne():
		return true, nil
	case value.IsZero():
		return false, nil
	default:
		return false, fmt.Errorf("non-binary filter (row %d, value %s)", row, value.String())
	}
}
