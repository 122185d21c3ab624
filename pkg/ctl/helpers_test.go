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
	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field"
	"github.com/consensys/go-ctl/pkg/util/field/goldilocks"
)

// gf constructs a goldilocks element from a small constant.
func gf(val uint64) goldilocks.Element {
	return goldilocks.New(val)
}

// col constructs a goldilocks column from small constants.
func col(vals ...uint64) []goldilocks.Element {
	var data = make([]goldilocks.Element, len(vals))
	//
	for i, v := range vals {
		data[i] = goldilocks.New(v)
	}
	//
	return data
}

// newModule constructs a goldilocks module from small constants, in
// column-major form.
func newModule(cols ...[]uint64) trace.Module[goldilocks.Element] {
	var data = make([][]goldilocks.Element, len(cols))
	//
	for i, c := range cols {
		data[i] = col(c...)
	}
	//
	return trace.NewModule(data)
}

// newTraces constructs a full trace set with empty modules everywhere,
// then installs the given modules at their tables.
func newTraces(modules map[TableId]trace.Module[goldilocks.Element]) []trace.Module[goldilocks.Element] {
	var traces = make([]trace.Module[goldilocks.Element], NumTables)
	//
	for table, module := range modules {
		traces[table] = module
	}
	//
	return traces
}

// simpleLookup is the running example used across these tests: the cpu
// table's filtered first column must look up into the keccak table's
// filtered first column.  Cpu selects rows {5, 5, 1} (row 1 is filtered
// out), and keccak holds exactly {5, 5, 1}.
func simpleLookup() ([]trace.Module[goldilocks.Element], []CrossTableLookup[goldilocks.Element]) {
	var (
		cpu    = newModule([]uint64{5, 9, 5, 1}, []uint64{1, 0, 1, 1})
		keccak = newModule([]uint64{5, 5, 1}, []uint64{1, 1, 1})
		//
		cpuFilter    = Single[goldilocks.Element](1)
		keccakFilter = Single[goldilocks.Element](1)
	)
	//
	traces := newTraces(map[TableId]trace.Module[goldilocks.Element]{
		TableCpu:    cpu,
		TableKeccak: keccak,
	})
	//
	lookup := NewCrossTableLookup(
		[]TableWithColumns[goldilocks.Element]{
			NewTableWithColumns(TableCpu, Singles[goldilocks.Element](0), &cpuFilter),
		},
		NewTableWithColumns(TableKeccak, Singles[goldilocks.Element](0), &keccakFilter),
	)
	//
	return traces, []CrossTableLookup[goldilocks.Element]{lookup}
}

// testChallenges derives a deterministic challenge set for tests.
func testChallenges(numChallenges uint) GrandProductChallengeSet[goldilocks.Element] {
	var challenger = NewChallenger[goldilocks.Element]()
	//
	challenger.ObserveBytes([]byte("ctl-test-transcript"))
	//
	return challenger.GrandProductChallengeSet(numChallenges)
}

// selectAt recomputes the selected value f·c + (1 − f) of one table view at
// one row, directly from the trace.
func selectAt(module *trace.Module[goldilocks.Element], view TableWithColumns[goldilocks.Element],
	challenge GrandProductChallenge[goldilocks.Element], row uint) goldilocks.Element {
	//
	var (
		one   = field.One[goldilocks.Element]()
		evals = make([]goldilocks.Element, len(view.Columns))
	)
	//
	for i, column := range view.Columns {
		evals[i] = column.EvalTable(module, row)
	}
	//
	combined := challenge.Combine(evals)
	//
	filter := one
	if view.Filter != nil {
		filter = view.Filter.EvalTable(module, row)
	}
	//
	return filter.Mul(combined).Add(one).Sub(filter)
}
