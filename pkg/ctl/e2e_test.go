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
	"testing"

	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field/goldilocks"
	"github.com/stretchr/testify/require"
)

// deriveChallenges runs the Fiat-Shamir transcript over the full trace set,
// the way a prover and verifier would before the grand-product phase.
func deriveChallenges(traces []trace.Module[goldilocks.Element],
	numChallenges uint) GrandProductChallengeSet[goldilocks.Element] {
	//
	var challenger = NewChallenger[goldilocks.Element]()
	//
	for _, module := range traces {
		for c := uint(0); c < module.Width(); c++ {
			challenger.Observe(module.Column(c)...)
		}
	}
	//
	return challenger.GrandProductChallengeSet(numChallenges)
}

// pipeline runs the full argument over the given traces: derive challenges,
// build the Z data, re-check every constraint on every row of every table,
// and check the cross-table product identity.  It returns the first error
// encountered.
func pipeline(t *testing.T, traces []trace.Module[goldilocks.Element],
	lookups []CrossTableLookup[goldilocks.Element], numChallenges uint) error {
	//
	challenges := deriveChallenges(traces, numChallenges)
	//
	data, err := CrossTableLookupData(traces, lookups, challenges)
	// error check
	if err != nil {
		return err
	}
	// Reconstruct check vars from openings, as the verifier does, then
	// evaluate the constraints on every row of every table.
	for table := TableArithmetic; table < NumTables; table++ {
		if failures := checkAllRows(t, traces, table, &data[table]); len(failures) != 0 {
			return fmt.Errorf("table %s: %d constraint failures", table, len(failures))
		}
	}
	//
	return VerifyCrossTableLookups(lookups, zsFirst(data), nil, numChallenges)
}

func TestEndToEnd_Accepts(t *testing.T) {
	var traces, lookups = simpleLookup()
	//
	require.NoError(t, CheckCrossTableLookups(traces, lookups, nil))
	require.NoError(t, pipeline(t, traces, lookups, 2))
}

func TestEndToEnd_RejectsMutation(t *testing.T) {
	var (
		// As simpleLookup, but the last looked value is mutated.
		cpu    = newModule([]uint64{5, 9, 5, 1}, []uint64{1, 0, 1, 1})
		keccak = newModule([]uint64{5, 5, 2}, []uint64{1, 1, 1})
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
	lookups := []CrossTableLookup[goldilocks.Element]{NewCrossTableLookup(
		[]TableWithColumns[goldilocks.Element]{
			NewTableWithColumns(TableCpu, Singles[goldilocks.Element](0), &cpuFilter),
		},
		NewTableWithColumns(TableKeccak, Singles[goldilocks.Element](0), &keccakFilter),
	)}
	// Both the oracle and the algebraic pipeline must reject.
	require.Error(t, CheckCrossTableLookups(traces, lookups, nil))
	require.Error(t, pipeline(t, traces, lookups, 2))
}

func TestEndToEnd_MultiTableMultiLookup(t *testing.T) {
	var (
		// Two lookups sharing tables: arithmetic and logic both look into
		// memory on (addr, value) pairs, while cpu looks into arithmetic on
		// a single column.
		arithmetic = newModule([]uint64{1, 2, 7}, []uint64{10, 20, 70}, []uint64{1, 1, 1})
		logic      = newModule([]uint64{3, 4}, []uint64{30, 40})
		memory     = newModule([]uint64{1, 3, 2, 4, 7}, []uint64{10, 30, 20, 40, 70})
		cpu        = newModule([]uint64{7, 9, 2, 1}, []uint64{1, 0, 1, 1})
		//
		arithFilter = Single[goldilocks.Element](2)
		cpuFilter   = Single[goldilocks.Element](1)
	)
	//
	traces := newTraces(map[TableId]trace.Module[goldilocks.Element]{
		TableArithmetic: arithmetic,
		TableLogic:      logic,
		TableMemory:     memory,
		TableCpu:        cpu,
	})
	//
	lookups := []CrossTableLookup[goldilocks.Element]{
		NewCrossTableLookup(
			[]TableWithColumns[goldilocks.Element]{
				NewTableWithColumns(TableArithmetic, Singles[goldilocks.Element](0, 1), &arithFilter),
				NewTableWithColumns(TableLogic, Singles[goldilocks.Element](0, 1), nil),
			},
			NewTableWithColumns(TableMemory, Singles[goldilocks.Element](0, 1), nil),
		),
		NewCrossTableLookup(
			[]TableWithColumns[goldilocks.Element]{
				NewTableWithColumns(TableCpu, Singles[goldilocks.Element](0), &cpuFilter),
			},
			NewTableWithColumns(TableArithmetic, Singles[goldilocks.Element](0), nil),
		),
	}
	//
	require.NoError(t, CheckCrossTableLookups(traces, lookups, nil))
	require.NoError(t, pipeline(t, traces, lookups, 2))
}

func TestEndToEnd_ChallengeTransport(t *testing.T) {
	var (
		traces, lookups = simpleLookup()
		challenges      = deriveChallenges(traces, 2)
	)
	// Challenges survive serialisation across the prover/verifier boundary.
	decoded, err := DecodeChallengeSet[goldilocks.Element](challenges.Encode())
	require.NoError(t, err)
	//
	data, err := CrossTableLookupData(traces, lookups, decoded)
	require.NoError(t, err)
	//
	require.NoError(t, VerifyCrossTableLookups(lookups, zsFirst(data), nil, 2))
}

func TestEndToEnd_NextRowPayloads(t *testing.T) {
	var (
		// The looking payload pairs each selected row's value with its
		// successor's value; the looked table holds those pairs explicitly.
		// The last row is unselected, since it has no successor.
		cpu    = newModule([]uint64{3, 8, 2, 0}, []uint64{1, 1, 1, 0})
		memory = newModule([]uint64{3, 8, 2}, []uint64{8, 2, 0})
		//
		cpuFilter = Single[goldilocks.Element](1)
		payload   = []Column[goldilocks.Element]{
			Single[goldilocks.Element](0),
			SingleNextRow[goldilocks.Element](0),
		}
	)
	//
	traces := newTraces(map[TableId]trace.Module[goldilocks.Element]{
		TableCpu:    cpu,
		TableMemory: memory,
	})
	//
	lookups := []CrossTableLookup[goldilocks.Element]{NewCrossTableLookup(
		[]TableWithColumns[goldilocks.Element]{
			NewTableWithColumns(TableCpu, payload, &cpuFilter),
		},
		NewTableWithColumns(TableMemory, Singles[goldilocks.Element](0, 1), nil),
	)}
	//
	require.NoError(t, CheckCrossTableLookups(traces, lookups, nil))
	require.NoError(t, pipeline(t, traces, lookups, 2))
}
