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
	"errors"
	"testing"

	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field/goldilocks"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle_AcceptsConsistentTraces(t *testing.T) {
	var traces, lookups = simpleLookup()
	//
	require.NoError(t, CheckCrossTableLookups(traces, lookups, nil))
}

func TestOracle_DetectsOffByOne(t *testing.T) {
	var (
		// Keccak holds {5, 5, 2} where cpu selects {5, 5, 1}.
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
	//
	err := CheckCrossTableLookups(traces, lookups, nil)
	require.Error(t, err)
	// The failure names the offending row and where it was found.
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, uint(0), failure.Lookup)
	assert.NotEqual(t, len(failure.LookingLocations), len(failure.LookedLocations))
}

func TestOracle_DetectsDuplicateCount(t *testing.T) {
	var (
		// Both sides hold the same set of values but with different
		// multiplicities, which a set-based check would miss.
		cpu    = newModule([]uint64{5, 5, 1})
		keccak = newModule([]uint64{5, 1, 1})
	)
	//
	traces := newTraces(map[TableId]trace.Module[goldilocks.Element]{
		TableCpu:    cpu,
		TableKeccak: keccak,
	})
	//
	lookups := []CrossTableLookup[goldilocks.Element]{NewCrossTableLookup(
		[]TableWithColumns[goldilocks.Element]{
			NewTableWithColumns(TableCpu, Singles[goldilocks.Element](0), nil),
		},
		NewTableWithColumns(TableKeccak, Singles[goldilocks.Element](0), nil),
	)}
	//
	require.Error(t, CheckCrossTableLookups(traces, lookups, nil))
}

func TestOracle_NonBinaryFilterRejected(t *testing.T) {
	var (
		cpu    = newModule([]uint64{5}, []uint64{3})
		keccak = newModule([]uint64{5}, []uint64{1})
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
	//
	require.ErrorContains(t, CheckCrossTableLookups(traces, lookups, nil), "non-binary filter")
}

func TestOracle_ExtraLookingRows(t *testing.T) {
	var traces, lookups = extraLookup()
	// Without the extra row the multisets differ.
	require.Error(t, CheckCrossTableLookups(traces, lookups, nil))
	// Supplying {5} out of band balances them.
	var extra = make([][][]goldilocks.Element, NumTables)
	//
	extra[TableKeccak] = [][]goldilocks.Element{col(5)}
	//
	require.NoError(t, CheckCrossTableLookups(traces, lookups, extra))
}

func TestOracle_WrongTraceCountPanics(t *testing.T) {
	var _, lookups = simpleLookup()
	//
	require.Panics(t, func() {
		_ = CheckCrossTableLookups(make([]trace.Module[goldilocks.Element], 1), lookups, nil)
	})
}

// TestOracle_AgreesWithVerifier checks, over randomly generated traces, that
// the brute-force multiset oracle and the algebraic product identity agree:
// a permuted copy satisfies both, a mutated copy satisfies neither.
func TestOracle_AgreesWithVerifier(t *testing.T) {
	var (
		parameters = gopter.DefaultTestParameters()
		properties = gopter.NewProperties(parameters)
	)
	//
	parameters.MinSuccessfulTests = 64
	//
	makeLookup := func(values []uint64, rotate int, mutate bool) (
		[]trace.Module[goldilocks.Element], []CrossTableLookup[goldilocks.Element]) {
		//
		looking := make([]uint64, len(values))
		copy(looking, values)
		// The looked side is a rotation of the looking side, which leaves
		// the multiset unchanged.
		looked := make([]uint64, len(values))
		//
		for i := range values {
			looked[i] = values[(i+rotate)%len(values)]
		}
		//
		if mutate {
			looked[0]++
		}
		//
		traces := newTraces(map[TableId]trace.Module[goldilocks.Element]{
			TableCpu:    newModule(looking),
			TableKeccak: newModule(looked),
		})
		//
		lookups := []CrossTableLookup[goldilocks.Element]{NewCrossTableLookup(
			[]TableWithColumns[goldilocks.Element]{
				NewTableWithColumns(TableCpu, Singles[goldilocks.Element](0), nil),
			},
			NewTableWithColumns(TableKeccak, Singles[goldilocks.Element](0), nil),
		)}
		//
		return traces, lookups
	}
	//
	check := func(values []uint64, rotate int, mutate bool) bool {
		var (
			traces, lookups = makeLookup(values, rotate, mutate)
			challenges      = testChallenges(2)
		)
		//
		data, err := CrossTableLookupData(traces, lookups, challenges)
		// error check
		if err != nil {
			return false
		}
		//
		oracleOk := CheckCrossTableLookups(traces, lookups, nil) == nil
		verifierOk := VerifyCrossTableLookups(lookups, zsFirst(data), nil, 2) == nil
		//
		return oracleOk == verifierOk && oracleOk != mutate
	}
	//
	properties.Property("permutation accepted on both sides", prop.ForAll(
		func(values []uint64, rotate int) bool {
			return check(values, rotate, false)
		},
		gen.SliceOfN(8, gen.UInt64Range(0, 1000)),
		gen.IntRange(0, 7),
	))
	//
	properties.Property("mutation rejected on both sides", prop.ForAll(
		func(values []uint64, rotate int) bool {
			return check(values, rotate, true)
		},
		gen.SliceOfN(8, gen.UInt64Range(0, 1000)),
		gen.IntRange(0, 7),
	))
	//
	properties.TestingRun(t)
}
