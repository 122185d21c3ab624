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
)

// Term is a single (column index, coefficient) pair within an affine
// combination of trace columns.
type Term[F field.Element[F]] struct {
	// Column index within the underlying trace.
	Column uint
	// Coefficient the column value is scaled by.
	Coefficient F
}

// Column represents two affine combinations of trace columns, corresponding
// to the current and next row values, plus a constant.  That is, the affine
// map:
//
//	row ↦ Σ cᵢ·row[i] + Σ dⱼ·next_row[j] + k
//
// Columns are immutable once constructed, and are owned by the lookup
// specification which references them.
type Column[F field.Element[F]] struct {
	// Terms over the current row.
	linear []Term[F]
	// Terms over the next row.
	nextRow []Term[F]
	// Constant of the affine combination.
	constant F
}

// Single returns the column representing a single trace column in the
// current row.
func Single[F field.Element[F]](col uint) Column[F] {
	return Column[F]{
		linear: []Term[F]{{col, field.One[F]()}},
	}
}

// Singles returns one single-column combination per given trace column, all
// in the current row.
func Singles[F field.Element[F]](cols ...uint) []Column[F] {
	var columns = make([]Column[F], len(cols))
	//
	for i, col := range cols {
		columns[i] = Single[F](col)
	}
	//
	return columns
}

// SingleNextRow returns the column representing a single trace column in the
// next row.
func SingleNextRow[F field.Element[F]](col uint) Column[F] {
	return Column[F]{
		nextRow: []Term[F]{{col, field.One[F]()}},
	}
}

// SinglesNextRow returns one single-column combination per given trace
// column, all in the next row.
func SinglesNextRow[F field.Element[F]](cols ...uint) []Column[F] {
	var columns = make([]Column[F], len(cols))
	//
	for i, col := range cols {
		columns[i] = SingleNextRow[F](col)
	}
	//
	return columns
}

// Constant returns the combination evaluating to a given constant on every
// row.
func Constant[F field.Element[F]](constant F) Column[F] {
	return Column[F]{constant: constant}
}

// ZeroColumn returns the combination evaluating to 0 on every row.
func ZeroColumn[F field.Element[F]]() Column[F] {
	return Constant(field.Zero[F]())
}

// OneColumn returns the combination evaluating to 1 on every row.
func OneColumn[F field.Element[F]]() Column[F] {
	return Constant(field.One[F]())
}

// LinearCombinationWithConstant returns the affine combination of the given
// terms over the current row, plus a constant.  The term list must be
// non-empty and must not mention any column twice; either violation is a
// programming error in the proof-system instantiation, hence panics.
func LinearCombinationWithConstant[F field.Element[F]](terms []Term[F], constant F) Column[F] {
	if len(terms) == 0 {
		panic("empty linear combination")
	}
	//
	checkDistinctColumns(terms)
	//
	return Column[F]{linear: terms, constant: constant}
}

// LinearCombination returns the linear combination of the given terms over
// the current row, with no additional constant.
func LinearCombination[F field.Element[F]](terms []Term[F]) Column[F] {
	return LinearCombinationWithConstant(terms, field.Zero[F]())
}

// LinearCombinationAndNextRowWithConstant returns the affine combination of
// the given current-row and next-row terms, plus a constant.  At least one of
// the two term lists must be non-empty, and neither may mention a column
// twice.
func LinearCombinationAndNextRowWithConstant[F field.Element[F]](terms []Term[F],
	nextRowTerms []Term[F], constant F) Column[F] {
	//
	if len(terms) == 0 && len(nextRowTerms) == 0 {
		panic("empty linear combination")
	}
	//
	checkDistinctColumns(terms)
	checkDistinctColumns(nextRowTerms)
	//
	return Column[F]{linear: terms, nextRow: nextRowTerms, constant: constant}
}

// LeBits returns the combination reconstructing an integer from its bits.
// Given columns (c₀, ..., cₙ) holding bits in little endian order, this
// represents c₀ + 2·c₁ + ... + 2ⁿ·cₙ.
func LeBits[F field.Element[F]](cols ...uint) Column[F] {
	var (
		terms = make([]Term[F], len(cols))
		coeff = field.One[F]()
		two   = field.Uint64[F](2)
	)
	//
	for i, col := range cols {
		terms[i] = Term[F]{col, coeff}
		coeff = coeff.Mul(two)
	}
	//
	return LinearCombination(terms)
}

// LeBytes returns the combination reconstructing an integer from its bytes.
// Given columns (c₀, ..., cₙ) holding bytes in little endian order, this
// represents c₀ + 256·c₁ + ... + 256ⁿ·cₙ.
func LeBytes[F field.Element[F]](cols ...uint) Column[F] {
	var (
		terms = make([]Term[F], len(cols))
		coeff = field.One[F]()
		base  = field.Uint64[F](256)
	)
	//
	for i, col := range cols {
		terms[i] = Term[F]{col, coeff}
		coeff = coeff.Mul(base)
	}
	//
	return LinearCombination(terms)
}

// SumColumns returns the combination representing the sum of the given trace
// columns.
func SumColumns[F field.Element[F]](cols ...uint) Column[F] {
	var terms = make([]Term[F], len(cols))
	//
	for i, col := range cols {
		terms[i] = Term[F]{col, field.One[F]()}
	}
	//
	return LinearCombination(terms)
}

// LinearTerms returns the terms of this combination over the current row.
// The returned slice must not be mutated.
func (p *Column[F]) LinearTerms() []Term[F] {
	return p.linear
}

// NextRowTerms returns the terms of this combination over the next row.  The
// returned slice must not be mutated.
func (p *Column[F]) NextRowTerms() []Term[F] {
	return p.nextRow
}

// ConstantTerm returns the constant of this combination.
func (p *Column[F]) ConstantTerm() F {
	return p.constant
}

// Eval evaluates this combination given the column values of the current
// row.  Next-row terms are ignored.
func (p *Column[F]) Eval(row []F) F {
	var res = p.constant
	//
	for _, term := range p.linear {
		res = res.Add(row[term.Column].Mul(term.Coefficient))
	}
	//
	return res
}

// EvalWithNext evaluates this combination given the column values of the
// current and next rows.
func (p *Column[F]) EvalWithNext(row []F, nextRow []F) F {
	var res = p.Eval(row)
	//
	for _, term := range p.nextRow {
		res = res.Add(nextRow[term.Column].Mul(term.Coefficient))
	}
	//
	return res
}

// EvalTable evaluates this combination on a given row of a module given in
// column-major form.  If the combination accesses the next row at the last
// row, the next row's values are taken to be 0.  A correctly filtered lookup
// never selects the last row when a next-row term is present, so this only
// arises on rows whose contribution is discarded anyway.
func (p *Column[F]) EvalTable(module *trace.Module[F], row uint) F {
	var res = p.constant
	//
	for _, term := range p.linear {
		res = res.Add(module.CellAt(term.Column, row).Mul(term.Coefficient))
	}
	//
	if row+1 < module.Height() {
		for _, term := range p.nextRow {
			res = res.Add(module.CellAt(term.Column, row+1).Mul(term.Coefficient))
		}
	}
	//
	return res
}

// checkDistinctColumns panics if any column index appears twice in the given
// term list.
func checkDistinctColumns[F field.Element[F]](terms []Term[F]) {
	var seen = make(map[uint]bool, len(terms))
	//
	for _, term := range terms {
		if seen[term.Column] {
			panic("duplicate columns in linear combination")
		}
		//
		seen[term.Column] = true
	}
}
