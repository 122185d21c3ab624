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

// Package gadget mirrors the cross-table lookup verifier inside an
// arithmetic circuit, so that verification of one proof can itself be proven
// correct recursively.  Every operation here emits the same polynomial
// identity as its direct counterpart in pkg/ctl, over gnark circuit
// variables instead of field elements; the two must stay equivalent
// value-for-value since the circuit form is what an outer proof attests to.
package gadget

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/go-ctl/pkg/ctl"
	"github.com/consensys/go-ctl/pkg/util/field"
)

// EvalColumn evaluates an affine column combination inside a circuit, given
// the variables of the current row.  Next-row terms are ignored.  This is
// the inner-product-with-constant form of ctl.Column.Eval.
func EvalColumn[F field.Element[F]](api frontend.API, column ctl.Column[F],
	localValues []frontend.Variable) frontend.Variable {
	//
	var acc frontend.Variable = coefficient(column.ConstantTerm())
	//
	for _, term := range column.LinearTerms() {
		acc = api.Add(acc, api.Mul(localValues[term.Column], coefficient(term.Coefficient)))
	}
	//
	return acc
}

// EvalColumnWithNext evaluates an affine column combination inside a
// circuit, given the variables of the current and next rows.
func EvalColumnWithNext[F field.Element[F]](api frontend.API, column ctl.Column[F],
	localValues []frontend.Variable, nextValues []frontend.Variable) frontend.Variable {
	//
	var acc = EvalColumn(api, column, localValues)
	//
	for _, term := range column.NextRowTerms() {
		acc = api.Add(acc, api.Mul(nextValues[term.Column], coefficient(term.Coefficient)))
	}
	//
	return acc
}

// coefficient lifts a field element into a circuit constant.  Coefficients
// are required to fit the circuit's native field; in practice they are small
// values (powers of two, sums of ones) shared with the direct
// implementation.
func coefficient[F field.Element[F]](value F) *big.Int {
	return new(big.Int).SetBytes(value.Bytes())
}
