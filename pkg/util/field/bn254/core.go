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
package bn254

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ByteWidth of the canonical encoding for this field.
const ByteWidth uint = 32

// Element wraps fr.Element (the BN254 scalar field) to conform to the
// field.Element interface.  This is the field the recursive-verifier circuit
// is arithmetised over, so the circuit gadgets are checked against a direct
// implementation bound to it.
type Element struct {
	fr.Element
}

// New constructs an element from a given uint64.
func New(val uint64) Element {
	var elem fr.Element
	//
	elem.SetUint64(val)
	//
	return Element{elem}
}

// Add x + y
func (x Element) Add(y Element) Element {
	var res fr.Element
	//
	res.Add(&x.Element, &y.Element)
	//
	return Element{res}
}

// Sub x - y
func (x Element) Sub(y Element) Element {
	var res fr.Element
	//
	res.Sub(&x.Element, &y.Element)
	//
	return Element{res}
}

// Mul x * y
func (x Element) Mul(y Element) Element {
	var res fr.Element
	//
	res.Mul(&x.Element, &y.Element)
	//
	return Element{res}
}

// Neg -x
func (x Element) Neg() Element {
	var res fr.Element
	//
	res.Neg(&x.Element)
	//
	return Element{res}
}

// Inverse x⁻¹, or 0 if x = 0.
func (x Element) Inverse() Element {
	var res fr.Element
	//
	res.Inverse(&x.Element)
	//
	return Element{res}
}

// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
func (x Element) Cmp(y Element) int {
	return x.Element.Cmp(&y.Element)
}

// Equals implementation for the Element interface.
func (x Element) Equals(y Element) bool {
	return x.Element.Equal(&y.Element)
}

// IsZero implementation for the Element interface.
func (x Element) IsZero() bool {
	return x.Element.IsZero()
}

// IsOne implementation for the Element interface.
func (x Element) IsOne() bool {
	return x.Element.IsOne()
}

// Modulus implementation for the Element interface.
func (x Element) Modulus() *big.Int {
	return fr.Modulus()
}

// SetUint64 implementation for the Element interface.
func (x Element) SetUint64(val uint64) Element {
	x.Element.SetUint64(val)
	//
	return x
}

// SetBytes implementation for the Element interface.
func (x Element) SetBytes(bytes []byte) Element {
	x.Element.SetBytes(bytes)
	//
	return x
}

// Bytes returns the canonical (big endian) encoding of x.
func (x Element) Bytes() []byte {
	bytes := x.Element.Bytes()
	//
	return bytes[:]
}

// ByteWidth implementation for the Element interface.
func (x Element) ByteWidth() uint {
	return ByteWidth
}

// Text returns the numerical value of x in the given base.
func (x Element) Text(base int) string {
	return x.Element.Text(base)
}

// String returns the decimal representation of x.
func (x Element) String() string {
	return x.Element.String()
}
