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
package field

import (
	"fmt"
	"math/big"
)

// An Element of a prime-order field.  Elements are immutable values: every
// arithmetic operation returns a fresh element, leaving its operands
// untouched.  This is the capability set required by the lookup engine
// (combination, accumulation, selection); anything beyond it lives with the
// concrete bindings.
type Element[Operand any] interface {
	fmt.Stringer
	// Add x + y
	Add(y Operand) Operand
	// Sub x - y
	Sub(y Operand) Operand
	// Mul x * y
	Mul(y Operand) Operand
	// Neg -x
	Neg() Operand
	// Inverse x⁻¹, or 0 if x = 0.
	Inverse() Operand
	// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
	Cmp(y Operand) int
	// Equals checks whether two elements represent the same value.
	Equals(y Operand) bool
	// Check whether this value is zero (or not).
	IsZero() bool
	// Check whether this value is one (or not).
	IsOne() bool
	// Return the modulus for the field in question.
	Modulus() *big.Int
	// SetUint64 constructs the element representing a given uint64.
	SetUint64(val uint64) Operand
	// SetBytes constructs an element from big endian bytes, reducing modulo
	// the field order as necessary.
	SetBytes(bytes []byte) Operand
	// Bytes returns the canonical big endian encoding of this element, which
	// is always exactly ByteWidth bytes long.
	Bytes() []byte
	// ByteWidth returns the number of bytes in the canonical encoding.
	ByteWidth() uint
	// Text returns the numerical value of x in the given base.
	Text(base int) string
}

// Zero constructs a field element representing 0
func Zero[F Element[F]]() F {
	var element F
	//
	return element
}

// One constructs a field element representing 1
func One[F Element[F]]() F {
	var element F
	//
	return element.SetUint64(1)
}

// Uint64 construct a field element from a given uint64
func Uint64[F Element[F]](val uint64) F {
	var element F
	//
	return element.SetUint64(val)
}

// FromBigEndianBytes constructs an element from an array of bytes given in big
// endian order.
func FromBigEndianBytes[F Element[F]](bytes []byte) F {
	var element F
	//
	return element.SetBytes(bytes)
}

// BigInt returns the numerical value of an element as a big.Int.
func BigInt[F Element[F]](val F) *big.Int {
	return new(big.Int).SetBytes(val.Bytes())
}

// TwoPowN constructs a field element representing 2^n
func TwoPowN[F Element[F]](n uint) F {
	var two F
	//
	return Pow(two.SetUint64(2), uint64(n))
}

// Pow computes val^n by repeated squaring.
func Pow[F Element[F]](val F, n uint64) F {
	if n == 0 {
		val = val.SetUint64(1)
	} else if n > 1 {
		m := n / 2
		// Check for odd case
		if n%2 == 1 {
			tmp := val
			val = Pow(val, m)
			val = val.Mul(val).Mul(tmp)
		} else {
			// Even case is easy
			val = Pow(val, m)
			val = val.Mul(val)
		}
	}
	//
	return val
}
