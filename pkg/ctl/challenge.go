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
	"encoding/binary"
	"fmt"

	"github.com/consensys/go-ctl/pkg/util/field"
)

// GrandProductChallenge holds the randomness for a single instance of the
// grand-product argument.
type GrandProductChallenge[F field.Element[F]] struct {
	// Beta is the randomness used to combine multiple payload columns into
	// one value.
	Beta F
	// Gamma is the random offset added to the beta-reduced payload.
	Gamma F
}

// Combine reduces an ordered list of payload values into a single value
// using powers of beta, then adds gamma:
//
//	β^(n-1)·v₀ + ... + β·v_{n-2} + v_{n-1} + γ
//
// The circuit implementation reproduces this convention exactly; both sides
// must derive identical values for identical inputs.
func (p GrandProductChallenge[F]) Combine(terms []F) F {
	return reduceWithPowers(terms, p.Beta).Add(p.Gamma)
}

// reduceWithPowers folds terms by Horner's rule with the given base.
func reduceWithPowers[F field.Element[F]](terms []F, base F) F {
	var acc = field.Zero[F]()
	//
	for _, term := range terms {
		acc = acc.Mul(base).Add(term)
	}
	//
	return acc
}

// GrandProductChallengeSet holds numChallenges independently drawn
// challenges.  The cross-table identity is checked once per challenge, which
// amplifies soundness: a cheating prover must defeat every instance at once.
type GrandProductChallengeSet[F field.Element[F]] struct {
	// Challenges in draw order.
	Challenges []GrandProductChallenge[F]
}

// Encode serialises this challenge set: a big endian uint32 element count
// followed by each challenge as two consecutive fixed-width field encodings
// (beta then gamma), in draw order.
func (p *GrandProductChallengeSet[F]) Encode() []byte {
	var (
		width = field.Zero[F]().ByteWidth()
		buf   = make([]byte, 0, 4+uint(len(p.Challenges))*2*width)
	)
	//
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Challenges)))
	//
	for _, challenge := range p.Challenges {
		buf = append(buf, challenge.Beta.Bytes()...)
		buf = append(buf, challenge.Gamma.Bytes()...)
	}
	//
	return buf
}

// DecodeChallengeSet deserialises a challenge set encoded by Encode.  A
// payload whose declared count does not match the available data is
// rejected.
func DecodeChallengeSet[F field.Element[F]](data []byte) (GrandProductChallengeSet[F], error) {
	var (
		set   GrandProductChallengeSet[F]
		width = field.Zero[F]().ByteWidth()
	)
	//
	if len(data) < 4 {
		return set, fmt.Errorf("challenge set truncated (%d bytes)", len(data))
	}
	//
	count := uint(binary.BigEndian.Uint32(data))
	data = data[4:]
	// Check declared count against available data
	if uint(len(data)) != count*2*width {
		return set, fmt.Errorf("challenge set has %d bytes (expected %d for %d challenges)",
			len(data), count*2*width, count)
	}
	//
	set.Challenges = make([]GrandProductChallenge[F], count)
	//
	for i := range set.Challenges {
		set.Challenges[i].Beta = field.FromBigEndianBytes[F](data[:width])
		set.Challenges[i].Gamma = field.FromBigEndianBytes[F](data[width : 2*width])
		data = data[2*width:]
	}
	//
	return set, nil
}
