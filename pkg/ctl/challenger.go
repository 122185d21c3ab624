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

	"github.com/consensys/go-ctl/pkg/util/field"
	"golang.org/x/crypto/blake2b"
)

// Challenger is a Fiat-Shamir transcript producing fresh field elements.
// Observations and draws both advance a single running state, so the order
// of calls is part of the protocol: prover and verifier must make exactly
// the same sequence of calls to derive the same challenges.  A Challenger
// must therefore never be shared across goroutines.
type Challenger[F field.Element[F]] struct {
	// Running transcript state.
	state [blake2b.Size256]byte
	// Number of draws since the last observation.
	counter uint64
}

// NewChallenger constructs a challenger with an empty transcript.
func NewChallenger[F field.Element[F]]() *Challenger[F] {
	return &Challenger[F]{}
}

// Observe absorbs the given elements into the transcript, in order.
func (p *Challenger[F]) Observe(elements ...F) {
	var buf []byte
	//
	buf = append(buf, p.state[:]...)
	//
	for _, element := range elements {
		buf = append(buf, element.Bytes()...)
	}
	//
	p.state = blake2b.Sum256(buf)
	p.counter = 0
}

// ObserveBytes absorbs raw bytes into the transcript.
func (p *Challenger[F]) ObserveBytes(bytes []byte) {
	var buf []byte
	//
	buf = append(buf, p.state[:]...)
	buf = append(buf, bytes...)
	//
	p.state = blake2b.Sum256(buf)
	p.counter = 0
}

// Next draws a fresh pseudorandom field element from the transcript.
func (p *Challenger[F]) Next() F {
	var buf [blake2b.Size256 + 8]byte
	//
	copy(buf[:], p.state[:])
	binary.BigEndian.PutUint64(buf[blake2b.Size256:], p.counter)
	//
	p.counter++
	//
	digest := blake2b.Sum256(buf[:])
	// Reduce 256 bits into the field, which keeps the draw statistically
	// close to uniform for any field of fewer than ~200 bits.
	return field.FromBigEndianBytes[F](digest[:])
}

// GrandProductChallenge draws one grand-product challenge: beta first, then
// gamma.  The order is fixed since prover and verifier reproduce it from the
// same transcript state.
func (p *Challenger[F]) GrandProductChallenge() GrandProductChallenge[F] {
	var (
		beta  = p.Next()
		gamma = p.Next()
	)
	//
	return GrandProductChallenge[F]{Beta: beta, Gamma: gamma}
}

// GrandProductChallengeSet draws numChallenges independent grand-product
// challenges.  Draws are inherently sequential; they must not be
// parallelised within one transcript.
func (p *Challenger[F]) GrandProductChallengeSet(numChallenges uint) GrandProductChallengeSet[F] {
	var challenges = make([]GrandProductChallenge[F], numChallenges)
	//
	for i := range challenges {
		challenges[i] = p.GrandProductChallenge()
	}
	//
	return GrandProductChallengeSet[F]{Challenges: challenges}
}
