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
package gadget

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// Challenger is a Fiat-Shamir transcript operating over circuit variables,
// used when building a recursive-verifier circuit.  It mirrors
// ctl.Challenger's contract: observations and draws advance a single running
// state, and the call sequence is part of the protocol.  The sponge is MiMC
// over the circuit's native field, matching gnark-crypto's native MiMC so
// the in-circuit transcript can be recomputed outside the circuit.
type Challenger struct {
	api frontend.API
	// Sponge the transcript state is threaded through.
	sponge mimc.MiMC
	// Running transcript state.
	state frontend.Variable
}

// NewChallenger constructs a challenger with an empty transcript.
func NewChallenger(api frontend.API) (*Challenger, error) {
	sponge, err := mimc.NewMiMC(api)
	// error check
	if err != nil {
		return nil, err
	}
	//
	return &Challenger{api: api, sponge: sponge, state: 0}, nil
}

// Observe absorbs the given variables into the transcript, in order.
func (p *Challenger) Observe(values ...frontend.Variable) {
	p.sponge.Reset()
	p.sponge.Write(p.state)
	p.sponge.Write(values...)
	p.state = p.sponge.Sum()
}

// Next draws a fresh challenge variable from the transcript.
func (p *Challenger) Next() frontend.Variable {
	p.sponge.Reset()
	p.sponge.Write(p.state)
	p.state = p.sponge.Sum()
	//
	return p.state
}

// GrandProductChallenge draws one grand-product challenge: beta first, then
// gamma, exactly as the direct challenger does.
func (p *Challenger) GrandProductChallenge() Challenge {
	var (
		beta  = p.Next()
		gamma = p.Next()
	)
	//
	return Challenge{Beta: beta, Gamma: gamma}
}

// GrandProductChallengeSet draws numChallenges independent grand-product
// challenges.
func (p *Challenger) GrandProductChallengeSet(numChallenges uint) ChallengeSet {
	var challenges = make([]Challenge, numChallenges)
	//
	for i := range challenges {
		challenges[i] = p.GrandProductChallenge()
	}
	//
	return ChallengeSet{Challenges: challenges}
}
