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
	"fmt"

	"github.com/consensys/gnark/frontend"
)

// Challenge is the circuit-variable counterpart of
// ctl.GrandProductChallenge.
type Challenge struct {
	// Beta is the randomness used to combine multiple payload columns into
	// one value.
	Beta frontend.Variable
	// Gamma is the random offset added to the beta-reduced payload.
	Gamma frontend.Variable
}

// Combine reduces an ordered list of payload variables into one variable
// using powers of beta, then adds gamma.  The power and ordering convention
// matches ctl.GrandProductChallenge.Combine exactly.
func (p Challenge) Combine(api frontend.API, terms []frontend.Variable) frontend.Variable {
	var acc frontend.Variable = 0
	//
	for _, term := range terms {
		acc = api.Add(api.Mul(acc, p.Beta), term)
	}
	//
	return api.Add(acc, p.Gamma)
}

// ChallengeSet is the circuit-variable counterpart of
// ctl.GrandProductChallengeSet.
type ChallengeSet struct {
	// Challenges in draw order.
	Challenges []Challenge
}

// Flatten serialises this set into a flat variable buffer: each challenge
// contributes beta then gamma, in draw order.  The element count is implied
// by the buffer length, which is statically known in a circuit.
func (p ChallengeSet) Flatten() []frontend.Variable {
	var buf = make([]frontend.Variable, 0, 2*len(p.Challenges))
	//
	for _, challenge := range p.Challenges {
		buf = append(buf, challenge.Beta, challenge.Gamma)
	}
	//
	return buf
}

// ChallengeSetFromVariables reconstructs a challenge set from a flat
// variable buffer produced by Flatten.  A buffer of odd length cannot hold
// whole (beta, gamma) pairs and is rejected.
func ChallengeSetFromVariables(buf []frontend.Variable) (ChallengeSet, error) {
	if len(buf)%2 != 0 {
		return ChallengeSet{}, fmt.Errorf("challenge buffer has odd length %d", len(buf))
	}
	//
	var challenges = make([]Challenge, len(buf)/2)
	//
	for i := range challenges {
		challenges[i] = Challenge{Beta: buf[2*i], Gamma: buf[2*i+1]}
	}
	//
	return ChallengeSet{Challenges: challenges}, nil
}
