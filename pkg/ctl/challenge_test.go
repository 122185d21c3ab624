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
	"testing"

	"github.com/consensys/go-ctl/pkg/util/field/goldilocks"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallenge_CombineConvention(t *testing.T) {
	var challenge = GrandProductChallenge[goldilocks.Element]{Beta: gf(2), Gamma: gf(1000)}
	// β²·3 + β·5 + 7 + γ = 12 + 10 + 7 + 1000
	combined := challenge.Combine(col(3, 5, 7))
	assert.Equal(t, gf(1029), combined)
}

func TestChallenge_CombineEmpty(t *testing.T) {
	var challenge = GrandProductChallenge[goldilocks.Element]{Beta: gf(2), Gamma: gf(9)}
	// An empty payload reduces to gamma alone.
	assert.Equal(t, gf(9), challenge.Combine(nil))
}

func TestChallenge_CombineSingleton(t *testing.T) {
	var challenge = GrandProductChallenge[goldilocks.Element]{Beta: gf(123), Gamma: gf(4)}
	// A single term is unaffected by beta.
	assert.Equal(t, gf(11), challenge.Combine(col(7)))
}

func TestChallengeSet_EncodeDecodeRoundTrip(t *testing.T) {
	var (
		parameters = gopter.DefaultTestParameters()
		properties = gopter.NewProperties(parameters)
	)
	//
	properties.Property("decode inverts encode", prop.ForAll(
		func(values []uint64) bool {
			// Pair up consecutive values as (beta, gamma).
			var set GrandProductChallengeSet[goldilocks.Element]
			//
			for i := 0; i+1 < len(values); i += 2 {
				set.Challenges = append(set.Challenges, GrandProductChallenge[goldilocks.Element]{
					Beta:  gf(values[i]),
					Gamma: gf(values[i+1]),
				})
			}
			//
			decoded, err := DecodeChallengeSet[goldilocks.Element](set.Encode())
			// error check
			if err != nil {
				return false
			}
			//
			if len(decoded.Challenges) != len(set.Challenges) {
				return false
			}
			//
			for i, challenge := range set.Challenges {
				if !decoded.Challenges[i].Beta.Equals(challenge.Beta) ||
					!decoded.Challenges[i].Gamma.Equals(challenge.Gamma) {
					return false
				}
			}
			//
			return true
		},
		gen.SliceOf(gen.UInt64()),
	))
	//
	properties.TestingRun(t)
}

func TestChallengeSet_DecodeRejectsTruncated(t *testing.T) {
	_, err := DecodeChallengeSet[goldilocks.Element]([]byte{0, 1})
	require.Error(t, err)
}

func TestChallengeSet_DecodeRejectsCountMismatch(t *testing.T) {
	var set = testChallenges(2)
	//
	encoded := set.Encode()
	// Claim three challenges but supply data for two.
	encoded[3] = 3
	//
	_, err := DecodeChallengeSet[goldilocks.Element](encoded)
	require.Error(t, err)
}

func TestChallengeSet_DecodeRejectsTrailingData(t *testing.T) {
	var set = testChallenges(1)
	//
	encoded := append(set.Encode(), 0xff)
	//
	_, err := DecodeChallengeSet[goldilocks.Element](encoded)
	require.Error(t, err)
}
