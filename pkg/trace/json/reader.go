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
package json

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"

	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field"
)

// FromBytes parses a trace expressed in JSON notation.  For example,
// {"cpu": {"X": [0], "Y": [1]}} is a trace containing a module "cpu" with one
// row of data each for two columns "X" and "Y".  Within each module, columns
// are returned in lexicographic order of their names, so that the column
// numbering seen by downstream consumers is deterministic.  Values must be
// non-negative and below the field modulus.
func FromBytes[F field.Element[F]](data []byte) (map[string][]trace.RawColumn[F], error) {
	var (
		rawData map[string]map[string][]big.Int
		modules = make(map[string][]trace.RawColumn[F])
	)
	// Attempt to unmarshall
	if err := json.Unmarshal(data, &rawData); err != nil {
		return nil, err
	}
	//
	for mod, modData := range rawData {
		var (
			names   = sortedKeys(modData)
			columns = make([]trace.RawColumn[F], 0, len(names))
			height  = -1
		)
		//
		for _, name := range names {
			col, err := columnFromBigInts[F](mod, name, modData[name])
			// error check
			if err != nil {
				return nil, err
			}
			// Sanity check column heights
			if height >= 0 && height != len(col.Data) {
				return nil, fmt.Errorf("module %s: column %s has height %d (expected %d)",
					mod, name, len(col.Data), height)
			}
			//
			height = len(col.Data)
			columns = append(columns, col)
		}
		//
		modules[mod] = columns
	}
	// Done
	return modules, nil
}

func columnFromBigInts[F field.Element[F]](mod string, name string, rawInts []big.Int) (trace.RawColumn[F], error) {
	var (
		data    = make([]F, len(rawInts))
		modulus = field.Zero[F]().Modulus()
	)
	//
	for i, ith := range rawInts {
		// Validate data value
		if ith.Sign() < 0 || ith.Cmp(modulus) >= 0 {
			return trace.RawColumn[F]{}, fmt.Errorf("column %s.%s out-of-bounds (row %d, value %s)",
				mod, name, i, ith.String())
		}
		//
		data[i] = field.FromBigEndianBytes[F](ith.Bytes())
	}
	//
	return trace.RawColumn[F]{Module: mod, Name: name, Data: data}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	var keys = make([]string, 0, len(m))
	//
	for k := range m {
		keys = append(keys, k)
	}
	//
	slices.Sort(keys)
	//
	return keys
}
