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
	"strings"

	"github.com/consensys/go-ctl/pkg/trace"
	"github.com/consensys/go-ctl/pkg/util/field"
)

// ToJsonString converts a set of raw columns into a JSON string, using the
// same notation accepted by FromBytes.  Columns are grouped by module in the
// order given.
func ToJsonString[F field.Element[F]](columns []trace.RawColumn[F]) string {
	var (
		builder strings.Builder
		modules []string
		grouped = make(map[string][]trace.RawColumn[F])
	)
	// Group columns by module, preserving first-seen order
	for _, col := range columns {
		if _, ok := grouped[col.Module]; !ok {
			modules = append(modules, col.Module)
		}
		//
		grouped[col.Module] = append(grouped[col.Module], col)
	}
	//
	builder.WriteString("{")
	//
	for i, mod := range modules {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString("\"")
		builder.WriteString(mod)
		builder.WriteString("\": {")
		//
		for j, col := range grouped[mod] {
			if j != 0 {
				builder.WriteString(", ")
			}
			//
			builder.WriteString("\"")
			builder.WriteString(col.Name)
			builder.WriteString("\": [")
			//
			for k, val := range col.Data {
				if k != 0 {
					builder.WriteString(", ")
				}
				//
				builder.WriteString(val.Text(10))
			}
			//
			builder.WriteString("]")
		}
		//
		builder.WriteString("}")
	}
	//
	builder.WriteString("}")
	// Done
	return builder.String()
}
