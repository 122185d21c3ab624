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
package trace

import (
	"github.com/consensys/go-ctl/pkg/util/field"
)

// Module holds the execution trace of one sub-machine in column-major form:
// a sequence of columns which all have the same height.  Rows are addressed
// from zero, and a module is immutable once constructed.
type Module[F field.Element[F]] struct {
	// Holds the raw data making up this module, one slice per column.
	columns [][]F
}

// NewModule constructs a module from a set of columns given in column-major
// form.  All columns must have the same height, otherwise this panics (a
// ragged trace indicates a bug in whatever produced it).
func NewModule[F field.Element[F]](columns [][]F) Module[F] {
	// Sanity check columns are not ragged
	for _, col := range columns {
		if len(col) != len(columns[0]) {
			panic("ragged module (differing column heights)")
		}
	}
	// Done
	return Module[F]{columns}
}

// Height returns the number of rows in this module.
func (p *Module[F]) Height() uint {
	if len(p.columns) == 0 {
		return 0
	}
	//
	return uint(len(p.columns[0]))
}

// Width returns the number of columns in this module.
func (p *Module[F]) Width() uint {
	return uint(len(p.columns))
}

// Column returns the data of the given column.
func (p *Module[F]) Column(col uint) []F {
	return p.columns[col]
}

// CellAt returns the value of a given column at a given row.
func (p *Module[F]) CellAt(col uint, row uint) F {
	return p.columns[col][row]
}

// Row materialises a single row of this module.  This allocates, and is
// intended for constraint evaluation over a full row rather than for use in
// inner loops.
func (p *Module[F]) Row(row uint) []F {
	var values = make([]F, len(p.columns))
	//
	for i, col := range p.columns {
		values[i] = col[row]
	}
	//
	return values
}

// RawColumn represents a single named column of data within some module, as
// read from (or written to) an external trace file.
type RawColumn[F field.Element[F]] struct {
	// Module in which this column exists
	Module string
	// Name of this column
	Name string
	// Data making up this column
	Data []F
}

// NewModuleFromRawColumns constructs a module from a set of raw columns,
// which must all belong to the same module.  Column order is preserved.
func NewModuleFromRawColumns[F field.Element[F]](columns []RawColumn[F]) Module[F] {
	var data = make([][]F, len(columns))
	//
	for i, col := range columns {
		data[i] = col.Data
	}
	//
	return NewModule(data)
}
