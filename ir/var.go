// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package ir

import "fmt"

// Var is a dense, region-local SSA value handle. Vars are only comparable
// within the Region that minted them; a Var from one Region means nothing
// to another.
type Var struct {
	id int
}

func (v Var) ID() int { return v.id }

func (v Var) String() string { return fmt.Sprintf("%%%d", v.id) }

// def records where a Var is defined: which block, and at which position
// within that block's operation list. A position of -1 with a non-negative
// block index means the Var is a block parameter rather than an operation
// result. A block index of -1 means the Var is dead (erased).
type def struct {
	block int
	pos   int
}

var deadDef = def{block: -1, pos: -1}

func (d def) isDead() bool          { return d.block == -1 && d.pos == -1 }
func (d def) isBlockParam() bool    { return d.block >= 0 && d.pos == -1 }
func (d def) isOperationRes() bool  { return d.block >= 0 && d.pos >= 0 }
