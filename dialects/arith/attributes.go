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

package arith

import "strconv"

// Immediate is the compile-time constant Addi folds into its single
// operand.
type Immediate int64

func (Immediate) AttributeName() string { return "arith.immediate" }
func (i Immediate) String() string      { return strconv.FormatInt(int64(i), 10) }

// Callee names the function a Call targets within an enclosing
// module's symbol table.
type Callee string

func (Callee) AttributeName() string { return "arith.callee" }
func (c Callee) String() string      { return string(c) }
