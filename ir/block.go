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

// BasicBlock is an ordered sequence of Operations plus the block
// parameters SSACFG successors bind on entry. A Graph region has
// exactly one BasicBlock and never uses params or successors.
type BasicBlock struct {
	params []Var
	ops    []*Operation
}

// Params returns the block's parameter Vars, in declaration order.
func (b *BasicBlock) Params() []Var {
	out := make([]Var, len(b.params))
	copy(out, b.params)
	return out
}

// Len returns the number of operation slots in the block, counting
// erased ones, which remain as nil holes.
func (b *BasicBlock) Len() int { return len(b.ops) }

// OpAt returns the Operation at position pos, or nil if that position
// holds an erased operation.
func (b *BasicBlock) OpAt(pos int) *Operation {
	if pos < 0 || pos >= len(b.ops) {
		return nil
	}
	return b.ops[pos]
}

// Terminator returns the last live operation in the block, which by
// RequiresTerminators convention must implement the dialect's Terminator
// capability.
func (b *BasicBlock) Terminator() *Operation {
	for i := len(b.ops) - 1; i >= 0; i-- {
		if b.ops[i] != nil {
			return b.ops[i]
		}
	}
	return nil
}
