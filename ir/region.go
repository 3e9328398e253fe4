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

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// RegionKind distinguishes the two region shapes a Region can take.
type RegionKind uint8

const (
	// SSACFG is a directed, possibly-cyclic, multi-block control-flow
	// graph with block-parameter join semantics at each successor.
	SSACFG RegionKind = iota
	// Graph is a single, unordered block used for module-like
	// containers that have no control flow of their own.
	Graph
)

// Region owns a dense, monotonically-indexed set of Vars and the blocks
// that define them. Vars are indices into the region's def table, never
// pointers. Nested Operations reach their enclosing Region through a
// pointer to the parent Operation plus region and block indices, which
// LinkChildren installs.
type Region struct {
	kind   RegionKind
	blocks []*BasicBlock
	defs   []def
}

// NewSSACFGRegion returns an empty directed, multi-block region.
func NewSSACFGRegion() *Region {
	return &Region{kind: SSACFG}
}

// NewGraphRegion returns an empty single-block, unordered region.
func NewGraphRegion() *Region {
	r := &Region{kind: Graph}
	r.blocks = append(r.blocks, &BasicBlock{})
	return r
}

func (r *Region) Kind() RegionKind { return r.kind }

// Blocks returns the region's blocks in storage order. For a Graph
// region this slice always has length 1.
func (r *Region) Blocks() []*BasicBlock { return r.blocks }

func (r *Region) BlockCount() int { return len(r.blocks) }

// PushBlock appends a new, empty block to an SSACFG region and returns
// its index. It panics on a Graph region, which is fixed at one block.
func (r *Region) PushBlock() int {
	if r.kind == Graph {
		panic("ir: a Graph region has exactly one block")
	}
	r.blocks = append(r.blocks, &BasicBlock{})
	return len(r.blocks) - 1
}

func (r *Region) newVar() Var {
	v := Var{id: len(r.defs)}
	r.defs = append(r.defs, deadDef)
	return v
}

// PushArg adds a block parameter to block blockIdx and returns its Var.
func (r *Region) PushArg(blockIdx int) Var {
	b := r.blocks[blockIdx]
	v := r.newVar()
	r.defs[v.id] = def{block: blockIdx, pos: -1}
	b.params = append(b.params, v)
	return v
}

// PushOp appends op as the next operation in block blockIdx and returns
// the Var bound to its result.
func (r *Region) PushOp(blockIdx int, op *Operation) Var {
	b := r.blocks[blockIdx]
	v := r.newVar()
	r.defs[v.id] = def{block: blockIdx, pos: len(b.ops)}
	op.result = v
	b.ops = append(b.ops, op)
	return v
}

// Erase removes the operation that defines v, turning its slot into a
// dead hole and marking v itself dead. Existing uses of v are left
// dangling; callers are responsible for rewriting them first.
func (r *Region) Erase(v Var) {
	d := r.defs[v.id]
	if d.isOperationRes() {
		r.blocks[d.block].ops[d.pos] = nil
	}
	r.defs[v.id] = deadDef
}

// DefBlock reports which block defines v and at which position
// ("-1" for a block parameter), or ok=false if v is dead or unknown to
// this region.
func (r *Region) DefBlock(v Var) (block, pos int, ok bool) {
	if v.id < 0 || v.id >= len(r.defs) {
		return 0, 0, false
	}
	d := r.defs[v.id]
	if d.isDead() {
		return 0, 0, false
	}
	return d.block, d.pos, true
}

// Vars returns every live Var defined anywhere in the region, ordered by
// id.
func (r *Region) Vars() []Var {
	out := make([]Var, 0, len(r.defs))
	for id, d := range r.defs {
		if !d.isDead() {
			out = append(out, Var{id: id})
		}
	}
	return out
}

// RemoveBlock deletes block i from an SSACFG region. Every Var the
// block defined goes dead, every block above i shifts down one index,
// and every successor index above i in the remaining terminators is
// rewritten to match. An edge still targeting i itself is an error:
// callers must reroute incoming branches before removing their target.
// Var indices are never reused.
func (r *Region) RemoveBlock(i int) error {
	if r.kind != SSACFG {
		return errors.New("ir: only SSACFG regions support block removal")
	}
	if i < 0 || i >= len(r.blocks) {
		return errors.Errorf("ir: no block %d to remove", i)
	}
	for _, b := range r.blocks {
		if b == r.blocks[i] {
			continue
		}
		for _, op := range b.ops {
			if op == nil {
				continue
			}
			for _, s := range op.successors {
				if s == i {
					return errors.Errorf("ir: block %d still has an incoming edge from %s", i, QualifiedName(op.intrinsic))
				}
			}
		}
	}
	for id, d := range r.defs {
		switch {
		case d.isDead():
		case d.block == i:
			r.defs[id] = deadDef
		case d.block > i:
			r.defs[id] = def{block: d.block - 1, pos: d.pos}
		}
	}
	r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
	for _, b := range r.blocks {
		for _, op := range b.ops {
			if op == nil {
				continue
			}
			for si, s := range op.successors {
				if s > i {
					op.successors[si] = s - 1
				}
			}
		}
	}
	return nil
}

// BlockVars enumerates every live Var block blockIdx defines:
// parameters first, then operation results in position order. It scans
// the whole def table, which is fine at the rate passes actually
// enumerate blocks; indexed DefBlock lookups stay O(1).
func (r *Region) BlockVars(blockIdx int) []Var {
	type entry struct {
		v   Var
		pos int
	}
	var entries []entry
	for id, d := range r.defs {
		if d.isDead() || d.block != blockIdx {
			continue
		}
		entries = append(entries, entry{v: Var{id: id}, pos: d.pos})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].pos != entries[b].pos {
			return entries[a].pos < entries[b].pos
		}
		return entries[a].v.id < entries[b].v.id
	})
	out := make([]Var, len(entries))
	for i, e := range entries {
		out[i] = e.v
	}
	return out
}

// BlockIterItem is one (Var, Operation) pair produced walking a block in
// order.
type BlockIterItem struct {
	V  Var
	Op *Operation
}

// BlockIter enumerates a block's live operations in position order,
// pairing each with its result Var. Parameters are not included; use
// BasicBlock.Params or BlockVars for those.
func (r *Region) BlockIter(blockIdx int) []BlockIterItem {
	b := r.blocks[blockIdx]
	out := make([]BlockIterItem, 0, len(b.ops))
	for _, op := range b.ops {
		if op == nil {
			continue
		}
		out = append(out, BlockIterItem{V: op.result, Op: op})
	}
	return out
}

// dominators computes, for each block index, the set of blocks that
// dominate it (each block is included in its own set), via the standard
// iterative dataflow fixpoint.
// Block 0 is taken as the unique entry block.
func (r *Region) dominators() [][]bool {
	n := len(r.blocks)
	preds := make([][]int, n)
	for bi, b := range r.blocks {
		term := b.Terminator()
		if term == nil {
			continue
		}
		for _, s := range term.successors {
			preds[s] = append(preds[s], bi)
		}
	}
	dom := make([][]bool, n)
	for i := range dom {
		dom[i] = make([]bool, n)
		if i == 0 {
			dom[i][0] = true
			continue
		}
		for j := range dom[i] {
			dom[i][j] = true
		}
	}
	changed := true
	for changed {
		changed = false
		for bi := 1; bi < n; bi++ {
			if len(preds[bi]) == 0 {
				continue
			}
			next := make([]bool, n)
			for j := range next {
				next[j] = true
			}
			for _, p := range preds[bi] {
				for j := 0; j < n; j++ {
					next[j] = next[j] && dom[p][j]
				}
			}
			next[bi] = true
			for j := 0; j < n; j++ {
				if next[j] != dom[bi][j] {
					changed = true
				}
			}
			dom[bi] = next
		}
	}
	return dom
}

// Dominates reports whether block `a` strictly dominates block `b` in an
// SSACFG region. It always returns false for a Graph region, which has
// no control flow to dominate across.
func (r *Region) Dominates(a, b int) bool {
	if r.kind != SSACFG {
		return false
	}
	if a == b {
		return false
	}
	dom := r.dominators()
	if b < 0 || b >= len(dom) {
		return false
	}
	return dom[b][a]
}

// LiveVarsAt returns the set of live Vars defined in block itself or in
// any block that dominates it (and, for a Graph region, every Var defined
// anywhere in the one block, since Graph regions have no ordering to
// dominate across). Vars of block itself are all included, whatever
// their position. verifyOperandDominance does not use it; it is for a
// pass that wants to know what's in scope without replaying the walk
// verifyOperandDominance does per-operand.
func (r *Region) LiveVarsAt(block int) mapset.Set[Var] {
	live := mapset.NewThreadUnsafeSet[Var]()
	if r.kind == Graph {
		for id, d := range r.defs {
			if !d.isDead() {
				live.Add(Var{id: id})
			}
		}
		return live
	}
	dom := r.dominators()
	for id, d := range r.defs {
		if d.isDead() {
			continue
		}
		if d.block == block || (block >= 0 && block < len(dom) && dom[block][d.block]) {
			live.Add(Var{id: id})
		}
	}
	return live
}

func (d def) String() string {
	switch {
	case d.isDead():
		return "<dead>"
	case d.isBlockParam():
		return fmt.Sprintf("param@block%d", d.block)
	default:
		return fmt.Sprintf("block%d[%d]", d.block, d.pos)
	}
}
