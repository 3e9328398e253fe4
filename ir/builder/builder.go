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

// Package builder implements OperationBuilder, a cursor-based API for
// constructing a verified Operation tree one region/block/op at a time.
package builder

import (
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/obs"
)

// BuilderError wraps a failure raised while assembling an Operation,
// as distinct from a VerificationError raised once assembly finishes.
type BuilderError struct {
	cause error
}

func (e *BuilderError) Error() string { return "ir/builder: " + e.cause.Error() }
func (e *BuilderError) Unwrap() error { return e.cause }

func newBuilderError(format string, args ...any) error {
	return &BuilderError{cause: errors.Errorf(format, args...)}
}

type cursor struct {
	region int
	block  int
}

// OperationBuilder accumulates the pieces of one Operation: its
// operands, attributes, nested regions and successors. A cursor
// selects which (region, block) subsequent PushArg/PushOp calls target.
// Structural misuse (an append against a region kind that disallows
// it, or a cursor pointing nowhere) is recorded on first occurrence
// and surfaced by Finish, so call sites can chain appends without
// checking an error at every step.
type OperationBuilder struct {
	intrinsic  ir.Intrinsic
	location   ir.Location
	operands   []ir.Var
	attrNames  []string
	attrs      map[string]ir.Attribute
	regions    []*ir.Region
	successors []int
	cur        cursor
	err        error
}

// New starts building an Operation of the given Intrinsic at loc.
func New(intr ir.Intrinsic, loc ir.Location) *OperationBuilder {
	return &OperationBuilder{
		intrinsic: intr,
		location:  loc,
		attrs:     map[string]ir.Attribute{},
		cur:       cursor{region: -1, block: -1},
	}
}

// Default resets the cursor to the first region's first block, the
// usual starting point after PushRegion/PushBlock.
func (b *OperationBuilder) Default() *OperationBuilder {
	if len(b.regions) > 0 {
		b.cur = cursor{region: 0, block: 0}
	}
	return b
}

// SetCursor points subsequent PushArg/PushOp calls at an explicit
// (region, block) pair.
func (b *OperationBuilder) SetCursor(region, block int) *OperationBuilder {
	b.cur = cursor{region: region, block: block}
	return b
}

// PushRegion appends a new region of the given kind and moves the
// cursor to it (block -1, since it has no blocks yet for SSACFG; Graph
// regions start with block 0 already present).
func (b *OperationBuilder) PushRegion(kind ir.RegionKind) int {
	var r *ir.Region
	switch kind {
	case ir.Graph:
		r = ir.NewGraphRegion()
	default:
		r = ir.NewSSACFGRegion()
	}
	b.regions = append(b.regions, r)
	idx := len(b.regions) - 1
	block := -1
	if kind == ir.Graph {
		block = 0
	}
	b.cur = cursor{region: idx, block: block}
	return idx
}

func (b *OperationBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// currentRegion resolves the cursor's region, recording a BuilderError
// if the cursor points nowhere.
func (b *OperationBuilder) currentRegion() (*ir.Region, bool) {
	if b.cur.region < 0 || b.cur.region >= len(b.regions) {
		b.fail(newBuilderError("cursor points at region %d, but the builder has %d regions", b.cur.region, len(b.regions)))
		return nil, false
	}
	return b.regions[b.cur.region], true
}

// PushBlock appends a new block to the region at the cursor and moves
// the cursor onto it. A Graph region is fixed at its one block, so a
// second PushBlock against one is a BuilderError.
func (b *OperationBuilder) PushBlock() int {
	r, ok := b.currentRegion()
	if !ok {
		return -1
	}
	if r.Kind() == ir.Graph {
		b.fail(newBuilderError("a graph region has exactly one block"))
		return -1
	}
	idx := r.PushBlock()
	b.cur.block = idx
	return idx
}

// PushArg adds a block parameter to the block at the cursor. When the
// cursor is on a region's entry block (block 0), the new Var is also
// appended to the Operation's own operand list, so a Func-like op's
// declared parameters are visible both as block arguments inside the
// region and as operands on the op itself. Graph regions have no
// control flow to bind parameters on, so PushArg against one is a
// BuilderError.
func (b *OperationBuilder) PushArg() ir.Var {
	r, ok := b.currentRegion()
	if !ok {
		return ir.Var{}
	}
	if r.Kind() == ir.Graph {
		b.fail(newBuilderError("a graph region has no block parameters"))
		return ir.Var{}
	}
	if b.cur.block < 0 || b.cur.block >= r.BlockCount() {
		b.fail(newBuilderError("cursor points at block %d, but region %d has %d blocks", b.cur.block, b.cur.region, r.BlockCount()))
		return ir.Var{}
	}
	v := r.PushArg(b.cur.block)
	if b.cur.block == 0 {
		b.operands = append(b.operands, v)
	}
	return v
}

// PushOp appends op as the next operation in the block at the cursor,
// and returns the Var bound to its result.
func (b *OperationBuilder) PushOp(op *ir.Operation) ir.Var {
	r, ok := b.currentRegion()
	if !ok {
		return ir.Var{}
	}
	if b.cur.block < 0 || b.cur.block >= r.BlockCount() {
		b.fail(newBuilderError("cursor points at block %d, but region %d has %d blocks", b.cur.block, b.cur.region, r.BlockCount()))
		return ir.Var{}
	}
	return r.PushOp(b.cur.block, op)
}

// Push finishes inner and appends the resulting Operation at the
// cursor, returning the Var bound to its result. A failure finishing
// inner is recorded as this builder's own error.
func (b *OperationBuilder) Push(inner *OperationBuilder) ir.Var {
	op, err := inner.Finish()
	if err != nil {
		b.fail(err)
		return ir.Var{}
	}
	return b.PushOp(op)
}

// InsertAttr attaches a named Attribute, preserving insertion order.
func (b *OperationBuilder) InsertAttr(name string, a ir.Attribute) *OperationBuilder {
	if _, exists := b.attrs[name]; !exists {
		b.attrNames = append(b.attrNames, name)
	}
	b.attrs[name] = a
	return b
}

// SetOperands replaces the Operation's operand list outright.
func (b *OperationBuilder) SetOperands(vs []ir.Var) *OperationBuilder {
	b.operands = append([]ir.Var(nil), vs...)
	return b
}

// SetSuccessors records which block indices (within the Operation's own
// enclosing block's region) a terminator op can transfer control to.
func (b *OperationBuilder) SetSuccessors(s []int) *OperationBuilder {
	b.successors = append([]int(nil), s...)
	return b
}

// Finish builds the Operation, wires parent/child region linkage for
// dominance checks, and verifies it. Any structural misuse recorded
// along the way surfaces here, before verification runs.
func (b *OperationBuilder) Finish() (*ir.Operation, error) {
	if b.intrinsic == nil {
		return nil, newBuilderError("no intrinsic set")
	}
	if b.err != nil {
		return nil, b.err
	}
	op := ir.NewOperation(b.intrinsic, b.location)
	op.SetOperands(b.operands)
	op.SetSuccessors(b.successors)
	for _, name := range b.attrNames {
		op.InsertAttr(name, b.attrs[name])
	}
	for _, r := range b.regions {
		op.PushRegion(r)
	}
	ir.LinkChildren(op)
	if err := op.Verify(); err != nil {
		obs.Logger().Warnw("operation failed verification", "intrinsic", ir.QualifiedName(b.intrinsic), "error", err)
		return nil, err
	}
	return op, nil
}
