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
	"strings"

	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir/iface"
)

// Operation is one instance of an Intrinsic: its operands, its typed
// attributes, any nested Regions it owns, and (for a block terminator)
// the successor blocks it can transfer control to.
type Operation struct {
	intrinsic  Intrinsic
	operands   []Var
	attrNames  []string
	attrs      map[string]Attribute
	regions    []*Region
	successors []int
	location   Location
	result     Var

	parent      *Operation
	parentRIdx  int
	parentBIdx  int
}

func NewOperation(intr Intrinsic, loc Location) *Operation {
	return &Operation{intrinsic: intr, location: loc, attrs: map[string]Attribute{}}
}

func (op *Operation) Intrinsic() Intrinsic { return op.intrinsic }
func (op *Operation) Location() Location   { return op.location }
func (op *Operation) Result() Var          { return op.result }

func (op *Operation) Operands() []Var {
	out := make([]Var, len(op.operands))
	copy(out, op.operands)
	return out
}

func (op *Operation) SetOperands(vs []Var) {
	op.operands = append([]Var(nil), vs...)
}

func (op *Operation) Successors() []int {
	out := make([]int, len(op.successors))
	copy(out, op.successors)
	return out
}

func (op *Operation) SetSuccessors(s []int) {
	op.successors = append([]int(nil), s...)
}

func (op *Operation) Regions() []*Region { return op.regions }

func (op *Operation) PushRegion(r *Region) int {
	op.regions = append(op.regions, r)
	return len(op.regions) - 1
}

// InsertAttr attaches a named Attribute, preserving first-insertion
// order for Display.
func (op *Operation) InsertAttr(name string, a Attribute) {
	if _, exists := op.attrs[name]; !exists {
		op.attrNames = append(op.attrNames, name)
	}
	op.attrs[name] = a
}

func (op *Operation) Attr(name string) (Attribute, bool) {
	a, ok := op.attrs[name]
	return a, ok
}

// Attrs returns the operation's attributes in insertion order.
func (op *Operation) Attrs() []struct {
	Name string
	Attr Attribute
} {
	out := make([]struct {
		Name string
		Attr Attribute
	}, 0, len(op.attrNames))
	for _, n := range op.attrNames {
		out = append(out, struct {
			Name string
			Attr Attribute
		}{Name: n, Attr: op.attrs[n]})
	}
	return out
}

// LinkChildren wires the parent/region/block back-pointers that
// Operation.Verify needs to walk outward through enclosing scopes. It
// must be called once, by the builder, after all of op's regions and
// their operations are in place.
func LinkChildren(op *Operation) {
	for rIdx, r := range op.regions {
		for bIdx, b := range r.blocks {
			for _, child := range b.ops {
				if child == nil {
					continue
				}
				child.setParent(op, rIdx, bIdx)
			}
		}
	}
}

// setParent records op's position within an enclosing Operation's
// Region, so dominance checks can walk outward through enclosing
// scopes per the "defined in an enclosing scope that dominates the
// use" rule.
func (op *Operation) setParent(parent *Operation, regionIdx, blockIdx int) {
	op.parent = parent
	op.parentRIdx = regionIdx
	op.parentBIdx = blockIdx
}

// Verifiable is the optional capability an Intrinsic implements to
// compose its own structural checks (arity, region shape, required
// traits) on top of the operand-dominance check Verify always performs.
type Verifiable interface {
	Verify(op *Operation) error
}

// VerificationError reports a violated intrinsic or capability
// contract, carrying the offending intrinsic's qualified name and a
// one-line excerpt of the Operation it was raised on.
type VerificationError struct {
	Intrinsic string
	Excerpt   string
	cause     error
}

func (e *VerificationError) Error() string {
	return "ir: " + e.Intrinsic + " failed verification: " + e.cause.Error() + " in " + e.Excerpt
}

func (e *VerificationError) Unwrap() error { return e.cause }

// String renders the operation head — intrinsic, operands, location and
// attributes, without regions — as a one-line excerpt for diagnostics.
// The display package owns the full multi-line rendering.
func (op *Operation) String() string {
	var b strings.Builder
	b.WriteString(QualifiedName(op.intrinsic))
	b.WriteByte('(')
	for i, v := range op.operands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteString(") ")
	b.WriteString(op.location.String())
	for i, n := range op.attrNames {
		if i == 0 {
			b.WriteString(" [")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteString(": ")
		b.WriteString(op.attrs[n].String())
	}
	if len(op.attrNames) > 0 {
		b.WriteString("]")
	}
	return b.String()
}

// Verify checks that every operand is defined by a dominating
// definition (in the operation's own region, or in an enclosing
// region's scope), then, if the Intrinsic implements Verifiable, runs
// its own checks, then recurses into every nested operation.
func (op *Operation) Verify() error {
	if err := op.verifyOperandDominance(); err != nil {
		return &VerificationError{Intrinsic: QualifiedName(op.intrinsic), Excerpt: op.String(), cause: err}
	}
	if v, ok := iface.Query[Verifiable](nil, op.intrinsic); ok {
		if err := v.Verify(op); err != nil {
			var ve *VerificationError
			if errors.As(err, &ve) {
				return err
			}
			return &VerificationError{Intrinsic: QualifiedName(op.intrinsic), Excerpt: op.String(), cause: err}
		}
	}
	for _, r := range op.regions {
		for _, b := range r.blocks {
			for _, inner := range b.ops {
				if inner == nil {
					continue
				}
				if err := inner.Verify(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (op *Operation) verifyOperandDominance() error {
	useRegion, useBlock, ok := op.enclosingUsePosition()
	if !ok {
		return nil
	}
	for _, v := range op.operands {
		if op.definesAsEntryParam(v) {
			continue
		}
		if !definitionDominatesUse(op, useRegion, useBlock, v) {
			return errors.Errorf("ir: operand %s of %s is not defined by a dominating definition", v, QualifiedName(op.intrinsic))
		}
	}
	return nil
}

// definesAsEntryParam reports whether v is a block-0 parameter of one
// of op's own regions. A function-like op lists its entry block's
// parameters among its operands as its formal parameter list; those
// Vars belong to the op's own region, not the enclosing one, and are
// exempt from the enclosing-scope dominance rule.
func (op *Operation) definesAsEntryParam(v Var) bool {
	for _, r := range op.regions {
		if len(r.blocks) == 0 {
			continue
		}
		for _, p := range r.blocks[0].params {
			if p == v {
				return true
			}
		}
	}
	return false
}

// enclosingUsePosition finds the (region, block) that directly contains
// op, by locating op among its parent's region/block contents.
func (op *Operation) enclosingUsePosition() (*Region, int, bool) {
	if op.parent == nil {
		return nil, 0, false
	}
	return op.parent.regions[op.parentRIdx], op.parentBIdx, true
}

// definitionDominatesUse walks outward from (useRegion, useBlock)
// through enclosing operations, returning true as soon as v's
// definition is found in a region that either dominates the use block
// (SSACFG) or simply contains it (Graph, which has no ordering).
func definitionDominatesUse(useOp *Operation, useRegion *Region, useBlock int, v Var) bool {
	region, block := useRegion, useBlock
	owner := useOp
	for region != nil {
		if defBlock, pos, ok := region.DefBlock(v); ok {
			if region.Kind() == Graph {
				return true
			}
			if defBlock == block {
				if pos == -1 {
					return true
				}
				if ownerPos, ok := positionOf(region, block, owner); ok {
					return pos < ownerPos
				}
				return true
			}
			return region.Dominates(defBlock, block)
		}
		if owner.parent == nil {
			return false
		}
		region, block, owner = owner.parent.regions[owner.parentRIdx], owner.parentBIdx, owner.parent
	}
	return false
}

func positionOf(region *Region, block int, op *Operation) (int, bool) {
	for i, o := range region.blocks[block].ops {
		if o == op {
			return i, true
		}
	}
	return 0, false
}
