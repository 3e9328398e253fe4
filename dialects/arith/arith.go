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

// Package arith is the core test suite's second example dialect: a
// handful of scalar intrinsics (Add, Addi, Return) with enough
// LatticeSemantics wired up to exercise the abstract interpreter end
// to end. Like dialects/builtin, nothing in the core imports it.
package arith

import (
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
)

// Add is a binary, commutative addition over two operands of the same
// or promotable kind.
type Add struct{}

func (Add) Namespace() string      { return "arith" }
func (Add) Name() string           { return "add" }
func (Add) IsCommutative() bool    { return true }
func (Add) IsElementwise() bool    { return true }
func (Add) Verify(op *ir.Operation) error {
	return ir.Declare(ir.NonVariadic(2)).Verify(op)
}

// Addi adds a compile-time Immediate attribute to a single operand.
type Addi struct{}

func (Addi) Namespace() string   { return "arith" }
func (Addi) Name() string        { return "addi" }
func (Addi) IsCommutative() bool { return true }

// ImmediateAttr binds the "immediate" attribute key to the Immediate
// attribute type for Addi operations.
var ImmediateAttr = ir.NewAttributeInterface[Immediate]("immediate")

func (Addi) Verify(op *ir.Operation) error {
	return ir.Declare(ir.NonVariadic(1), ImmediateAttr.AsCapability()).Verify(op)
}

// Return ends a Func's body, yielding its single operand as the
// function's result.
type Return struct{}

func (Return) Namespace() string    { return "arith" }
func (Return) Name() string         { return "return" }
func (Return) IsTerminator() bool   { return true }
func (Return) Verify(op *ir.Operation) error {
	return ir.Declare(ir.NonVariadic(1)).Verify(op)
}

// Br transfers control unconditionally to its one successor, feeding
// its operands to the target block's parameters in order.
type Br struct{}

func (Br) Namespace() string  { return "arith" }
func (Br) Name() string       { return "br" }
func (Br) IsTerminator() bool { return true }

func (Br) Verify(op *ir.Operation) error {
	if got := len(op.Successors()); got != 1 {
		return errors.Errorf("arith: br takes exactly one successor, got %d", got)
	}
	return nil
}

// Targets implements ir.BranchTargets: one live edge, carrying every
// operand as a block argument.
func (Br) Targets(op *ir.Operation) []ir.BranchEdge {
	return []ir.BranchEdge{{Block: op.Successors()[0], Args: op.Operands()}}
}

// CondBr transfers control to one of two successors based on its single
// condition operand. Neither target may take block parameters; values
// that must cross the edge go through Br.
type CondBr struct{}

func (CondBr) Namespace() string  { return "arith" }
func (CondBr) Name() string       { return "cond_br" }
func (CondBr) IsTerminator() bool { return true }

func (CondBr) Verify(op *ir.Operation) error {
	if got := len(op.Successors()); got != 2 {
		return errors.Errorf("arith: cond_br takes exactly two successors, got %d", got)
	}
	return ir.Declare(ir.NonVariadic(1)).Verify(op)
}

// Targets implements ir.BranchTargets. The condition is abstract here,
// so both edges stay live.
func (CondBr) Targets(op *ir.Operation) []ir.BranchEdge {
	succ := op.Successors()
	return []ir.BranchEdge{{Block: succ[0]}, {Block: succ[1]}}
}

// Call invokes the Func bound to its Callee attribute in an enclosing
// module, passing its operands as arguments.
type Call struct{}

func (Call) Namespace() string { return "arith" }
func (Call) Name() string      { return "call" }

// CalleeAttr binds the "callee" attribute key to the Callee attribute
// type for Call operations.
var CalleeAttr = ir.NewAttributeInterface[Callee]("callee")

func (Call) Verify(op *ir.Operation) error {
	return ir.Declare(CalleeAttr.AsCapability()).Verify(op)
}

// Callee implements absint.CallSemantics, naming the symbol the
// interpreter must suspend on.
func (Call) Callee(op *ir.Operation) (string, bool) {
	a, ok := op.Attr(CalleeAttr.Key())
	if !ok {
		return "", false
	}
	c, ok := a.(Callee)
	return string(c), ok
}
