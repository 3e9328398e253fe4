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

import (
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
)

// Kind is a four-point scalar-kind lattice:
// Bottom < {Int64, Float64} < Top.
type Kind uint8

const (
	Bottom Kind = iota
	Int64Kind
	Float64Kind
	TopKind
)

func (k Kind) String() string {
	switch k {
	case Bottom:
		return "bottom"
	case Int64Kind:
		return "i64"
	case Float64Kind:
		return "f64"
	case TopKind:
		return "top"
	default:
		return "unknown"
	}
}

// Value is the comparable lattice element the interpreter propagates
// through a Func built from this dialect's intrinsics. It satisfies
// absint.Lattice[Value].
type Value struct {
	Kind Kind
}

var (
	BottomValue  = Value{Kind: Bottom}
	Int64Value   = Value{Kind: Int64Kind}
	Float64Value = Value{Kind: Float64Kind}
	TopValue     = Value{Kind: TopKind}
)

// Join implements absint.Lattice[Value]: equal kinds are idempotent,
// Bottom is the identity, and any other mismatch collapses to Top.
func (v Value) Join(other Value) Value {
	switch {
	case v.Kind == other.Kind:
		return v
	case v.Kind == Bottom:
		return other
	case other.Kind == Bottom:
		return v
	default:
		return TopValue
	}
}

func (v Value) String() string { return v.Kind.String() }

func promote(a, b Value) Value {
	switch {
	case a.Kind == Bottom || b.Kind == Bottom:
		return BottomValue
	case a.Kind == TopKind || b.Kind == TopKind:
		return TopValue
	case a.Kind == Float64Kind || b.Kind == Float64Kind:
		return Float64Value
	default:
		return Int64Value
	}
}

// Propagate implements absint.LatticeSemantics[Value] for Add: the
// result kind is the promotion of its two operand kinds: a Bottom
// operand gives Bottom, otherwise a Top operand gives Top, otherwise
// Int64+Int64 = Int64 and any Float64 operand promotes to Float64.
func (Add) Propagate(op *ir.Operation, operands []Value) (Value, error) {
	if len(operands) != 2 {
		return Value{}, errors.Errorf("arith: add expects 2 operand lattice values, got %d", len(operands))
	}
	return promote(operands[0], operands[1]), nil
}

// Propagate implements absint.LatticeSemantics[Value] for Addi: its
// Immediate attribute is always an i64 constant, so the result kind is
// the promotion of its one operand against Int64.
func (Addi) Propagate(op *ir.Operation, operands []Value) (Value, error) {
	if len(operands) != 1 {
		return Value{}, errors.Errorf("arith: addi expects 1 operand lattice value, got %d", len(operands))
	}
	return promote(operands[0], Int64Value), nil
}

// Propagate implements absint.LatticeSemantics[Value] for Return: it
// passes its operand through unchanged, so the interpreter's captured
// return value is exactly the Func body's last computed value.
func (Return) Propagate(op *ir.Operation, operands []Value) (Value, error) {
	if len(operands) != 1 {
		return Value{}, errors.Errorf("arith: return expects 1 operand lattice value, got %d", len(operands))
	}
	return operands[0], nil
}

// Propagate implements absint.LatticeSemantics[Value] for Br. A branch
// computes nothing itself; its operands flow to the target block's
// parameters through Targets.
func (Br) Propagate(op *ir.Operation, operands []Value) (Value, error) {
	return BottomValue, nil
}

// Propagate implements absint.LatticeSemantics[Value] for CondBr.
func (CondBr) Propagate(op *ir.Operation, operands []Value) (Value, error) {
	return BottomValue, nil
}
