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
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir/iface"
)

// Capability is a behavioral contract an Intrinsic or Attribute claims
// at declaration time. Declare composes a list of Capabilities into the
// single Verify method an Intrinsic's Verifiable implementation
// delegates to, the way zap.Option values compose into one config
// mutation in go.uber.org/zap: each capability is an opaque value
// carrying its own parameters, and the only thing a consumer does with
// one is run it.
type Capability interface {
	Verify(op *Operation) error
}

// Declare synthesizes a single Verify function out of every capability
// an Intrinsic claims, running each in the order given and stopping at
// the first failure. A dialect's Verifiable.Verify method is typically
// a one-line call to the Verifier Declare returns.
func Declare(caps ...Capability) Verifier {
	return verifierFunc(func(op *Operation) error {
		for _, c := range caps {
			if c == nil {
				continue
			}
			if err := c.Verify(op); err != nil {
				return err
			}
		}
		return nil
	})
}

// Verifier is the synthesized form of a capability list: something that
// can check an Operation and report the first violated contract.
type Verifier interface {
	Verify(op *Operation) error
}

type verifierFunc func(op *Operation) error

func (f verifierFunc) Verify(op *Operation) error { return f(op) }

// Terminator is the marker capability an Intrinsic implements to be
// eligible as the last operation of a BasicBlock. It carries no
// behavior of its own; BasicBlock.Terminator callers and the
// RequiresTerminators capability use iface.Query to test for it.
type Terminator interface {
	IsTerminator() bool
}

// Commutative marks an Intrinsic whose operand order does not affect
// its result; passes (e.g. canonicalization, CSE) may query it to
// justify reordering operands. It carries no verification obligation
// of its own.
type Commutative interface {
	IsCommutative() bool
}

// Elementwise marks an Intrinsic that applies independently to each
// element of a vector/tensor-shaped operand, for passes that want to
// fuse or vectorize across such operations.
type Elementwise interface {
	IsElementwise() bool
}

// NonVariadic returns a Capability enforcing that an Operation has
// exactly arity operands.
func NonVariadic(arity int) Capability { return nonVariadic{arity: arity} }

type nonVariadic struct{ arity int }

func (n nonVariadic) Verify(op *Operation) error {
	if got := len(op.Operands()); got != n.arity {
		return errors.Errorf("ir: %s declares NonVariadic(%d) but has %d operands", QualifiedName(op.Intrinsic()), n.arity, got)
	}
	return nil
}

// requiresTerminatorsCap implements RequiresTerminators: every
// non-empty block of every SSACFG region the Operation owns must end
// in an operation whose Intrinsic is Terminator-capable.
type requiresTerminatorsCap struct{}

// RequiresTerminators returns the Capability enforcing that every
// non-empty block of every SSACFG region the owning Operation holds
// ends in a Terminator-capable operation.
func RequiresTerminators() Capability { return requiresTerminatorsCap{} }

func (requiresTerminatorsCap) Verify(op *Operation) error {
	for _, r := range op.Regions() {
		if r.Kind() != SSACFG {
			continue
		}
		for bi, b := range r.Blocks() {
			if b.Len() == 0 {
				continue
			}
			term := b.Terminator()
			if term == nil {
				continue
			}
			if _, ok := iface.Query[Terminator](nil, term.Intrinsic()); !ok {
				return errors.Errorf("ir: %s requires a Terminator-capable last operation in block %d, found %s",
					QualifiedName(op.Intrinsic()), bi, QualifiedName(term.Intrinsic()))
			}
		}
	}
	return nil
}

// ProvidesSymbolTable marks an Intrinsic whose Operation owns a Graph
// region whose direct children are addressable by a string symbol name
// (e.g. builtin.module). It is narrow by design (see AttributeInterface
// in attribute.go): the capability itself only asserts the shape; the
// actual table is an Attribute read through a generated accessor.
type ProvidesSymbolTable interface {
	IsSymbolTableProvider() bool
}

// ProvidesSymbol marks an Intrinsic whose Operation is addressable
// within an enclosing ProvidesSymbolTable's table, e.g. builtin.func.
type ProvidesSymbol interface {
	SymbolName(op *Operation) (string, bool)
}

// BranchEdge is one live control-flow edge out of a terminator: the
// target block index, plus the Vars (evaluated in the terminator's own
// scope) that feed that target's block parameters in order.
type BranchEdge struct {
	Block int
	Args  []Var
}

// BranchTargets is the capability the abstract interpreter asks a
// terminator for instead of trusting its statically declared
// Successors: a terminator may fold away some edges (e.g. a constant
// conditional branch) and report fewer than it declared.
type BranchTargets interface {
	Targets(op *Operation) []BranchEdge
}
