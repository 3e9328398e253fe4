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

// Package builtin is the minimal example dialect the framework's own
// test suite builds against: a Module intrinsic holding a symbol table
// of Func children. It is never imported by any framework package,
// only by tests and doc examples.
package builtin

import "github.com/erigontech/abstraps/ir"

// Module is a Graph-region container addressable by the symbol names
// of its direct children, once PopulateSymbolTablePass has run.
type Module struct{}

func (Module) Namespace() string { return "builtin" }
func (Module) Name() string      { return "module" }

// IsSymbolTableProvider implements ir.ProvidesSymbolTable.
func (Module) IsSymbolTableProvider() bool { return true }

// Verify implements ir.Verifiable: a Module must itself carry a Symbol
// attribute (its own name), the same as a Func — a module nested inside
// an outer module's symbol table is addressable the same way a func is.
func (Module) Verify(op *ir.Operation) error {
	return ir.Declare(SymbolAttr.AsCapability()).Verify(op)
}

// SymbolName implements ir.ProvidesSymbol.
func (Module) SymbolName(op *ir.Operation) (string, bool) {
	sym, ok := op.Attr(SymbolAttr.Key())
	if !ok {
		return "", false
	}
	s, ok := sym.(Symbol)
	return string(s), ok
}

// Func is a function-like Operation: its block-0 parameters are its
// formal arguments, its one SSACFG region is its body, and it must end
// in a Terminator-capable operation.
type Func struct{}

func (Func) Namespace() string { return "builtin" }
func (Func) Name() string      { return "func" }

// SymbolAttr binds the "symbol" attribute key to the Symbol attribute
// type for Func operations.
var SymbolAttr = ir.NewAttributeInterface[Symbol]("symbol")

// Verify implements ir.Verifiable: a Func must carry a Symbol attribute
// and must end every block of its body in a Terminator-capable op.
func (Func) Verify(op *ir.Operation) error {
	return ir.Declare(
		SymbolAttr.AsCapability(),
		ir.RequiresTerminators(),
	).Verify(op)
}

// SymbolName implements ir.ProvidesSymbol.
func (Func) SymbolName(op *ir.Operation) (string, bool) {
	sym, ok := op.Attr(SymbolAttr.Key())
	if !ok {
		return "", false
	}
	s, ok := sym.(Symbol)
	return string(s), ok
}
