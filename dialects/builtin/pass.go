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

package builtin

import (
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/ir/iface"
	"github.com/erigontech/abstraps/pass"
)

// PopulateSymbolTablePass installs a SymbolTable attribute on every
// Module it's applied to, binding each direct child's ProvidesSymbol
// name to the Var identifying that child within the Module's region.
type PopulateSymbolTablePass struct{}

var _ pass.OperationPass = PopulateSymbolTablePass{}

// TargetIntrinsic restricts this pass to builtin.module operations.
func (PopulateSymbolTablePass) TargetIntrinsic() ir.Intrinsic { return Module{} }

// Check implements pass.OperationPass.
func (PopulateSymbolTablePass) Check(op *ir.Operation) error {
	if _, ok := iface.Query[ir.ProvidesSymbolTable](nil, op.Intrinsic()); !ok {
		return errors.Errorf("builtin: %s does not provide a symbol table", ir.QualifiedName(op.Intrinsic()))
	}
	return nil
}

// Apply implements pass.OperationPass.
func (PopulateSymbolTablePass) Apply(op *ir.Operation, _ *pass.AnalysisManager) error {
	table := NewSymbolTable()
	for _, r := range op.Regions() {
		for bi := 0; bi < r.BlockCount(); bi++ {
			for _, item := range r.BlockIter(bi) {
				provider, ok := iface.Query[ir.ProvidesSymbol](nil, item.Op.Intrinsic())
				if !ok {
					continue
				}
				name, ok := provider.SymbolName(item.Op)
				if !ok {
					continue
				}
				table.Set(name, item.Op.Result())
			}
		}
	}
	SymbolTableAttr.Set(op, table)
	return nil
}

// Reset implements pass.OperationPass.
func (PopulateSymbolTablePass) Reset() pass.OperationPass { return PopulateSymbolTablePass{} }
