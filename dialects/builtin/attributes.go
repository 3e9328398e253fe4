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
	"fmt"
	"strings"

	"github.com/tidwall/btree"

	"github.com/erigontech/abstraps/ir"
)

// Symbol is the name a Func is addressable by within an enclosing
// Module's symbol table.
type Symbol string

func (Symbol) AttributeName() string { return "builtin.symbol" }
func (s Symbol) String() string      { return string(s) }

type symbolEntry struct {
	name string
	v    ir.Var
}

// SymbolTable maps symbol names to the Var identifying their defining
// Operation within the owning Module's Graph region, in name order —
// backed by a tidwall/btree.BTreeG so Display renders it deterministically
// without a separate sort step.
type SymbolTable struct {
	tree *btree.BTreeG[symbolEntry]
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		tree: btree.NewBTreeG(func(a, b symbolEntry) bool { return a.name < b.name }),
	}
}

// Set binds name to v, replacing any existing binding.
func (t *SymbolTable) Set(name string, v ir.Var) {
	t.tree.Set(symbolEntry{name: name, v: v})
}

// Get looks up name.
func (t *SymbolTable) Get(name string) (ir.Var, bool) {
	item, ok := t.tree.Get(symbolEntry{name: name})
	if !ok {
		return ir.Var{}, false
	}
	return item.v, true
}

// Len reports how many symbols are bound.
func (t *SymbolTable) Len() int { return t.tree.Len() }

func (*SymbolTable) AttributeName() string { return "builtin.symbol_table" }

func (t *SymbolTable) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	t.tree.Scan(func(item symbolEntry) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %s", item.name, item.v)
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// SymbolTableAttr binds the "symbols" attribute key to *SymbolTable for
// Module operations, installed by PopulateSymbolTablePass.
var SymbolTableAttr = ir.NewAttributeInterface[*SymbolTable]("symbols")
