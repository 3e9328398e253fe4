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

package display

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/pass"
)

// Pipeline renders an OperationPassManager's own passes and nested
// managers as an aligned table, for debug output when assembling a
// pipeline — a second go-pretty consumer alongside AttrTable.
func Pipeline(pm *pass.OperationPassManager) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"depth", "target", "passes"})
	writePipelineRows(t, pm, 0)
	return t.Render()
}

func writePipelineRows(t table.Writer, pm *pass.OperationPassManager, depth int) {
	target := "<any>"
	if tag := pm.IntrinsicTag(); tag != nil {
		target = tag.String()
	}
	names := make([]string, 0, len(pm.Passes()))
	for _, p := range pm.Passes() {
		names = append(names, fmt.Sprintf("%T", p))
	}
	t.AppendRow(table.Row{depth, target, names})
	for _, nm := range pm.Managers() {
		writePipelineRows(t, nm, depth+1)
	}
}

// AttrTable renders op's own attribute map as an aligned table, for
// test-failure and debug dumps (alongside spew.Dump for full Operation
// trees).
func AttrTable(op *ir.Operation) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"key", "value"})
	for _, a := range op.Attrs() {
		t.AppendRow(table.Row{a.Name, a.Attr.String()})
	}
	return t.Render()
}
