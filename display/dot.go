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

	"github.com/emicklei/dot"

	"github.com/erigontech/abstraps/ir"
)

// DOT renders an Operation's SSACFG regions as a Graphviz graph: one
// node per BasicBlock, labeled with its operations, and one edge per
// successor. Graph regions (single block, no control flow) render as
// one unconnected node. Nested operations' own regions become
// subgraphs, so a module containing several functions renders as one
// graph with one cluster per function.
type DOT struct {
	Text Text
}

var _ Renderer = DOT{}

// Render implements Renderer.
func (d DOT) Render(op *ir.Operation) string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "TB")
	d.writeOp(g, op, ir.QualifiedName(op.Intrinsic()))
	return g.String()
}

func (d DOT) writeOp(g *dot.Graph, op *ir.Operation, label string) {
	for ri, r := range op.Regions() {
		sub := g.Subgraph(fmt.Sprintf("cluster_%s_region%d", label, ri), dot.ClusterOption{})
		nodes := make([]dot.Node, r.BlockCount())
		for bi := 0; bi < r.BlockCount(); bi++ {
			block := r.Blocks()[bi]
			nodes[bi] = sub.Node(fmt.Sprintf("%s_r%d_bb%d", label, ri, bi)).
				Attr("shape", "box").
				Attr("label", d.blockLabel(bi, block))
		}
		for bi := 0; bi < r.BlockCount(); bi++ {
			block := r.Blocks()[bi]
			term := block.Terminator()
			if term == nil {
				continue
			}
			for _, s := range term.Successors() {
				if s < 0 || s >= len(nodes) {
					continue
				}
				sub.Edge(nodes[bi], nodes[s])
			}
			for ci := 0; ci < block.Len(); ci++ {
				child := block.OpAt(ci)
				if child == nil || len(child.Regions()) == 0 {
					continue
				}
				d.writeOp(g, child, fmt.Sprintf("%s_r%d_bb%d_%s", label, ri, bi, ir.QualifiedName(child.Intrinsic())))
			}
		}
	}
}

func (d DOT) blockLabel(bi int, block *ir.BasicBlock) string {
	text := Text{Indent: d.Text.Indent}
	label := fmt.Sprintf("bb%d", bi)
	for pos := 0; pos < block.Len(); pos++ {
		op := block.OpAt(pos)
		if op == nil {
			continue
		}
		label += "\\l" + text.render(op)
	}
	return label + "\\l"
}
