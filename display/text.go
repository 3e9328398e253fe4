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
	"strings"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/ir/iface"
)

// Text renders an Operation in the stable textual form
//
//	namespace.name(operand, ...) (<location>) [attr: value, ...] { region0 } ...
type Text struct {
	// Indent is the per-nesting-level indent string. Defaults to two
	// spaces when empty. Render writes the whole tree, nested regions
	// included, on one line at depth 0, so Indent does not appear in its
	// output.
	Indent string
}

var _ Renderer = Text{}

func (t Text) indent() string {
	if t.Indent == "" {
		return "  "
	}
	return t.Indent
}

// Render implements Renderer.
func (t Text) Render(op *ir.Operation) string {
	var b strings.Builder
	t.writeOp(&b, op, 0)
	return b.String()
}

func (t Text) writeOp(b *strings.Builder, op *ir.Operation, depth int) {
	pad := strings.Repeat(t.indent(), depth)
	b.WriteString(pad)
	b.WriteString(t.render(op))
	b.WriteByte('\n')
}

func (t Text) render(op *ir.Operation) string {
	var b strings.Builder
	if c, ok := iface.Query[Capability](nil, op.Intrinsic()); ok {
		b.WriteString(c.Display())
	} else {
		b.WriteString(ir.QualifiedName(op.Intrinsic()))
	}
	b.WriteByte('(')
	for i, v := range op.Operands() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteString(") ")
	b.WriteString(op.Location().String())

	if attrs := op.Attrs(); len(attrs) > 0 {
		b.WriteString(" [")
		for i, a := range attrs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			if c, ok := iface.Query[Capability](nil, a.Attr); ok {
				b.WriteString(c.Display())
			} else {
				b.WriteString(a.Attr.String())
			}
		}
		b.WriteString("]")
	}

	for ri, r := range op.Regions() {
		b.WriteString(fmt.Sprintf(" { region%d:", ri))
		t.writeRegion(&b, r)
		b.WriteString(" }")
	}
	return b.String()
}

func (t Text) writeRegion(b *strings.Builder, r *ir.Region) {
	for bi := 0; bi < r.BlockCount(); bi++ {
		block := r.Blocks()[bi]
		b.WriteString(fmt.Sprintf(" ^bb%d(", bi))
		for i, p := range block.Params() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteString("):")
		for pos := 0; pos < block.Len(); pos++ {
			child := block.OpAt(pos)
			if child == nil {
				continue
			}
			b.WriteString(" ")
			b.WriteString(child.Result().String())
			b.WriteString(" = ")
			b.WriteString(t.render(child))
			b.WriteString(";")
		}
	}
}
