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

// Package display renders an Operation tree, delegating the per-value
// parts of the job to the Capability interface so a dialect's own
// Intrinsics and Attributes can supply their own text. Two Renderer
// backends are provided: Text (the stable textual form) and DOT (a
// Graphviz rendering of an Operation's SSACFG regions).
package display

import "github.com/erigontech/abstraps/ir"

// Capability is the per-value override an Intrinsic or Attribute
// implements to control its own rendering; Renderers query it via
// iface.Query and fall back to a stock rendering when it's absent.
type Capability interface {
	Display() string
}

// Renderer turns an Operation tree into a complete rendered document.
type Renderer interface {
	Render(op *ir.Operation) string
}
