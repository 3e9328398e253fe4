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

import "fmt"

// Location tags an Operation with where it came from. The zero value of
// Location is Unknown.
type Location struct {
	kind locationKind
	file string
	line int
	col  int
	name string
	from *Location
}

type locationKind uint8

const (
	locUnknown locationKind = iota
	locFileLineCol
	locNamedFileLineCol
	locInlinedFrom
)

// UnknownLocation is the zero-information Location.
var UnknownLocation = Location{kind: locUnknown}

// NewFileLineCol builds a Location pointing at a file/line/column triple.
func NewFileLineCol(file string, line, col int) Location {
	return Location{kind: locFileLineCol, file: file, line: line, col: col}
}

// NewNamedFileLineCol builds a Location that additionally carries a name,
// e.g. the enclosing symbol.
func NewNamedFileLineCol(name, file string, line, col int) Location {
	return Location{kind: locNamedFileLineCol, name: name, file: file, line: line, col: col}
}

// NewInlinedFrom builds a Location at outer's file, line and column that
// records inner as the Location it was inlined from.
func NewInlinedFrom(inner Location, outer Location) Location {
	o := outer
	return Location{kind: locInlinedFrom, from: &inner, name: "", file: o.file, line: o.line, col: o.col}
}

func (l Location) String() string {
	switch l.kind {
	case locUnknown:
		return "(<unknown location>)"
	case locFileLineCol:
		return fmt.Sprintf("(<%s @ %d:%d>)", l.file, l.line, l.col)
	case locNamedFileLineCol:
		return fmt.Sprintf("(<%s: %s @ %d:%d>)", l.name, l.file, l.line, l.col)
	case locInlinedFrom:
		return fmt.Sprintf("(<%s:%d:%d inlined from %s>)", l.file, l.line, l.col, l.from)
	default:
		return "(<unknown location>)"
	}
}
