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

// Intrinsic is the operation code carried by an Operation. Dialects
// implement this for every op they define; capabilities (traits) are
// layered on top via the iface package rather than being part of this
// interface.
type Intrinsic interface {
	Namespace() string
	Name() string
}

// Attribute is a typed, named constant payload attached to an
// Operation. Dialects implement this for every attribute kind they
// define.
type Attribute interface {
	fmt.Stringer
	AttributeName() string
}

// QualifiedName renders an Intrinsic as "namespace.name", matching the
// textual form used throughout Display.
func QualifiedName(i Intrinsic) string {
	return i.Namespace() + "." + i.Name()
}
