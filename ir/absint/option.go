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

// Package absint implements a forward lattice propagator: a work-list
// interpreter over a function-like Operation's SSACFG region, driven by
// the LatticeSemantics capability each intrinsic it encounters provides.
package absint

// Option is an explicit present-or-unknown initial parameter binding.
// None means unknown, as distinct from "some specific lattice bottom
// value": an absent binding never participates in a Join.
type Option[L any] struct {
	value   L
	present bool
}

// Some wraps a known initial lattice value.
func Some[L any](v L) Option[L] { return Option[L]{value: v, present: true} }

// None represents an unknown initial lattice value.
func None[L any]() Option[L] { return Option[L]{} }

// Get returns the wrapped value and whether it was present.
func (o Option[L]) Get() (L, bool) { return o.value, o.present }
