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

import "github.com/pkg/errors"

// AttributeInterface is the generated form of an attribute declaration:
// (attribute type T, key, capability). Once Verify(op) has passed for
// an Operation, op.Attr(Key()) is guaranteed to exist and hold a T, so
// Get never fails.
//
// AttributeInterface itself satisfies Capability, so it composes with
// Declare exactly like the marker capabilities in capability.go:
//
//	func (Module) Verify(op *ir.Operation) error {
//	    return ir.Declare(SymbolTableAttr.AsCapability()).Verify(op)
//	}
type AttributeInterface[T Attribute] struct {
	key string
}

// NewAttributeInterface declares an attribute interface binding
// attribute type T to key.
func NewAttributeInterface[T Attribute](key string) AttributeInterface[T] {
	return AttributeInterface[T]{key: key}
}

// Key returns the attribute map key this interface is bound to.
func (ai AttributeInterface[T]) Key() string { return ai.key }

// AsCapability adapts this interface into a Capability so it can be
// passed to Declare alongside marker capabilities like NonVariadic.
func (ai AttributeInterface[T]) AsCapability() Capability {
	return verifierFunc(ai.Verify)
}

// Verify enforces that op carries an attribute named Key() whose
// concrete type is exactly T.
func (ai AttributeInterface[T]) Verify(op *Operation) error {
	a, ok := op.Attr(ai.key)
	if !ok {
		return errors.Errorf("ir: %s missing required attribute %q", QualifiedName(op.Intrinsic()), ai.key)
	}
	if _, ok := a.(T); !ok {
		var zero T
		return errors.Errorf("ir: %s attribute %q has wrong type: want %T, got %T", QualifiedName(op.Intrinsic()), ai.key, zero, a)
	}
	return nil
}

// Get returns op's attribute at Key(), typed as T. Callers use it only
// after Operation.Verify has already succeeded for op; it panics
// otherwise, since the whole point of the interface is that Get cannot
// fail post-verification.
func (ai AttributeInterface[T]) Get(op *Operation) T {
	a, ok := op.Attr(ai.key)
	if !ok {
		panic("ir: attribute " + ai.key + " missing; Verify was not run or failed")
	}
	t, ok := a.(T)
	if !ok {
		panic("ir: attribute " + ai.key + " has the wrong type; Verify was not run or failed")
	}
	return t
}

// Set installs or replaces op's attribute at Key(). Dialects use this
// from a pass's Apply (e.g. a symbol-table population pass) to install
// derived data; attributes are the only part of an Operation a
// capability is allowed to write.
func (ai AttributeInterface[T]) Set(op *Operation, v T) {
	op.InsertAttr(ai.key, v)
}
