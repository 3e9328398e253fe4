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

// Package iface implements capability queries for Intrinsics and
// Attributes.
//
// The static path is ordinary Go type assertion: a dialect that wants
// Foo to satisfy Commutative just has Foo implement the Commutative
// interface, and callers do v.(Commutative). That covers capabilities
// known at the type's definition site.
//
// The registry below covers the other half of the contract: binding a
// capability to a type *after* the type is already defined, from a
// separate package, without editing the original type. It is a table
// keyed on the pair (concrete type, capability type), populated by
// Register and consulted by Query.
package iface

import (
	"reflect"
	"sync"
)

type key struct {
	value reflect.Type
	cap   reflect.Type
}

// Registry holds dynamically-bound (type, capability) -> adapter
// bindings. The zero value is ready to use. A Registry is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	binds map[key]any
}

var global = &Registry{}

// Global returns the process-wide Registry used by Register/Query when
// no explicit Registry is supplied.
func Global() *Registry { return global }

// Register binds the capability C for values of T's concrete type to
// adapter, for later retrieval with Query. It panics if the same (T, C)
// pair is registered twice, since that would make capability lookup
// order-dependent.
func Register[T any, C any](r *Registry, adapter C) {
	if r == nil {
		r = global
	}
	var zeroT T
	k := key{value: reflect.TypeOf(zeroT), cap: reflect.TypeOf((*C)(nil)).Elem()}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.binds == nil {
		r.binds = make(map[key]any)
	}
	if _, exists := r.binds[k]; exists {
		panic("iface: capability already registered for this type")
	}
	r.binds[k] = adapter
}

// Query asks whether v supports capability C, first via a native type
// assertion (the static/default path), then via the dynamic Registry (the
// post-hoc path). It returns the capability value and whether it was
// found.
func Query[C any](r *Registry, v any) (C, bool) {
	if c, ok := v.(C); ok {
		return c, true
	}
	if r == nil {
		r = global
	}
	k := key{value: reflect.TypeOf(v), cap: reflect.TypeOf((*C)(nil)).Elem()}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.binds == nil {
		var zero C
		return zero, false
	}
	if adapter, ok := r.binds[k]; ok {
		if c, ok := adapter.(C); ok {
			return c, true
		}
	}
	var zero C
	return zero, false
}

// Has is a boolean-only convenience wrapper around Query.
func Has[C any](r *Registry, v any) bool {
	_, ok := Query[C](r, v)
	return ok
}
