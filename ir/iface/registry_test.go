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

package iface

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

// statically capable: the type itself implements greeter.
type polite struct{}

func (polite) Greet() string { return "hello" }

// bare has no methods; a capability can only reach it dynamically.
type bare struct{}

type bareGreeter struct{}

func (bareGreeter) Greet() string { return "hi from adapter" }

func TestQueryStatic(t *testing.T) {
	g, ok := Query[greeter](nil, polite{})
	require.True(t, ok)
	require.Equal(t, "hello", g.Greet())
}

func TestQueryAbsent(t *testing.T) {
	r := &Registry{}
	_, ok := Query[greeter](r, bare{})
	require.False(t, ok)
	require.False(t, Has[greeter](r, bare{}))
}

func TestRegisterThenQuery(t *testing.T) {
	r := &Registry{}

	// A value created before registration sees the binding afterwards:
	// the registry keys on the concrete type, not the instance.
	v := bare{}
	_, ok := Query[greeter](r, v)
	require.False(t, ok)

	Register[bare, greeter](r, bareGreeter{})

	g, ok := Query[greeter](r, v)
	require.True(t, ok)
	require.Equal(t, "hi from adapter", g.Greet())
	require.True(t, Has[greeter](r, v))
}

func TestRegisterTwicePanics(t *testing.T) {
	r := &Registry{}
	Register[bare, greeter](r, bareGreeter{})
	require.Panics(t, func() {
		Register[bare, greeter](r, bareGreeter{})
	})
}

func TestRegistryIsolation(t *testing.T) {
	a := &Registry{}
	b := &Registry{}
	Register[bare, greeter](a, bareGreeter{})

	_, ok := Query[greeter](b, bare{})
	require.False(t, ok)
	_, ok = Query[greeter](a, bare{})
	require.True(t, ok)
}
