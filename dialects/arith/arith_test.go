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

package arith_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/abstraps/dialects/arith"
	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/ir/iface"
)

func TestIntrinsicIdentity(t *testing.T) {
	require.Equal(t, "arith.add", ir.QualifiedName(arith.Add{}))
	require.Equal(t, "arith.addi", ir.QualifiedName(arith.Addi{}))
	require.Equal(t, "arith.return", ir.QualifiedName(arith.Return{}))
	require.Equal(t, "arith.br", ir.QualifiedName(arith.Br{}))
	require.Equal(t, "arith.cond_br", ir.QualifiedName(arith.CondBr{}))
	require.Equal(t, "arith.call", ir.QualifiedName(arith.Call{}))
}

func TestCapabilityMarkers(t *testing.T) {
	require.True(t, iface.Has[ir.Commutative](nil, arith.Add{}))
	require.True(t, iface.Has[ir.Elementwise](nil, arith.Add{}))
	require.True(t, iface.Has[ir.Terminator](nil, arith.Return{}))
	require.True(t, iface.Has[ir.Terminator](nil, arith.Br{}))
	require.True(t, iface.Has[ir.Terminator](nil, arith.CondBr{}))
	require.False(t, iface.Has[ir.Terminator](nil, arith.Add{}))
	require.True(t, iface.Has[ir.BranchTargets](nil, arith.Br{}))
}

func TestPromotionTable(t *testing.T) {
	cases := []struct {
		a, b, want arith.Value
	}{
		{arith.Int64Value, arith.Int64Value, arith.Int64Value},
		{arith.Int64Value, arith.Float64Value, arith.Float64Value},
		{arith.Float64Value, arith.Int64Value, arith.Float64Value},
		{arith.Float64Value, arith.Float64Value, arith.Float64Value},
		{arith.TopValue, arith.Int64Value, arith.TopValue},
		{arith.BottomValue, arith.Int64Value, arith.BottomValue},
	}
	for _, c := range cases {
		got, err := arith.Add{}.Propagate(nil, []arith.Value{c.a, c.b})
		require.NoError(t, err)
		require.Equal(t, c.want, got, "%s + %s", c.a, c.b)
	}

	_, err := arith.Add{}.Propagate(nil, []arith.Value{arith.Int64Value})
	require.Error(t, err)
}

func TestAddiPropagatesAgainstInt(t *testing.T) {
	got, err := arith.Addi{}.Propagate(nil, []arith.Value{arith.Float64Value})
	require.NoError(t, err)
	require.Equal(t, arith.Float64Value, got)

	got, err = arith.Addi{}.Propagate(nil, []arith.Value{arith.Int64Value})
	require.NoError(t, err)
	require.Equal(t, arith.Int64Value, got)
}

func TestBranchVerify(t *testing.T) {
	op := ir.NewOperation(arith.Br{}, ir.UnknownLocation)
	require.Error(t, arith.Br{}.Verify(op))
	op.SetSuccessors([]int{1})
	require.NoError(t, arith.Br{}.Verify(op))

	cb := ir.NewOperation(arith.CondBr{}, ir.UnknownLocation)
	cb.SetSuccessors([]int{1, 2})
	err := arith.CondBr{}.Verify(cb)
	require.Error(t, err) // still missing its condition operand
	require.Contains(t, err.Error(), "NonVariadic")
}

func TestBranchTargets(t *testing.T) {
	r := ir.NewSSACFGRegion()
	b0 := r.PushBlock()
	v := r.PushArg(b0)

	op := ir.NewOperation(arith.Br{}, ir.UnknownLocation)
	op.SetOperands([]ir.Var{v})
	op.SetSuccessors([]int{2})

	edges := arith.Br{}.Targets(op)
	require.Len(t, edges, 1)
	require.Equal(t, 2, edges[0].Block)
	require.Equal(t, []ir.Var{v}, edges[0].Args)

	cb := ir.NewOperation(arith.CondBr{}, ir.UnknownLocation)
	cb.SetOperands([]ir.Var{v})
	cb.SetSuccessors([]int{1, 2})
	cbEdges := arith.CondBr{}.Targets(cb)
	require.Len(t, cbEdges, 2)
	require.Empty(t, cbEdges[0].Args)
}

func TestCallCallee(t *testing.T) {
	op := ir.NewOperation(arith.Call{}, ir.UnknownLocation)
	_, ok := arith.Call{}.Callee(op)
	require.False(t, ok)
	require.Error(t, arith.Call{}.Verify(op))

	arith.CalleeAttr.Set(op, arith.Callee("sum"))
	require.NoError(t, arith.Call{}.Verify(op))
	name, ok := arith.Call{}.Callee(op)
	require.True(t, ok)
	require.Equal(t, "sum", name)
}

func TestValueStrings(t *testing.T) {
	require.Equal(t, "bottom", arith.BottomValue.String())
	require.Equal(t, "i64", arith.Int64Value.String())
	require.Equal(t, "f64", arith.Float64Value.String())
	require.Equal(t, "top", arith.TopValue.String())
	require.Equal(t, "3", arith.Immediate(3).String())
}
