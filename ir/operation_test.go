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

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type testAttr string

func (testAttr) AttributeName() string { return "test.attr" }
func (a testAttr) String() string      { return string(a) }

type otherAttr int

func (otherAttr) AttributeName() string { return "test.other" }
func (otherAttr) String() string        { return "other" }

// failingIntr rejects every Operation it appears on.
type failingIntr struct{}

func (failingIntr) Namespace() string { return "test" }
func (failingIntr) Name() string      { return "failing" }
func (failingIntr) Verify(op *Operation) error {
	return errors.New("always rejected")
}

// terminatorIntr is a minimal Terminator-capable opcode.
type terminatorIntr struct{}

func (terminatorIntr) Namespace() string  { return "test" }
func (terminatorIntr) Name() string       { return "ret" }
func (terminatorIntr) IsTerminator() bool { return true }

func TestOperationAttrKeysUniqueAndOrdered(t *testing.T) {
	op := newTestOp("a")
	op.InsertAttr("x", testAttr("one"))
	op.InsertAttr("y", testAttr("two"))
	op.InsertAttr("x", testAttr("three"))

	attrs := op.Attrs()
	require.Len(t, attrs, 2)
	require.Equal(t, "x", attrs[0].Name)
	require.Equal(t, testAttr("three"), attrs[0].Attr)
	require.Equal(t, "y", attrs[1].Name)
}

func TestOperationString(t *testing.T) {
	r := NewSSACFGRegion()
	b0 := r.PushBlock()
	v0 := r.PushArg(b0)

	op := newTestOp("head")
	op.SetOperands([]Var{v0})
	op.InsertAttr("k", testAttr("v"))
	require.Equal(t, "test.head(%0) (<unknown location>) [k: v]", op.String())
}

func TestNonVariadicCapability(t *testing.T) {
	r := NewSSACFGRegion()
	b0 := r.PushBlock()
	vs := []Var{r.PushArg(b0), r.PushArg(b0), r.PushArg(b0)}

	op := newTestOp("add")
	op.SetOperands(vs)
	err := Declare(NonVariadic(2)).Verify(op)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NonVariadic")

	op.SetOperands(vs[:2])
	require.NoError(t, Declare(NonVariadic(2)).Verify(op))
}

func TestRequiresTerminatorsCapability(t *testing.T) {
	op := newTestOp("fn")
	r := NewSSACFGRegion()
	b0 := r.PushBlock()
	r.PushOp(b0, newTestOp("add"))
	op.PushRegion(r)

	err := Declare(RequiresTerminators()).Verify(op)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Terminator")

	term := NewOperation(terminatorIntr{}, UnknownLocation)
	r.PushOp(b0, term)
	require.NoError(t, Declare(RequiresTerminators()).Verify(op))
}

func TestAttributeInterface(t *testing.T) {
	ai := NewAttributeInterface[testAttr]("name")

	op := newTestOp("a")
	err := ai.Verify(op)
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required attribute "name"`)

	op.InsertAttr("name", otherAttr(1))
	err = ai.Verify(op)
	require.Error(t, err)
	require.Contains(t, err.Error(), "wrong type")
	require.Panics(t, func() { ai.Get(op) })

	ai.Set(op, testAttr("v"))
	require.NoError(t, ai.Verify(op))
	require.Equal(t, testAttr("v"), ai.Get(op))
	require.Equal(t, "name", ai.Key())
}

func TestVerifyWrapsVerificationError(t *testing.T) {
	op := NewOperation(failingIntr{}, UnknownLocation)
	err := op.Verify()
	require.Error(t, err)

	var ve *VerificationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "test.failing", ve.Intrinsic)
	require.Contains(t, ve.Excerpt, "test.failing(")
	require.Contains(t, err.Error(), "always rejected")
}

func TestVerifyOperandDominance(t *testing.T) {
	// parent { bb0: use(%1); def } — use reads a Var defined after it.
	parent := newTestOp("parent")
	r := NewSSACFGRegion()
	b0 := r.PushBlock()
	use := newTestOp("use")
	use.SetOperands([]Var{{id: 1}})
	r.PushOp(b0, use)
	r.PushOp(b0, newTestOp("def"))
	parent.PushRegion(r)
	LinkChildren(parent)

	err := parent.Verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "dominating definition")
}

func TestVerifyOperandDominanceAcrossBlocks(t *testing.T) {
	// Diamond where the join block reads a Var from only one arm.
	parent := newTestOp("parent")
	r := NewSSACFGRegion()
	b0 := r.PushBlock()
	b1 := r.PushBlock()
	b2 := r.PushBlock()
	b3 := r.PushBlock()
	r.PushOp(b0, newBranchOp("cond_br", b1, b2))
	left := r.PushOp(b1, newTestOp("left"))
	r.PushOp(b1, newBranchOp("br", b3))
	r.PushOp(b2, newBranchOp("br", b3))
	use := newTestOp("use")
	use.SetOperands([]Var{left})
	r.PushOp(b3, use)
	parent.PushRegion(r)
	LinkChildren(parent)

	err := parent.Verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "dominating definition")
}

func TestVerifyEntryParamsAsOperands(t *testing.T) {
	// A function-like op lists its own entry block's params as operands;
	// those resolve against the op's own region, not the enclosing one.
	outer := newTestOp("module")
	gr := NewGraphRegion()
	outer.PushRegion(gr)

	fn := newTestOp("fn")
	fr := NewSSACFGRegion()
	fb := fr.PushBlock()
	p0 := fr.PushArg(fb)
	p1 := fr.PushArg(fb)
	fr.PushOp(fb, NewOperation(terminatorIntr{}, UnknownLocation))
	fn.PushRegion(fr)
	fn.SetOperands([]Var{p0, p1})

	gr.PushOp(0, fn)
	LinkChildren(outer)
	require.NoError(t, outer.Verify())
}

func TestVerifyReachesNestedOperations(t *testing.T) {
	outer := newTestOp("module")
	gr := NewGraphRegion()
	gr.PushOp(0, NewOperation(failingIntr{}, UnknownLocation))
	outer.PushRegion(gr)
	LinkChildren(outer)

	err := outer.Verify()
	require.Error(t, err)
	var ve *VerificationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "test.failing", ve.Intrinsic)
}
