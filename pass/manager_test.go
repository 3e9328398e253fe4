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

package pass_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/ir/builder"
	"github.com/erigontech/abstraps/pass"
)

type modIntr struct{}

func (modIntr) Namespace() string { return "t" }
func (modIntr) Name() string      { return "mod" }

type fnIntr struct{}

func (fnIntr) Namespace() string { return "t" }
func (fnIntr) Name() string      { return "fn" }

type leafIntr struct{}

func (leafIntr) Namespace() string { return "t" }
func (leafIntr) Name() string      { return "leaf" }

// recordPass appends each visited operation's name to a shared log.
type recordPass struct {
	target ir.Intrinsic
	tag    string
	log    *[]string
}

func (p recordPass) TargetIntrinsic() ir.Intrinsic { return p.target }
func (p recordPass) Check(op *ir.Operation) error  { return nil }
func (p recordPass) Apply(op *ir.Operation, am *pass.AnalysisManager) error {
	*p.log = append(*p.log, p.tag+":"+ir.QualifiedName(op.Intrinsic()))
	return nil
}
func (p recordPass) Reset() pass.OperationPass { return p }

type failingPass struct {
	checkErr error
	applyErr error
}

func (failingPass) TargetIntrinsic() ir.Intrinsic { return nil }
func (p failingPass) Check(op *ir.Operation) error {
	return p.checkErr
}
func (p failingPass) Apply(op *ir.Operation, am *pass.AnalysisManager) error {
	return p.applyErr
}
func (p failingPass) Reset() pass.OperationPass { return p }

// buildTree returns a module holding two fn children, each with one
// nested leaf operation.
func buildTree(t *testing.T) *ir.Operation {
	t.Helper()
	mb := builder.New(modIntr{}, ir.UnknownLocation)
	mb.PushRegion(ir.Graph)
	for i := 0; i < 2; i++ {
		fb := builder.New(fnIntr{}, ir.UnknownLocation)
		fb.PushRegion(ir.SSACFG)
		fb.PushBlock()
		fb.Push(builder.New(leafIntr{}, ir.UnknownLocation))
		mb.Push(fb)
	}
	op, err := mb.Finish()
	require.NoError(t, err)
	return op
}

func TestPushTargetMismatch(t *testing.T) {
	pm := pass.New(modIntr{})
	err := pm.Push(recordPass{target: fnIntr{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "manager targets")

	require.NoError(t, pm.Push(recordPass{target: modIntr{}, log: new([]string)}))
	require.NoError(t, pm.Push(recordPass{log: new([]string)})) // nil target tolerates any manager
}

func TestPrewalkOrder(t *testing.T) {
	var log []string
	root := pass.New(modIntr{})
	require.NoError(t, root.Push(recordPass{target: modIntr{}, tag: "mod", log: &log}))

	fns := pass.New(fnIntr{})
	require.NoError(t, fns.Push(recordPass{target: fnIntr{}, tag: "fn", log: &log}))

	leaves := pass.New(leafIntr{})
	require.NoError(t, leaves.Push(recordPass{target: leafIntr{}, tag: "leaf", log: &log}))

	fns.Nest(leaves)
	root.Nest(fns)

	require.NoError(t, root.Prewalk(buildTree(t)))
	require.Equal(t, []string{
		"mod:t.mod",
		"fn:t.fn", "leaf:t.leaf",
		"fn:t.fn", "leaf:t.leaf",
	}, log)
}

func TestPrewalkPassOrderWithinManager(t *testing.T) {
	var log []string
	pm := pass.New(modIntr{})
	require.NoError(t, pm.Push(recordPass{tag: "first", log: &log}))
	require.NoError(t, pm.Push(recordPass{tag: "second", log: &log}))

	require.NoError(t, pm.Prewalk(buildTree(t)))
	require.Equal(t, []string{"first:t.mod", "second:t.mod"}, log)
}

func TestPrewalkTargetMismatch(t *testing.T) {
	pm := pass.New(fnIntr{})
	err := pm.Prewalk(buildTree(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "manager targets")
}

func TestPrewalkCheckFailureShortCircuits(t *testing.T) {
	var log []string
	pm := pass.New(modIntr{})
	require.NoError(t, pm.Push(failingPass{checkErr: errors.New("bad precondition")}))
	require.NoError(t, pm.Push(recordPass{tag: "later", log: &log}))

	err := pm.Prewalk(buildTree(t))
	require.Error(t, err)
	var pe *pass.PassError
	require.True(t, errors.As(err, &pe))
	require.Contains(t, err.Error(), "bad precondition")
	require.Empty(t, log)
}

func TestPrewalkApplyFailure(t *testing.T) {
	pm := pass.New(modIntr{})
	require.NoError(t, pm.Push(failingPass{applyErr: errors.New("apply exploded")}))

	err := pm.Prewalk(buildTree(t))
	var pe *pass.PassError
	require.True(t, errors.As(err, &pe))
	require.Contains(t, err.Error(), "apply exploded")
}

func TestNestSharesAnalysisManager(t *testing.T) {
	root := pass.New(modIntr{})
	mid := pass.New(fnIntr{})
	leaf := pass.New(leafIntr{})
	mid.Nest(leaf)
	root.Nest(mid)

	require.Same(t, root.Analysis(), mid.Analysis())
	require.Same(t, root.Analysis(), leaf.Analysis())
}

func TestResetKeepsTarget(t *testing.T) {
	var log []string
	p := recordPass{target: modIntr{}, tag: "a", log: &log}
	fresh := p.Reset()
	require.Equal(t, p.TargetIntrinsic(), fresh.TargetIntrinsic())
}

// countKey is a trivial AnalysisKey over a string.
type countKey string

func (k countKey) Equal(other pass.AnalysisKey) bool {
	o, ok := other.(countKey)
	return ok && o == k
}

func (k countKey) Hash() uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(k); i++ {
		h = (h ^ uint64(k[i])) * 1099511628211
	}
	return h
}

// collideKey always hashes to the same bucket, to force Equal-based
// collision resolution.
type collideKey string

func (k collideKey) Equal(other pass.AnalysisKey) bool {
	o, ok := other.(collideKey)
	return ok && o == k
}

func (collideKey) Hash() uint64 { return 42 }

type countingAnalysis struct {
	runs *int
}

func (a countingAnalysis) Run(op *ir.Operation) (any, error) {
	*a.runs++
	return len(op.Regions()), nil
}

type failingAnalysis struct{}

func (failingAnalysis) Run(op *ir.Operation) (any, error) {
	return nil, errors.New("analysis blew up")
}

func TestAnalysisCaching(t *testing.T) {
	op := buildTree(t)
	am := pass.NewAnalysisManager(0)
	runs := 0
	a := countingAnalysis{runs: &runs}

	v1, err := am.Analyze(countKey("k"), op, a)
	require.NoError(t, err)
	v2, err := am.Analyze(countKey("k"), op, a)
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, runs)

	got, err := am.Ask(countKey("k"))
	require.NoError(t, err)
	require.Equal(t, v1, got)
}

func TestAskUnavailable(t *testing.T) {
	am := pass.NewAnalysisManager(0)
	_, err := am.Ask(countKey("missing"))
	require.Error(t, err)
	var ua *pass.AnalysisUnavailable
	require.True(t, errors.As(err, &ua))
	require.Equal(t, countKey("missing"), ua.Key)
}

func TestAnalysisEvict(t *testing.T) {
	op := buildTree(t)
	am := pass.NewAnalysisManager(0)
	runs := 0
	a := countingAnalysis{runs: &runs}

	_, err := am.Analyze(countKey("k"), op, a)
	require.NoError(t, err)
	am.Evict(countKey("k"))
	_, err = am.Ask(countKey("k"))
	require.Error(t, err)

	_, err = am.Analyze(countKey("k"), op, a)
	require.NoError(t, err)
	require.Equal(t, 2, runs)
}

func TestAnalysisHashCollision(t *testing.T) {
	op := buildTree(t)
	am := pass.NewAnalysisManager(0)
	runs := 0
	a := countingAnalysis{runs: &runs}

	_, err := am.Analyze(collideKey("x"), op, a)
	require.NoError(t, err)
	_, err = am.Analyze(collideKey("y"), op, a)
	require.NoError(t, err)
	require.Equal(t, 2, runs)

	am.Evict(collideKey("x"))
	_, err = am.Ask(collideKey("x"))
	require.Error(t, err)
	_, err = am.Ask(collideKey("y"))
	require.NoError(t, err)
}

func TestAnalysisFailureNotCached(t *testing.T) {
	op := buildTree(t)
	am := pass.NewAnalysisManager(0)

	_, err := am.Analyze(countKey("k"), op, failingAnalysis{})
	require.Error(t, err)
	_, err = am.Ask(countKey("k"))
	require.Error(t, err)
}
