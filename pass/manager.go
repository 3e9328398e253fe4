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

package pass

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/obs"
)

// PassError wraps a failure raised while a pass runs.
type PassError struct {
	cause error
}

func (e *PassError) Error() string { return "pass: " + e.cause.Error() }
func (e *PassError) Unwrap() error { return e.cause }

// OperationPass is a stateless unit of work applied to every Operation
// matching an OperationPassManager's target intrinsic type.
type OperationPass interface {
	// TargetIntrinsic returns an example value of the Intrinsic concrete
	// type this pass requires, or nil if it tolerates any manager.
	TargetIntrinsic() ir.Intrinsic
	// Check runs cheap structural preconditions before Apply.
	Check(op *ir.Operation) error
	// Apply does the pass's actual work, consulting am for any cached
	// analyses it needs.
	Apply(op *ir.Operation, am *AnalysisManager) error
	// Reset returns a fresh instance of the pass, for re-running a
	// pipeline from scratch.
	Reset() OperationPass
}

// OperationPassManager owns an ordered list of passes and an ordered
// list of nested managers, plus the AnalysisManager its passes share.
// A manager with a nil target intrinsic example matches every
// Operation; otherwise it matches only Operations whose concrete
// Intrinsic type equals the target's.
type OperationPassManager struct {
	mu       sync.Mutex
	target   reflect.Type
	passes   []OperationPass
	nested   []*OperationPassManager
	analysis *AnalysisManager
}

// New returns an empty manager targeting the concrete type of
// targetExample. Pass nil to build a manager that matches any
// Operation (typically the outermost, root manager).
func New(targetExample ir.Intrinsic) *OperationPassManager {
	pm := &OperationPassManager{analysis: NewAnalysisManager(0)}
	if targetExample != nil {
		pm.target = reflect.TypeOf(targetExample)
	}
	return pm
}

// Push appends p to the manager's own pass list. It fails if p declares
// a target intrinsic type that disagrees with this manager's own
// target: a manager targeting T must not run a pass written for some
// other T'.
func (pm *OperationPassManager) Push(p OperationPass) error {
	if t := p.TargetIntrinsic(); t != nil {
		pt := reflect.TypeOf(t)
		if pm.target != nil && pt != pm.target {
			return errors.Errorf("pass: manager targets %s, pass targets %s", pm.target, pt)
		}
	}
	pm.passes = append(pm.passes, p)
	return nil
}

// Nest appends child to the manager's nested list. The child (and its
// own nested managers, recursively) are rewired onto this manager's
// AnalysisManager: one walk shares one analysis cache end to end.
func (pm *OperationPassManager) Nest(child *OperationPassManager) {
	child.adoptAnalysis(pm.analysis)
	pm.nested = append(pm.nested, child)
}

func (pm *OperationPassManager) adoptAnalysis(am *AnalysisManager) {
	pm.analysis = am
	for _, nm := range pm.nested {
		nm.adoptAnalysis(am)
	}
}

func (pm *OperationPassManager) Passes() []OperationPass            { return pm.passes }
func (pm *OperationPassManager) Managers() []*OperationPassManager  { return pm.nested }
func (pm *OperationPassManager) Analysis() *AnalysisManager         { return pm.analysis }
func (pm *OperationPassManager) IntrinsicTag() reflect.Type         { return pm.target }

func (pm *OperationPassManager) matches(op *ir.Operation) bool {
	if pm.target == nil {
		return true
	}
	return reflect.TypeOf(op.Intrinsic()) == pm.target
}

// Check reports whether op's intrinsic matches this manager's target.
func (pm *OperationPassManager) Check(op *ir.Operation) error {
	if !pm.matches(op) {
		return errors.Errorf("pass: manager targets %s, got %s", pm.target, ir.QualifiedName(op.Intrinsic()))
	}
	return nil
}

// Prewalk applies the manager's own passes to op, then hands each child
// operation (in block order, then in-block order) to every nested
// manager whose target matches it — parent before children. The walk
// holds the manager's lock for its whole duration, so at most one walk
// mutates op and consults the shared analysis cache at a time; nested
// descent reenters through the unexported walk and never re-locks.
func (pm *OperationPassManager) Prewalk(op *ir.Operation) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	obs.Logger().Debug("prewalk start")
	if err := pm.Check(op); err != nil {
		return err
	}
	err := pm.walk(op)
	if err != nil {
		obs.Logger().Warnw("prewalk failed", "error", err)
	}
	return err
}

func (pm *OperationPassManager) walk(op *ir.Operation) error {
	for _, p := range pm.passes {
		if err := p.Check(op); err != nil {
			return &PassError{cause: errors.WithMessage(err, "check")}
		}
		if err := p.Apply(op, pm.analysis); err != nil {
			return &PassError{cause: errors.WithMessage(err, "apply")}
		}
	}
	for _, nm := range pm.nested {
		for _, r := range op.Regions() {
			for bi := 0; bi < r.BlockCount(); bi++ {
				for _, item := range r.BlockIter(bi) {
					if item.Op == nil || !nm.matches(item.Op) {
						continue
					}
					if err := nm.walk(item.Op); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
