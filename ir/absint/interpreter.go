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

package absint

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/ir/iface"
	"github.com/erigontech/abstraps/obs"
)

// Lattice is the join-semilattice contract a user value type must
// satisfy to drive the interpreter. Join must be commutative and
// associative up to lattice equivalence, monotone, and idempotent:
// Join(a, a) == a.
type Lattice[L any] interface {
	Join(other L) L
}

// Element is the full constraint an interpreter's value type carries:
// a Lattice that is also comparable, so two values (and hence two
// Signatures built from them) can be tested for equality without a
// bespoke Eq method.
type Element[L any] interface {
	comparable
	Lattice[L]
}

// LatticeSemantics is the capability the interpreter queries on every
// Operation's Intrinsic to evaluate it: given the already-resolved
// lattice values of its operands, produce the lattice value bound to
// its result.
type LatticeSemantics[L any] interface {
	Propagate(op *ir.Operation, operands []L) (L, error)
}

// CallSemantics marks an Intrinsic that performs a cross-function call.
// The interpreter queries it when LatticeSemantics is absent, so a call
// op suspends the walk (state Waiting) rather than failing with "no
// semantics for intrinsic".
type CallSemantics interface {
	Callee(op *ir.Operation) (symbol string, ok bool)
}

// State is the interpreter's run state.
type State uint8

const (
	Inactive State = iota
	Active
	Waiting
	Errored
	Finished
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Waiting:
		return "waiting"
	case Errored:
		return "error"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Frame is the frozen result an interpreter run produces: the final,
// joined-across-blocks environment, and the function's return lattice
// value if its exit terminator carried one.
type Frame[L any] struct {
	Env map[ir.Var]L
	Ret *L
}

// Return reports the function's return lattice value, if its exit
// terminator produced one.
func (f *Frame[L]) Return() (L, bool) {
	if f.Ret == nil {
		var zero L
		return zero, false
	}
	return *f.Ret, true
}

type blockFrame[L Lattice[L]] struct {
	block int
	in    map[ir.Var]L
}

type callSite struct {
	block, pos int
}

// Interpreter propagates lattice values of type L forward through the
// entry region of a function-like Operation, block by block off a FIFO
// work list, joining each finished block's local environment into the
// function-wide one.
type Interpreter[L Element[L]] struct {
	fn     *ir.Operation
	region *ir.Region

	state State
	err   error

	queue   []blockFrame[L]
	queued  mapset.Set[int]
	visited mapset.Set[int]
	env     map[ir.Var]L

	waiting     Signature[L]
	pendingSite callSite
	callResults map[callSite]L
	retVal      *L
}

// New starts an interpreter over fn's entry region, seeding block 0's
// parameters from initial (by position; a short initial slice leaves
// the remaining parameters at None/bottom).
func New[L Element[L]](fn *ir.Operation, initial []Option[L]) (*Interpreter[L], error) {
	regions := fn.Regions()
	if len(regions) == 0 {
		return nil, errors.Errorf("absint: %s has no region to interpret", ir.QualifiedName(fn.Intrinsic()))
	}
	region := regions[0]
	if region.BlockCount() == 0 {
		return nil, errors.Errorf("absint: %s's region has no entry block", ir.QualifiedName(fn.Intrinsic()))
	}
	params := region.Blocks()[0].Params()
	in := make(map[ir.Var]L, len(params))
	for i, p := range params {
		if i < len(initial) {
			if v, ok := initial[i].Get(); ok {
				in[p] = v
			}
		}
	}
	it := &Interpreter[L]{
		fn:          fn,
		region:      region,
		state:       Active,
		env:         map[ir.Var]L{},
		callResults: map[callSite]L{},
		queued:      mapset.NewThreadUnsafeSet[int](),
		visited:     mapset.NewThreadUnsafeSet[int](),
	}
	it.queue = append(it.queue, blockFrame[L]{block: 0, in: in})
	it.queued.Add(0)
	return it, nil
}

func (it *Interpreter[L]) State() State { return it.state }

// Pending reports the callee Signature the interpreter is suspended on,
// if State() is Waiting. The caller is expected to resolve it (e.g. via
// an AnalysisManager.Analyze call against the callee's own Operation,
// located by the caller through its own symbol table) and call Resume.
func (it *Interpreter[L]) Pending() (Signature[L], bool) {
	if it.state != Waiting {
		return Signature[L]{}, false
	}
	return it.waiting, true
}

// Resume supplies the resolved callee Frame for the call this
// interpreter suspended on, and returns to Active.
func (it *Interpreter[L]) Resume(callee *Frame[L]) error {
	if it.state != Waiting {
		return errors.Errorf("absint: Resume called while interpreter is %s, not waiting", it.state)
	}
	ret, ok := callee.Return()
	if !ok {
		return it.fail(errors.New("absint: callee analysis produced no return value"))
	}
	it.callResults[it.pendingSite] = ret
	it.state = Active
	return nil
}

// Run drives Step to completion, failing if the interpreter ever enters
// Waiting (callers that need inter-procedural suspension must drive
// Step/Pending/Resume themselves instead of calling Run).
func (it *Interpreter[L]) Run() (*Frame[L], error) {
	for it.state == Active {
		if err := it.Step(); err != nil {
			return nil, err
		}
	}
	switch it.state {
	case Finished:
		return &Frame[L]{Env: it.env, Ret: it.ret()}, nil
	case Waiting:
		return nil, errors.Errorf("absint: Run suspended on call to %q; drive Step/Pending/Resume directly for inter-procedural analysis", it.waiting.Symbol)
	default:
		return nil, it.err
	}
}

func (it *Interpreter[L]) ret() *L {
	return it.retVal
}

// Step processes the next queued block to completion: every operation
// in it is evaluated via LatticeSemantics in order, the block-local
// environment is joined into the global environment, and every live
// successor (per BranchTargets, or the statically declared Successors
// if the terminator doesn't implement it) is enqueued with its incoming
// block-parameter bindings. The interpreter transitions to Finished
// when the queue drains, or to Waiting if a call needs inter-procedural
// resolution.
func (it *Interpreter[L]) Step() error {
	if it.state != Active {
		return errors.Errorf("absint: Step called while interpreter is %s", it.state)
	}
	if len(it.queue) == 0 {
		it.state = Finished
		return nil
	}
	frame := it.queue[0]
	it.queue = it.queue[1:]
	it.queued.Remove(frame.block)

	obs.Logger().Debugw("absint: stepping block", "block", frame.block)

	block := it.region.Blocks()[frame.block]
	local := make(map[ir.Var]L, len(block.Params())+block.Len())
	for v, val := range frame.in {
		local[v] = val
	}
	resolve := func(v ir.Var) (L, bool) {
		if val, ok := local[v]; ok {
			return val, true
		}
		if val, ok := it.env[v]; ok {
			return val, true
		}
		var zero L
		return zero, false
	}

	var term *ir.Operation
	for pos := 0; pos < block.Len(); pos++ {
		op := block.OpAt(pos)
		if op == nil {
			continue
		}
		if pos == block.Len()-1 {
			term = op
		}
		site := callSite{block: frame.block, pos: pos}
		if cached, ok := it.callResults[site]; ok {
			local[op.Result()] = cached
			continue
		}

		operandVals := make([]L, len(op.Operands()))
		unresolved := false
		for i, v := range op.Operands() {
			val, ok := resolve(v)
			if !ok {
				unresolved = true
				break
			}
			operandVals[i] = val
		}

		if sem, ok := iface.Query[LatticeSemantics[L]](nil, op.Intrinsic()); ok {
			if unresolved {
				return it.fail(errors.Errorf("absint: unresolved operand feeding %s", ir.QualifiedName(op.Intrinsic())))
			}
			result, err := sem.Propagate(op, operandVals)
			if err != nil {
				return it.fail(errors.WithMessage(err, "absint: propagate"))
			}
			local[op.Result()] = result
			continue
		}

		if cs, ok := iface.Query[CallSemantics](nil, op.Intrinsic()); ok {
			symbol, ok := cs.Callee(op)
			if !ok {
				return it.fail(errors.Errorf("absint: %s declares CallSemantics but named no callee", ir.QualifiedName(op.Intrinsic())))
			}
			params := make([]Option[L], len(op.Operands()))
			for i, v := range op.Operands() {
				if val, ok := resolve(v); ok {
					params[i] = Some(val)
				} else {
					params[i] = None[L]()
				}
			}
			it.state = Waiting
			it.waiting = Signature[L]{Symbol: symbol, Params: params}
			it.pendingSite = site
			it.queue = append([]blockFrame[L]{frame}, it.queue...)
			it.queued.Add(frame.block)
			return nil
		}

		return it.fail(errors.Errorf("absint: no LatticeSemantics for %s", ir.QualifiedName(op.Intrinsic())))
	}

	for v, val := range local {
		if existing, ok := it.env[v]; ok {
			it.env[v] = existing.Join(val)
		} else {
			it.env[v] = val
		}
	}
	it.visited.Add(frame.block)

	if term != nil {
		edges := it.liveSuccessors(term)
		if len(edges) == 0 {
			if rv, ok := local[term.Result()]; ok {
				v := rv
				it.retVal = &v
			}
		}
		for _, e := range edges {
			targetParams := it.region.Blocks()[e.Block].Params()
			edgeIn := make(map[ir.Var]L, len(e.Args))
			for i, a := range e.Args {
				if i >= len(targetParams) {
					break
				}
				if val, ok := resolve(a); ok {
					edgeIn[targetParams[i]] = val
				}
			}
			it.enqueue(e.Block, edgeIn)
		}
	}

	if len(it.queue) == 0 {
		it.state = Finished
	}
	return nil
}

func (it *Interpreter[L]) liveSuccessors(term *ir.Operation) []ir.BranchEdge {
	if bt, ok := iface.Query[ir.BranchTargets](nil, term.Intrinsic()); ok {
		return bt.Targets(term)
	}
	successors := term.Successors()
	edges := make([]ir.BranchEdge, len(successors))
	for i, s := range successors {
		edges[i] = ir.BranchEdge{Block: s}
	}
	return edges
}

// enqueue adds block to the work queue with in as its incoming
// bindings, joining against an already-queued frame for the same block
// rather than duplicating it — the merge a join point fed by several
// predecessors in one step needs. The queued set
// gives an O(1) test for "is this block already pending" instead of
// scanning the queue on every edge, which matters once a loop header
// has accumulated many back-edges worth of queue churn.
func (it *Interpreter[L]) enqueue(block int, in map[ir.Var]L) {
	if it.queued.Contains(block) {
		for i := range it.queue {
			if it.queue[i].block != block {
				continue
			}
			for v, val := range in {
				if existing, ok := it.queue[i].in[v]; ok {
					it.queue[i].in[v] = existing.Join(val)
				} else {
					it.queue[i].in[v] = val
				}
			}
			return
		}
	}
	if it.visited.Contains(block) && !it.grows(in) {
		return
	}
	it.queue = append(it.queue, blockFrame[L]{block: block, in: in})
	it.queued.Add(block)
}

// grows reports whether in carries any binding above what the global
// env already holds. A back edge whose bindings have reached a fixpoint
// doesn't grow the env, so its target is not requeued; this is what
// bounds the work list on cyclic control flow.
func (it *Interpreter[L]) grows(in map[ir.Var]L) bool {
	for v, val := range in {
		existing, ok := it.env[v]
		if !ok || existing.Join(val) != existing {
			return true
		}
	}
	return false
}

// InterpreterError is the terminal failure state's payload: missing
// semantics, an unresolved operand, a failed propagation, a call with no
// callee, or a callee Frame handed to Resume without a return value. Once
// raised, the interpreter stays in the Errored state. Calling Step or
// Resume in the wrong state returns a plain error instead and leaves the
// state unchanged.
type InterpreterError struct {
	cause error
}

func (e *InterpreterError) Error() string { return e.cause.Error() }
func (e *InterpreterError) Unwrap() error { return e.cause }

func (it *Interpreter[L]) fail(err error) error {
	it.state = Errored
	it.err = &InterpreterError{cause: err}
	return it.err
}
