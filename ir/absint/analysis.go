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
	"github.com/pkg/errors"

	"github.com/erigontech/abstraps/ir"
	"github.com/erigontech/abstraps/obs"
)

// InterpreterPass is a pass.AnalysisPass that runs an Interpreter to
// completion over the Operation it's asked to analyze and caches the
// resulting Frame. Its AnalysisKey is a Signature, so identical
// (symbol, initial-params) requests hit one AnalysisManager cache
// entry.
//
// InterpreterPass itself does not drive inter-procedural suspension:
// an Operation whose body calls into another function-like Operation
// needs a caller that drives Interpreter.Step/Pending/Resume directly,
// resolving each Waiting state against its own AnalysisManager.
type InterpreterPass[L Element[L]] struct {
	Key Signature[L]
}

// Run implements pass.AnalysisPass.
func (p InterpreterPass[L]) Run(op *ir.Operation) (any, error) {
	obs.Logger().Debugw("absint: analyzing", "symbol", p.Key.Symbol)
	it, err := New[L](op, p.Key.Params)
	if err != nil {
		return nil, errors.WithMessage(err, "absint")
	}
	frame, err := it.Run()
	if err != nil {
		return nil, errors.WithMessage(err, "absint")
	}
	return frame, nil
}
