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
	"fmt"
	"hash/fnv"

	"github.com/erigontech/abstraps/pass"
)

// Signature is the AnalysisKey the interpreter's result is cached
// under: a function-like symbol name plus the initial lattice values
// of its block-0 parameters. Two Signatures with equal Symbol and
// equal Params hit the same AnalysisManager cache entry.
type Signature[L comparable] struct {
	Symbol string
	Params []Option[L]
}

var _ pass.AnalysisKey = Signature[int]{}

// Hash implements pass.AnalysisKey. It is a plain, non-cryptographic
// FNV-1a digest of the symbol and parameter values; collisions are
// resolved by Equal inside AnalysisManager's bucket scan.
func (s Signature[L]) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Symbol))
	for _, p := range s.Params {
		if v, ok := p.Get(); ok {
			fmt.Fprintf(h, "|%v", v)
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// Equal implements pass.AnalysisKey.
func (s Signature[L]) Equal(other pass.AnalysisKey) bool {
	o, ok := other.(Signature[L])
	if !ok || s.Symbol != o.Symbol || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		av, aok := s.Params[i].Get()
		bv, bok := o.Params[i].Get()
		if aok != bok {
			return false
		}
		if aok && av != bv {
			return false
		}
	}
	return true
}

func (s Signature[L]) String() string {
	return fmt.Sprintf("%s%v", s.Symbol, s.Params)
}
