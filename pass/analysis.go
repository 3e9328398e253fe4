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
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/erigontech/abstraps/ir"
)

// AnalysisKey is a hashable, comparable identity for a cached analysis
// result. A Signature (see the absint package) is one AnalysisKey
// implementation; dialects can define their own.
type AnalysisKey interface {
	Equal(other AnalysisKey) bool
	Hash() uint64
}

// AnalysisPass computes the value an AnalysisManager caches under a
// given key. Implementations must be pure with respect to op: running
// the same pass twice on the same Operation must produce equal results.
type AnalysisPass interface {
	Run(op *ir.Operation) (any, error)
}

// AnalysisUnavailable is returned by Ask when no cached value exists for
// a key.
type AnalysisUnavailable struct {
	Key AnalysisKey
}

func (e *AnalysisUnavailable) Error() string {
	return fmt.Sprintf("pass: no cached analysis for key %v", e.Key)
}

type cacheEntry struct {
	key   AnalysisKey
	value any
}

// AnalysisManager caches AnalysisPass results, keyed by AnalysisKey. Per
// the framework's explicit-invalidation contract, a cached result is
// never auto-evicted on a mutation; a pass that changes the Operation
// underneath a cached analysis must call Evict itself.
type AnalysisManager struct {
	mu     sync.RWMutex
	cache  *lru.Cache[uint64, []cacheEntry]
	single singleflight.Group
}

// NewAnalysisManager returns an AnalysisManager backed by an LRU of the
// given capacity. A capacity of 0 uses a reasonable default.
func NewAnalysisManager(capacity int) *AnalysisManager {
	if capacity <= 0 {
		capacity = 256
	}
	c, err := lru.New[uint64, []cacheEntry](capacity)
	if err != nil {
		panic(err)
	}
	return &AnalysisManager{cache: c}
}

// Ask returns the cached value for key without computing it, taking
// only a read lock. It fails with AnalysisUnavailable on a cache miss.
func (am *AnalysisManager) Ask(key AnalysisKey) (any, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	entries, ok := am.cache.Get(key.Hash())
	if !ok {
		return nil, &AnalysisUnavailable{Key: key}
	}
	for _, e := range entries {
		if e.key.Equal(key) {
			return e.value, nil
		}
	}
	return nil, &AnalysisUnavailable{Key: key}
}

// Analyze returns the cached value for key, computing and caching it
// with pass if absent. Concurrent Analyze calls for the same key
// collapse into one pass.Run invocation via singleflight.
func (am *AnalysisManager) Analyze(key AnalysisKey, op *ir.Operation, p AnalysisPass) (any, error) {
	if v, err := am.Ask(key); err == nil {
		return v, nil
	}
	sfKey := fmt.Sprintf("%x", key.Hash())
	res, err, _ := am.single.Do(sfKey, func() (any, error) {
		if v, err := am.Ask(key); err == nil {
			return cacheEntry{key: key, value: v}, nil
		}
		result, err := p.Run(op)
		if err != nil {
			return cacheEntry{key: key}, errors.Wrap(err, "pass: analysis failed")
		}
		am.mu.Lock()
		defer am.mu.Unlock()
		entries, _ := am.cache.Get(key.Hash())
		entries = append(entries, cacheEntry{key: key, value: result})
		am.cache.Add(key.Hash(), entries)
		return cacheEntry{key: key, value: result}, nil
	})
	e := res.(cacheEntry)
	if !e.key.Equal(key) {
		// The flight that answered was for a different key with the same hash.
		return am.Analyze(key, op, p)
	}
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// Evict drops any cached value for key.
func (am *AnalysisManager) Evict(key AnalysisKey) {
	am.mu.Lock()
	defer am.mu.Unlock()
	entries, ok := am.cache.Get(key.Hash())
	if !ok {
		return
	}
	filtered := entries[:0]
	for _, e := range entries {
		if !e.key.Equal(key) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		am.cache.Remove(key.Hash())
		return
	}
	am.cache.Add(key.Hash(), filtered)
}
