// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package thts

import "sync"

// dNodeKey identifies a decision node for transposition-table purposes:
// (decision_timestep, Observation) per spec.md §3.
type dNodeKey struct {
	timestep int
	obsHash  uint64
}

// cNodeKey identifies a chance node for transposition-table purposes:
// (decision_timestep, State, Action) per spec.md §3.
type cNodeKey struct {
	timestep  int
	stateHash uint64
	actHash   uint64
}

// stripedTable is a hash-sharded map protected by a fixed-size array of
// mutexes, one per stripe (spec.md §3/§4.3: "stripe of locks
// (hash(key) mod N)"). It provides at-most-one-construction-per-key
// semantics via GetOrInsert, guaranteeing the universal invariant #2 of
// spec.md §8: no node is constructed twice for the same transposition
// key across any number of concurrent threads.
type stripedTable[K comparable, V any] struct {
	stripes []sync.Mutex
	data    map[K]V
	mu      sync.RWMutex // protects the data map's structure across stripes
}

func newStripedTable[K comparable, V any](numStripes int) *stripedTable[K, V] {
	if numStripes < 1 {
		numStripes = 1
	}
	return &stripedTable[K, V]{
		stripes: make([]sync.Mutex, numStripes),
		data:    make(map[K]V),
	}
}

func (t *stripedTable[K, V]) stripeFor(h uint64) *sync.Mutex {
	return &t.stripes[h%uint64(len(t.stripes))]
}

// GetOrInsert looks up key under its stripe-lock; if absent, calls
// construct() exactly once and inserts the result, per the child
// construction protocol of spec.md §4.3 step 3. The stripe-lock is held
// for the duration of construct(), which must not itself attempt to
// acquire the same table's lock (construct() should only allocate the
// node, not recurse into tree construction).
func (t *stripedTable[K, V]) GetOrInsert(key K, h uint64, construct func() V) (v V, created bool) {
	stripe := t.stripeFor(h)
	stripe.Lock()
	defer stripe.Unlock()

	t.mu.RLock()
	if existing, ok := t.data[key]; ok {
		t.mu.RUnlock()
		return existing, false
	}
	t.mu.RUnlock()

	v = construct()

	t.mu.Lock()
	t.data[key] = v
	t.mu.Unlock()
	return v, true
}

// Len returns the number of entries currently stored.
func (t *stripedTable[K, V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.data)
}

// Clear empties the table. Called when the owning Manager's query ends
// (spec.md §3: "Transposition tables hold shared ownership and must be
// explicitly torn down when the query ends").
func (t *stripedTable[K, V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = make(map[K]V)
}
