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

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestStripedTableGetOrInsertCreatesOnce(t *testing.T) {
	tbl := newStripedTable[dNodeKey, int](4)
	key := dNodeKey{timestep: 1, obsHash: 42}

	var constructions int64
	construct := func() int {
		atomic.AddInt64(&constructions, 1)
		return 7
	}

	v, created := tbl.GetOrInsert(key, key.obsHash, construct)
	if !created {
		t.Errorf("first GetOrInsert: created = false, want true")
	}
	if v != 7 {
		t.Errorf("first GetOrInsert: v = %d, want 7", v)
	}

	v2, created2 := tbl.GetOrInsert(key, key.obsHash, construct)
	if created2 {
		t.Errorf("second GetOrInsert: created = true, want false")
	}
	if v2 != 7 {
		t.Errorf("second GetOrInsert: v = %d, want 7", v2)
	}
	if atomic.LoadInt64(&constructions) != 1 {
		t.Errorf("constructions = %d, want 1", constructions)
	}
}

func TestStripedTableGetOrInsertConcurrentAtMostOnce(t *testing.T) {
	tbl := newStripedTable[dNodeKey, int](8)
	key := dNodeKey{timestep: 3, obsHash: 99}

	const numGoroutines = 200
	var constructions int64
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([]int, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			v, _ := tbl.GetOrInsert(key, key.obsHash, func() int {
				return int(atomic.AddInt64(&constructions, 1))
			})
			results[idx] = v
		}(i)
	}
	wg.Wait()

	if constructions != 1 {
		t.Errorf("constructions = %d, want exactly 1 across %d concurrent callers", constructions, numGoroutines)
	}
	for i, v := range results {
		if v != 1 {
			t.Errorf("results[%d] = %d, want 1 (every caller should observe the single constructed value)", i, v)
		}
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestStripedTableDistinctKeysBothConstruct(t *testing.T) {
	tbl := newStripedTable[dNodeKey, int](4)
	k1 := dNodeKey{timestep: 1, obsHash: 1}
	k2 := dNodeKey{timestep: 1, obsHash: 2}

	v1, c1 := tbl.GetOrInsert(k1, k1.obsHash, func() int { return 10 })
	v2, c2 := tbl.GetOrInsert(k2, k2.obsHash, func() int { return 20 })

	if !c1 || !c2 {
		t.Errorf("both distinct keys should report created=true, got c1=%v c2=%v", c1, c2)
	}
	if v1 != 10 || v2 != 20 {
		t.Errorf("v1=%d v2=%d, want 10 and 20", v1, v2)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestStripedTableClear(t *testing.T) {
	tbl := newStripedTable[cNodeKey, int](2)
	key := cNodeKey{timestep: 0, stateHash: 1, actHash: 2}
	tbl.GetOrInsert(key, key.stateHash^key.actHash, func() int { return 1 })

	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 before Clear", tbl.Len())
	}

	tbl.Clear()

	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Clear", tbl.Len())
	}

	_, created := tbl.GetOrInsert(key, key.stateHash^key.actHash, func() int { return 2 })
	if !created {
		t.Errorf("GetOrInsert after Clear: created = false, want true (table should be empty)")
	}
}

func TestNewStripedTableClampsStripeCount(t *testing.T) {
	tbl := newStripedTable[dNodeKey, int](0)
	if len(tbl.stripes) != 1 {
		t.Errorf("len(stripes) = %d, want 1 when constructed with numStripes=0", len(tbl.stripes))
	}
}
