// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package envs

import (
	"testing"

	"github.com/AleutianAI/thts/pkg/thts"
)

func TestNimInitialStateIsDefaultPile(t *testing.T) {
	g := NewNim(3)
	if g.InitialState().(thts.IntState).Value != pileSizeDefault {
		t.Errorf("InitialState() = %v, want %d", g.InitialState(), pileSizeDefault)
	}
}

func TestNimIsSinkAtEmptyPile(t *testing.T) {
	g := NewNim(3)
	if g.IsSink(thts.NewIntState(1)) {
		t.Errorf("IsSink(1) = true, want false")
	}
	if !g.IsSink(thts.NewIntState(0)) {
		t.Errorf("IsSink(0) = false, want true")
	}
}

func TestNimValidActionsCappedByRemainingStones(t *testing.T) {
	g := NewNim(5)
	got := g.ValidActions(thts.NewIntState(2))
	if len(got) != 2 {
		t.Fatalf("ValidActions(2 stones left, MaxTake=5) = %d actions, want 2 (can't take more than remain)", len(got))
	}
	for i, a := range got {
		if a.(thts.IntAction).Value != i+1 {
			t.Errorf("ValidActions()[%d] = %v, want take-%d", i, a, i+1)
		}
	}
}

func TestNimValidActionsCappedByMaxTake(t *testing.T) {
	g := NewNim(2)
	got := g.ValidActions(thts.NewIntState(10))
	if len(got) != 2 {
		t.Errorf("ValidActions(10 stones, MaxTake=2) = %d actions, want 2", len(got))
	}
}

func TestNimValidActionsEmptyAtSink(t *testing.T) {
	g := NewNim(3)
	if got := g.ValidActions(thts.NewIntState(0)); got != nil {
		t.Errorf("ValidActions(0 stones) = %v, want nil", got)
	}
}

func TestNimTakeReducesPileAndClampsAtZero(t *testing.T) {
	g := NewNim(5)
	dist, err := g.TransitionDistribution(thts.NewIntState(3), thts.NewIntAction(5))
	if err != nil {
		t.Fatalf("TransitionDistribution() error = %v", err)
	}
	for _, op := range dist {
		if op.Observation.(thts.IntState).Value != 0 {
			t.Errorf("taking 5 from a pile of 3 = %v, want clamped to 0", op.Observation)
		}
	}
}

func TestNimRewardPaysOnlyToTheMoverEmptyingThePile(t *testing.T) {
	g := NewNim(3)
	if got := g.Reward(thts.NewIntState(2), thts.NewIntAction(2), thts.NewIntState(0)); got != 1 {
		t.Errorf("Reward(emptying the pile) = %v, want 1", got)
	}
	if got := g.Reward(thts.NewIntState(5), thts.NewIntAction(2), thts.NewIntState(3)); got != 0 {
		t.Errorf("Reward(non-terminal move) = %v, want 0", got)
	}
}
