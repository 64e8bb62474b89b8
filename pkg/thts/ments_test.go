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
	"math"
	"testing"
)

func TestSoftmaxDistSumsToOne(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewMENTS()
	root := factory.NewRoot(m)

	actions := []Action{NewIntAction(testChainLeft), NewIntAction(testChainRight)}
	probs := softmaxDist(root, actions, 1.0)

	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("softmaxDist sums to %v, want 1.0", sum)
	}
	for _, p := range probs {
		if p <= 0 {
			t.Errorf("softmaxDist produced non-positive probability %v", p)
		}
	}
}

func TestSoftmaxDistPrefersHigherQValue(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Heuristic = func(state State, action Action) float64 {
		if action.(IntAction).Value == testChainRight {
			return 10
		}
		return -10
	}
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewMENTS()
	root := factory.NewRoot(m)

	actions := []Action{NewIntAction(testChainLeft), NewIntAction(testChainRight)}
	probs := softmaxDist(root, actions, 1.0)

	if probs[1] <= probs[0] {
		t.Errorf("softmaxDist(left)=%v softmaxDist(right)=%v, want right to dominate given its much higher heuristic", probs[0], probs[1])
	}
}

func TestBlendWithParentFallsBackToUniformForUncoveredActions(t *testing.T) {
	actions := []Action{NewIntAction(0), NewIntAction(1)}
	probs := []float64{0.5, 0.5}
	empty := ActionDistribution{}

	out := blendWithParent(actions, probs, empty, 0.5)

	var sum float64
	for _, p := range out {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("blendWithParent sums to %v, want 1.0", sum)
	}
}

func TestBlendWithParentPullsTowardParentDistribution(t *testing.T) {
	actions := []Action{NewIntAction(0), NewIntAction(1)}
	probs := []float64{0.5, 0.5}
	parent := NewActionDistribution(actions, []float64{0.9, 0.1})

	out := blendWithParent(actions, probs, parent, 1.0)

	if out[0] <= probs[0] {
		t.Errorf("blendWithParent(weight=1.0) should fully adopt the parent distribution: got %v, parent favored action 0 at 0.9", out[0])
	}
}

func TestSoftValueFallsBackToHeuristicWithNoValidActions(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewMENTS()
	sink := factory.buildDecision(m, NewIntState(4), 4, 4, nil)

	if got := softValue(sink); got != sink.heuristicValue {
		t.Errorf("softValue(sink) = %v, want heuristicValue %v", got, sink.heuristicValue)
	}
}

func TestMENTSBackupAccumulatesSoftValue(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.MCTSMode = false
	cfg.MaxDepth = 20
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewMENTS()
	root := factory.NewRoot(m)

	rng := m.RNGFor(0)
	for i := 0; i < 300; i++ {
		ctx := NewTrialContext(0, nil, rng)
		path, err := runSelectionPhase(m, root, ctx, rng)
		if err != nil {
			t.Fatalf("runSelectionPhase() error = %v", err)
		}
		runBackupPhase(path, ctx)
	}

	right, err := root.GetChild(NewIntAction(testChainRight))
	if err != nil {
		t.Fatalf("GetChild(right) error = %v", err)
	}
	if right.Visits() == 0 {
		t.Errorf("right.Visits() = 0 after 300 trials, want > 0")
	}
}

// TestSoftBackupChanceWeightsChildrenByTransitionProbability proves
// BackupChance computes an expectation over every observation child
// weighted by its transition probability, rather than reading only the
// first child's soft value.
func TestSoftBackupChanceWeightsChildrenByTransitionProbability(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(0), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewMENTS()
	chance := factory.buildChance(m, NewIntState(0), NewIntAction(testChainRight), 0, 0, nil)

	obsA := NewIntState(1)
	obsB := NewIntState(2)
	childA := factory.buildDecision(m, obsA, 1, 1, chance)
	childB := factory.buildDecision(m, obsB, 1, 1, chance)
	childA.heuristicValue = 10
	childB.heuristicValue = -10

	chance.children = map[uint64]*DecisionNode{obsA.Hash(): childA, obsB.Hash(): childB}
	chance.obsValue = map[uint64]Observation{obsA.Hash(): obsA, obsB.Hash(): obsB}
	chance.transDist = map[uint64]ObservationProb{
		obsA.Hash(): {Observation: obsA, Prob: 0.8},
		obsB.Hash(): {Observation: obsB, Prob: 0.2},
	}
	chance.haveTransDist = true

	st := chance.Algo.(*uctChanceState)
	softBackup{}.BackupChance(chance, nil, []float64{-1}, -1, -1, NewTrialContext(0, nil, m.RNGFor(0)))

	want := -1 + (0.8*10 + 0.2*-10)
	if math.Abs(st.totalReturn-want) > 1e-9 {
		t.Errorf("BackupChance totalReturn = %v, want %v (expectation over both children, not just the first)", st.totalReturn, want)
	}
}

func TestSoftRecommendRejectsEmptyChildren(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewMENTS()
	root := factory.NewRoot(m)

	_, err = root.RecommendAction(NewTrialContext(0, nil, m.RNGFor(0)))
	if err == nil {
		t.Errorf("RecommendAction() on childless root error = nil, want error")
	}
}
