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

func TestDentsChanceStateEmpiricalValueFallsBackToHeuristic(t *testing.T) {
	st := &dentsChanceState{heuristic: 3.5}
	if got := st.empiricalValue(); got != 3.5 {
		t.Errorf("empiricalValue() with no visits/pseudoTrials = %v, want heuristic 3.5", got)
	}
}

func TestDentsChanceStateEmpiricalValueAverages(t *testing.T) {
	st := &dentsChanceState{empiricalReturn: 9, empiricalCount: 3}
	if got := st.empiricalValue(); got != 3.0 {
		t.Errorf("empiricalValue() = %v, want 3.0", got)
	}
}

func TestDentsQValuePrefersDPOverEmpiricalWhenAvailable(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewDENTS()
	root := factory.NewRoot(m)

	root.Lock()
	right, _, _ := root.GetOrCreateChanceChild(NewIntAction(testChainRight))
	root.Unlock()

	st := right.Algo.(*dentsChanceState)
	st.empiricalReturn, st.empiricalCount = 100, 1
	st.dpValue, st.haveDP = -5, true

	got := dentsQValue(root, NewIntAction(testChainRight))
	if got != -5 {
		t.Errorf("dentsQValue() = %v, want dpValue -5 (DP takes priority once set)", got)
	}
}

// TestDentsBackupChanceWeightsChildrenByTransitionProbability proves
// BackupChance's empirical and DP channels both compute an expectation
// over every observation child weighted by its transition probability,
// rather than reading only the first child's value.
func TestDentsBackupChanceWeightsChildrenByTransitionProbability(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(0), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewDENTS()
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

	st := chance.Algo.(*dentsChanceState)
	variant := dentsBackup{variant: dentsVariant{decayInput: func(d *DecisionNode) int { return int(d.Visits()) }}}
	variant.BackupChance(chance, nil, []float64{-1}, -1, -1, NewTrialContext(0, nil, m.RNGFor(0)))

	want := -1 + (0.8*10 + 0.2*-10)
	if math.Abs(st.empiricalReturn-want) > 1e-9 {
		t.Errorf("empiricalReturn = %v, want %v (expectation over both children, not just the first)", st.empiricalReturn, want)
	}
	if !st.haveDP || math.Abs(st.dpValue-want) > 1e-9 {
		t.Errorf("dpValue = %v (haveDP=%v), want %v (expectation over both children, not just the first)", st.dpValue, st.haveDP, want)
	}
}

func TestDentsVariantsDecayInputBehaviorDiffers(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	dents := NewDENTS()
	dbments := NewDBMENTS()

	d := dents.buildDecision(m, NewIntState(2), 2, 2, nil)
	d.visits.Add(7)

	dentsSel := dents.Selection.(dentsSelection)
	dbSel := dbments.Selection.(dentsSelection)

	if got := dentsSel.variant.decayInput(d); got != 7 {
		t.Errorf("DENTS decayInput = %d, want visits=7", got)
	}
	if got := dbSel.variant.decayInput(d); got != 2 {
		t.Errorf("DB-MENTS decayInput = %d, want depth=2", got)
	}
}

func TestESTForcesEntropyRecommend(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.DENTSRecommendMode = "most_visited"
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewEST()
	root := factory.NewRoot(m)

	root.Lock()
	left, _, _ := root.GetOrCreateChanceChild(NewIntAction(testChainLeft))
	right, _, _ := root.GetOrCreateChanceChild(NewIntAction(testChainRight))
	root.Unlock()

	// left has many more visits but a worse DP value; EST must still
	// recommend by DP value regardless of the configured mode.
	left.visits.Store(100)
	left.Algo.(*dentsChanceState).dpValue, left.Algo.(*dentsChanceState).haveDP = -1, true
	right.visits.Store(1)
	right.Algo.(*dentsChanceState).dpValue, right.Algo.(*dentsChanceState).haveDP = 5, true

	action, err := root.RecommendAction(NewTrialContext(0, nil, m.RNGFor(0)))
	if err != nil {
		t.Fatalf("RecommendAction() error = %v", err)
	}
	if action.(IntAction).Value != testChainRight {
		t.Errorf("RecommendAction() = %v, want right (higher DP value; EST ignores most_visited mode)", action)
	}
}

func TestDentsRecommendModesSelectDifferentActions(t *testing.T) {
	cfg := DefaultManagerConfig()
	m, err := NewManager(newTestChainEnv(4), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	factory := NewDENTS()
	root := factory.NewRoot(m)

	root.Lock()
	left, _, _ := root.GetOrCreateChanceChild(NewIntAction(testChainLeft))
	right, _, _ := root.GetOrCreateChanceChild(NewIntAction(testChainRight))
	root.Unlock()

	left.visits.Store(50)
	left.Algo.(*dentsChanceState).empiricalReturn, left.Algo.(*dentsChanceState).empiricalCount = -50, 50
	right.visits.Store(1)
	right.Algo.(*dentsChanceState).empiricalReturn, right.Algo.(*dentsChanceState).empiricalCount = 10, 1

	root.manager.config.DENTSRecommendMode = "most_visited"
	action, err := root.RecommendAction(NewTrialContext(0, nil, m.RNGFor(0)))
	if err != nil {
		t.Fatalf("RecommendAction() error = %v", err)
	}
	if action.(IntAction).Value != testChainLeft {
		t.Errorf("RecommendAction(mode=most_visited) = %v, want left (more visits)", action)
	}

	root.manager.config.DENTSRecommendMode = "empirical"
	action, err = root.RecommendAction(NewTrialContext(0, nil, m.RNGFor(0)))
	if err != nil {
		t.Fatalf("RecommendAction() error = %v", err)
	}
	if action.(IntAction).Value != testChainRight {
		t.Errorf("RecommendAction(mode=empirical) = %v, want right (higher empirical value)", action)
	}
}
