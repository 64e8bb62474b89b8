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

import "math"

// hmctsDecisionState tracks HMCTS's sequential-halving schedule at one
// decision node (spec.md §4.5.1): a shrinking survivor set and the
// per-survivor visit target for the current round.
type hmctsDecisionState struct {
	survivors   []uint64
	roundTarget int
}

func (*hmctsDecisionState) algoState() {}

// NewHMCTS returns the AlgoFactory for HMCTS: sequential halving above
// HMCTSBudgetThreshold, delegating to plain UCT below it (spec.md §4.5.1,
// "HMCTS" — the default HMCTSBudgetThreshold of 0 always delegates,
// per config.go's DefaultManagerConfig).
//
// The budget passed below a halving node is the round's per-action visit
// target scaled by the smallest transition probability among the chosen
// action's outcomes (see propagatedBudget). Every outcome receives that
// same budget; the budget is not split across outcomes by each one's own
// probability. Whether scaling by transition probability is sound once
// transitions are stochastic is an open question (DESIGN.md "Open
// Question resolutions" #2).
func NewHMCTS() AlgoFactory {
	bkp := uctBackup{}
	return AlgoFactory{
		Name:      "hmcts",
		Selection: hmctsSelection{},
		Backup:    bkp,
		Recommend: uctRecommend{},
		NewDecisionState: func(m *Manager, state State) AlgoState {
			return &hmctsDecisionState{}
		},
		NewChanceState: func(m *Manager, state State, action Action) AlgoState {
			return &uctChanceState{
				heuristic:    chanceHeuristic(m, state, action),
				pseudoTrials: float64(m.config.HeuristicPseudoTrials),
			}
		},
	}
}

type hmctsSelection struct{}

func (hmctsSelection) SelectAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	cfg := n.manager.config
	if cfg.HMCTSBudgetThreshold <= 0 || ctx.HMCTSRoundBudget <= cfg.HMCTSBudgetThreshold {
		return (uctSelection{}).SelectAction(n, ctx)
	}

	actions, err := n.ValidActions()
	if err != nil {
		return nil, err
	}
	st := n.Algo.(*hmctsDecisionState)
	if st.survivors == nil {
		st.survivors = make([]uint64, len(actions))
		for i, a := range actions {
			st.survivors[i] = a.Hash()
		}
		st.roundTarget = 1
	}

	byHash := make(map[uint64]Action, len(actions))
	for _, a := range actions {
		byHash[a.Hash()] = a
	}

	chosen, minVisits := pickLeastVisitedSurvivor(n, st, byHash)
	if chosen == nil {
		return (uctSelection{}).SelectAction(n, ctx)
	}

	if minVisits >= int64(st.roundTarget) && len(st.survivors) > 1 {
		halveSurvivors(n, st)
		st.roundTarget *= 2
	}

	ctx.HMCTSRoundBudget = propagatedBudget(n, chosen, st.roundTarget)
	return chosen, nil
}

func pickLeastVisitedSurvivor(n *DecisionNode, st *hmctsDecisionState, byHash map[uint64]Action) (Action, int64) {
	var chosen Action
	minVisits := int64(math.MaxInt64)
	for _, h := range st.survivors {
		a, ok := byHash[h]
		if !ok {
			continue
		}
		visits := int64(0)
		if child, ok := n.children[h]; ok {
			visits = child.Visits()
		}
		if visits < minVisits {
			minVisits, chosen = visits, a
		}
	}
	return chosen, minVisits
}

// halveSurvivors drops the bottom half of the current survivor set by
// value estimate, keeping at least one.
func halveSurvivors(n *DecisionNode, st *hmctsDecisionState) {
	type scored struct {
		hash  uint64
		value float64
	}
	scores := make([]scored, 0, len(st.survivors))
	for _, h := range st.survivors {
		v := math.Inf(-1)
		if child, ok := n.children[h]; ok {
			if cs, ok := child.Algo.(*uctChanceState); ok {
				v = cs.value(child.Visits())
			}
		}
		scores = append(scores, scored{hash: h, value: v})
	}
	for i := 0; i < len(scores); i++ {
		for j := i + 1; j < len(scores); j++ {
			if scores[j].value > scores[i].value {
				scores[i], scores[j] = scores[j], scores[i]
			}
		}
	}
	keep := (len(scores) + 1) / 2
	if keep < 1 {
		keep = 1
	}
	survivors := make([]uint64, keep)
	for i := 0; i < keep; i++ {
		survivors[i] = scores[i].hash
	}
	st.survivors = survivors
}

// propagatedBudget scales the current round's per-action visit target by
// the smallest probability among the chosen action's outcomes, rounded up
// and at least 1. The same value is returned whichever outcome is later
// sampled: there is no per-outcome split and no remainder rounding.
func propagatedBudget(n *DecisionNode, chosen Action, roundTarget int) int {
	child, ok := n.children[chosen.Hash()]
	if !ok {
		return roundTarget
	}
	dist, err := child.TransitionDistribution()
	if err != nil || len(dist) == 0 {
		return roundTarget
	}
	minProb := 1.0
	for _, op := range dist {
		if op.Prob < minProb {
			minProb = op.Prob
		}
	}
	budget := int(math.Ceil(float64(roundTarget) * minProb))
	if budget < 1 {
		budget = 1
	}
	return budget
}
