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
	"sort"
)

// NewTENTS returns the AlgoFactory for TENTS (Tsallis-entropy tree
// search, spec.md §4.5.2): like MENTS, but the selection distribution is
// a sparsemax projection instead of a softmax, so only a small support
// set of actions ever receives non-zero sampling probability, and the
// backed-up value uses the matching Tsallis-entropy closed form instead
// of log-sum-exp.
func NewTENTS() AlgoFactory {
	return AlgoFactory{
		Name:      "tents",
		Selection: tentsSelection{},
		Backup:    tentsBackup{},
		Recommend: softRecommend{},
		NewDecisionState: func(m *Manager, state State) AlgoState { return &uctDecisionState{} },
		NewChanceState: func(m *Manager, state State, action Action) AlgoState {
			return &uctChanceState{
				heuristic:    chanceHeuristic(m, state, action),
				pseudoTrials: float64(m.config.HeuristicPseudoTrials),
			}
		},
	}
}

type tentsSelection struct{}

func (tentsSelection) SelectAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	actions, err := n.ValidActions()
	if err != nil {
		return nil, err
	}
	cfg := n.manager.config
	temp := computeDecayedTemp(cfg.TempDecayFn, cfg.Temp, cfg.TempDecayMinTemp, int(n.Visits()), cfg.TempDecayVisitsScale)

	qs := make([]float64, len(actions))
	for i, a := range actions {
		qs[i] = actionQValue(n, a)
	}
	probs, _ := sparsemax(qs, temp)

	eps := cfg.effectiveEpsilon(n.IsRoot())
	lambda := 0.0
	if n.Visits() > 0 {
		lambda = math.Min(cfg.MaxExploreProb, eps/math.Log(float64(n.Visits())+1))
	}

	var chosen Action
	if ctx.RNG == nil {
		chosen = actions[0]
	} else if ctx.RNG.RandUniform() < lambda {
		chosen = actions[ctx.RNG.RandInt(0, len(actions))]
	} else {
		chosen = sampleFromDist(actions, probs, ctx.RNG)
	}
	ctx.TENTSSelectedAction = chosen
	return chosen, nil
}

// sparsemax projects z onto the probability simplex (Martins & Astudillo
// 2016), returning the projected distribution and the threshold tau used
// to compute it. Unlike softmax, entries with z_i <= tau receive exactly
// zero probability, giving TENTS its sparse support set.
func sparsemax(z []float64, temp float64) (probs []float64, tau float64) {
	n := len(z)
	scaled := make([]float64, n)
	for i, v := range z {
		scaled[i] = v / temp
	}
	sorted := append([]float64(nil), scaled...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var cumsum float64
	k := 0
	for i, v := range sorted {
		cumsum += v
		if 1+float64(i+1)*v > cumsum {
			k = i + 1
		}
	}
	var topSum float64
	for i := 0; i < k; i++ {
		topSum += sorted[i]
	}
	tau = (topSum - 1) / float64(k)

	probs = make([]float64, n)
	for i, v := range scaled {
		if p := v - tau; p > 0 {
			probs[i] = p
		}
	}
	return probs, tau
}

type tentsBackup struct{}

func (tentsBackup) BackupDecision(n *DecisionNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
}

func (tentsBackup) BackupChance(c *ChanceNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
	st := c.Algo.(*uctChanceState)
	children := c.ChildrenSnapshot()
	var tsallis float64
	if len(children) == 0 {
		tsallis = st.heuristic
	} else {
		for _, ch := range children {
			tsallis += ch.Prob * applyOpponentSign(ch.Node, tsallisValue(ch.Node))
		}
	}
	reward := 0.0
	if len(after) > 0 {
		reward = after[0]
	}
	st.totalReturn += reward + tsallis
}

// tsallisValue computes the sparsemax closed-form value V(s) = p*·Q -
// temp*0.5*(||p*||^2 - 1), where p* is the sparsemax projection of Q/temp
// (spec.md §4.5.2, TENTS).
func tsallisValue(d *DecisionNode) float64 {
	actions, err := d.ValidActions()
	if err != nil || len(actions) == 0 {
		return d.heuristicValue
	}
	cfg := d.manager.config
	temp := computeDecayedTemp(cfg.TempDecayFn, cfg.Temp, cfg.TempDecayMinTemp, int(d.Visits()), cfg.TempDecayVisitsScale)

	qs := make([]float64, len(actions))
	for i, a := range actions {
		qs[i] = actionQValue(d, a)
	}
	probs, _ := sparsemax(qs, temp)

	var dotQP, sumSq float64
	for i, p := range probs {
		dotQP += p * qs[i]
		sumSq += p * p
	}
	return dotQP - temp*0.5*(sumSq-1)
}
