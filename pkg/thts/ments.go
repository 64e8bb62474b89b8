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

// NewMENTS returns the AlgoFactory for MENTS (maximum-entropy tree
// search, spec.md §4.5.2): chance nodes keep the same running-average Q
// estimate as UCT, but the value a decision node reports to its parent is
// the soft (log-sum-exp) value over its children rather than the max, and
// selection samples from a Boltzmann policy over that soft value instead
// of UCB1.
func NewMENTS() AlgoFactory {
	return newSoftFactory("ments", false)
}

// NewRENTS returns the AlgoFactory for RENTS (relative-entropy tree
// search, spec.md §4.5.2): identical to MENTS except the sampling
// distribution at each node is blended with the parent's selection
// distribution (TrialContext.RENTSParentDist), weighted by
// PriorPolicySearchWeight, discouraging the child from drifting far from
// what its parent already favored.
func NewRENTS() AlgoFactory {
	return newSoftFactory("rents", true)
}

func newSoftFactory(name string, useRENTS bool) AlgoFactory {
	return AlgoFactory{
		Name:      name,
		Selection: softSelection{useRENTS: useRENTS},
		Backup:    softBackup{},
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

// softSelection samples an action from a Boltzmann distribution over
// each action's Q-value, mixed with uniform exploration, per spec.md
// §4.5.2's "lambda = min(max_explore_prob, epsilon/log(N+1))" schedule.
type softSelection struct {
	useRENTS bool
}

func (s softSelection) SelectAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	actions, err := n.ValidActions()
	if err != nil {
		return nil, err
	}
	cfg := n.manager.config
	temp := computeDecayedTemp(cfg.TempDecayFn, cfg.Temp, cfg.TempDecayMinTemp, int(n.Visits()), cfg.TempDecayVisitsScale)

	probs := softmaxDist(n, actions, temp)
	if s.useRENTS && ctx.RENTSParentDist != nil && cfg.PriorPolicySearchWeight > 0 {
		probs = blendWithParent(actions, probs, ctx.RENTSParentDist, cfg.PriorPolicySearchWeight)
	}

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

	ctx.RENTSParentDist = NewActionDistribution(actions, probs)
	ctx.TENTSSelectedAction = chosen
	return chosen, nil
}

// softmaxDist returns a numerically-stable Boltzmann distribution over
// actions' Q-values at temperature temp, reading existing children's
// backed-up value or falling back to the heuristic seed for actions not
// yet expanded.
func softmaxDist(n *DecisionNode, actions []Action, temp float64) []float64 {
	qs := make([]float64, len(actions))
	maxQ := math.Inf(-1)
	for i, a := range actions {
		qs[i] = actionQValue(n, a)
		if qs[i] > maxQ {
			maxQ = qs[i]
		}
	}
	weights := make([]float64, len(actions))
	var sum float64
	for i, q := range qs {
		w := math.Exp((q - maxQ) / temp)
		weights[i] = w
		sum += w
	}
	if sum <= 0 {
		uniform := 1.0 / float64(len(actions))
		for i := range weights {
			weights[i] = uniform
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

func actionQValue(n *DecisionNode, a Action) float64 {
	child, ok := n.children[a.Hash()]
	if !ok {
		return chanceHeuristic(n.manager, n.state, a)
	}
	return child.Algo.(*uctChanceState).value(child.Visits())
}

// blendWithParent mixes probs with parentDist (looked up by action),
// falling back to a uniform weight for actions the parent distribution
// does not cover (e.g. the root).
func blendWithParent(actions []Action, probs []float64, parentDist ActionDistribution, weight float64) []float64 {
	out := make([]float64, len(probs))
	var sum float64
	for i, a := range actions {
		p := 1.0 / float64(len(actions))
		if ap, ok := parentDist.Get(a); ok {
			p = ap.Prob
		}
		out[i] = (1-weight)*probs[i] + weight*p
		sum += out[i]
	}
	if sum <= 0 {
		return probs
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sampleFromDist(actions []Action, probs []float64, rng *RNG) Action {
	u := rng.RandUniform()
	var cum float64
	for i, p := range probs {
		cum += p
		if u <= cum {
			return actions[i]
		}
	}
	return actions[len(actions)-1]
}

// softBackup mirrors uctBackup but aggregates a decision node's children
// via the soft (log-sum-exp) value instead of the max.
type softBackup struct{}

func (softBackup) BackupDecision(n *DecisionNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
}

func (softBackup) BackupChance(c *ChanceNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
	st := c.Algo.(*uctChanceState)
	children := c.ChildrenSnapshot()
	var soft float64
	if len(children) == 0 {
		soft = st.heuristic
	} else {
		for _, ch := range children {
			soft += ch.Prob * applyOpponentSign(ch.Node, softValue(ch.Node))
		}
	}
	reward := 0.0
	if len(after) > 0 {
		reward = after[0]
	}
	st.totalReturn += reward + soft
}

// softValue computes V_soft(s) = temp * log(sum_a exp(Q(s,a)/temp)) over
// d's valid actions (spec.md §4.5.2).
func softValue(d *DecisionNode) float64 {
	actions, err := d.ValidActions()
	if err != nil || len(actions) == 0 {
		return d.heuristicValue
	}
	cfg := d.manager.config
	temp := computeDecayedTemp(cfg.TempDecayFn, cfg.Temp, cfg.TempDecayMinTemp, int(d.Visits()), cfg.TempDecayVisitsScale)

	maxQ := math.Inf(-1)
	qs := make([]float64, len(actions))
	for i, a := range actions {
		qs[i] = actionQValue(d, a)
		if qs[i] > maxQ {
			maxQ = qs[i]
		}
	}
	var sum float64
	for _, q := range qs {
		sum += math.Exp((q - maxQ) / temp)
	}
	return temp*math.Log(sum) + maxQ
}

// softRecommend implements spec.md §6.5's recommend_action for
// MENTS/RENTS/TENTS: highest Q-value when MENTSRecommendMostVisited is
// false (the default), or most-visited (subject to
// RecommendVisitThreshold) when it is true.
type softRecommend struct{}

func (softRecommend) RecommendAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	children := n.ChildrenSnapshot()
	if len(children) == 0 {
		return nil, newInvariantViolation("softRecommend.RecommendAction", "no children to recommend from")
	}
	cfg := n.manager.config

	var best Action
	bestScore := math.Inf(-1)
	for _, ch := range children {
		if cfg.MENTSRecommendMostVisited {
			v := ch.Node.Visits()
			if int(v) < cfg.RecommendVisitThreshold {
				continue
			}
			if float64(v) > bestScore {
				bestScore, best = float64(v), ch.Action
			}
			continue
		}
		st := ch.Node.Algo.(*uctChanceState)
		if q := st.value(ch.Node.Visits()); q > bestScore {
			bestScore, best = q, ch.Action
		}
	}
	if best == nil {
		// Every child was below RecommendVisitThreshold; fall back to
		// the most visited one regardless.
		for _, ch := range children {
			if v := float64(ch.Node.Visits()); v > bestScore {
				bestScore, best = v, ch.Action
			}
		}
	}
	return best, nil
}
