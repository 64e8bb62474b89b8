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

// dentsChanceState composes the three backups spec.md §4.5.3 names for
// the DENTS family: an empirical running-average return (same shape as
// uctChanceState), a DP-style value overwritten (not averaged) on each
// backup, and the heuristic seed used before either has real data.
type dentsChanceState struct {
	empiricalReturn float64
	empiricalCount  float64
	dpValue         float64
	haveDP          bool
	heuristic       float64
	pseudoTrials    float64
}

func (*dentsChanceState) algoState() {}

func (s *dentsChanceState) empiricalValue() float64 {
	n := s.empiricalCount + s.pseudoTrials
	if n <= 0 {
		return s.heuristic
	}
	return (s.empiricalReturn + s.pseudoTrials*s.heuristic) / n
}

// dentsVariant selects the knobs that distinguish DENTS/IDENTS/EST/
// DB-MENTS, all of which share the same DP+empirical+entropy backup
// composition (spec.md §4.5.3) but differ in what drives the entropy
// temperature's decay.
type dentsVariant struct {
	name string
	// decayInput computes the value fed to EntropyTempDecayFn: visit
	// count for DENTS/IDENTS, depth for DB-MENTS (spec.md §4.5.3).
	decayInput func(d *DecisionNode) int
	// forceEntropyRecommend makes EST always recommend by DP value
	// regardless of DENTSRecommendMode, since entropy search has no
	// separate empirical/most-visited mode of its own.
	forceEntropyRecommend bool
}

// NewDENTS returns the AlgoFactory for DENTS: DP backup (a soft value
// computed top-down from the entropy-regularized Q estimates) composed
// with an empirical running-average Q and an entropy bonus, decayed by
// visit count (spec.md §4.5.3).
func NewDENTS() AlgoFactory {
	return newDentsFactory(dentsVariant{
		name:       "dents",
		decayInput: func(d *DecisionNode) int { return int(d.Visits()) },
	})
}

// NewIDENTS returns the AlgoFactory for IDENTS, the incremental variant
// of DENTS (spec.md §4.5.3). Its entropy temperature decays by the
// decision node's visit count, exactly as DENTS's does; the two
// factories differ only in name.
func NewIDENTS() AlgoFactory {
	return newDentsFactory(dentsVariant{
		name:       "idents",
		decayInput: func(d *DecisionNode) int { return int(d.Visits()) },
	})
}

// NewEST returns the AlgoFactory for EST (entropy search tree): the DP
// backup's entropy term is the sole driver of both selection and
// recommendation, with no separate empirical/most-visited mode.
func NewEST() AlgoFactory {
	return newDentsFactory(dentsVariant{
		name:                  "est",
		decayInput:            func(d *DecisionNode) int { return int(d.Visits()) },
		forceEntropyRecommend: true,
	})
}

// NewDBMENTS returns the AlgoFactory for DB-MENTS (depth-based MENTS):
// identical composition to DENTS, but the entropy temperature decays by
// tree depth instead of visit count, so sibling subtrees at the same
// depth share an entropy schedule regardless of how many trials visited
// them individually (spec.md §4.5.3).
func NewDBMENTS() AlgoFactory {
	return newDentsFactory(dentsVariant{
		name:       "db_ments",
		decayInput: func(d *DecisionNode) int { return d.depth },
	})
}

func newDentsFactory(v dentsVariant) AlgoFactory {
	return AlgoFactory{
		Name:      v.name,
		Selection: dentsSelection{variant: v},
		Backup:    dentsBackup{variant: v},
		Recommend: dentsRecommend{variant: v},
		NewDecisionState: func(m *Manager, state State) AlgoState { return &uctDecisionState{} },
		NewChanceState: func(m *Manager, state State, action Action) AlgoState {
			return &dentsChanceState{
				heuristic:    chanceHeuristic(m, state, action),
				pseudoTrials: float64(m.config.HeuristicPseudoTrials),
			}
		},
	}
}

func dentsQValue(n *DecisionNode, a Action) float64 {
	child, ok := n.children[a.Hash()]
	if !ok {
		return chanceHeuristic(n.manager, n.state, a)
	}
	st := child.Algo.(*dentsChanceState)
	if st.haveDP {
		return st.dpValue
	}
	return st.empiricalValue()
}

// dentsEntropyTemp resolves the entropy term's decayed temperature for
// decision node d, per its variant's decay input.
func dentsEntropyTemp(d *DecisionNode, v dentsVariant) float64 {
	cfg := d.manager.config
	return computeDecayedTemp(cfg.EntropyTempDecayFn, cfg.Temp, cfg.TempDecayMinTemp, v.decayInput(d), cfg.TempDecayVisitsScale)
}

type dentsSelection struct {
	variant dentsVariant
}

func (s dentsSelection) SelectAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	actions, err := n.ValidActions()
	if err != nil {
		return nil, err
	}
	cfg := n.manager.config
	temp := dentsEntropyTemp(n, s.variant)

	qs := make([]float64, len(actions))
	for i, a := range actions {
		qs[i] = dentsQValue(n, a)
	}
	probs := softmaxWeights(qs, temp)

	eps := cfg.effectiveEpsilon(n.IsRoot())
	lambda := 0.0
	if n.Visits() > 0 {
		lambda = math.Min(cfg.MaxExploreProb, eps/math.Log(float64(n.Visits())+1))
	}

	if ctx.RNG == nil {
		return actions[0], nil
	}
	if ctx.RNG.RandUniform() < lambda {
		return actions[ctx.RNG.RandInt(0, len(actions))], nil
	}
	return sampleFromDist(actions, probs, ctx.RNG), nil
}

func softmaxWeights(qs []float64, temp float64) []float64 {
	maxQ := math.Inf(-1)
	for _, q := range qs {
		if q > maxQ {
			maxQ = q
		}
	}
	weights := make([]float64, len(qs))
	var sum float64
	for i, q := range qs {
		w := math.Exp((q - maxQ) / temp)
		weights[i] = w
		sum += w
	}
	if sum <= 0 {
		uniform := 1.0 / float64(len(qs))
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

// dentsBackup composes the three updates spec.md §4.5.3 describes for
// the DENTS family: (1) empirical backup, a plain running average of the
// trial's return, identical in shape to UCT's; (2) DP backup, which
// overwrites dpValue with the current entropy-regularized soft value
// computed top-down from the decision child's action set; (3) entropy
// backup, folded into the DP value's temperature term rather than kept
// as a separate scalar, since it only ever contributes through
// dentsEntropyTemp.
type dentsBackup struct {
	variant dentsVariant
}

func (dentsBackup) BackupDecision(n *DecisionNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
}

func (b dentsBackup) BackupChance(c *ChanceNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
	st := c.Algo.(*dentsChanceState)
	reward := 0.0
	if len(after) > 0 {
		reward = after[0]
	}

	children := c.ChildrenSnapshot()
	var childValue float64
	var softChildValue float64
	if len(children) == 0 {
		childValue = st.heuristic
		softChildValue = st.heuristic
	} else {
		for _, ch := range children {
			childValue += ch.Prob * applyOpponentSign(ch.Node, dentsEmpiricalChildValue(ch.Node))
			softChildValue += ch.Prob * applyOpponentSign(ch.Node, dentsSoftValue(ch.Node, b.variant))
		}
	}

	st.empiricalReturn += reward + childValue
	st.empiricalCount++

	st.dpValue = reward + softChildValue
	st.haveDP = true
}

func dentsEmpiricalChildValue(d *DecisionNode) float64 {
	best := d.heuristicValue
	first := true
	for _, c := range d.children {
		st, ok := c.Algo.(*dentsChanceState)
		if !ok {
			continue
		}
		if v := st.empiricalValue(); first || v > best {
			best, first = v, false
		}
	}
	return best
}

// dentsSoftValue computes V(s) = temp*log(sum_a exp(Q(s,a)/temp)) using
// each action's current DP value (spec.md §4.5.3's "DP backup").
func dentsSoftValue(d *DecisionNode, v dentsVariant) float64 {
	actions, err := d.ValidActions()
	if err != nil || len(actions) == 0 {
		return d.heuristicValue
	}
	temp := dentsEntropyTemp(d, v)
	maxQ := math.Inf(-1)
	qs := make([]float64, len(actions))
	for i, a := range actions {
		qs[i] = dentsQValue(d, a)
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

// dentsRecommend implements spec.md §6.5's recommend_action across the
// DENTS family, dispatching on DENTSRecommendMode ("dp", "most_visited",
// "empirical"); EST always recommends by DP value.
type dentsRecommend struct {
	variant dentsVariant
}

func (r dentsRecommend) RecommendAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	children := n.ChildrenSnapshot()
	if len(children) == 0 {
		return nil, newInvariantViolation("dentsRecommend.RecommendAction", "no children to recommend from")
	}

	mode := n.manager.config.DENTSRecommendMode
	if r.variant.forceEntropyRecommend {
		mode = "dp"
	}

	var best Action
	bestScore := math.Inf(-1)
	for _, ch := range children {
		st := ch.Node.Algo.(*dentsChanceState)
		var score float64
		switch mode {
		case "most_visited":
			score = float64(ch.Node.Visits())
		case "empirical":
			score = st.empiricalValue()
		default: // "dp"
			if st.haveDP {
				score = st.dpValue
			} else {
				score = st.heuristic
			}
		}
		if score > bestScore {
			bestScore, best = score, ch.Action
		}
	}
	return best, nil
}
