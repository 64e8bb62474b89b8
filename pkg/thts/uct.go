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

// uctChanceState is the scalar bundle UCT/PUCT attach to a chance node:
// the running sum of backed-up returns, plus the heuristic seed and
// pseudo-trial count used to blend it in before real visits accumulate
// (spec.md §4.5.1 "heuristic_pseudo_trials").
type uctChanceState struct {
	totalReturn  float64
	heuristic    float64
	pseudoTrials float64
	priorProb    float64 // PUCT's P(a|s); unused by plain UCT
}

func (*uctChanceState) algoState() {}

// value returns the current Q-value estimate for the chance node that
// owns this state, blending in the heuristic seed for pseudoTrials
// "phantom" visits.
func (s *uctChanceState) value(visits int64) float64 {
	n := float64(visits) + s.pseudoTrials
	if n <= 0 {
		return s.heuristic
	}
	return (s.totalReturn + s.pseudoTrials*s.heuristic) / n
}

type uctDecisionState struct{}

func (*uctDecisionState) algoState() {}

func (*uctDecisionState) prettyValue() float64 { return 0 }

// NewUCT returns the AlgoFactory for plain UCT (UCB1 selection over an
// average-return backup), spec.md §4.5.1.
func NewUCT() AlgoFactory {
	sel := uctSelection{usePUCT: false}
	bkp := uctBackup{}
	rec := uctRecommend{}
	return AlgoFactory{
		Name:      "uct",
		Selection: sel,
		Backup:    bkp,
		Recommend: rec,
		NewDecisionState: func(m *Manager, state State) AlgoState { return &uctDecisionState{} },
		NewChanceState: func(m *Manager, state State, action Action) AlgoState {
			return &uctChanceState{
				heuristic:    chanceHeuristic(m, state, action),
				pseudoTrials: float64(m.config.HeuristicPseudoTrials),
			}
		},
	}
}

// NewPUCT returns the AlgoFactory for PUCT, which adds a PriorFunc-
// weighted exploration bonus to UCT's selection rule (spec.md §4.5.1
// "AlphaZero-style variant").
func NewPUCT() AlgoFactory {
	sel := uctSelection{usePUCT: true}
	bkp := uctBackup{}
	rec := uctRecommend{}
	return AlgoFactory{
		Name:      "puct",
		Selection: sel,
		Backup:    bkp,
		Recommend: rec,
		NewDecisionState: func(m *Manager, state State) AlgoState { return &uctDecisionState{} },
		NewChanceState: func(m *Manager, state State, action Action) AlgoState {
			prior := 1.0
			if m.config.Prior != nil {
				if p, ok := m.config.Prior(state).Get(action); ok {
					prior = p
				}
			}
			return &uctChanceState{
				heuristic:    chanceHeuristic(m, state, action),
				pseudoTrials: float64(m.config.HeuristicPseudoTrials),
				priorProb:    prior,
			}
		},
	}
}

// uctSelection implements UCB1 (and, when usePUCT, the PUCT variant) over
// the decision node's valid actions (spec.md §4.5.1).
type uctSelection struct {
	usePUCT bool
}

func (s uctSelection) SelectAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	actions, err := n.ValidActions()
	if err != nil {
		return nil, err
	}
	cfg := n.manager.config

	if cfg.UCTEpsilonExploration > 0 && ctx.RNG != nil && ctx.RNG.RandUniform() < cfg.UCTEpsilonExploration {
		return actions[ctx.RNG.RandInt(0, len(actions))], nil
	}

	parentVisits := float64(n.Visits())
	bias := cfg.UCBBias
	if bias < 0 {
		bias = autoBias(n, cfg.AutoBiasMinBias)
	}

	var best Action
	bestScore := math.Inf(-1)
	var unvisited []Action
	for _, a := range actions {
		child, ok := n.children[a.Hash()]
		if !ok {
			unvisited = append(unvisited, a)
			continue
		}
		st := child.Algo.(*uctChanceState)
		visits := child.Visits()
		q := st.value(visits)

		var score float64
		if s.usePUCT {
			score = q + bias*st.priorProb*math.Sqrt(parentVisits)/(1+float64(visits))
		} else {
			if visits == 0 {
				score = math.Inf(1)
			} else {
				score = q + bias*math.Sqrt(math.Log(math.Max(parentVisits, 1))/float64(visits))
			}
		}
		if score > bestScore {
			bestScore = score
			best = a
		}
	}

	if len(unvisited) > 0 {
		if ctx.RNG != nil {
			return unvisited[ctx.RNG.RandInt(0, len(unvisited))], nil
		}
		return unvisited[0], nil
	}
	if best == nil {
		return nil, newInvariantViolation("uctSelection.SelectAction", "no actions to select from")
	}
	return best, nil
}

// autoBias estimates a UCB exploration bias from the spread of backed-up
// values seen so far at this node's children, per spec.md §4.5.1's
// "use_auto_bias" option — falling back to minBias before any spread has
// been observed.
func autoBias(n *DecisionNode, minBias float64) float64 {
	var maxV, minV float64
	first := true
	for _, c := range n.children {
		st, ok := c.Algo.(*uctChanceState)
		if !ok {
			continue
		}
		v := st.value(c.Visits())
		if first {
			maxV, minV, first = v, v, false
			continue
		}
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	}
	if first {
		return minBias
	}
	spread := maxV - minV
	if spread < minBias {
		return minBias
	}
	return spread
}

// uctBackup implements the average-return backup shared by UCT and PUCT:
// each chance node accumulates the trial's realized return from that node
// onward (see BackupChance for the two-player sign flip); decision nodes
// hold no aggregate of their own since RecommendAction/autoBias read
// straight from children.
type uctBackup struct{}

func (uctBackup) BackupDecision(n *DecisionNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
}

// BackupChance updates a chance node's running return using the trial's
// realized return from this chance node to the end of the trial
// (total_return_after), the same empirical-mean backup UCT's value()
// divides out over visits — not a value recomputed from its decision
// children (spec.md §4.5.1; original_source/.../emp_node.h's
// backup_emp). Sign-flipped when the acting player at this chance node is
// the opponent (spec.md §4.5.4). Rewards are undiscounted, matching
// spec.md §2's MDP scope.
func (uctBackup) BackupChance(c *ChanceNode, before, after []float64, totalAfter, total float64, ctx *TrialContext) {
	st := c.Algo.(*uctChanceState)
	st.totalReturn += applyOpponentSignForChild(c, totalAfter)
}

// applyOpponentSignForChild flips value's sign when c's decision children
// belong to the opponent (spec.md §4.5.4): every child shares the same
// timestep so the first one's sign suffices.
func applyOpponentSignForChild(c *ChanceNode, value float64) float64 {
	for _, d := range c.children {
		return applyOpponentSign(d, value)
	}
	return value
}

// uctRecommend implements spec.md §6.5's recommend_action for UCT/PUCT:
// most-visited by default, or highest-value when
// UCTRecommendMostVisited is false.
type uctRecommend struct{}

func (uctRecommend) RecommendAction(n *DecisionNode, ctx *TrialContext) (Action, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	children := n.ChildrenSnapshot()
	if len(children) == 0 {
		return nil, newInvariantViolation("uctRecommend.RecommendAction", "no children to recommend from")
	}
	mostVisited := n.manager.config.UCTRecommendMostVisited

	var best Action
	bestScore := math.Inf(-1)
	for _, ch := range children {
		var score float64
		if mostVisited {
			score = float64(ch.Node.Visits())
		} else {
			st := ch.Node.Algo.(*uctChanceState)
			score = st.value(ch.Node.Visits())
		}
		if score > bestScore {
			bestScore = score
			best = ch.Action
		}
	}
	return best, nil
}
