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

// AlgoFactory bundles the three policy objects and per-node scalar-state
// constructors that together define one search algorithm (UCT, PUCT,
// MENTS, ...). It is the single place an algorithm's node-construction
// wiring lives, so uct.go/hmcts.go/ments.go/tents.go/dents.go each define
// AlgoFactory constructors (NewUCT, NewMENTS, ...) and every node they
// build shares the same generic
// locking/children-map substrate from node.go (spec.md §9).
type AlgoFactory struct {
	Name      string
	Selection SelectionPolicy
	Backup    BackupPolicy
	Recommend RecommendationPolicy

	// NewDecisionState/NewChanceState build the algorithm-specific scalar
	// bundle for a freshly constructed node. Called once per node, before
	// the node is published to any transposition table, so they must not
	// touch the Manager's tables themselves.
	NewDecisionState func(m *Manager, state State) AlgoState
	NewChanceState   func(m *Manager, state State, action Action) AlgoState
}

// NewRoot constructs the root decision node for a fresh query.
func (f AlgoFactory) NewRoot(m *Manager) *DecisionNode {
	return f.buildDecision(m, m.env.InitialState(), 0, 0, nil)
}

func (f AlgoFactory) buildDecision(m *Manager, state State, depth, timestep int, parent *ChanceNode) *DecisionNode {
	n := &DecisionNode{
		manager:   m,
		env:       m.env,
		state:     state,
		depth:     depth,
		timestep:  timestep,
		parent:    parent,
		AlgoName:  f.Name,
		selection: f.Selection,
		backup:    f.Backup,
		recommend: f.Recommend,
	}
	if f.NewDecisionState != nil {
		n.Algo = f.NewDecisionState(m, state)
	}
	n.heuristicValue = f.decisionHeuristic(m, state)
	n.newChild = func(action Action) *ChanceNode {
		return f.buildChance(m, state, action, depth, timestep, n)
	}
	return n
}

func (f AlgoFactory) buildChance(m *Manager, state State, action Action, depth, timestep int, parent *DecisionNode) *ChanceNode {
	c := &ChanceNode{
		manager:  m,
		env:      m.env,
		state:    state,
		action:   action,
		depth:    depth,
		timestep: timestep,
		parent:   parent,
		AlgoName: f.Name,
		backup:   f.Backup,
	}
	if f.NewChanceState != nil {
		c.Algo = f.NewChanceState(m, state, action)
	}
	c.newChild = func(obs Observation) *DecisionNode {
		ns, ok := obs.(State)
		if !ok {
			ns = m.env.InitialState()
		}
		return f.buildDecision(m, ns, depth+1, timestep+1, c)
	}
	return c
}

// decisionHeuristic evaluates config.Heuristic across the node's valid
// actions and returns the best estimate, or 0 when no Heuristic hook is
// configured or the state is a sink (spec.md §4.2 "heuristic initial
// value").
func (f AlgoFactory) decisionHeuristic(m *Manager, state State) float64 {
	if m.config.Heuristic == nil || m.env.IsSink(state) {
		return 0
	}
	best := math.Inf(-1)
	for _, a := range m.env.ValidActions(state) {
		if v := m.config.Heuristic(state, a); v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// chanceHeuristic evaluates config.Heuristic for one (state, action)
// pair, falling back to config.DefaultQValue when no hook is set
// (spec.md §4.5.2 "default_q_value").
func chanceHeuristic(m *Manager, state State, action Action) float64 {
	if m.config.Heuristic == nil {
		return m.config.DefaultQValue
	}
	return m.config.Heuristic(state, action)
}
