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

// trialPath records one trial's descent from root to the frontier node it
// stopped at, so the backup phase (backup.go) can walk it in reverse
// (spec.md §4.4.2). decisions[i] is visited before chances[i]; chances[i]
// produces decisions[i+1] via the sampled observation. rewards[i] is the
// environment reward collected when chances[i] was traversed; the final
// entry in rewards is the frontier decision node's heuristic value, so
// rewards always has one more entry than chances (spec.md §4.4.2,
// §6.2; original_source/src/thts.cpp's trailing
// "rewards.push_back(cur_node->heuristic_value)").
type trialPath struct {
	decisions []*DecisionNode
	chances   []*ChanceNode
	rewards   []float64
}

// runSelectionPhase descends from root to a frontier node, implementing
// spec.md §4.4.1: lock one node at a time (never two simultaneously: the
// child is resolved while the parent's lock is held, and the parent is
// released before the child is locked), select an action via the node's
// SelectionPolicy, sample a transition, and stop when:
//   - the current decision node is a leaf (sink state), or
//   - MCTS mode is enabled and this trial has just constructed a
//     brand-new decision node (vanilla MCTS expands one node per trial), or
//   - the configured max depth has been reached.
func runSelectionPhase(m *Manager, root *DecisionNode, ctx *TrialContext, rng *RNG) (*trialPath, error) {
	path := &trialPath{}
	cur := root

	for {
		cur.Lock()
		cur.Visit(ctx)
		isLeaf := cur.IsLeaf()
		atMaxDepth := cur.depth >= m.config.MaxDepth
		path.decisions = append(path.decisions, cur)

		if isLeaf || atMaxDepth {
			path.rewards = append(path.rewards, cur.heuristicValue)
			cur.Unlock()
			return path, nil
		}

		action, err := cur.SelectAction(ctx)
		if err != nil {
			cur.Unlock()
			return nil, err
		}
		chanceChild, _, err := cur.GetOrCreateChanceChild(action)
		cur.Unlock()
		if err != nil {
			return nil, err
		}

		chanceChild.Lock()
		chanceChild.Visit(ctx)
		obsv, err := chanceChild.SampleObservation(ctx, rng)
		if err != nil {
			chanceChild.Unlock()
			return nil, err
		}
		reward := m.env.Reward(chanceChild.state, chanceChild.action, obsv)
		decisionChild, created, err := chanceChild.GetOrCreateDecisionChild(obsv)
		chanceChild.Unlock()
		if err != nil {
			return nil, err
		}

		path.chances = append(path.chances, chanceChild)
		path.rewards = append(path.rewards, reward)
		cur = decisionChild

		if m.config.MCTSMode && created {
			cur.Lock()
			cur.Visit(ctx)
			path.decisions = append(path.decisions, cur)
			path.rewards = append(path.rewards, cur.heuristicValue)
			cur.Unlock()
			return path, nil
		}
	}
}
