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

// SelectionPolicy chooses which chance-node child to descend to from a
// decision node during the selection phase (spec.md §4.4.1). Composed
// into a DecisionNode rather than implemented via an inheritance chain,
// per spec.md §9's "tagged record + three orthogonal policy objects"
// design note.
type SelectionPolicy interface {
	SelectAction(n *DecisionNode, ctx *TrialContext) (Action, error)
}

// BackupPolicy updates a node's algorithm-specific scalar state during
// the backup phase (spec.md §4.4.2). A single BackupPolicy implements
// both halves; the algorithms in this package keep their backed-up state
// on chance nodes, so their BackupDecision methods are no-ops.
type BackupPolicy interface {
	BackupDecision(n *DecisionNode, before, after []float64, totalAfter, total float64, ctx *TrialContext)
	BackupChance(n *ChanceNode, before, after []float64, totalAfter, total float64, ctx *TrialContext)
}

// RecommendationPolicy selects the action a decision node reports as its
// final recommendation (spec.md §6.5 recommend_action).
type RecommendationPolicy interface {
	RecommendAction(n *DecisionNode, ctx *TrialContext) (Action, error)
}

// AlgoState is the marker interface algorithm-specific per-node scalar
// bundles implement (uctChanceState, uctDecisionState, dentsChanceState,
// hmctsDecisionState).
// Stored on DecisionNode/ChanceNode as an opaque field and type-asserted
// by that algorithm's policies only.
type AlgoState interface {
	algoState()
}
