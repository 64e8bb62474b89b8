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

// applyOpponentSign flips a backed-up value when the decision node doing
// the aggregating belongs to the opponent (spec.md §4.5.4): the
// opponent's children report their own values from the opponent's
// perspective, so the root-perspective value negates them. Algorithms
// that aggregate over chance-node children (UCT's average, MENTS's soft
// value, DENTS's DP backup) all pass the value of each child through this
// helper once before combining, rather than threading sign-flip logic
// through every backup implementation separately.
func applyOpponentSign(n *DecisionNode, value float64) float64 {
	return value * n.OpponentCoeff()
}
