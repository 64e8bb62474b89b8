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

// runBackupPhase walks a completed trial's path from frontier back to
// root, calling each node's BackupPolicy exactly once while holding only
// that node's lock (spec.md §4.4.2). At the decision/chance node pair
// straddling path index i, "before" is the reward sequence collected
// before reaching that node and "after" is the sequence from that node
// to the trial's end — the split algorithms like MENTS's soft backup and
// the DP/empirical/entropy family (dents.go) need to combine a node's own
// return-to-go with its ancestors' discounted history. The frontier
// decision node (path.decisions' last entry) was already visited during
// selection and is never backed up, matching
// original_source/src/thts.cpp's run_backup_phase, which excludes the
// frontier from nodes_to_backup.
func runBackupPhase(path *trialPath, ctx *TrialContext) {
	rewards := path.rewards
	total := sumFloats(rewards)

	for i := len(path.chances) - 1; i >= 0; i-- {
		before := rewards[:i]
		after := rewards[i:]
		totalAfter := sumFloats(after)

		chance := path.chances[i]
		chance.Lock()
		chance.Backup(before, after, totalAfter, total, ctx)
		chance.Unlock()

		decision := path.decisions[i]
		decision.Lock()
		decision.Backup(before, after, totalAfter, total, ctx)
		decision.Unlock()
	}
}

func sumFloats(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
