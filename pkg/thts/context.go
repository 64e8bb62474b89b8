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

// TrialContext is the per-trial, per-goroutine scratch record threaded
// through a single selection+backup pass. It replaces the heterogeneous
// string-keyed scratch map of the original C++ source (spec.md §9 design
// note "per-trial mutable context") with a small strongly-typed struct:
// each algorithm family gets its own named slot rather than a generic
// map[string]any. A TrialContext is owned by the worker goroutine running
// the trial and is never shared across goroutines.
type TrialContext struct {
	// ThreadID identifies the worker goroutine running this trial, passed
	// to Environment.SampleContext so environments that must clone
	// internal state per-goroutine can key off it.
	ThreadID int

	// EnvContext is the opaque per-trial scratch bag returned by
	// Environment.SampleContext (default: nil/empty).
	EnvContext any

	// RENTSParentDist holds the parent decision node's selection
	// distribution over actions, passed down through chance nodes so a
	// RENTS child can reweight by it. Nil at the root (treated as a
	// uniform-1 distribution per spec.md §4.5.2).
	RENTSParentDist ActionDistribution

	// TENTSSelectedAction records the action the TENTS, MENTS or RENTS
	// selection policy chose at the last decision node visited. No backup
	// policy reads it.
	TENTSSelectedAction Action

	// HMCTSRoundBudget carries the sequential-halving budget allocated to
	// the current decision/chance node pair by its parent, propagated
	// downward during selection (spec.md §4.5.1, HMCTS). At the root it is
	// the run's total trial budget, set by the TrialEngine.
	HMCTSRoundBudget int

	// RNG is this trial's worker-local random source (spec.md §4.4: "each
	// worker thread owns one RNG instance"), used by selection policies
	// for tie-breaking, epsilon exploration, and soft-policy sampling.
	RNG *RNG
}

// NewTrialContext constructs a fresh per-trial context for the given
// worker thread id.
func NewTrialContext(threadID int, envContext any, rng *RNG) *TrialContext {
	return &TrialContext{ThreadID: threadID, EnvContext: envContext, RNG: rng}
}
