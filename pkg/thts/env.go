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

import "context"

// Environment is the generative MDP/game model consumed by the THTS
// engine (spec.md §4.1/§6.1). All methods must be safe for concurrent
// read; an implementation that needs to mutate internal scratch state per
// goroutine must clone/key that state by the threadID passed to
// SampleContext, not by mutating shared fields.
type Environment interface {
	// InitialState returns the state a fresh query tree should be rooted
	// at.
	InitialState() State

	// IsSink reports whether state has no valid actions and terminates
	// trials that reach it.
	IsSink(state State) bool

	// ValidActions returns the ordered, non-empty sequence of actions
	// available at state. Must be empty if and only if IsSink(state).
	ValidActions(state State) []Action

	// TransitionDistribution returns the probability of each Observation
	// reachable from (state, action). Probabilities must be strictly
	// positive and sum to 1.0; an environment violating this is a bug the
	// engine detects and surfaces as an EnvironmentError.
	TransitionDistribution(state State, action Action) (map[uint64]ObservationProb, error)

	// SampleTransition draws a single Observation from
	// TransitionDistribution(state, action) using rng.
	SampleTransition(state State, action Action, rng *RNG) (Observation, error)

	// ObservationDistribution returns the probability of each Observation
	// the decision maker might perceive given the true next state
	// nextState reached via action. Fully observable environments should
	// return the identity distribution (nextState with probability 1).
	ObservationDistribution(action Action, nextState State) (map[uint64]ObservationProb, error)

	// SampleObservation draws a single Observation from
	// ObservationDistribution(action, nextState) using rng. Fully
	// observable environments should return nextState unconditionally.
	SampleObservation(action Action, nextState State, rng *RNG) (Observation, error)

	// Reward returns R(state, action, obsv). obsv may be nil when a
	// reward function does not depend on the resulting observation.
	Reward(state State, action Action, obsv Observation) float64

	// SampleContext returns an opaque per-trial scratch bag for the given
	// worker thread and state. The default/zero implementation should
	// return nil.
	SampleContext(ctx context.Context, threadID int, state State) any
}

// ObservationProb pairs an Observation with its probability, used as the
// value type of the probability maps returned by TransitionDistribution
// and ObservationDistribution so the original Observation is recoverable
// from a hash-keyed map.
type ObservationProb struct {
	Observation Observation
	Prob        float64
}

// NewObservationDistribution builds an ObservationProb map from parallel
// slices, a convenience for Environment implementations. Observations that
// hash equal are merged into one entry whose probability is their sum.
func NewObservationDistribution(obs []Observation, probs []float64) map[uint64]ObservationProb {
	d := make(map[uint64]ObservationProb, len(obs))
	for i, o := range obs {
		prev := d[o.Hash()]
		d[o.Hash()] = ObservationProb{Observation: o, Prob: prev.Prob + probs[i]}
	}
	return d
}

// HeuristicFunc estimates the value of taking action (optional, may be
// nil meaning "no action") from state. Used to seed a newly created
// node's leaf value and as the terminal reward appended at the end of a
// trial (spec.md §6.2).
type HeuristicFunc func(state State, action Action) float64

// PriorFunc returns a distribution over the valid actions at state,
// consumed by PUCT and the prior-weighted MENTS variants (spec.md §6.2).
type PriorFunc func(state State) ActionDistribution
