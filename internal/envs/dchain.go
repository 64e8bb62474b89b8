// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package envs provides small generative Environment implementations
// used to exercise the thts engine end to end, adopted from
// original_source/include/toy_envs (SPEC_FULL.md "Supplemented
// features").
package envs

import (
	"context"

	"github.com/AleutianAI/thts/pkg/thts"
)

// DChain is a 1-D chain MDP: the agent starts at position 0 and can step
// left or right along a chain of Length positions, receiving EndReward
// only on reaching the far end and a small per-step cost otherwise. It
// is deliberately simple enough that an optimal policy (always step
// right) is known in advance, making it useful for regression-testing
// that a selection/backup pair actually converges.
type DChain struct {
	Length    int
	StepCost  float64
	EndReward float64
}

// NewDChain returns a DChain of the given length with the original's
// default step cost (-1) and end reward (+10).
func NewDChain(length int) *DChain {
	return &DChain{Length: length, StepCost: -1, EndReward: 10}
}

const (
	dchainLeft  = 0
	dchainRight = 1
)

func (e *DChain) InitialState() thts.State { return thts.NewIntState(0) }

func (e *DChain) IsSink(state thts.State) bool {
	return state.(thts.IntState).Value >= e.Length
}

func (e *DChain) ValidActions(state thts.State) []thts.Action {
	if e.IsSink(state) {
		return nil
	}
	return []thts.Action{thts.NewIntAction(dchainLeft), thts.NewIntAction(dchainRight)}
}

func (e *DChain) next(state thts.State, action thts.Action) thts.IntState {
	s := state.(thts.IntState).Value
	if action.(thts.IntAction).Value == dchainRight {
		s++
	} else if s > 0 {
		s--
	}
	return thts.NewIntState(s)
}

func (e *DChain) TransitionDistribution(state thts.State, action thts.Action) (map[uint64]thts.ObservationProb, error) {
	next := e.next(state, action)
	return thts.NewObservationDistribution([]thts.Observation{next}, []float64{1.0}), nil
}

func (e *DChain) SampleTransition(state thts.State, action thts.Action, rng *thts.RNG) (thts.Observation, error) {
	return e.next(state, action), nil
}

func (e *DChain) ObservationDistribution(action thts.Action, nextState thts.State) (map[uint64]thts.ObservationProb, error) {
	return thts.NewObservationDistribution([]thts.Observation{nextState}, []float64{1.0}), nil
}

func (e *DChain) SampleObservation(action thts.Action, nextState thts.State, rng *thts.RNG) (thts.Observation, error) {
	return nextState, nil
}

func (e *DChain) Reward(state thts.State, action thts.Action, obsv thts.Observation) float64 {
	if next, ok := obsv.(thts.IntState); ok && next.Value >= e.Length {
		return e.EndReward
	}
	return e.StepCost
}

func (e *DChain) SampleContext(ctx context.Context, threadID int, state thts.State) any { return nil }
