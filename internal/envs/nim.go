// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package envs

import (
	"context"

	"github.com/AleutianAI/thts/pkg/thts"
)

// Nim is the classic two-player subtraction game: players alternate
// removing between 1 and MaxTake stones from a shared pile, and the
// player who takes the last stone wins. It is the minimal alternating
// zero-sum game used to exercise the engine's IsOpponent/OpponentCoeff
// sign-flip (spec.md §4.5.4), grounded on the two-player scenario
// described in SPEC_FULL.md's "Supplemented features".
type Nim struct {
	MaxTake int
}

// NewNim returns a Nim game in which a move removes at most maxTake
// stones; every game starts from a pile of pileSizeDefault (21) stones.
func NewNim(maxTake int) *Nim {
	return &Nim{MaxTake: maxTake}
}

func (g *Nim) InitialState() thts.State { return thts.NewIntState(pileSizeDefault) }

const pileSizeDefault = 21

func (g *Nim) IsSink(state thts.State) bool {
	return state.(thts.IntState).Value <= 0
}

func (g *Nim) ValidActions(state thts.State) []thts.Action {
	if g.IsSink(state) {
		return nil
	}
	stones := state.(thts.IntState).Value
	max := g.MaxTake
	if stones < max {
		max = stones
	}
	actions := make([]thts.Action, max)
	for i := 0; i < max; i++ {
		actions[i] = thts.NewIntAction(i + 1)
	}
	return actions
}

func (g *Nim) next(state thts.State, action thts.Action) thts.IntState {
	stones := state.(thts.IntState).Value - action.(thts.IntAction).Value
	if stones < 0 {
		stones = 0
	}
	return thts.NewIntState(stones)
}

func (g *Nim) TransitionDistribution(state thts.State, action thts.Action) (map[uint64]thts.ObservationProb, error) {
	return thts.NewObservationDistribution([]thts.Observation{g.next(state, action)}, []float64{1.0}), nil
}

func (g *Nim) SampleTransition(state thts.State, action thts.Action, rng *thts.RNG) (thts.Observation, error) {
	return g.next(state, action), nil
}

func (g *Nim) ObservationDistribution(action thts.Action, nextState thts.State) (map[uint64]thts.ObservationProb, error) {
	return thts.NewObservationDistribution([]thts.Observation{nextState}, []float64{1.0}), nil
}

func (g *Nim) SampleObservation(action thts.Action, nextState thts.State, rng *thts.RNG) (thts.Observation, error) {
	return nextState, nil
}

// Reward returns 1 from the mover's perspective when this move empties
// the pile (the mover wins); the engine's opponent sign-flip
// (DecisionNode.OpponentCoeff) turns this into a loss from the other
// player's perspective automatically.
func (g *Nim) Reward(state thts.State, action thts.Action, obsv thts.Observation) float64 {
	if next, ok := obsv.(thts.IntState); ok && next.Value <= 0 {
		return 1
	}
	return 0
}

func (g *Nim) SampleContext(ctx context.Context, threadID int, state thts.State) any { return nil }
