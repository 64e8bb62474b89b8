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
	"fmt"

	"github.com/AleutianAI/thts/pkg/thts"
)

// FrozenLake is a grid-world MDP adopted from
// original_source/include/toy_envs/frozen_lake_env.h: 'S' start, 'F'
// frozen (safe), 'H' hole (sink, zero reward), 'G' goal (sink, reward
// 1). When SlipProb > 0 the agent moves in the chosen direction with
// probability 1-SlipProb and in each of the two perpendicular directions
// with probability SlipProb/2, mirroring the original's slippery-ice model.
type FrozenLake struct {
	Grid     []string
	SlipProb float64
}

// NewFrozenLake4x4 returns the classic 4x4 FrozenLake map.
func NewFrozenLake4x4(slipProb float64) *FrozenLake {
	return &FrozenLake{
		Grid: []string{
			"SFFF",
			"FHFH",
			"FFFH",
			"HFFG",
		},
		SlipProb: slipProb,
	}
}

const (
	flUp = iota
	flDown
	flLeft
	flRight
)

func (e *FrozenLake) rows() int { return len(e.Grid) }
func (e *FrozenLake) cols() int { return len(e.Grid[0]) }

func (e *FrozenLake) cell(row, col int) byte {
	if row < 0 || row >= e.rows() || col < 0 || col >= e.cols() {
		return 'H' // walking off the map is treated as falling in a hole
	}
	return e.Grid[row][col]
}

func (e *FrozenLake) InitialState() thts.State {
	for r, row := range e.Grid {
		for c := range row {
			if row[c] == 'S' {
				return thts.NewIntPairState(r, c)
			}
		}
	}
	return thts.NewIntPairState(0, 0)
}

func (e *FrozenLake) IsSink(state thts.State) bool {
	p := state.(thts.IntPairState)
	c := e.cell(p.Row, p.Col)
	return c == 'H' || c == 'G'
}

func (e *FrozenLake) ValidActions(state thts.State) []thts.Action {
	if e.IsSink(state) {
		return nil
	}
	return []thts.Action{
		thts.NewIntAction(flUp), thts.NewIntAction(flDown),
		thts.NewIntAction(flLeft), thts.NewIntAction(flRight),
	}
}

func (e *FrozenLake) step(p thts.IntPairState, dir int) thts.IntPairState {
	row, col := p.Row, p.Col
	switch dir {
	case flUp:
		row--
	case flDown:
		row++
	case flLeft:
		col--
	case flRight:
		col++
	}
	if row < 0 || row >= e.rows() || col < 0 || col >= e.cols() {
		return p // off-map moves are no-ops, matching the original's edge clamping
	}
	return thts.NewIntPairState(row, col)
}

func perpendicular(dir int) []int {
	switch dir {
	case flUp, flDown:
		return []int{flLeft, flRight}
	default:
		return []int{flUp, flDown}
	}
}

func (e *FrozenLake) TransitionDistribution(state thts.State, action thts.Action) (map[uint64]thts.ObservationProb, error) {
	p := state.(thts.IntPairState)
	dir := action.(thts.IntAction).Value
	if e.SlipProb <= 0 {
		return thts.NewObservationDistribution([]thts.Observation{e.step(p, dir)}, []float64{1.0}), nil
	}
	perp := perpendicular(dir)
	obs := []thts.Observation{e.step(p, dir), e.step(p, perp[0]), e.step(p, perp[1])}
	probs := []float64{1 - e.SlipProb, e.SlipProb / 2, e.SlipProb / 2}
	return thts.NewObservationDistribution(obs, probs), nil
}

func (e *FrozenLake) SampleTransition(state thts.State, action thts.Action, rng *thts.RNG) (thts.Observation, error) {
	dist, err := e.TransitionDistribution(state, action)
	if err != nil {
		return nil, err
	}
	u := rng.RandUniform()
	var cum float64
	for _, op := range dist {
		cum += op.Prob
		if u <= cum {
			return op.Observation, nil
		}
	}
	return state.(thts.IntPairState), nil
}

func (e *FrozenLake) ObservationDistribution(action thts.Action, nextState thts.State) (map[uint64]thts.ObservationProb, error) {
	return thts.NewObservationDistribution([]thts.Observation{nextState}, []float64{1.0}), nil
}

func (e *FrozenLake) SampleObservation(action thts.Action, nextState thts.State, rng *thts.RNG) (thts.Observation, error) {
	return nextState, nil
}

func (e *FrozenLake) Reward(state thts.State, action thts.Action, obsv thts.Observation) float64 {
	p, ok := obsv.(thts.IntPairState)
	if !ok {
		return 0
	}
	if e.cell(p.Row, p.Col) == 'G' {
		return 1
	}
	return 0
}

func (e *FrozenLake) SampleContext(ctx context.Context, threadID int, state thts.State) any { return nil }

func (e *FrozenLake) String() string {
	return fmt.Sprintf("FrozenLake(%dx%d, slip=%.2f)", e.rows(), e.cols(), e.SlipProb)
}
