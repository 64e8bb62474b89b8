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

// testChainEnv is a minimal deterministic chain MDP used across this
// package's tests: step left/right along [0, Length], +EndReward on
// reaching Length, StepCost otherwise. Kept package-local (rather than
// reusing a shared fixture) so these tests exercise only the public
// Environment contract.
type testChainEnv struct {
	length    int
	stepCost  float64
	endReward float64
}

func newTestChainEnv(length int) *testChainEnv {
	return &testChainEnv{length: length, stepCost: -1, endReward: 10}
}

const (
	testChainLeft  = 0
	testChainRight = 1
)

func (e *testChainEnv) InitialState() State { return NewIntState(0) }

func (e *testChainEnv) IsSink(state State) bool {
	return state.(IntState).Value >= e.length
}

func (e *testChainEnv) ValidActions(state State) []Action {
	if e.IsSink(state) {
		return nil
	}
	return []Action{NewIntAction(testChainLeft), NewIntAction(testChainRight)}
}

func (e *testChainEnv) next(state State, action Action) IntState {
	v := state.(IntState).Value
	if action.(IntAction).Value == testChainRight {
		v++
	} else if v > 0 {
		v--
	}
	return NewIntState(v)
}

func (e *testChainEnv) TransitionDistribution(state State, action Action) (map[uint64]ObservationProb, error) {
	return NewObservationDistribution([]Observation{e.next(state, action)}, []float64{1.0}), nil
}

func (e *testChainEnv) SampleTransition(state State, action Action, rng *RNG) (Observation, error) {
	return e.next(state, action), nil
}

func (e *testChainEnv) ObservationDistribution(action Action, nextState State) (map[uint64]ObservationProb, error) {
	return NewObservationDistribution([]Observation{nextState}, []float64{1.0}), nil
}

func (e *testChainEnv) SampleObservation(action Action, nextState State, rng *RNG) (Observation, error) {
	return nextState, nil
}

func (e *testChainEnv) Reward(state State, action Action, obsv Observation) float64 {
	if next, ok := obsv.(IntState); ok && next.Value >= e.length {
		return e.endReward
	}
	return e.stepCost
}

func (e *testChainEnv) SampleContext(ctx context.Context, threadID int, state State) any { return nil }

// testStochasticEnv is a two-action, two-observation chance node used to
// exercise soft/entropy backups (ments_test.go, tents_test.go,
// dents_test.go) where a single action can fan out to more than one
// observation.
type testStochasticEnv struct {
	length int
}

func newTestStochasticEnv(length int) *testStochasticEnv {
	return &testStochasticEnv{length: length}
}

func (e *testStochasticEnv) InitialState() State { return NewIntState(0) }

func (e *testStochasticEnv) IsSink(state State) bool {
	return state.(IntState).Value >= e.length
}

func (e *testStochasticEnv) ValidActions(state State) []Action {
	if e.IsSink(state) {
		return nil
	}
	return []Action{NewIntAction(testChainLeft), NewIntAction(testChainRight)}
}

func (e *testStochasticEnv) forward(state State) IntState {
	v := state.(IntState).Value + 1
	return NewIntState(v)
}

func (e *testStochasticEnv) TransitionDistribution(state State, action Action) (map[uint64]ObservationProb, error) {
	v := state.(IntState).Value
	if action.(IntAction).Value == testChainRight {
		return NewObservationDistribution([]Observation{NewIntState(v + 1), NewIntState(v)}, []float64{0.8, 0.2}), nil
	}
	return NewObservationDistribution([]Observation{NewIntState(v)}, []float64{1.0}), nil
}

func (e *testStochasticEnv) SampleTransition(state State, action Action, rng *RNG) (Observation, error) {
	dist, _ := e.TransitionDistribution(state, action)
	u := rng.RandUniform()
	var cum float64
	for _, op := range dist {
		cum += op.Prob
		if u <= cum {
			return op.Observation, nil
		}
	}
	return state, nil
}

func (e *testStochasticEnv) ObservationDistribution(action Action, nextState State) (map[uint64]ObservationProb, error) {
	return NewObservationDistribution([]Observation{nextState}, []float64{1.0}), nil
}

func (e *testStochasticEnv) SampleObservation(action Action, nextState State, rng *RNG) (Observation, error) {
	return nextState, nil
}

func (e *testStochasticEnv) Reward(state State, action Action, obsv Observation) float64 {
	if next, ok := obsv.(IntState); ok && next.Value >= e.length {
		return 10
	}
	return -1
}

func (e *testStochasticEnv) SampleContext(ctx context.Context, threadID int, state State) any {
	return nil
}
