// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package thts implements the Trial-based Heuristic Tree Search engine: a
// concurrent trial scheduler over an alternating decision/chance node tree,
// with a family of selection/backup/recommendation policies (UCT, PUCT,
// MENTS, RENTS, TENTS, DENTS and related variants) layered on a shared,
// transposition-aware node skeleton.
package thts

import "fmt"

// Observation is an opaque, immutable value produced by an environment's
// observation channel. Implementations must be safe to use as a map key
// via Hash/Equals and must never mutate after construction.
type Observation interface {
	// Hash returns a stable hash for use as a transposition-table key.
	Hash() uint64
	// Equals reports whether this observation is equal to other.
	Equals(other Observation) bool
	// String renders the observation for pretty-printing/debugging.
	String() string
}

// State specializes Observation: fully observable environments may treat
// a State directly as the Observation produced by a transition.
type State interface {
	Observation
}

// Action is an opaque, immutable value identifying a choice available to
// the decision maker at a State.
type Action interface {
	// Hash returns a stable hash for use as a map/transposition-table key.
	Hash() uint64
	// Equals reports whether this action is equal to other.
	Equals(other Action) bool
	// String renders the action for pretty-printing/debugging.
	String() string
}

// IntAction is a convenience Action implementation wrapping a single int,
// mirroring the toy-environment actions of the original THTS C++ source.
type IntAction struct {
	Value int
}

func NewIntAction(v int) IntAction { return IntAction{Value: v} }

func (a IntAction) Hash() uint64 { return uint64(a.Value) + 0x9E3779B97F4A7C15 }

func (a IntAction) Equals(other Action) bool {
	o, ok := other.(IntAction)
	return ok && o.Value == a.Value
}

func (a IntAction) String() string { return fmt.Sprintf("A(%d)", a.Value) }

// StringAction is a convenience Action implementation wrapping a string.
type StringAction struct {
	Value string
}

func NewStringAction(v string) StringAction { return StringAction{Value: v} }

func (a StringAction) Hash() uint64 { return fnv64(a.Value) }

func (a StringAction) Equals(other Action) bool {
	o, ok := other.(StringAction)
	return ok && o.Value == a.Value
}

func (a StringAction) String() string { return a.Value }

// IntPairState is a convenience State implementation for grid-style
// environments, mirroring original_source's IntPairState.
type IntPairState struct {
	Row, Col int
}

func NewIntPairState(row, col int) IntPairState { return IntPairState{Row: row, Col: col} }

func (s IntPairState) Hash() uint64 {
	return uint64(s.Row)*2654435761 ^ uint64(s.Col)*40503
}

func (s IntPairState) Equals(other Observation) bool {
	o, ok := other.(IntPairState)
	return ok && o.Row == s.Row && o.Col == s.Col
}

func (s IntPairState) String() string { return fmt.Sprintf("(%d,%d)", s.Row, s.Col) }

// IntState is a convenience State implementation wrapping a single int,
// as used by the D-chain fixture environment.
type IntState struct {
	Value int
}

func NewIntState(v int) IntState { return IntState{Value: v} }

func (s IntState) Hash() uint64 { return uint64(s.Value) + 1 }

func (s IntState) Equals(other Observation) bool {
	o, ok := other.(IntState)
	return ok && o.Value == s.Value
}

func (s IntState) String() string { return fmt.Sprintf("S(%d)", s.Value) }

// fnv64 is a small stable string hash (FNV-1a), used by StringAction and
// anywhere else a cheap stable hash over a string key is needed.
func fnv64(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// ActionDistribution maps actions to probabilities (priors, policies).
// Keyed on Hash() since Action is not itself comparable in the general
// case; callers needing the Action back should retain it as the map value
// payload via ActionProb.
type ActionDistribution map[uint64]ActionProb

// ActionProb pairs an Action with a probability, used as the value type
// of ActionDistribution so the original Action is recoverable from a
// hash-keyed map.
type ActionProb struct {
	Action Action
	Prob   float64
}

// NewActionDistribution builds an ActionDistribution from parallel slices.
func NewActionDistribution(actions []Action, probs []float64) ActionDistribution {
	d := make(ActionDistribution, len(actions))
	for i, a := range actions {
		d[a.Hash()] = ActionProb{Action: a, Prob: probs[i]}
	}
	return d
}

// Get returns the probability assigned to action, or (0, false) if absent.
func (d ActionDistribution) Get(a Action) (float64, bool) {
	ap, ok := d[a.Hash()]
	if !ok {
		return 0, false
	}
	return ap.Prob, true
}
