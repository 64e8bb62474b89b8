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

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// DecisionNode is a node at which an action is chosen (spec.md §3
// "Decision node invariants"). One concrete type serves every algorithm
// family; algorithm-specific behaviour is supplied by the three policy
// objects (select/backup/recommend) and the opaque Algo scalar bundle,
// per spec.md §9's composition-over-inheritance design note — no
// per-algorithm DecisionNode subtype exists.
//
// Thread Safety: Algorithm-specific scalar fields (Algo) and the children
// map are mutated only while Lock is held, per spec.md §5's locking
// discipline. Visits is updated atomically so a racing reader never
// observes a non-monotonic value.
type DecisionNode struct {
	manager  *Manager
	env      Environment
	state    State
	depth    int
	timestep int

	// parent is a back-reference to the constructing chance node. Go's
	// tracing garbage collector makes the weak/strong distinction
	// spec.md §3 calls for in a manually-memory-managed language moot —
	// a plain field here creates no leak — but opponent detection still
	// never reads it (spec.md §9: "does not need the parent pointer"),
	// using decisionTimestep parity instead (see twoplayer.go).
	parent *ChanceNode

	mu       sync.Mutex
	visits   atomic.Int64
	children map[uint64]*ChanceNode
	actions  map[uint64]Action

	heuristicValue float64

	Algo      AlgoState
	AlgoName  string
	selection SelectionPolicy
	backup    BackupPolicy
	recommend RecommendationPolicy

	// newChild builds a fresh child chance node for the given action,
	// wired with this node's algorithm's policies. Captured as a closure
	// at construction time by AlgoFactory.buildDecision
	// so create_child stays algorithm-agnostic.
	newChild func(action Action) *ChanceNode
}

// ChanceNode is a node at which nature (or an opponent) determines the
// outcome (spec.md §3 "Chance node").
type ChanceNode struct {
	manager  *Manager
	env      Environment
	state    State // the state this chance node's action was taken from
	action   Action
	depth    int
	timestep int

	parent *DecisionNode

	mu       sync.Mutex
	visits   atomic.Int64
	children map[uint64]*DecisionNode
	obsValue map[uint64]Observation

	localReward   float64
	transDist     map[uint64]ObservationProb
	haveTransDist bool

	Algo     AlgoState
	AlgoName string
	backup   BackupPolicy

	newChild func(obs Observation) *DecisionNode
}

// --- DecisionNode accessors -------------------------------------------------

func (n *DecisionNode) State() State   { return n.state }
func (n *DecisionNode) Depth() int     { return n.depth }
func (n *DecisionNode) Timestep() int  { return n.timestep }
func (n *DecisionNode) Visits() int64  { return n.visits.Load() }
func (n *DecisionNode) Manager() *Manager { return n.manager }
func (n *DecisionNode) HeuristicValue() float64 { return n.heuristicValue }

// IsLeaf reports whether this node corresponds to a sink state of the
// environment (spec.md §4.1 "is_leaf").
func (n *DecisionNode) IsLeaf() bool { return n.env.IsSink(n.state) }

// IsRoot reports whether this node has no constructing parent.
func (n *DecisionNode) IsRoot() bool { return n.parent == nil }

// IsTwoPlayerGame reports whether the owning manager is planning a
// two-player game.
func (n *DecisionNode) IsTwoPlayerGame() bool { return n.manager.config.IsTwoPlayerGame }

// IsOpponent reports whether this node is the opponent's turn to move in
// a two-player game (spec.md §4.5.4): true iff is_two_player_game and the
// decision timestep is odd. Computed from the timestep alone, never the
// parent pointer (spec.md §9).
func (n *DecisionNode) IsOpponent() bool {
	return n.manager.config.IsTwoPlayerGame && n.timestep%2 == 1
}

// OpponentCoeff returns -1.0 if IsOpponent(), else 1.0 — the sign flip
// applied when this node aggregates children's values (spec.md §4.5.4).
func (n *DecisionNode) OpponentCoeff() float64 {
	if n.IsOpponent() {
		return -1.0
	}
	return 1.0
}

// Lock/Unlock expose the node's own mutex for the trial engine's
// selection/backup phases (spec.md §4.4.1/§4.4.2), which must hold
// exactly one node's lock at a time except when scanning children
// (LockAllChildren below).
func (n *DecisionNode) Lock()   { n.mu.Lock() }
func (n *DecisionNode) Unlock() { n.mu.Unlock() }

// Visit increments num_visits; called once per selection-phase pass
// through this node while its lock is held. The heuristic value is
// computed once at construction, not here.
func (n *DecisionNode) Visit(ctx *TrialContext) {
	n.visits.Add(1)
}

// ValidActions returns this node's valid actions from the environment,
// raising an EnvironmentError if the environment violates spec.md §4.1's
// "empty iff sink" contract.
func (n *DecisionNode) ValidActions() ([]Action, error) {
	actions := n.env.ValidActions(n.state)
	sink := n.env.IsSink(n.state)
	if sink && len(actions) != 0 {
		return nil, newEnvironmentError("ValidActions", fmt.Errorf("sink state %s returned %d actions, want 0", n.state, len(actions)))
	}
	if !sink && len(actions) == 0 {
		return nil, newEnvironmentError("ValidActions", fmt.Errorf("non-sink state %s returned 0 valid actions", n.state))
	}
	return actions, nil
}

// SelectAction delegates to the algorithm's SelectionPolicy. Must be
// called while the node's lock is held (spec.md §4.4.1).
func (n *DecisionNode) SelectAction(ctx *TrialContext) (Action, error) {
	return n.selection.SelectAction(n, ctx)
}

// RecommendAction delegates to the algorithm's RecommendationPolicy. Does
// not require the node's lock to be held by the caller of the public
// embedding-surface API (spec.md §6.5), but takes it internally when it
// needs to read children.
func (n *DecisionNode) RecommendAction(ctx *TrialContext) (Action, error) {
	return n.recommend.RecommendAction(n, ctx)
}

// Backup delegates to the algorithm's BackupPolicy. Must be called while
// the node's lock is held (spec.md §4.4.2).
func (n *DecisionNode) Backup(before, after []float64, totalAfter, total float64, ctx *TrialContext) {
	n.backup.BackupDecision(n, before, after, totalAfter, total, ctx)
}

// GetOrCreateChanceChild implements the decision-node half of the child
// construction protocol (spec.md §4.3). Must be called while n's lock is
// held; returns the (possibly transposition-shared) chance-node child for
// action, and whether this call was the one that constructed it.
func (n *DecisionNode) GetOrCreateChanceChild(action Action) (child *ChanceNode, created bool, err error) {
	h := action.Hash()
	if child, ok := n.children[h]; ok {
		return child, false, nil
	}

	if !n.manager.config.UseTransposition {
		child, created = n.newChild(action), true
	} else {
		key := cNodeKey{timestep: n.timestep, stateHash: n.state.Hash(), actHash: h}
		child, created = n.manager.cTable.GetOrInsert(key, combineHash(uint64(n.timestep), n.state.Hash(), h), func() *ChanceNode {
			return n.newChild(action)
		})
	}

	if n.children == nil {
		n.children = make(map[uint64]*ChanceNode)
		n.actions = make(map[uint64]Action)
	}
	n.children[h] = child
	n.actions[h] = action
	return child, created, nil
}

// GetChild returns the existing chance-node child for action, raising an
// InvariantViolation if none exists (spec.md §7: "child lookup for an
// unknown action during recommend").
func (n *DecisionNode) GetChild(action Action) (*ChanceNode, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	child, ok := n.children[action.Hash()]
	if !ok {
		return nil, newInvariantViolation("GetChild", fmt.Sprintf("no child for action %s", action))
	}
	return child, nil
}

// ChildrenSnapshot returns a stable snapshot of (action, child) pairs. It
// takes no lock itself; callers hold the node's lock. Used by algorithms
// that must scan all children
// (soft backup, DP backup, entropy, recommend). Iteration order is
// implementation-defined but stable within the snapshot (spec.md §5).
func (n *DecisionNode) ChildrenSnapshot() []ChanceChild {
	out := make([]ChanceChild, 0, len(n.children))
	for h, c := range n.children {
		out = append(out, ChanceChild{Action: n.actions[h], Node: c})
	}
	return out
}

// ChanceChild pairs an Action with its chance-node child.
type ChanceChild struct {
	Action Action
	Node   *ChanceNode
}

// LockAllChildren locks every current child (in snapshot order), per
// spec.md §5's lock_all_children helper, so an algorithm can read all
// children's scalars consistently. Must be paired with
// UnlockAllChildren(children) in reverse order once done. Caller must
// already hold n's own lock (so the children snapshot itself is stable).
func (n *DecisionNode) LockAllChildren() []ChanceChild {
	children := n.ChildrenSnapshot()
	for _, c := range children {
		c.Node.mu.Lock()
	}
	return children
}

// UnlockAllChildren releases locks taken by LockAllChildren, in reverse
// order (spec.md §5).
func UnlockAllChildren(children []ChanceChild) {
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Node.mu.Unlock()
	}
}

// PrettyPrint renders this node and its subtree to the given depth, one
// node per line, indented two spaces per level: decision nodes as
// "D[state] depth=.. t=.. visits=.. val=..", chance nodes as
// "C[state] action=.. visits=.. reward=..".
func (n *DecisionNode) PrettyPrint(maxDepth int) string {
	var b strings.Builder
	n.prettyPrint(&b, 0, maxDepth)
	return b.String()
}

func (n *DecisionNode) prettyPrint(b *strings.Builder, indent, maxDepth int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%sD[%s] depth=%d t=%d visits=%d val=%.4f\n", pad, n.state, n.depth, n.timestep, n.Visits(), n.prettyValue())
	if indent >= maxDepth {
		return
	}
	for _, c := range n.ChildrenSnapshot() {
		c.Node.prettyPrint(b, indent+1, maxDepth)
	}
}

func (n *DecisionNode) prettyValue() float64 {
	if pv, ok := n.Algo.(prettyValuer); ok {
		return pv.prettyValue()
	}
	return n.heuristicValue
}

// prettyValuer lets an algorithm's AlgoState contribute the "current
// value" shown in pretty-print output (e.g. soft value, DP value).
type prettyValuer interface {
	prettyValue() float64
}

// --- ChanceNode accessors ---------------------------------------------------

func (c *ChanceNode) State() State     { return c.state }
func (c *ChanceNode) Action() Action   { return c.action }
func (c *ChanceNode) Depth() int       { return c.depth }
func (c *ChanceNode) Timestep() int    { return c.timestep }
func (c *ChanceNode) Visits() int64    { return c.visits.Load() }
func (c *ChanceNode) LocalReward() float64 { return c.localReward }

func (c *ChanceNode) Lock()   { c.mu.Lock() }
func (c *ChanceNode) Unlock() { c.mu.Unlock() }

// Visit increments num_visits for the chance node.
func (c *ChanceNode) Visit(ctx *TrialContext) {
	c.visits.Add(1)
}

// NumChildren returns the current number of decision-node children,
// consulted by the selection phase to detect "a new decision node was
// just created" (spec.md §4.4.1).
func (c *ChanceNode) NumChildren() int {
	return len(c.children)
}

// TransitionDistribution returns (and caches) the environment's
// transition distribution for this chance node's (state, action),
// validating that probabilities are strictly positive and sum to 1.0
// (spec.md §4.1/§7).
func (c *ChanceNode) TransitionDistribution() (map[uint64]ObservationProb, error) {
	if c.haveTransDist {
		return c.transDist, nil
	}
	dist, err := c.env.TransitionDistribution(c.state, c.action)
	if err != nil {
		return nil, newEnvironmentError("TransitionDistribution", err)
	}
	var sum float64
	for _, op := range dist {
		if op.Prob <= 0 {
			return nil, newEnvironmentError("TransitionDistribution", fmt.Errorf("non-positive probability %v for %s", op.Prob, op.Observation))
		}
		sum += op.Prob
	}
	if len(dist) > 0 && (sum < 0.999 || sum > 1.001) {
		return nil, newEnvironmentError("TransitionDistribution", fmt.Errorf("probabilities sum to %v, want 1.0", sum))
	}
	c.transDist = dist
	c.haveTransDist = true
	return dist, nil
}

// SampleObservation draws the Observation a newly-sampled transition
// produces, then the decision-node child for it is created/looked-up by
// the caller via GetOrCreateDecisionChild. Must be called while c's lock
// is held. Fully observable environments (the common case) return the
// next State directly as the Observation; partially observable ones
// layer ObservationDistribution/SampleObservation underneath their own
// SampleTransition implementation rather than the engine forcing a
// second sampling call here, since the observation channel is only
// meaningful relative to an environment-specific next state type.
func (c *ChanceNode) SampleObservation(ctx *TrialContext, rng *RNG) (Observation, error) {
	obsv, err := c.env.SampleTransition(c.state, c.action, rng)
	if err != nil {
		return nil, newEnvironmentError("SampleTransition", err)
	}
	return obsv, nil
}

// Backup delegates to the algorithm's BackupPolicy. Must be called while
// c's lock is held.
func (c *ChanceNode) Backup(before, after []float64, totalAfter, total float64, ctx *TrialContext) {
	c.backup.BackupChance(c, before, after, totalAfter, total, ctx)
}

// GetOrCreateDecisionChild implements the chance-node half of the child
// construction protocol (spec.md §4.3), returning whether this call
// constructed the child.
func (c *ChanceNode) GetOrCreateDecisionChild(obs Observation) (child *DecisionNode, created bool, err error) {
	h := obs.Hash()
	if child, ok := c.children[h]; ok {
		return child, false, nil
	}

	if !c.manager.config.UseTransposition {
		child, created = c.newChild(obs), true
	} else {
		key := dNodeKey{timestep: c.timestep + 1, obsHash: h}
		child, created = c.manager.dTable.GetOrInsert(key, combineHash(uint64(c.timestep+1), h), func() *DecisionNode {
			return c.newChild(obs)
		})
	}

	if c.children == nil {
		c.children = make(map[uint64]*DecisionNode)
		c.obsValue = make(map[uint64]Observation)
	}
	c.children[h] = child
	c.obsValue[h] = obs
	return child, created, nil
}

// ChildrenSnapshot returns a stable snapshot of (observation, child,
// prob) triples. It takes no lock itself; callers hold c's lock.
func (c *ChanceNode) ChildrenSnapshot() []DecisionChild {
	dist, _ := c.TransitionDistribution()
	out := make([]DecisionChild, 0, len(c.children))
	for h, d := range c.children {
		prob := 0.0
		if op, ok := dist[h]; ok {
			prob = op.Prob
		}
		out = append(out, DecisionChild{Observation: c.obsValue[h], Node: d, Prob: prob})
	}
	return out
}

// DecisionChild pairs an Observation with its decision-node child and
// transition probability.
type DecisionChild struct {
	Observation Observation
	Node        *DecisionNode
	Prob        float64
}

// LockAllChildren/UnlockAllChildren mirror DecisionNode's helpers.
func (c *ChanceNode) LockAllChildren() []DecisionChild {
	children := c.ChildrenSnapshot()
	for _, ch := range children {
		ch.Node.mu.Lock()
	}
	return children
}

func UnlockAllDecisionChildren(children []DecisionChild) {
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Node.mu.Unlock()
	}
}

func (c *ChanceNode) PrettyPrint(maxDepth int) string {
	var b strings.Builder
	c.prettyPrint(&b, 0, maxDepth)
	return b.String()
}

func (c *ChanceNode) prettyPrint(b *strings.Builder, indent, maxDepth int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%sC[%s] action=%s visits=%d reward=%.4f\n", pad, c.state, c.action, c.Visits(), c.localReward)
	if indent >= maxDepth {
		return
	}
	for _, d := range c.ChildrenSnapshot() {
		d.Node.prettyPrint(b, indent+1, maxDepth)
	}
}

// combineHash folds several uint64 components into one hash, used as the
// stripe-selector hash for composite transposition keys.
func combineHash(parts ...uint64) uint64 {
	h := uint64(14695981039346656037)
	for _, p := range parts {
		h ^= p
		h *= 1099511628211
	}
	return h
}
