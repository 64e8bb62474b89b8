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
	"log/slog"

	"github.com/google/uuid"
)

// Manager owns everything shared across a single query's tree: the
// environment, validated configuration, per-thread RNG service, and (when
// transposition is enabled) the two stripe-locked transposition tables
// keyed per spec.md §3 ("Transposition tables"). Exactly one Manager
// backs one root-rooted search; constructing a new query means
// constructing a new Manager.
type Manager struct {
	env     Environment
	config  ManagerConfig
	rng     *RNGService
	logger  *slog.Logger
	queryID string

	dTable *stripedTable[dNodeKey, *DecisionNode]
	cTable *stripedTable[cNodeKey, *ChanceNode]
}

// NewManager validates config and constructs a Manager for env. Returns a
// *ConfigError if config is invalid (spec.md §7), never panics.
func NewManager(env Environment, config ManagerConfig, opts ...ManagerOption) (*Manager, error) {
	if env == nil {
		return nil, newConfigError("Environment", "must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		env:     env,
		config:  config,
		rng:     NewRNGService(config.Seed),
		logger:  slog.Default(),
		queryID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if config.UseTransposition {
		m.dTable = newStripedTable[dNodeKey, *DecisionNode](config.NumTTableStripes)
		m.cTable = newStripedTable[cNodeKey, *ChanceNode](config.NumTTableStripes)
	}
	return m, nil
}

// ManagerOption configures optional Manager dependencies, mirroring the
// teacher's functional-option constructors (WithMCTSLogger and similar).
type ManagerOption func(*Manager)

// WithManagerLogger overrides the *slog.Logger a Manager and the nodes it
// constructs will use for structured logging.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Env returns the environment this manager searches.
func (m *Manager) Env() Environment { return m.env }

// Config returns the validated configuration this manager was built with.
func (m *Manager) Config() ManagerConfig { return m.config }

// RNGFor returns the deterministic per-thread RNG for threadID (spec.md
// §4.4 "each worker thread owns one RNG instance").
func (m *Manager) RNGFor(threadID int) *RNG { return m.rng.ForThread(threadID) }

// Logger returns the manager's structured logger.
func (m *Manager) Logger() *slog.Logger { return m.logger }

// QueryID returns the unique identifier minted for this Manager's query
// when it was constructed, used to correlate log lines, trace spans, and
// debug-server output across one search (spec.md §3: "exactly one
// Manager backs one root-rooted search").
func (m *Manager) QueryID() string { return m.queryID }

// Reset tears down the manager's transposition tables, releasing the
// previous query's tree (spec.md §3: "must be explicitly torn down when
// the query ends").
func (m *Manager) Reset() {
	if m.dTable != nil {
		m.dTable.Clear()
	}
	if m.cTable != nil {
		m.cTable.Clear()
	}
}

// TreeSize reports the number of distinct decision and chance nodes
// currently tracked by the transposition tables. Returns (0, 0) when
// transposition is disabled, since node counts are then tree-shaped and
// not centrally tracked.
func (m *Manager) TreeSize() (decisionNodes, chanceNodes int) {
	if m.dTable == nil {
		return 0, 0
	}
	return m.dTable.Len(), m.cTable.Len()
}

// validateHeuristicAndPrior ensures the hooks a given algorithm needs are
// present, returning a *ConfigError naming the missing hook (spec.md §7).
func (m *Manager) validateHeuristicAndPrior(needHeuristic, needPrior bool) error {
	if needHeuristic && m.config.Heuristic == nil {
		return newConfigError("Heuristic", "required by the selected algorithm but not set")
	}
	if needPrior && m.config.Prior == nil {
		return newConfigError("Prior", "required by the selected algorithm but not set")
	}
	return nil
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager(two_player=%v, mcts_mode=%v, transposition=%v)", m.config.IsTwoPlayerGame, m.config.MCTSMode, m.config.UseTransposition)
}
