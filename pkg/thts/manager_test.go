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

import "testing"

func TestNewManagerRejectsNilEnvironment(t *testing.T) {
	_, err := NewManager(nil, DefaultManagerConfig())
	if err == nil {
		t.Fatalf("NewManager(nil, ...) error = nil, want ConfigError")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("NewManager(nil, ...) error type = %T, want *ConfigError", err)
	}
}

func TestNewManagerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.MaxDepth = 0
	_, err := NewManager(newTestChainEnv(5), cfg)
	if err == nil {
		t.Errorf("NewManager with invalid config error = nil, want error")
	}
}

func TestNewManagerDefaultsToNoTransposition(t *testing.T) {
	m, err := NewManager(newTestChainEnv(5), DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	d, c := m.TreeSize()
	if d != 0 || c != 0 {
		t.Errorf("TreeSize() = (%d, %d), want (0, 0) when transposition disabled", d, c)
	}
}

func TestNewManagerWithTranspositionTracksTreeSize(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.UseTransposition = true
	m, err := NewManager(newTestChainEnv(5), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	factory := NewUCT()
	root := factory.NewRoot(m)
	if _, _, err := root.GetOrCreateChanceChild(NewIntAction(testChainRight)); err != nil {
		t.Fatalf("GetOrCreateChanceChild() error = %v", err)
	}

	d, c := m.TreeSize()
	if d != 0 {
		t.Errorf("decisionNodes = %d, want 0 (root is not itself tracked by the chance/decision child tables)", d)
	}
	if c != 1 {
		t.Errorf("chanceNodes = %d, want 1", c)
	}
}

func TestManagerResetClearsTables(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.UseTransposition = true
	m, err := NewManager(newTestChainEnv(5), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	factory := NewUCT()
	root := factory.NewRoot(m)
	root.GetOrCreateChanceChild(NewIntAction(testChainRight))

	if _, c := m.TreeSize(); c != 1 {
		t.Fatalf("TreeSize() before Reset = %d, want 1", c)
	}

	m.Reset()

	if _, c := m.TreeSize(); c != 0 {
		t.Errorf("TreeSize() after Reset = %d, want 0", c)
	}
}

func TestManagerRNGForIsStablePerThread(t *testing.T) {
	m, err := NewManager(newTestChainEnv(5), DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	r1 := m.RNGFor(0)
	r2 := m.RNGFor(0)
	if r1 != r2 {
		t.Errorf("RNGFor(0) returned distinct instances across calls, want the same instance reused")
	}

	r3 := m.RNGFor(1)
	if r1 == r3 {
		t.Errorf("RNGFor(0) and RNGFor(1) returned the same instance, want distinct per-thread RNGs")
	}
}

func TestNewManagerMintsDistinctQueryIDPerInstance(t *testing.T) {
	m1, err := NewManager(newTestChainEnv(5), DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m2, err := NewManager(newTestChainEnv(5), DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if m1.QueryID() == "" {
		t.Errorf("QueryID() = %q, want a non-empty id", m1.QueryID())
	}
	if m1.QueryID() == m2.QueryID() {
		t.Errorf("two managers minted the same QueryID %q, want distinct ids per query", m1.QueryID())
	}
}

func TestManagerValidateHeuristicAndPrior(t *testing.T) {
	m, err := NewManager(newTestChainEnv(5), DefaultManagerConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if err := m.validateHeuristicAndPrior(true, false); err == nil {
		t.Errorf("validateHeuristicAndPrior(true, false) error = nil, want error (no Heuristic configured)")
	}
	if err := m.validateHeuristicAndPrior(false, true); err == nil {
		t.Errorf("validateHeuristicAndPrior(false, true) error = nil, want error (no Prior configured)")
	}
	if err := m.validateHeuristicAndPrior(false, false); err != nil {
		t.Errorf("validateHeuristicAndPrior(false, false) error = %v, want nil", err)
	}
}
