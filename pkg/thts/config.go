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
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TempDecayFn computes a decayed temperature given scaled visits, per
// spec.md §4.5.3 ("a decaying function of visits"). Valid functions
// satisfy f(0) = 1.0 and f(m) -> 0.0 as m -> infinity, adopted verbatim
// from original_source/include/algorithms/common/decaying_temp.h.
type TempDecayFn func(scaledVisits float64) float64

// Named decaying-temperature functions, matching the original's
// selectable set exactly (SPEC_FULL.md "Supplemented features").
var (
	TempDecayInvSqrt TempDecayFn = func(m float64) float64 { return 1.0 / math.Sqrt(1+m) }
	TempDecayInvLog  TempDecayFn = func(m float64) float64 { return 1.0 / math.Log(math.E+m) }
	TempDecaySigmoid TempDecayFn = func(m float64) float64 {
		return (1 + math.Exp(-5)) / (1 + math.Exp(m-5))
	}
	TempDecayConstant TempDecayFn = func(m float64) float64 { return 1.0 }
)

// ManagerConfig is the process-wide, per-query configuration consumed by
// Manager (spec.md §3 "Manager"). It is the superset of recognized
// algorithm parameters across UCT/PUCT/HMCTS and MENTS/RENTS/TENTS/DENTS
// (DESIGN.md "Open Question resolutions" #1); each algorithm family reads
// only the subset it needs.
type ManagerConfig struct {
	// Core.
	MaxDepth         int    `yaml:"max_depth" validate:"gte=1"`
	MCTSMode         bool   `yaml:"mcts_mode"`
	IsTwoPlayerGame  bool   `yaml:"is_two_player_game"`
	Seed             uint64 `yaml:"seed"`
	UseTransposition bool   `yaml:"use_transposition_table"`
	NumTTableStripes int    `yaml:"num_transposition_table_mutexes" validate:"gte=1"`

	// UCT/PUCT/HMCTS.
	UCBBias                float64 `yaml:"ucb_bias"`
	UseAutoBias            bool    `yaml:"use_auto_bias"`
	AutoBiasMinBias        float64 `yaml:"auto_bias_min_bias"`
	HeuristicPseudoTrials  int     `yaml:"heuristic_pseudo_trials"`
	UCTRecommendMostVisited bool   `yaml:"uct_recommend_most_visited"`
	UCTEpsilonExploration  float64 `yaml:"uct_epsilon_exploration"`
	HMCTSBudgetThreshold   int     `yaml:"hmcts_budget_threshold"`

	// MENTS/RENTS/TENTS.
	Temp                   float64     `yaml:"temp" validate:"gt=0"`
	PriorPolicySearchWeight float64    `yaml:"prior_policy_search_weight"`
	Epsilon                float64     `yaml:"epsilon"`
	RootNodeEpsilon        float64     `yaml:"root_node_epsilon"` // -1 => use Epsilon
	MaxExploreProb         float64     `yaml:"max_explore_prob"`
	TempDecayFn            TempDecayFn `yaml:"-"`
	TempDecayMinTemp       float64     `yaml:"temp_decay_min_temp"`
	TempDecayVisitsScale   float64     `yaml:"temp_decay_visits_scale"`
	DefaultQValue          float64     `yaml:"default_q_value"`
	ShiftPseudoQValues     bool        `yaml:"shift_pseudo_q_values"`
	PseudoQValueOffset     float64     `yaml:"pseudo_q_value_offset"`
	RecommendVisitThreshold int        `yaml:"recommend_visit_threshold"`
	MENTSRecommendMostVisited bool     `yaml:"ments_recommend_most_visited"`

	// DENTS/IDENTS/EST entropy family.
	EntropyTempDecayFn TempDecayFn `yaml:"-"`
	DENTSRecommendMode string      `yaml:"dents_recommend_mode" validate:"omitempty,oneof=dp most_visited empirical"`

	// Heuristic/prior hooks (not serialisable).
	Heuristic HeuristicFunc `yaml:"-"`
	Prior     PriorFunc     `yaml:"-"`
}

// DefaultManagerConfig returns sensible defaults, mirroring the teacher's
// Default*Config() constructors.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxDepth:                100,
		MCTSMode:                true,
		IsTwoPlayerGame:         false,
		Seed:                    0,
		UseTransposition:        false,
		NumTTableStripes:        64,
		UCBBias:                 -1.0, // USE_AUTO_BIAS sentinel
		UseAutoBias:             true,
		AutoBiasMinBias:         0.001,
		HeuristicPseudoTrials:   0,
		UCTRecommendMostVisited: true,
		UCTEpsilonExploration:   0.0,
		HMCTSBudgetThreshold:    0, // 0 => always delegate to plain UCT
		Temp:                    1.0,
		PriorPolicySearchWeight: 0.0,
		Epsilon:                 0.5,
		RootNodeEpsilon:         -1.0,
		MaxExploreProb:          1.0,
		TempDecayFn:             nil,
		TempDecayMinTemp:        1.0e-6,
		TempDecayVisitsScale:    1.0,
		DefaultQValue:           0.0,
		ShiftPseudoQValues:      false,
		PseudoQValueOffset:      0.0,
		RecommendVisitThreshold: 0,
		MENTSRecommendMostVisited: false,
		EntropyTempDecayFn:      TempDecayInvSqrt,
		DENTSRecommendMode:      "dp",
	}
}

// Validate checks the configuration is well-formed, returning a
// *ConfigError wrapping the first violation found. Called synchronously
// at Manager construction (spec.md §7 "configuration errors").
func (c *ManagerConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return newConfigError("ManagerConfig", err.Error())
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		if c.RootNodeEpsilon < 0 && c.Epsilon < 0 {
			return newConfigError("Epsilon", "must be in [0,1]")
		}
	}
	if c.MaxExploreProb < 0 || c.MaxExploreProb > 1 {
		return newConfigError("MaxExploreProb", "must be in [0,1]")
	}
	return nil
}

// effectiveEpsilon returns RootNodeEpsilon for the root if it has been set
// to a non-negative value, otherwise falls back to Epsilon (original's
// "-1.0 indicates use Epsilon at root too").
func (c *ManagerConfig) effectiveEpsilon(isRoot bool) float64 {
	if isRoot && c.RootNodeEpsilon >= 0 {
		return c.RootNodeEpsilon
	}
	return c.Epsilon
}

// LoadManagerConfigYAML loads a ManagerConfig from a YAML file, starting
// from DefaultManagerConfig() and overlaying fields present in the file,
// mirroring the teacher's config.go YAML loading via gopkg.in/yaml.v3.
func LoadManagerConfigYAML(path string) (ManagerConfig, error) {
	cfg := DefaultManagerConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("thts: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("thts: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// TrialEngineConfig configures the concurrent trial scheduler (spec.md
// §4.4).
type TrialEngineConfig struct {
	NumThreads int           `yaml:"num_threads" validate:"gte=0"`
	LogTrialsDelta int       `yaml:"log_trials_delta"`
}

// DefaultTrialEngineConfig returns sensible defaults.
func DefaultTrialEngineConfig() TrialEngineConfig {
	return TrialEngineConfig{NumThreads: 4, LogTrialsDelta: 0}
}

// Validate checks the trial-engine configuration is well-formed.
func (c *TrialEngineConfig) Validate() error {
	if c.NumThreads < 0 {
		return newConfigError("NumThreads", "must be >= 0")
	}
	return nil
}

