// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command thtsplanner runs a THTS search against one of the bundled toy
// environments and prints the recommended action, exercising the full
// Manager -> AlgoFactory -> TrialEngine pipeline from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/thts/internal/envs"
	"github.com/AleutianAI/thts/pkg/thts"
)

var (
	algorithm  string
	envName    string
	numTrials  int64
	numThreads int
	timeBudget time.Duration
	seed       uint64
	debugAddr  string
)

var rootCmd = &cobra.Command{
	Use:   "thtsplanner",
	Short: "Run a trial-based heuristic tree search against a toy environment",
	RunE:  runPlan,
}

func init() {
	rootCmd.Flags().StringVar(&algorithm, "algorithm", "uct", "uct|puct|hmcts|ments|rents|tents|dents|idents|est|db_ments")
	rootCmd.Flags().StringVar(&envName, "env", "dchain", "dchain|frozen_lake|nim")
	rootCmd.Flags().Int64Var(&numTrials, "trials", 10000, "number of trials to run")
	rootCmd.Flags().IntVar(&numThreads, "threads", 4, "number of worker goroutines")
	rootCmd.Flags().DurationVar(&timeBudget, "time-budget", 0, "optional wall-clock budget (0 = unbounded)")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "RNG seed")
	rootCmd.Flags().StringVar(&debugAddr, "debug-addr", "", "if set, serve /healthz, /metrics, /tree on this address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildEnv(name string) (thts.Environment, bool, error) {
	switch name {
	case "dchain":
		return envs.NewDChain(10), false, nil
	case "frozen_lake":
		return envs.NewFrozenLake4x4(0.2), false, nil
	case "nim":
		return envs.NewNim(3), true, nil
	default:
		return nil, false, fmt.Errorf("unknown env %q", name)
	}
}

func buildFactory(name string) (thts.AlgoFactory, error) {
	switch name {
	case "uct":
		return thts.NewUCT(), nil
	case "puct":
		return thts.NewPUCT(), nil
	case "hmcts":
		return thts.NewHMCTS(), nil
	case "ments":
		return thts.NewMENTS(), nil
	case "rents":
		return thts.NewRENTS(), nil
	case "tents":
		return thts.NewTENTS(), nil
	case "dents":
		return thts.NewDENTS(), nil
	case "idents":
		return thts.NewIDENTS(), nil
	case "est":
		return thts.NewEST(), nil
	case "db_ments":
		return thts.NewDBMENTS(), nil
	default:
		return thts.AlgoFactory{}, fmt.Errorf("unknown algorithm %q", name)
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	env, isTwoPlayer, err := buildEnv(envName)
	if err != nil {
		return err
	}
	factory, err := buildFactory(algorithm)
	if err != nil {
		return err
	}

	cfg := thts.DefaultManagerConfig()
	cfg.Seed = seed
	cfg.IsTwoPlayerGame = isTwoPlayer
	if err := cfg.Validate(); err != nil {
		return err
	}

	manager, err := thts.NewManager(env, cfg, thts.WithManagerLogger(logger))
	if err != nil {
		return err
	}

	engineCfg := thts.DefaultTrialEngineConfig()
	engineCfg.NumThreads = numThreads

	engine, err := thts.NewTrialEngine(manager, factory, engineCfg,
		thts.WithEngineLogger(thts.NewSlogLogger(logger, 1000)))
	if err != nil {
		return err
	}

	if debugAddr != "" {
		srv := thts.NewDebugServer(engine)
		go func() {
			if err := http.ListenAndServe(debugAddr, srv.Handler()); err != nil {
				logger.Error("debug server exited", "error", err)
			}
		}()
	}

	if err := engine.RunTrials(context.Background(), numTrials, timeBudget); err != nil {
		return fmt.Errorf("thtsplanner: run failed: %w", err)
	}

	action, err := engine.RecommendAction()
	if err != nil {
		return fmt.Errorf("thtsplanner: recommend failed: %w", err)
	}
	fmt.Printf("recommended action: %s (trials=%d)\n", action, engine.TrialsCompleted())
	return nil
}
