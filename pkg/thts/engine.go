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
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// TrialEngine is the concurrent trial scheduler (spec.md §4.4): a
// fixed-size worker pool that repeatedly runs the selection phase
// followed by the backup phase against one shared root, grounded on the
// teacher's parallel.go worker-pool shape. Workers claim trials from a
// shared atomic counter rather than a channel of work items, since a
// trial carries no payload beyond "run one more of these".
type TrialEngine struct {
	manager *Manager
	factory AlgoFactory
	cfg     TrialEngineConfig
	logger  Logger
	failure FailurePolicy

	mu   sync.RWMutex
	root *DecisionNode

	trialsCompleted atomic.Int64
}

// TrialEngineOption configures optional TrialEngine dependencies.
type TrialEngineOption func(*TrialEngine)

// WithEngineLogger overrides the Logger a TrialEngine reports progress
// to; the default is a no-op logger.
func WithEngineLogger(l Logger) TrialEngineOption {
	return func(e *TrialEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFailurePolicy overrides the FailurePolicy a TrialEngine uses to
// respond to a trial panic; the default is AbortOnFirstFailure.
func WithFailurePolicy(p FailurePolicy) TrialEngineOption {
	return func(e *TrialEngine) {
		if p != nil {
			e.failure = p
		}
	}
}

// NewTrialEngine constructs a TrialEngine rooted at a fresh tree built by
// factory against manager's environment.
func NewTrialEngine(manager *Manager, factory AlgoFactory, cfg TrialEngineConfig, opts ...TrialEngineOption) (*TrialEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &TrialEngine{
		manager: manager,
		factory: factory,
		cfg:     cfg,
		logger:  noopLogger{},
		failure: AbortOnFirstFailure{},
		root:    factory.NewRoot(manager),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the engine's current root decision node.
func (e *TrialEngine) Root() *DecisionNode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root
}

// TrialsCompleted returns the number of trials run so far across the
// engine's lifetime (reset by SetNewRoot).
func (e *TrialEngine) TrialsCompleted() int64 { return e.trialsCompleted.Load() }

// SetNewRoot discards the current tree (and the manager's transposition
// tables) and starts a fresh one at the environment's initial state,
// mirroring the teacher's set_new_env (spec.md §4.4 "a Manager may be
// reused across queries by resetting its tree").
func (e *TrialEngine) SetNewRoot() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.Reset()
	e.root = e.factory.NewRoot(e.manager)
	e.trialsCompleted.Store(0)
}

// RunTrials runs up to maxTrials additional trials using cfg.NumThreads
// worker goroutines, returning early if ctx is cancelled or maxTime
// elapses (maxTime <= 0 means no time budget). cfg.NumThreads == 0 is a
// valid construction that performs no work (spec.md §8): RunTrials
// returns immediately without running any trial. It blocks until all
// workers have stopped (spec.md §4.4 "run_trials(..., blocking)"); callers
// wanting non-blocking behaviour should invoke it from their own
// goroutine.
func (e *TrialEngine) RunTrials(ctx context.Context, maxTrials int64, maxTime time.Duration) error {
	root := e.Root()
	e.logger.RunStarted(root)
	start := time.Now()

	runCtx, span := traceRun(ctx, e.manager.QueryID(), e.factory.Name, maxTrials)
	defer span.End()

	var cancel context.CancelFunc
	if maxTime > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, maxTime)
		defer cancel()
	}

	numThreads := e.cfg.NumThreads
	if numThreads == 0 {
		e.logger.RunFinished(root, e.trialsCompleted.Load(), time.Since(start))
		return nil
	}

	var claimed atomic.Int64
	g, gCtx := errgroup.WithContext(runCtx)
	for worker := 0; worker < numThreads; worker++ {
		threadID := worker
		g.Go(func() error {
			rng := e.manager.RNGFor(threadID)
			for {
				if gCtx.Err() != nil {
					return nil
				}
				n := claimed.Add(1)
				if n > maxTrials {
					return nil
				}

				if err := e.runOneTrial(root, threadID, rng, gCtx, maxTrials); err != nil {
					return err
				}
			}
		})
	}

	err := g.Wait()
	e.logger.RunFinished(root, e.trialsCompleted.Load(), time.Since(start))
	return err
}

// runOneTrial runs one selection+backup pass, recovering a panicking
// trial through e.failure rather than letting it take down the worker
// goroutine (spec.md §7). budget is the run's total trial budget, handed
// to the root as its HMCTS round budget.
func (e *TrialEngine) runOneTrial(root *DecisionNode, threadID int, rng *RNG, ctx context.Context, budget int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e.failure.HandleTrialFailure(r) {
				err = fmt.Errorf("thts: trial panicked: %v", r)
			}
		}
	}()

	_, span := traceTrial(ctx, threadID)
	defer span.End()
	trialStart := time.Now()

	envCtx := e.manager.env.SampleContext(ctx, threadID, root.State())
	trialCtx := NewTrialContext(threadID, envCtx, rng)
	trialCtx.HMCTSRoundBudget = int(budget)

	path, selErr := runSelectionPhase(e.manager, root, trialCtx, rng)
	if selErr != nil {
		metricsTrialsFailed.WithLabelValues(e.factory.Name).Inc()
		return selErr
	}
	runBackupPhase(path, trialCtx)

	done := e.trialsCompleted.Add(1)
	e.logger.TrialCompleted(done, root)
	metricsTrialsCompleted.WithLabelValues(e.factory.Name).Inc()
	metricsTrialDuration.WithLabelValues(e.factory.Name).Observe(time.Since(trialStart).Seconds())
	return nil
}

// RecommendAction delegates to the root's RecommendationPolicy (spec.md
// §6.5), using a throwaway TrialContext since recommendation reads
// backed-up state rather than sampling anything new.
func (e *TrialEngine) RecommendAction() (Action, error) {
	root := e.Root()
	return root.RecommendAction(NewTrialContext(0, nil, e.manager.RNGFor(0)))
}
