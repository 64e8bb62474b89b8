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
	"log/slog"
	"time"
)

// Logger observes a TrialEngine's progress (spec.md §4.4's "log hook"),
// mirroring the teacher's WithMCTSLogger/WithParallelLogger functional
// injection pattern rather than a concrete struct baked into the engine.
type Logger interface {
	RunStarted(root *DecisionNode)
	TrialCompleted(trialsDone int64, root *DecisionNode)
	RunFinished(root *DecisionNode, trials int64, elapsed time.Duration)
}

// SlogLogger is a Logger built on log/slog (a TrialEngine given no Logger
// uses a no-op one). It logs a Debug
// event every trialsDelta trials (0 disables per-trial logging), and
// Info events at run start/finish.
type SlogLogger struct {
	l           *slog.Logger
	trialsDelta int64
}

// NewSlogLogger constructs a SlogLogger. A nil l falls back to
// slog.Default().
func NewSlogLogger(l *slog.Logger, trialsDelta int) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l, trialsDelta: int64(trialsDelta)}
}

func (s *SlogLogger) RunStarted(root *DecisionNode) {
	s.l.Info("thts run started", "query_id", root.Manager().QueryID(), "root_state", root.State().String())
}

func (s *SlogLogger) TrialCompleted(trialsDone int64, root *DecisionNode) {
	if s.trialsDelta <= 0 || trialsDone%s.trialsDelta != 0 {
		return
	}
	s.l.Debug("thts trial completed", "query_id", root.Manager().QueryID(), "trials_done", trialsDone, "root_visits", root.Visits())
}

func (s *SlogLogger) RunFinished(root *DecisionNode, trials int64, elapsed time.Duration) {
	s.l.Info("thts run finished", "query_id", root.Manager().QueryID(), "trials", trials, "elapsed", elapsed, "root_visits", root.Visits())
}

// noopLogger discards everything; used when no Logger is configured.
type noopLogger struct{}

func (noopLogger) RunStarted(*DecisionNode)                     {}
func (noopLogger) TrialCompleted(int64, *DecisionNode)          {}
func (noopLogger) RunFinished(*DecisionNode, int64, time.Duration) {}
