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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the trial engine, registered against the
// default registry via promauto the way the teacher's services register
// their own request/latency metrics. Labelled by algorithm name so a
// debug server or scrape target can distinguish concurrently-running
// engines using different algorithms.
var (
	metricsTrialsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thts_trials_completed_total",
		Help: "Number of trials that completed successfully.",
	}, []string{"algorithm"})

	metricsTrialsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thts_trials_failed_total",
		Help: "Number of trials that returned an error during selection.",
	}, []string{"algorithm"})

	metricsTrialDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thts_trial_duration_seconds",
		Help:    "Wall-clock duration of a single selection+backup trial.",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})

	metricsTreeSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "thts_tree_nodes",
		Help: "Current number of distinct nodes tracked by the transposition tables.",
	}, []string{"algorithm", "kind"})
)

// ReportTreeSize publishes the current transposition-table node counts as
// gauges. Nothing in this package calls it on a schedule; the gauges
// change only when a caller invokes it.
func ReportTreeSize(algoName string, m *Manager) {
	d, c := m.TreeSize()
	metricsTreeSize.WithLabelValues(algoName, "decision").Set(float64(d))
	metricsTreeSize.WithLabelValues(algoName, "chance").Set(float64(c))
}
