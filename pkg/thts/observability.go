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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/AleutianAI/thts")

// traceRun starts a span covering one TrialEngine.RunTrials call, tagged
// with the query id, algorithm name, and requested trial budget.
func traceRun(ctx context.Context, queryID, algoName string, maxTrials int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "thts.run",
		trace.WithAttributes(
			attribute.String("thts.query_id", queryID),
			attribute.String("thts.algorithm", algoName),
			attribute.Int64("thts.max_trials", maxTrials),
		),
	)
}

// traceTrial starts a span covering one selection+backup pass. Kept
// cheap to start (no extra allocation beyond the attribute slice) since
// it runs once per trial, potentially thousands of times per query.
func traceTrial(ctx context.Context, threadID int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "thts.trial", trace.WithAttributes(attribute.Int("thts.thread_id", threadID)))
}
