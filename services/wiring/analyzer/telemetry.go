// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "wirecheck/analyzer"

var (
	analyzeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wirecheck_analyze_duration_seconds",
		Help:    "Duration of wiring analysis passes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"complete"})

	cyclesFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wirecheck_cycles_found_total",
		Help: "Total dependency cycles detected across all passes.",
	})
)

// startAnalyzeSpan starts a tracing span for one analysis pass.
func startAnalyzeSpan(ctx context.Context, classes int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "analyzer.Run",
		trace.WithAttributes(
			attribute.Int("analyze.classes", classes),
		))
}

// setAnalyzeSpanResult records the pass outcome on the span.
func setAnalyzeSpanResult(span trace.Span, edges, diagnostics int, incomplete bool) {
	span.SetAttributes(
		attribute.Int("analyze.edges", edges),
		attribute.Int("analyze.diagnostics", diagnostics),
		attribute.Bool("analyze.incomplete", incomplete),
	)
}

// recordAnalyzeMetrics records Prometheus metrics for one pass.
func recordAnalyzeMetrics(_ context.Context, d time.Duration, cycles int, complete bool) {
	label := "false"
	if complete {
		label = "true"
	}
	analyzeDuration.WithLabelValues(label).Observe(d.Seconds())
	if cycles > 0 {
		cyclesFound.Add(float64(cycles))
	}
}
