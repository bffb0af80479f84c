// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "wirecheck/ast"

var (
	parseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wirecheck_parse_duration_seconds",
		Help:    "Duration of Java source parses.",
		Buckets: prometheus.DefBuckets,
	}, []string{"success"})

	parseClasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wirecheck_parse_classes_total",
		Help: "Total class symbols extracted from Java sources.",
	})
)

// startParseSpan starts a tracing span for a single file parse.
func startParseSpan(ctx context.Context, filePath string, sizeBytes int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ast.Parse",
		trace.WithAttributes(
			attribute.String("file.path", filePath),
			attribute.Int("file.size_bytes", sizeBytes),
		))
}

// setParseSpanResult records the parse outcome on the span.
func setParseSpanResult(span trace.Span, classes int, hadSyntaxErrors bool) {
	span.SetAttributes(
		attribute.Int("parse.classes", classes),
		attribute.Bool("parse.syntax_errors", hadSyntaxErrors),
	)
}

// recordParseMetrics records Prometheus metrics for one parse.
func recordParseMetrics(_ context.Context, d time.Duration, classes int, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	parseDuration.WithLabelValues(label).Observe(d.Seconds())
	if classes > 0 {
		parseClasses.Add(float64(classes))
	}
}
