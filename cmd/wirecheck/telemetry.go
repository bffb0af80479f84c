// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setupTelemetry wires the OpenTelemetry SDK: W3C propagation, a Prometheus
// bridge for metrics, and an optional stdout span exporter enabled with
// WIRECHECK_TRACE_STDOUT=1.
//
// Outputs:
//
//	shutdown - Flushes and stops the providers. Safe to call once.
//	error - Non-nil if an exporter could not be created.
func setupTelemetry(ctx context.Context) (func(context.Context), error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricExporter))
	otel.SetMeterProvider(meterProvider)

	traceOpts := []sdktrace.TracerProviderOption{}
	if os.Getenv("WIRECHECK_TRACE_STDOUT") == "1" {
		spanExporter, exporterErr := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if exporterErr != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", exporterErr)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spanExporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)

	shutdown := func(ctx context.Context) {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Warn("tracer provider shutdown", "error", err)
		}
		if err := meterProvider.Shutdown(ctx); err != nil {
			slog.Warn("meter provider shutdown", "error", err)
		}
	}
	return shutdown, nil
}
