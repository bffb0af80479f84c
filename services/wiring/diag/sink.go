// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diag defines where analysis findings go.
//
// Every detected issue is non-fatal: it is reported once through a Sink and
// the analysis moves on. Severity is implicit in the message text; the
// analysis does not model severity levels.
package diag

import (
	"log/slog"
	"sync"
)

// Sink receives free-text diagnostics, one call per distinct issue.
type Sink interface {
	Report(message string)
}

// Collector is a Sink that accumulates diagnostics in order.
//
// Thread Safety: safe for concurrent use, though a single analysis pass
// reports from one goroutine only.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report appends the message to the collected diagnostics.
func (c *Collector) Report(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Messages returns a copy of the collected diagnostics in report order.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// SlogSink is a Sink that logs each diagnostic as a warning.
type SlogSink struct {
	Logger *slog.Logger
}

// Report logs the message.
func (s *SlogSink) Report(message string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("wiring diagnostic", slog.String("message", message))
}

// Tee fans a diagnostic out to several sinks.
type Tee []Sink

// Report forwards the message to every sink.
func (t Tee) Report(message string) {
	for _, s := range t {
		s.Report(message)
	}
}
