// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"time"

	"github.com/wirecheck/wirecheck/services/wiring/cycle"
)

// ClassError records an analysis failure isolated to one class. The rest of
// the pass continues past it.
type ClassError struct {
	// Class is the qualified name of the class that failed.
	Class string `json:"class"`

	// Message describes the failure.
	Message string `json:"message"`
}

// Stats summarizes one analysis pass.
type Stats struct {
	// ClassesTotal is the number of classes examined.
	ClassesTotal int `json:"classes_total"`

	// BeansFound is the number of classes classified as beans.
	BeansFound int `json:"beans_found"`

	// InjectionPoints is the number of injection points enumerated.
	InjectionPoints int `json:"injection_points"`

	// EdgesCreated is the number of dependency edges recorded.
	EdgesCreated int `json:"edges_created"`

	// CyclesFound is the number of distinct cycles detected.
	CyclesFound int `json:"cycles_found"`

	// DurationMilli is the pass duration in milliseconds.
	DurationMilli int64 `json:"duration_ms"`
}

// Report is the result of one analysis pass.
type Report struct {
	// ID uniquely identifies the report.
	ID string `json:"id"`

	// GeneratedAt is when the pass finished.
	GeneratedAt time.Time `json:"generated_at"`

	// ProjectRoot is the analyzed project root, empty when the symbols
	// were supplied directly.
	ProjectRoot string `json:"project_root,omitempty"`

	// Diagnostics are the wiring problems found, in discovery order.
	Diagnostics []string `json:"diagnostics"`

	// Cycles are the distinct dependency cycles found.
	Cycles []cycle.Cycle `json:"cycles"`

	// ClassErrors are per-class analysis failures.
	ClassErrors []ClassError `json:"class_errors,omitempty"`

	// Incomplete is true when the pass was cancelled before finishing.
	// The report still holds everything found up to that point.
	Incomplete bool `json:"incomplete,omitempty"`

	// Stats summarizes the pass.
	Stats Stats `json:"stats"`
}

// Clean reports whether the pass found no problems at all.
func (r *Report) Clean() bool {
	return len(r.Diagnostics) == 0 && len(r.Cycles) == 0 && len(r.ClassErrors) == 0
}
