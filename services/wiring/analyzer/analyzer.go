// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analyzer runs a full wiring analysis pass over an indexed project:
// bean classification, injection-point resolution, constructor policy, and
// dependency-cycle detection.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/beans"
	"github.com/wirecheck/wirecheck/services/wiring/cycle"
	"github.com/wirecheck/wirecheck/services/wiring/diag"
	"github.com/wirecheck/wirecheck/services/wiring/index"
	"github.com/wirecheck/wirecheck/services/wiring/resolve"
	"github.com/wirecheck/wirecheck/services/wiring/springxml"
)

// cancelCheckInterval is how many classes are processed between context
// checks. Cancellation is coarse: a class in flight always finishes.
const cancelCheckInterval = 64

// progressInterval is how many classes are processed between progress
// callbacks.
const progressInterval = 32

// Phase indicates which phase of an analysis pass is in progress.
type Phase int

const (
	// PhaseResolving indicates classes are being classified and their
	// injection points resolved.
	PhaseResolving Phase = iota

	// PhaseCycles indicates the dependency graph is being searched for
	// cycles.
	PhaseCycles

	// PhaseFinalizing indicates the report is being assembled.
	PhaseFinalizing
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseCycles:
		return "cycles"
	case PhaseFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Progress contains progress information during an analysis pass.
type Progress struct {
	// Phase is the current pass phase.
	Phase Phase

	// ClassesTotal is the total number of classes to examine.
	ClassesTotal int

	// ClassesProcessed is the number of classes examined so far.
	ClassesProcessed int

	// EdgesCreated is the number of dependency edges recorded so far.
	EdgesCreated int

	// Diagnostics is the number of diagnostics reported so far.
	Diagnostics int
}

// ProgressFunc is a callback function for analysis progress updates.
type ProgressFunc func(progress Progress)

// Options configures Analyzer behavior.
type Options struct {
	// Markers is the annotation marker set used to classify beans.
	Markers beans.Markers

	// XMLRegistry supplies XML-declared bean ids and component-scan
	// packages. May be nil.
	XMLRegistry *springxml.Registry

	// ProjectRoot is recorded on the report. May be empty.
	ProjectRoot string

	// ProgressCallback is called periodically with pass progress.
	// May be nil.
	ProgressCallback ProgressFunc

	// ExtraSink receives every diagnostic in addition to the report.
	// May be nil.
	ExtraSink diag.Sink

	// Logger receives pass-level log records.
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Markers: beans.DefaultMarkers(),
		Logger:  slog.Default(),
	}
}

// Option is a functional option for configuring Analyzer.
type Option func(*Options)

// WithMarkers sets the annotation marker set.
func WithMarkers(markers beans.Markers) Option {
	return func(o *Options) {
		o.Markers = markers
	}
}

// WithXMLRegistry sets the XML bean-id and component-scan registry.
func WithXMLRegistry(registry *springxml.Registry) Option {
	return func(o *Options) {
		o.XMLRegistry = registry
	}
}

// WithProjectRoot sets the project root recorded on reports.
func WithProjectRoot(root string) Option {
	return func(o *Options) {
		o.ProjectRoot = root
	}
}

// WithProgressCallback sets the progress callback function.
func WithProgressCallback(fn ProgressFunc) Option {
	return func(o *Options) {
		o.ProgressCallback = fn
	}
}

// WithExtraSink adds a sink that receives diagnostics alongside the report.
func WithExtraSink(sink diag.Sink) Option {
	return func(o *Options) {
		o.ExtraSink = sink
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Analyzer runs wiring analysis passes.
//
// The analyzer is stateless across passes and can be reused; each Run call
// operates on its own pass state.
//
// Thread Safety:
//
//	Analyzer is safe for concurrent use. Each Run call operates
//	independently with its own internal state.
type Analyzer struct {
	options Options
}

// New creates a new Analyzer with the given options.
//
// Example:
//
//	a := analyzer.New(
//	    analyzer.WithMarkers(markers),
//	    analyzer.WithXMLRegistry(registry),
//	)
func New(opts ...Option) *Analyzer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Analyzer{options: options}
}

// passState holds mutable state during a single pass.
type passState struct {
	collector  *diag.Collector
	sink       diag.Sink
	classifier *beans.Classifier
	ctorPolicy *beans.ConstructorPolicyChecker
	resolver   *resolve.Resolver
	pass       *resolve.Pass
	graph      *cycle.Graph
	report     *Report
	startTime  time.Time
}

// Run executes one analysis pass over the symbol table.
//
// Description:
//
//	Phase 1 walks every declared class: bean classification, constructor
//	policy, injection-point resolution, and dependency-edge recording.
//	A panic while analyzing one class is captured as a ClassError and the
//	pass continues. Phase 2 searches the recorded graph for cycles.
//	Phase 3 assembles the report.
//
// Inputs:
//
//	ctx - Context for cancellation, checked between classes. A cancelled
//	      pass returns its partial report with Incomplete set.
//	table - The indexed project. Treated as a read-only snapshot.
//
// Outputs:
//
//	*Report - Diagnostics, cycles, class errors, and pass statistics.
//	error - Non-nil only for invalid input; cancellation is not an error.
func (a *Analyzer) Run(ctx context.Context, table *index.SymbolTable) (*Report, error) {
	if table == nil {
		return nil, fmt.Errorf("analyzer: nil symbol table")
	}

	classes := table.AllDeclaredClasses()
	ctx, span := startAnalyzeSpan(ctx, len(classes))
	defer span.End()

	state := a.newPassState()
	state.report.Stats.ClassesTotal = len(classes)

	var beanIDs resolve.BeanIDRegistry
	if a.options.XMLRegistry != nil {
		beanIDs = a.options.XMLRegistry
	}
	subtypes := resolve.NewSubtypeIndex(table)
	qualifiers := resolve.NewQualifierValidator(a.options.Markers, beanIDs, state.sink)
	state.resolver = resolve.NewResolver(table, subtypes, state.classifier, qualifiers, state.sink)

	incomplete := a.resolvePhase(ctx, state, classes)
	if !incomplete {
		a.cyclePhase(state)
	}
	a.finalize(state, incomplete)

	setAnalyzeSpanResult(span, state.report.Stats.EdgesCreated, len(state.report.Diagnostics), incomplete)
	recordAnalyzeMetrics(ctx, time.Since(state.startTime), state.report.Stats.CyclesFound, !incomplete)

	a.options.Logger.Info("analysis pass finished",
		"report_id", state.report.ID,
		"classes", state.report.Stats.ClassesTotal,
		"beans", state.report.Stats.BeansFound,
		"diagnostics", len(state.report.Diagnostics),
		"cycles", state.report.Stats.CyclesFound,
		"incomplete", incomplete,
	)
	return state.report, nil
}

func (a *Analyzer) newPassState() *passState {
	collector := diag.NewCollector()
	var sink diag.Sink = collector
	if a.options.ExtraSink != nil {
		sink = diag.Tee{collector, a.options.ExtraSink}
	}

	return &passState{
		collector:  collector,
		sink:       sink,
		classifier: beans.NewClassifier(a.options.Markers),
		ctorPolicy: beans.NewConstructorPolicyChecker(a.options.Markers, sink),
		pass:       resolve.NewPass(),
		graph:      cycle.NewGraph(),
		report: &Report{
			ProjectRoot: a.options.ProjectRoot,
			Diagnostics: []string{},
			Cycles:      []cycle.Cycle{},
		},
		startTime: time.Now(),
	}
}

// resolvePhase classifies and resolves every class. Returns true when the
// context was cancelled before all classes were processed.
func (a *Analyzer) resolvePhase(ctx context.Context, state *passState, classes []*ast.ClassSymbol) bool {
	for i, cls := range classes {
		if i%cancelCheckInterval == 0 && ctx.Err() != nil {
			return true
		}
		if err := a.analyzeClass(state, cls); err != nil {
			state.report.ClassErrors = append(state.report.ClassErrors, ClassError{
				Class:   cls.QualifiedName,
				Message: err.Error(),
			})
		}
		if i%progressInterval == 0 {
			a.reportProgress(state, PhaseResolving, len(classes), i+1)
		}
	}
	a.reportProgress(state, PhaseResolving, len(classes), len(classes))
	return false
}

// analyzeClass processes one class. A panic is converted to an error so one
// pathological class cannot sink the pass.
func (a *Analyzer) analyzeClass(state *passState, cls *ast.ClassSymbol) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	if !state.classifier.IsBean(cls) {
		return nil
	}
	state.report.Stats.BeansFound++

	if reg := a.options.XMLRegistry; reg != nil && len(reg.ScanPackages()) > 0 {
		if !reg.InScannedPackage(cls.Package) {
			state.sink.Report(fmt.Sprintf(
				"bean %s is outside all component-scan packages and will not be registered",
				cls.QualifiedName))
		}
	}

	state.ctorPolicy.Check(cls)
	state.graph.AddNode(cls.QualifiedName)

	points := state.classifier.InjectionPoints(cls)
	state.report.Stats.InjectionPoints += len(points)
	for i := range points {
		point := &points[i]
		target, ok := state.resolver.Resolve(state.pass, point)
		if !ok || target == nil {
			continue
		}
		// Lazy points break the graph contribution, not the resolution.
		if point.Lazy {
			continue
		}
		if !state.graph.HasEdge(cls.QualifiedName, target.QualifiedName) {
			state.graph.AddEdge(cls.QualifiedName, target.QualifiedName)
			state.report.Stats.EdgesCreated++
		}
	}
	return nil
}

// cyclePhase searches the recorded dependency graph for cycles.
func (a *Analyzer) cyclePhase(state *passState) {
	a.reportProgress(state, PhaseCycles, state.report.Stats.ClassesTotal, state.report.Stats.ClassesTotal)
	detector := cycle.NewDetector(state.sink)
	state.report.Cycles = detector.Detect(state.graph)
	state.report.Stats.CyclesFound = len(state.report.Cycles)
}

func (a *Analyzer) finalize(state *passState, incomplete bool) {
	a.reportProgress(state, PhaseFinalizing, state.report.Stats.ClassesTotal, state.report.Stats.ClassesTotal)
	state.report.ID = uuid.NewString()
	state.report.GeneratedAt = time.Now().UTC()
	state.report.Incomplete = incomplete
	state.report.Diagnostics = state.collector.Messages()
	state.report.Stats.DurationMilli = time.Since(state.startTime).Milliseconds()
}

func (a *Analyzer) reportProgress(state *passState, phase Phase, total, processed int) {
	if a.options.ProgressCallback == nil {
		return
	}
	a.options.ProgressCallback(Progress{
		Phase:            phase,
		ClassesTotal:     total,
		ClassesProcessed: processed,
		EdgesCreated:     state.report.Stats.EdgesCreated,
		Diagnostics:      state.collector.Len(),
	})
}
