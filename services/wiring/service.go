// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package wiring is the service layer: it ties project loading, analysis,
// and report storage together behind one API used by both the HTTP
// handlers and the command line.
package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wirecheck/wirecheck/services/wiring/analyzer"
	"github.com/wirecheck/wirecheck/services/wiring/config"
	"github.com/wirecheck/wirecheck/services/wiring/project"
	"github.com/wirecheck/wirecheck/services/wiring/storage"
)

// Service runs analyses and keeps the most recent report available.
//
// Thread Safety:
//
//	Safe for concurrent use. Analyses run independently; only the latest
//	report pointer is shared, under its own lock.
type Service struct {
	cfg    *config.Config
	store  *storage.ReportStore
	logger *slog.Logger

	mu     sync.RWMutex
	latest *analyzer.Report
}

// NewService creates a Service. The store may be nil, in which case reports
// live only in memory.
func NewService(cfg *config.Config, store *storage.ReportStore, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("wiring: config must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, store: store, logger: logger}, nil
}

// Analyze loads the project at root and runs one analysis pass.
//
// Description:
//
//	Sources are parsed in parallel and indexed, the XML registry is
//	loaded, and the analyzer runs over the result. When a store is
//	configured the report is persisted; either way it becomes the
//	service's latest report. Per-file load errors are folded into the
//	report as class errors so callers see them without failing the run.
func (s *Service) Analyze(ctx context.Context, root string, progress analyzer.ProgressFunc) (*analyzer.Report, error) {
	loader := project.NewLoader(
		project.WithWorkerCount(s.cfg.Analysis.WorkerCount),
		project.WithMaxFileSize(int64(s.cfg.Analysis.MaxFileSizeMB)<<20),
		project.WithLogger(s.logger),
	)
	loaded, err := loader.Load(ctx, root)
	if err != nil {
		return nil, err
	}

	a := analyzer.New(
		analyzer.WithMarkers(s.cfg.Markers.Markers()),
		analyzer.WithXMLRegistry(loaded.XMLRegistry),
		analyzer.WithProjectRoot(root),
		analyzer.WithProgressCallback(progress),
		analyzer.WithLogger(s.logger),
	)
	report, err := a.Run(ctx, loaded.Table)
	if err != nil {
		return nil, err
	}

	for _, fileErr := range loaded.FileErrors {
		report.ClassErrors = append(report.ClassErrors, analyzer.ClassError{
			Class:   fileErr.Path,
			Message: fileErr.Message,
		})
	}

	if s.store != nil {
		if saveErr := s.store.Save(ctx, report); saveErr != nil {
			s.logger.Warn("could not persist report", "report_id", report.ID, "error", saveErr)
		}
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()
	return report, nil
}

// Report returns a report by id, consulting the in-memory latest report
// first and then the store.
func (s *Service) Report(ctx context.Context, id string) (*analyzer.Report, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil && latest.ID == id {
		return latest, nil
	}
	if s.store == nil {
		return nil, storage.ErrReportNotFound
	}
	return s.store.Get(ctx, id)
}

// Latest returns the most recent report, or ErrReportNotFound when no
// analysis has run and the store is empty.
func (s *Service) Latest(ctx context.Context) (*analyzer.Report, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	if s.store == nil {
		return nil, storage.ErrReportNotFound
	}
	return s.store.Latest(ctx)
}

// ListReports lists stored report summaries. Without a store only the
// in-memory latest report is listed.
func (s *Service) ListReports(ctx context.Context) ([]storage.ReportSummary, error) {
	if s.store != nil {
		return s.store.List(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, nil
	}
	return []storage.ReportSummary{{
		ID:          s.latest.ID,
		GeneratedAt: s.latest.GeneratedAt.Format(time.RFC3339),
		ProjectRoot: s.latest.ProjectRoot,
		Diagnostics: len(s.latest.Diagnostics),
		Cycles:      len(s.latest.Cycles),
	}}, nil
}

// DeleteReport removes a stored report.
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	matchedLatest := s.latest != nil && s.latest.ID == id
	if matchedLatest {
		s.latest = nil
	}
	s.mu.Unlock()
	if s.store == nil {
		if !matchedLatest {
			return storage.ErrReportNotFound
		}
		return nil
	}
	return s.store.Delete(ctx, id)
}
