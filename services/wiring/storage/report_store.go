// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage persists analysis reports in BadgerDB.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/wirecheck/wirecheck/services/wiring/analyzer"
)

// BadgerDB key prefixes for reports.
const (
	keyPrefixReport = "wiring:report:"
	keyLatest       = "wiring:report-latest"
)

// ErrReportNotFound marks a lookup for a report id the store does not hold.
var ErrReportNotFound = errors.New("storage: report not found")

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	// ID is the report identifier.
	ID string `json:"id"`

	// GeneratedAt is the report timestamp, RFC 3339.
	GeneratedAt string `json:"generated_at"`

	// ProjectRoot is the analyzed project root.
	ProjectRoot string `json:"project_root,omitempty"`

	// Diagnostics is the diagnostic count.
	Diagnostics int `json:"diagnostics"`

	// Cycles is the cycle count.
	Cycles int `json:"cycles"`
}

// ReportStore manages saving and loading analysis reports in BadgerDB.
//
// Description:
//
//	Reports are stored as JSON under wiring:report:{id}; a latest pointer
//	tracks the most recent save. Reports are small so no compression is
//	applied.
//
// Thread Safety:
//
//	Safe for concurrent use. BadgerDB handles its own concurrency control.
type ReportStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewReportStore creates a new ReportStore.
//
// Inputs:
//
//	db - An opened BadgerDB instance. Must not be nil.
//	logger - Logger for diagnostic output. Must not be nil.
func NewReportStore(db *badger.DB, logger *slog.Logger) (*ReportStore, error) {
	if db == nil {
		return nil, fmt.Errorf("badger db must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	return &ReportStore{db: db, logger: logger}, nil
}

// Open opens (or creates) a BadgerDB at path for report storage.
func Open(path string, logger *slog.Logger) (*ReportStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	return NewReportStore(db, logger)
}

// Close closes the underlying database.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// Save persists a report and updates the latest pointer.
func (s *ReportStore) Save(ctx context.Context, report *analyzer.Report) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}
	if report == nil || report.ID == "" {
		return fmt.Errorf("report must not be nil and must carry an id")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	key := keyPrefixReport + report.ID
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), payload); err != nil {
			return fmt.Errorf("storing report: %w", err)
		}
		if err := txn.Set([]byte(keyLatest), []byte(report.ID)); err != nil {
			return fmt.Errorf("updating latest pointer: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing report to badger: %w", err)
	}

	s.logger.Info("report saved",
		slog.String("report_id", report.ID),
		slog.Int("diagnostics", len(report.Diagnostics)),
		slog.Int("cycles", len(report.Cycles)),
	)
	return nil
}

// Get retrieves a report by its id.
func (s *ReportStore) Get(ctx context.Context, id string) (*analyzer.Report, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if id == "" {
		return nil, fmt.Errorf("report id must not be empty")
	}

	var report analyzer.Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefixReport + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Latest retrieves the most recently saved report.
func (s *ReportStore) Latest(ctx context.Context) (*analyzer.Report, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLatest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns summaries of all stored reports, newest first.
func (s *ReportStore) List(ctx context.Context) ([]ReportSummary, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	var summaries []ReportSummary
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixReport)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var report analyzer.Report
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &report)
			})
			if err != nil {
				return err
			}
			summaries = append(summaries, ReportSummary{
				ID:          report.ID,
				GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
				ProjectRoot: report.ProjectRoot,
				Diagnostics: len(report.Diagnostics),
				Cycles:      len(report.Cycles),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt > summaries[j].GeneratedAt
	})
	return summaries, nil
}

// Delete removes a report by its id. Deleting an absent report is an error.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}
	if id == "" {
		return fmt.Errorf("report id must not be empty")
	}

	key := []byte(keyPrefixReport + id)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReportNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
