// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package project loads a Java project from disk: it discovers sources,
// parses them in parallel, and produces the symbol table and XML registry
// an analysis pass runs against.
package project

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/index"
	"github.com/wirecheck/wirecheck/services/wiring/springxml"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]struct{}{
	".git":         {},
	".idea":        {},
	"target":       {},
	"build":        {},
	"out":          {},
	"node_modules": {},
}

// Options configures a Loader.
type Options struct {
	// WorkerCount is the number of parallel parse workers.
	// Default: runtime.NumCPU().
	WorkerCount int

	// MaxFileSize is the per-file size limit handed to the parser, in
	// bytes. Zero keeps the parser default.
	MaxFileSize int64

	// Logger receives load-level log records.
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		WorkerCount: runtime.NumCPU(),
		Logger:      slog.Default(),
	}
}

// Option is a functional option for configuring Loader.
type Option func(*Options)

// WithWorkerCount sets the number of parallel parse workers.
func WithWorkerCount(n int) Option {
	return func(o *Options) {
		o.WorkerCount = n
	}
}

// WithMaxFileSize sets the per-file size limit in bytes.
func WithMaxFileSize(bytes int64) Option {
	return func(o *Options) {
		o.MaxFileSize = bytes
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// FileError records a file that could not be parsed or indexed. The load
// continues past it.
type FileError struct {
	// Path is the file that failed.
	Path string `json:"path"`

	// Message describes the failure.
	Message string `json:"message"`
}

// Result is a loaded project ready for analysis.
type Result struct {
	// Table is the populated symbol table.
	Table *index.SymbolTable

	// XMLRegistry holds XML-declared bean ids and component-scan packages.
	XMLRegistry *springxml.Registry

	// FilesParsed is the number of Java sources parsed successfully.
	FilesParsed int

	// FileErrors lists files skipped due to parse or index failures.
	FileErrors []FileError
}

// Loader loads projects from disk.
//
// Thread Safety: safe for concurrent use; each Load call owns its state.
type Loader struct {
	options Options
}

// NewLoader creates a new Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.WorkerCount <= 0 {
		options.WorkerCount = runtime.NumCPU()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Loader{options: options}
}

// Load discovers and parses the project rooted at root.
//
// Description:
//
//	Java sources are parsed in parallel by a bounded worker group, each
//	worker owning its parser since tree-sitter parsers are not safe for
//	concurrent use. Results are indexed serially under the table's own
//	locking. Per-file failures are collected, not fatal; only a walk
//	failure or context cancellation aborts the load.
func (l *Loader) Load(ctx context.Context, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project: resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("project: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project: root %s is not a directory", absRoot)
	}

	sources, err := discoverSources(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	l.options.Logger.Info("discovered project sources", "root", absRoot, "java_files", len(sources))

	result := &Result{
		Table: index.NewSymbolTable(),
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.options.WorkerCount)

	for _, path := range sources {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			parsed, parseErr := l.parseFile(groupCtx, path)

			mu.Lock()
			defer mu.Unlock()
			if parseErr != nil {
				result.FileErrors = append(result.FileErrors, FileError{Path: path, Message: parseErr.Error()})
				return nil
			}
			if indexErr := result.Table.AddParseResult(parsed); indexErr != nil {
				result.FileErrors = append(result.FileErrors, FileError{Path: path, Message: indexErr.Error()})
				return nil
			}
			result.FilesParsed++
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	registry, err := springxml.NewLoader(l.options.Logger).LoadDir(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	result.XMLRegistry = registry

	stats := result.Table.Stats()
	l.options.Logger.Info("project loaded",
		"files_parsed", result.FilesParsed,
		"file_errors", len(result.FileErrors),
		"classes", stats.TotalClasses,
	)
	return result, nil
}

// parseFile reads and parses one Java source with a worker-local parser.
func (l *Loader) parseFile(ctx context.Context, path string) (*ast.ParseResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var opts []ast.JavaParserOption
	if l.options.MaxFileSize > 0 {
		opts = append(opts, ast.WithJavaMaxFileSize(l.options.MaxFileSize))
	}
	return ast.NewJavaParser(opts...).Parse(ctx, content, path)
}

// discoverSources walks root and returns every .java file, skipping build
// output and VCS directories.
func discoverSources(ctx context.Context, root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if _, skip := skipDirs[entry.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".java") {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("project: walk %s: %w", root, err)
	}
	return sources, nil
}
