// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package watch re-runs analysis when project sources change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event before
// triggering. Editors and builds touch many files in a burst; one trigger
// per burst is the point.
const DefaultDebounce = 750 * time.Millisecond

// TriggerFunc is called after a settled burst of relevant file changes.
type TriggerFunc func(ctx context.Context)

// Watcher watches a project tree and fires a trigger when Java sources or
// XML configuration change.
//
// Thread Safety: Run owns all watcher state; one Run per Watcher.
type Watcher struct {
	root     string
	debounce time.Duration
	trigger  TriggerFunc
	logger   *slog.Logger
}

// Option is a functional option for configuring Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay between a change burst and the trigger.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher over the project root.
func New(root string, trigger TriggerFunc, opts ...Option) (*Watcher, error) {
	if trigger == nil {
		return nil, fmt.Errorf("watch: trigger must not be nil")
	}
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		trigger:  trigger,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until the context is cancelled.
//
// Description:
//
//	Every directory under the root is registered, and directories created
//	while watching are added as they appear. Events for irrelevant files
//	are dropped; relevant ones reset a debounce timer, and the trigger
//	fires once the burst settles.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := w.addTree(fsWatcher, w.root); err != nil {
		return err
	}
	w.logger.Info("watching project", "root", w.root, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories need registering before their
				// contents produce events.
				_ = w.addTree(fsWatcher, event.Name)
			}
			if !relevant(event.Name) {
				continue
			}
			w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			w.logger.Info("change burst settled, triggering analysis")
			w.trigger(ctx)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// addTree registers path and every directory beneath it. Non-directories
// and vanished paths are ignored.
func (w *Watcher) addTree(fsWatcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil
		}
		if name := entry.Name(); name == ".git" || name == "target" || name == "build" {
			return filepath.SkipDir
		}
		if addErr := fsWatcher.Add(path); addErr != nil {
			w.logger.Warn("cannot watch directory", "path", path, "error", addErr)
		}
		return nil
	})
}

// relevant reports whether a change to the path can affect analysis.
func relevant(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".java" || ext == ".xml"
}
