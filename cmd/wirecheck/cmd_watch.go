// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wirecheck/wirecheck/services/wiring"
	"github.com/wirecheck/wirecheck/services/wiring/cli"
	"github.com/wirecheck/wirecheck/services/wiring/storage"
	"github.com/wirecheck/wirecheck/services/wiring/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project-root>",
	Short: "Analyze a project and re-run on source changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdown, err := setupTelemetry(cmd.Context())
	if err != nil {
		return err
	}
	defer shutdown(cmd.Context())

	var store *storage.ReportStore
	if cfg.Storage.Path != "" {
		store, err = storage.Open(cfg.Storage.Path, slog.Default())
		if err != nil {
			return err
		}
		defer store.Close()
	}

	service, err := wiring.NewService(cfg, store, slog.Default())
	if err != nil {
		return err
	}

	root := args[0]
	console := cli.NewConsole(os.Stdout)
	runOnce := func(ctx context.Context) {
		report, analyzeErr := service.Analyze(ctx, root, console.Progress)
		if analyzeErr != nil {
			slog.Error("analysis failed", "error", analyzeErr)
			return
		}
		console.PrintReport(report)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce(ctx)

	watcher, err := watch.New(root, runOnce, watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
