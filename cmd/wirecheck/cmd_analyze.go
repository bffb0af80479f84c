// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wirecheck/wirecheck/services/wiring"
	"github.com/wirecheck/wirecheck/services/wiring/cli"
	"github.com/wirecheck/wirecheck/services/wiring/storage"
)

// failOnFindings holds the --fail-on-findings flag for the analyze command.
var failOnFindings bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-root>",
	Short: "Run one wiring analysis pass over a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&failOnFindings, "fail-on-findings", false,
		"Exit with status 1 when the report contains diagnostics or cycles")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	console := cli.NewConsole(os.Stdout)
	report, err := service.Analyze(cmd.Context(), args[0], console.Progress)
	if err != nil {
		return err
	}
	console.PrintReport(report)

	if failOnFindings && !report.Clean() {
		return fmt.Errorf("found %d diagnostics, %d cycles",
			len(report.Diagnostics), len(report.Cycles))
	}
	return nil
}
