// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command wirecheck statically validates Spring dependency wiring.
//
// It parses a Java project, resolves every injection point to the class the
// container would wire, flags ambiguous or broken bindings, and detects
// dependency cycles among beans.
//
// Usage:
//
//	wirecheck analyze ./path/to/project
//	wirecheck watch ./path/to/project
//	wirecheck serve
//
// Example requests against the server:
//
//	curl -X POST http://localhost:8087/v1/wiring/analyze \
//	  -H "Content-Type: application/json" \
//	  -d '{"project_root": "/path/to/project"}'
//
//	curl http://localhost:8087/v1/wiring/reports/latest | jq
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wirecheck/wirecheck/services/wiring/config"
)

// configPath and debugMode hold persistent flag values.
var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:           "wirecheck",
	Short:         "Static Spring wiring validation",
	Long:          "wirecheck parses a Java project and validates its dependency injection wiring without running it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig loads the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func main() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file overlaying the defaults")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
