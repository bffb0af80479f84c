// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads wirecheck configuration: embedded defaults, an
// optional YAML file overlay, and environment variable overrides.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wirecheck/wirecheck/services/wiring/beans"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// MarkersConfig names the annotations that drive classification.
type MarkersConfig struct {
	// BeanAnnotations are the class-level annotations marking a bean.
	BeanAnnotations []string `yaml:"bean_annotations" validate:"min=1,dive,required"`

	// Autowired is the injection marker annotation.
	Autowired string `yaml:"autowired" validate:"required"`

	// Qualifier is the qualifier annotation.
	Qualifier string `yaml:"qualifier" validate:"required"`

	// Primary is the primary-candidate annotation.
	Primary string `yaml:"primary" validate:"required"`

	// Lazy is the lazy-initialization annotation.
	Lazy string `yaml:"lazy" validate:"required"`
}

// Markers converts the configuration into the classifier's marker set.
func (m MarkersConfig) Markers() beans.Markers {
	return beans.Markers{
		Bean:      append([]string(nil), m.BeanAnnotations...),
		Autowired: m.Autowired,
		Qualifier: m.Qualifier,
		Primary:   m.Primary,
		Lazy:      m.Lazy,
	}
}

// AnalysisConfig bounds an analysis pass.
type AnalysisConfig struct {
	// WorkerCount is the number of parallel parse workers.
	// Zero means one per CPU.
	WorkerCount int `yaml:"worker_count" validate:"min=0,max=256"`

	// MaxFileSizeMB is the per-file parse limit in megabytes.
	MaxFileSizeMB int `yaml:"max_file_size_mb" validate:"min=1,max=1024"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddr is the address the server binds, e.g. ":8087".
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// ReadTimeoutSeconds bounds request reads.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds" validate:"min=1,max=300"`

	// WriteTimeoutSeconds bounds response writes.
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" validate:"min=1,max=600"`
}

// StorageConfig configures the report store.
type StorageConfig struct {
	// Path is the on-disk store directory. Empty disables persistence.
	Path string `yaml:"path"`
}

// Config is the full wirecheck configuration.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	Markers  MarkersConfig  `yaml:"markers"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return parse(defaultConfigYAML)
}

// Load returns the defaults overlaid with the optional YAML file at path
// (skipped when path is empty) and then with environment overrides.
//
// Environment overrides:
//
//	WIRECHECK_LISTEN_ADDR - server listen address
//	WIRECHECK_STORAGE_PATH - report store directory
//	WIRECHECK_WORKERS - parse worker count
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, readErr)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(content []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse defaults: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("WIRECHECK_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if path := os.Getenv("WIRECHECK_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if workers := os.Getenv("WIRECHECK_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n >= 0 {
			cfg.Analysis.WorkerCount = n
		}
	}
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validation: %w", err)
	}
	return nil
}
