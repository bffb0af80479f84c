// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package springxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// beansNamespace identifies a Spring beans configuration document.
const beansNamespace = "http://www.springframework.org/schema/beans"

// ErrNotSpringConfig marks an XML document whose root is not a Spring beans
// element. Callers walking a tree of mixed XML files skip these.
var ErrNotSpringConfig = errors.New("springxml: not a spring beans document")

// Parse extracts bean ids and component-scan packages from one XML document
// into the registry.
//
// Description:
//
//	The document is token-streamed, never fully unmarshalled, so nested and
//	namespaced content is handled without a schema. Only two elements
//	matter: <bean id="..."> and <context:component-scan base-package="...">
//	(base-package accepts a comma or semicolon separated list).
func Parse(content []byte, registry *Registry) error {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	sawRoot := false

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("springxml: decode: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			sawRoot = true
			if start.Name.Local != "beans" || start.Name.Space != beansNamespace {
				return ErrNotSpringConfig
			}
			continue
		}

		switch start.Name.Local {
		case "bean":
			if id, ok := attr(start, "id"); ok {
				registry.AddBeanID(id)
			}
		case "component-scan":
			if pkgs, ok := attr(start, "base-package"); ok {
				for _, pkg := range splitPackageList(pkgs) {
					registry.AddScanPackage(pkg)
				}
			}
		}
	}

	if !sawRoot {
		return ErrNotSpringConfig
	}
	return nil
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func splitPackageList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// Loader walks a project tree and feeds every Spring XML file it finds into
// a Registry.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger defaults to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadDir walks root and parses every .xml file whose root element is a
// Spring beans document.
//
// Outputs:
//
//	registry - Collected ids and scan packages across all matched files.
//	err - Walk or read failures. Non-Spring XML files are skipped, not
//	      errors; malformed XML is logged and skipped so one bad file
//	      cannot sink the load.
func (l *Loader) LoadDir(ctx context.Context, root string) (*Registry, error) {
	registry := NewRegistry()

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xml") {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("springxml: read %s: %w", path, readErr)
		}

		parseErr := Parse(content, registry)
		switch {
		case errors.Is(parseErr, ErrNotSpringConfig):
			return nil
		case parseErr != nil:
			l.logger.Warn("skipping malformed spring xml", "path", path, "error", parseErr)
			return nil
		}
		l.logger.Debug("loaded spring xml", "path", path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}
