// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package springxml reads Spring XML configuration: externally declared bean
// ids and component-scan base packages.
package springxml

import (
	"sort"
	"strings"
	"sync"
)

// Registry holds the bean ids and component-scan packages collected from a
// project's XML configuration.
//
// Thread Safety: safe for concurrent use. Writes happen during loading,
// reads during analysis; the mutex covers both.
type Registry struct {
	mu           sync.RWMutex
	ids          map[string]struct{}
	scanPackages map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:          make(map[string]struct{}),
		scanPackages: make(map[string]struct{}),
	}
}

// Exists reports whether a bean with the given id is declared in XML.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[name]
	return ok
}

// AddBeanID records an XML-declared bean id. Blank ids are ignored.
func (r *Registry) AddBeanID(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = struct{}{}
}

// AddScanPackage records a component-scan base package. Blank entries are
// ignored.
func (r *Registry) AddScanPackage(pkg string) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanPackages[pkg] = struct{}{}
}

// BeanIDs returns all declared bean ids, sorted.
func (r *Registry) BeanIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.ids)
}

// ScanPackages returns all component-scan base packages, sorted.
func (r *Registry) ScanPackages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.scanPackages)
}

// InScannedPackage reports whether the package falls under any recorded
// component-scan base package. An empty registry scans nothing.
func (r *Registry) InScannedPackage(pkg string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for base := range r.scanPackages {
		if pkg == base || strings.HasPrefix(pkg, base+".") {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
