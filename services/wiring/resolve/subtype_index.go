// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolve implements injection-point resolution: finding the concrete
// class(es) a container would wire for a declared type and applying the
// disambiguation policy (qualifier, primary marker, self-exclusion).
package resolve

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
)

// subtypeMemoSize bounds the per-pass implementor memo. Generous for any
// realistic project; evictions only cost a recomputation.
const subtypeMemoSize = 4096

// SymbolLookup is the symbol table view resolution needs.
type SymbolLookup interface {
	// ResolveType resolves a declared type reference to a class symbol.
	ResolveType(typeName, ownerPackage string) (*ast.ClassSymbol, bool)

	// DirectSubtypesOf returns the classes directly extending or
	// implementing the given class.
	DirectSubtypesOf(cls *ast.ClassSymbol) []*ast.ClassSymbol
}

// SubtypeIndex computes the transitive concrete implementors of a type.
//
// An index is created per analysis pass and discarded with it; the internal
// memo never outlives one pass. The visited set bounding the recursion here
// is independent of the cycle detector's traversal state and must stay that
// way: one guards the type hierarchy, the other the dependency graph.
type SubtypeIndex struct {
	table SymbolLookup
	memo  *lru.Cache[string, []*ast.ClassSymbol]
}

// NewSubtypeIndex creates a SubtypeIndex over the given symbol table view.
func NewSubtypeIndex(table SymbolLookup) *SubtypeIndex {
	// lru.New only fails for a non-positive size.
	memo, _ := lru.New[string, []*ast.ClassSymbol](subtypeMemoSize)
	return &SubtypeIndex{
		table: table,
		memo:  memo,
	}
}

// ImplementorsOf returns the concrete classes a value of the given type
// could be wired with.
//
// Description:
//
//	A concrete input is its own sole implementor. For an abstract class or
//	interface the type hierarchy is walked: concrete subtypes are
//	collected, abstract/interface subtypes are recursed into. A visited set
//	keyed by qualified name guards against circular hierarchies, and the
//	result is deduplicated by qualified name and sorted for determinism.
func (s *SubtypeIndex) ImplementorsOf(cls *ast.ClassSymbol) []*ast.ClassSymbol {
	if cls == nil {
		return nil
	}
	if cls.Kind == ast.KindConcrete {
		return []*ast.ClassSymbol{cls}
	}

	if cached, ok := s.memo.Get(cls.QualifiedName); ok {
		return cached
	}

	found := make(map[string]*ast.ClassSymbol)
	visited := make(map[string]struct{})
	s.collect(cls, visited, found)

	result := make([]*ast.ClassSymbol, 0, len(found))
	for _, impl := range found {
		result = append(result, impl)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].QualifiedName < result[j].QualifiedName
	})

	s.memo.Add(cls.QualifiedName, result)
	return result
}

// collect recursively gathers concrete implementors.
func (s *SubtypeIndex) collect(cls *ast.ClassSymbol, visited map[string]struct{}, found map[string]*ast.ClassSymbol) {
	if _, seen := visited[cls.QualifiedName]; seen {
		return
	}
	visited[cls.QualifiedName] = struct{}{}

	for _, sub := range s.table.DirectSubtypesOf(cls) {
		if sub.Kind == ast.KindConcrete {
			found[sub.QualifiedName] = sub
			continue
		}
		s.collect(sub, visited, found)
	}
}
