// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package index provides the symbol table the wiring analysis runs against:
// fast lookups of class symbols by qualified name plus the direct-subtype
// relation derived from extends/implements clauses.
package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
)

// Default configuration values.
const (
	// DefaultMaxClasses is the default maximum number of classes the table
	// can hold.
	DefaultMaxClasses = 500_000
)

// SymbolTableOptions configures SymbolTable behavior and limits.
type SymbolTableOptions struct {
	// MaxClasses is the maximum number of classes the table can hold.
	// Attempting to add more returns ErrMaxClassesExceeded.
	// Default: 500,000
	MaxClasses int
}

// DefaultSymbolTableOptions returns the default options.
func DefaultSymbolTableOptions() SymbolTableOptions {
	return SymbolTableOptions{
		MaxClasses: DefaultMaxClasses,
	}
}

// SymbolTableOption is a functional option for configuring SymbolTable.
type SymbolTableOption func(*SymbolTableOptions)

// WithMaxClasses sets the maximum number of classes the table can hold.
func WithMaxClasses(max int) SymbolTableOption {
	return func(o *SymbolTableOptions) {
		o.MaxClasses = max
	}
}

// TableStats contains statistics about the symbol table.
type TableStats struct {
	// TotalClasses is the number of classes in the table.
	TotalClasses int

	// ByKind maps each ClassKind to the count of classes of that kind.
	ByKind map[ast.ClassKind]int

	// FileCount is the number of unique source files contributing classes.
	FileCount int
}

// SymbolTable provides O(1) lookups of class symbols by qualified name.
//
// The table maintains three indexes:
//   - byQualifiedName: primary index, globally unique key
//   - bySimpleName: secondary index (several classes can share a simple name)
//   - subtypes: direct-subtype relation, rebuilt lazily after mutation
//
// Thread Safety:
//
//	SymbolTable is safe for concurrent use. The analysis itself consumes it
//	as an immutable snapshot: nothing is added while a pass runs.
//
// Ownership:
//
//	The table stores pointers to symbols but does not own them. Symbols
//	MUST NOT be mutated after being added.
type SymbolTable struct {
	mu sync.RWMutex

	byQualifiedName map[string]*ast.ClassSymbol
	bySimpleName    map[string][]*ast.ClassSymbol

	// subtypes maps a supertype's qualified name to the qualified names of
	// its direct subtypes. Rebuilt on demand when dirty.
	subtypes map[string][]string
	dirty    bool

	kindCounts map[ast.ClassKind]int
	files      map[string]struct{}

	options SymbolTableOptions
}

// NewSymbolTable creates a new empty symbol table with the given options.
func NewSymbolTable(opts ...SymbolTableOption) *SymbolTable {
	options := DefaultSymbolTableOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &SymbolTable{
		byQualifiedName: make(map[string]*ast.ClassSymbol),
		bySimpleName:    make(map[string][]*ast.ClassSymbol),
		subtypes:        make(map[string][]string),
		kindCounts:      make(map[ast.ClassKind]int),
		files:           make(map[string]struct{}),
		options:         options,
	}
}

// Add adds a single class symbol to the table.
//
// Outputs:
//
//	error - ErrInvalidClass if validation fails, ErrDuplicateClass if the
//	        qualified name is already present, ErrMaxClassesExceeded at
//	        capacity.
func (t *SymbolTable) Add(cls *ast.ClassSymbol) error {
	if cls == nil {
		return fmt.Errorf("%w: class is nil", ErrInvalidClass)
	}
	if err := cls.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidClass, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.byQualifiedName) >= t.options.MaxClasses {
		return ErrMaxClassesExceeded
	}
	if _, exists := t.byQualifiedName[cls.QualifiedName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, cls.QualifiedName)
	}

	t.addLocked(cls)
	return nil
}

// AddParseResult adds every class from a parse result, resolving type
// references against the file's imports first.
//
// Description:
//
//	Field, parameter and supertype references written as simple names are
//	rewritten to qualified names when an import names them exactly.
//	Everything else is left as written and resolved on lookup through
//	ResolveType. Duplicate classes are reported but do not stop the rest
//	of the result from being added.
func (t *SymbolTable) AddParseResult(result *ast.ParseResult) error {
	if result == nil {
		return fmt.Errorf("%w: parse result is nil", ErrInvalidClass)
	}

	importsBySimple := make(map[string]string, len(result.Imports))
	for _, imp := range result.Imports {
		if !imp.Wildcard {
			importsBySimple[imp.SimpleName()] = imp.Path
		}
	}

	var errs []error
	for _, cls := range result.Classes {
		linkClassTypes(cls, importsBySimple)
		if err := t.Add(cls); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.FilePath, err))
		}
	}
	if len(errs) > 0 {
		return &BatchError{Errors: errs}
	}
	return nil
}

// addLocked adds a class to all indexes. Caller must hold t.mu.
func (t *SymbolTable) addLocked(cls *ast.ClassSymbol) {
	t.byQualifiedName[cls.QualifiedName] = cls
	t.bySimpleName[cls.Name] = append(t.bySimpleName[cls.Name], cls)
	t.kindCounts[cls.Kind]++
	if cls.FilePath != "" {
		t.files[cls.FilePath] = struct{}{}
	}
	t.dirty = true
}

// LookupClass retrieves a class by its fully qualified name.
func (t *SymbolTable) LookupClass(qualifiedName string) (*ast.ClassSymbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cls, ok := t.byQualifiedName[qualifiedName]
	return cls, ok
}

// ResolveType resolves a declared type reference to a class symbol.
//
// Description:
//
//	Resolution order: an already-qualified name is looked up directly; a
//	simple name is tried in the owner's package; finally a simple name that
//	matches exactly one class in the whole table resolves to that class.
//	Anything else is an external or built-in type and returns false.
//
// Inputs:
//
//	typeName - The type reference, qualified or simple.
//	ownerPackage - The package of the class declaring the reference.
func (t *SymbolTable) ResolveType(typeName, ownerPackage string) (*ast.ClassSymbol, bool) {
	if typeName == "" {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if strings.Contains(typeName, ".") {
		cls, ok := t.byQualifiedName[typeName]
		return cls, ok
	}
	if ownerPackage != "" {
		if cls, ok := t.byQualifiedName[ownerPackage+"."+typeName]; ok {
			return cls, true
		}
	}
	if matches := t.bySimpleName[typeName]; len(matches) == 1 {
		return matches[0], true
	}
	return nil, false
}

// DirectSubtypesOf returns the classes that directly extend or implement
// the given class. The returned slice is a fresh copy in deterministic
// (qualified name) order.
func (t *SymbolTable) DirectSubtypesOf(cls *ast.ClassSymbol) []*ast.ClassSymbol {
	if cls == nil {
		return nil
	}

	t.mu.Lock()
	if t.dirty {
		t.relinkLocked()
	}
	names := t.subtypes[cls.QualifiedName]
	result := make([]*ast.ClassSymbol, 0, len(names))
	for _, name := range names {
		if sub, ok := t.byQualifiedName[name]; ok {
			result = append(result, sub)
		}
	}
	t.mu.Unlock()

	if len(result) == 0 {
		return nil
	}
	return result
}

// AllDeclaredClasses returns every class in the table, sorted by qualified
// name so analysis passes are deterministic.
func (t *SymbolTable) AllDeclaredClasses() []*ast.ClassSymbol {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*ast.ClassSymbol, 0, len(t.byQualifiedName))
	for _, cls := range t.byQualifiedName {
		result = append(result, cls)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].QualifiedName < result[j].QualifiedName
	})
	return result
}

// relinkLocked rebuilds the direct-subtype relation. Caller must hold t.mu.
//
// Supertype references are resolved with the same order as ResolveType. The
// subtype lists are sorted so traversal order never depends on map iteration.
func (t *SymbolTable) relinkLocked() {
	t.subtypes = make(map[string][]string)
	for _, cls := range t.byQualifiedName {
		for _, super := range cls.SuperTypes {
			parent, ok := t.resolveTypeLocked(super, cls.Package)
			if !ok {
				continue
			}
			t.subtypes[parent.QualifiedName] = append(t.subtypes[parent.QualifiedName], cls.QualifiedName)
		}
	}
	for name := range t.subtypes {
		sort.Strings(t.subtypes[name])
	}
	t.dirty = false
}

// resolveTypeLocked is ResolveType without locking. Caller must hold t.mu.
func (t *SymbolTable) resolveTypeLocked(typeName, ownerPackage string) (*ast.ClassSymbol, bool) {
	if strings.Contains(typeName, ".") {
		cls, ok := t.byQualifiedName[typeName]
		return cls, ok
	}
	if ownerPackage != "" {
		if cls, ok := t.byQualifiedName[ownerPackage+"."+typeName]; ok {
			return cls, true
		}
	}
	if matches := t.bySimpleName[typeName]; len(matches) == 1 {
		return matches[0], true
	}
	return nil, false
}

// Stats returns statistics about the table.
func (t *SymbolTable) Stats() TableStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byKind := make(map[ast.ClassKind]int, len(t.kindCounts))
	for k, v := range t.kindCounts {
		byKind[k] = v
	}
	return TableStats{
		TotalClasses: len(t.byQualifiedName),
		ByKind:       byKind,
		FileCount:    len(t.files),
	}
}

// Clear removes all classes from the table.
func (t *SymbolTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byQualifiedName = make(map[string]*ast.ClassSymbol)
	t.bySimpleName = make(map[string][]*ast.ClassSymbol)
	t.subtypes = make(map[string][]string)
	t.kindCounts = make(map[ast.ClassKind]int)
	t.files = make(map[string]struct{})
	t.dirty = false
}

// linkClassTypes rewrites simple-name type references to qualified names
// where a file import names them exactly.
func linkClassTypes(cls *ast.ClassSymbol, importsBySimple map[string]string) {
	link := func(name string) string {
		if strings.Contains(name, ".") {
			return name
		}
		if qualified, ok := importsBySimple[name]; ok {
			return qualified
		}
		return name
	}

	for i := range cls.SuperTypes {
		cls.SuperTypes[i] = link(cls.SuperTypes[i])
	}
	for i := range cls.Fields {
		cls.Fields[i].TypeName = link(cls.Fields[i].TypeName)
	}
	for i := range cls.Constructors {
		for j := range cls.Constructors[i].Params {
			cls.Constructors[i].Params[j].TypeName = link(cls.Constructors[i].Params[j].TypeName)
		}
	}
	for i := range cls.Methods {
		for j := range cls.Methods[i].Params {
			cls.Methods[i].Params[j].TypeName = link(cls.Methods[i].Params[j].TypeName)
		}
	}
}
