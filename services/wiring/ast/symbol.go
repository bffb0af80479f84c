// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ast defines the symbol model extracted from Java source files and
// the tree-sitter based parser that produces it.
//
// The model is deliberately shallow: it captures class-level structure
// (kind, annotations, fields, constructors, setters, supertypes) and nothing
// about method bodies. That is all the wiring analysis needs, and it keeps
// symbols cheap enough to rebuild from scratch on every pass.
package ast

import (
	"fmt"
	"strings"
)

// ClassKind classifies a declared type.
type ClassKind int

const (
	// KindConcrete is a non-abstract class.
	KindConcrete ClassKind = iota

	// KindAbstract is an abstract class.
	KindAbstract

	// KindInterface is an interface.
	KindInterface
)

// String returns the string representation of the ClassKind.
func (k ClassKind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindAbstract:
		return "abstract"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// ClassSymbol is one declared class or interface.
//
// Identity is the fully qualified name. The analysis never compares symbols
// by pointer: a symbol table may hand out distinct instances for the same
// logical class across queries, so every set and map in the pipeline is
// keyed by QualifiedName instead.
//
// Thread Safety:
//
//	ClassSymbol is read-only after parsing. It MUST NOT be mutated once it
//	has been added to a SymbolTable.
type ClassSymbol struct {
	// QualifiedName is the fully qualified class name, e.g.
	// "com.shop.payment.CardPaymentService". Globally unique key.
	QualifiedName string

	// Name is the simple class name, e.g. "CardPaymentService".
	Name string

	// Package is the declaring package, e.g. "com.shop.payment".
	Package string

	// Kind distinguishes concrete classes, abstract classes and interfaces.
	Kind ClassKind

	// Annotations declared directly on the class, in source order.
	Annotations []AnnotationRef

	// SuperTypes are the declared supertype references (extends plus
	// implements), resolved to qualified names where possible.
	SuperTypes []string

	// Fields, Constructors and Methods in declaration order.
	Fields       []FieldSymbol
	Constructors []ConstructorSymbol
	Methods      []MethodSymbol

	// FilePath is the source file this class was parsed from, relative to
	// the project root.
	FilePath string

	// Line is the 1-based line of the class declaration.
	Line int
}

// Validate checks that the symbol satisfies the model's invariants.
func (c *ClassSymbol) Validate() error {
	if c.QualifiedName == "" {
		return fmt.Errorf("class symbol has empty qualified name (file %s)", c.FilePath)
	}
	if c.Name == "" {
		return fmt.Errorf("class symbol %s has empty simple name", c.QualifiedName)
	}
	return nil
}

// HasAnnotation reports whether the class carries the named annotation.
func (c *ClassSymbol) HasAnnotation(qualifiedName string) bool {
	return findAnnotation(c.Annotations, qualifiedName) != nil
}

// FindAnnotation returns the named annotation on the class, or nil.
func (c *ClassSymbol) FindAnnotation(qualifiedName string) *AnnotationRef {
	return findAnnotation(c.Annotations, qualifiedName)
}

// FieldSymbol is one declared field.
type FieldSymbol struct {
	// Name is the field name.
	Name string

	// TypeName is the declared type. After linking it is a fully qualified
	// class name for project types, or the raw source text for external and
	// built-in types.
	TypeName string

	// Annotations declared on the field.
	Annotations []AnnotationRef
}

// ParamSymbol is one constructor or method parameter.
type ParamSymbol struct {
	// Name is the parameter name.
	Name string

	// TypeName is the declared type (see FieldSymbol.TypeName).
	TypeName string

	// Annotations declared on the parameter.
	Annotations []AnnotationRef
}

// ConstructorSymbol is one declared constructor.
type ConstructorSymbol struct {
	// Params in declaration order. Empty for a no-argument constructor.
	Params []ParamSymbol

	// Annotations declared on the constructor.
	Annotations []AnnotationRef
}

// HasAnnotation reports whether the constructor carries the named annotation.
func (c *ConstructorSymbol) HasAnnotation(qualifiedName string) bool {
	return findAnnotation(c.Annotations, qualifiedName) != nil
}

// FindAnnotation returns the named annotation on the constructor, or nil.
func (c *ConstructorSymbol) FindAnnotation(qualifiedName string) *AnnotationRef {
	return findAnnotation(c.Annotations, qualifiedName)
}

// MethodSymbol is one declared method.
type MethodSymbol struct {
	// Name is the method name.
	Name string

	// Params in declaration order.
	Params []ParamSymbol

	// ReturnsVoid is true when the declared return type is void.
	ReturnsVoid bool

	// Annotations declared on the method.
	Annotations []AnnotationRef
}

// HasAnnotation reports whether the method carries the named annotation.
func (m *MethodSymbol) HasAnnotation(qualifiedName string) bool {
	return findAnnotation(m.Annotations, qualifiedName) != nil
}

// IsSetter reports whether the method looks like a JavaBeans setter: name
// starts with "set", exactly one parameter, void return.
func (m *MethodSymbol) IsSetter() bool {
	return strings.HasPrefix(m.Name, "set") && len(m.Params) == 1 && m.ReturnsVoid
}

// Import is a single import declaration from a source file.
type Import struct {
	// Path is the imported qualified name, e.g. "com.shop.payment.Gateway".
	Path string

	// Wildcard is true for on-demand imports ("com.shop.payment.*").
	Wildcard bool
}

// SimpleName returns the last segment of the import path.
func (i Import) SimpleName() string {
	if idx := strings.LastIndex(i.Path, "."); idx >= 0 {
		return i.Path[idx+1:]
	}
	return i.Path
}

// ParseResult is the outcome of parsing one Java source file.
//
// The parser is error tolerant: a file with syntax errors still yields the
// classes that could be extracted, with the problems noted in Errors.
type ParseResult struct {
	// FilePath is the parsed file, relative to the project root.
	FilePath string

	// Package is the declared package, empty for the default package.
	Package string

	// Classes declared in the file, including nested top-level siblings.
	Classes []*ClassSymbol

	// Imports declared in the file.
	Imports []Import

	// Errors are non-fatal extraction problems (syntax errors, unreadable
	// constructs). The file still contributes its parseable classes.
	Errors []string
}

func findAnnotation(refs []AnnotationRef, qualifiedName string) *AnnotationRef {
	for i := range refs {
		if refs[i].Matches(qualifiedName) {
			return &refs[i]
		}
	}
	return nil
}
