// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import "strings"

// AttrKind is the parsed type of an annotation attribute literal.
type AttrKind int

const (
	// AttrString is a string literal attribute.
	AttrString AttrKind = iota

	// AttrBool is a boolean literal attribute.
	AttrBool
)

// AttrValue is a typed annotation attribute value.
//
// Attribute literals are parsed exactly once, at ingestion. Downstream code
// asks for the typed value instead of re-interpreting raw source text at
// every use site.
type AttrValue struct {
	Kind AttrKind
	Str  string
	Bool bool
}

// ParseAttrValue converts a raw attribute literal into a typed value.
//
// Quoted literals become strings with the quotes stripped; the bare words
// true and false become booleans; anything else is kept as its source text.
func ParseAttrValue(raw string) AttrValue {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return AttrValue{Kind: AttrString, Str: raw[1 : len(raw)-1]}
	}
	switch raw {
	case "true":
		return AttrValue{Kind: AttrBool, Bool: true}
	case "false":
		return AttrValue{Kind: AttrBool, Bool: false}
	}
	return AttrValue{Kind: AttrString, Str: raw}
}

// AnnotationRef is one annotation usage on a class, member or parameter.
type AnnotationRef struct {
	// Name is the annotation name as written in source, which may be simple
	// ("Autowired") or fully qualified
	// ("org.springframework.beans.factory.annotation.Autowired").
	Name string

	// Attrs maps attribute names to their parsed literal values. The single
	// unnamed annotation argument is stored under "value". Nil when the
	// annotation has no arguments.
	Attrs map[string]AttrValue
}

// Matches reports whether the reference denotes the given fully qualified
// annotation name.
//
// Java source almost always imports annotations and writes the simple name,
// so a reference matches either on the full name or on the simple last
// segment. Collisions between identically named annotations from different
// packages are accepted as a known limitation of source-level matching.
func (a *AnnotationRef) Matches(qualifiedName string) bool {
	if a.Name == qualifiedName {
		return true
	}
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		return a.Name == qualifiedName[idx+1:]
	}
	return false
}

// StringAttr returns the named attribute as a string, with ok reporting
// whether the attribute exists.
func (a *AnnotationRef) StringAttr(name string) (string, bool) {
	v, ok := a.Attrs[name]
	if !ok {
		return "", false
	}
	if v.Kind == AttrBool {
		if v.Bool {
			return "true", true
		}
		return "false", true
	}
	return v.Str, true
}

// BoolAttr returns the named attribute as a boolean. A missing attribute or
// a non-boolean literal returns ok=false.
func (a *AnnotationRef) BoolAttr(name string) (bool, bool) {
	v, ok := a.Attrs[name]
	if !ok || v.Kind != AttrBool {
		return false, false
	}
	return v.Bool, true
}
