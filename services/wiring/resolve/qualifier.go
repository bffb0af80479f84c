// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/beans"
	"github.com/wirecheck/wirecheck/services/wiring/diag"
)

// BeanIDRegistry is a name → exists lookup over externally declared bean
// identifiers (XML bean ids). The resolver treats it as a pure lookup.
type BeanIDRegistry interface {
	Exists(name string) bool
}

// emptyBeanIDs is the registry used when none is supplied.
type emptyBeanIDs struct{}

func (emptyBeanIDs) Exists(string) bool { return false }

// QualifierValidator checks qualifier annotations for well-formedness and
// resolves qualifier names against a candidate set.
//
// Name matching, first match wins:
//  1. a candidate whose own qualifier annotation value equals the name
//  2. a candidate whose decapitalized simple class name equals the name
//  3. a binding recorded earlier in the same pass
//  4. the external bean-id registry
//
// Matches through (1)–(3) yield the matched class; a registry match is valid
// but names no class, so the injection point resolves without an edge.
type QualifierValidator struct {
	markers beans.Markers
	beanIDs BeanIDRegistry
	sink    diag.Sink
}

// NewQualifierValidator creates a validator reporting to the given sink.
// A nil registry behaves as an empty one.
func NewQualifierValidator(markers beans.Markers, beanIDs BeanIDRegistry, sink diag.Sink) *QualifierValidator {
	if beanIDs == nil {
		beanIDs = emptyBeanIDs{}
	}
	return &QualifierValidator{markers: markers, beanIDs: beanIDs, sink: sink}
}

// Resolve validates the point's qualifier annotation and resolves its name
// against the candidates.
//
// Outputs:
//
//	winner - The matched candidate, nil for a registry-only match.
//	ok - True when the qualifier resolved (with or without a winner).
//	     False means a diagnostic was reported; exactly one per point.
func (v *QualifierValidator) Resolve(pass *Pass, point *beans.InjectionPoint, candidates []*ast.ClassSymbol) (*ast.ClassSymbol, bool) {
	name, present := point.Qualifier.StringAttr("value")
	name = strings.TrimSpace(name)
	if !present || name == "" {
		v.sink.Report(fmt.Sprintf(
			"%s has a qualifier annotation but it is missing a name; provide a name for the @Qualifier annotation",
			point.Describe()))
		return nil, false
	}

	// (1) candidate's own qualifier annotation value.
	for _, candidate := range candidates {
		ref := candidate.FindAnnotation(v.markers.Qualifier)
		if ref == nil {
			continue
		}
		if value, ok := ref.StringAttr("value"); ok && strings.TrimSpace(value) == name {
			pass.bindQualifier(name, candidate)
			return candidate, true
		}
	}

	// (2) decapitalized simple class name.
	for _, candidate := range candidates {
		if Decapitalize(candidate.Name) == name {
			pass.bindQualifier(name, candidate)
			return candidate, true
		}
	}

	// (3) a binding observed earlier in this pass.
	if bound, ok := pass.qualifierBinding(name); ok {
		return bound, true
	}

	// (4) externally declared bean id; valid, but names no class.
	if v.beanIDs.Exists(name) {
		return nil, true
	}

	v.sink.Report(fmt.Sprintf(
		"%s has a qualifier annotation with an invalid name %q", point.Describe(), name))
	return nil, false
}

// Decapitalize lowers the first letter of a simple class name following the
// JavaBeans convention: a name whose first two letters are both upper case
// (e.g. "URLService") is left unchanged.
func Decapitalize(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	if len(runes) > 1 && unicode.IsUpper(runes[1]) {
		return name
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
