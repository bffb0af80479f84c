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

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/beans"
	"github.com/wirecheck/wirecheck/services/wiring/diag"
)

// Pass holds the state scoped to one analysis pass.
//
// All mutable resolution state lives here and is passed explicitly; nothing
// is kept as ambient fields reused across passes. Discard the Pass when the
// pass ends.
type Pass struct {
	// bindings maps a qualifier name to the class it was last observed to
	// resolve to, built incrementally as candidates' own qualifier
	// annotations are examined.
	bindings map[string]*ast.ClassSymbol
}

// NewPass creates the state for one analysis pass.
func NewPass() *Pass {
	return &Pass{
		bindings: make(map[string]*ast.ClassSymbol),
	}
}

func (p *Pass) bindQualifier(name string, cls *ast.ClassSymbol) {
	p.bindings[name] = cls
}

func (p *Pass) qualifierBinding(name string) (*ast.ClassSymbol, bool) {
	cls, ok := p.bindings[name]
	return cls, ok
}

// Resolver resolves one injection point to the concrete class the container
// would wire, applying the disambiguation policy.
//
// Policy, for a declared type T on an injection point of class C:
//   - T concrete: T wins. A concrete dependency that is not itself a bean
//     is reported but the edge is still recorded.
//   - T abstract/interface: candidates are T's concrete implementors.
//     Zero candidates or an unresolvable ambiguity is a diagnostic; a
//     single candidate, a matching qualifier, or a unique primary wins.
//   - C itself is never a valid automatic pick: it is removed from the
//     candidate set before the primary check, whatever the candidate count.
//
// Every ambiguous injection point ends in exactly one of: a single winner,
// or one explicit diagnostic. Ambiguity is never dropped silently.
type Resolver struct {
	table      SymbolLookup
	subtypes   *SubtypeIndex
	classifier *beans.Classifier
	qualifiers *QualifierValidator
	sink       diag.Sink
}

// NewResolver creates a Resolver.
//
// Inputs:
//
//	table - Symbol table snapshot for the pass.
//	subtypes - Subtype index over the same snapshot.
//	classifier - Bean classifier with the run's marker set.
//	qualifiers - Qualifier validator sharing the same sink.
//	sink - Destination for binding diagnostics.
func NewResolver(table SymbolLookup, subtypes *SubtypeIndex, classifier *beans.Classifier, qualifiers *QualifierValidator, sink diag.Sink) *Resolver {
	return &Resolver{
		table:      table,
		subtypes:   subtypes,
		classifier: classifier,
		qualifiers: qualifiers,
		sink:       sink,
	}
}

// Resolve resolves one injection point.
//
// Outputs:
//
//	target - The class the container would wire, nil when no edge should
//	         be recorded.
//	ok - True when resolution succeeded (target may still be nil for a
//	     registry-matched qualifier or an external type). False means a
//	     diagnostic was reported.
func (r *Resolver) Resolve(pass *Pass, point *beans.InjectionPoint) (*ast.ClassSymbol, bool) {
	declared, found := r.table.ResolveType(point.TypeName, point.Owner.Package)
	if !found {
		// External or built-in type; not the analysis's concern.
		return nil, true
	}

	if declared.Kind == ast.KindConcrete {
		if !r.classifier.IsBean(declared) {
			r.sink.Report(fmt.Sprintf(
				"%s has type %s that is not a bean; consider annotating %s with @Service",
				point.Describe(), declared.QualifiedName, declared.Name))
		}
		return declared, true
	}

	candidates := r.subtypes.ImplementorsOf(declared)
	switch len(candidates) {
	case 0:
		r.sink.Report(fmt.Sprintf(
			"no implementation found for %s at %s.%s",
			declared.QualifiedName, point.Owner.QualifiedName, point.Member))
		return nil, false
	case 1:
		// A qualifier annotation is validated even when only one
		// implementor exists; a malformed name is still a defect.
		if point.Qualifier != nil {
			return r.qualifiers.Resolve(pass, point, candidates)
		}
		return candidates[0], true
	}

	if point.Qualifier != nil {
		return r.qualifiers.Resolve(pass, point, candidates)
	}

	beanCandidates := r.beanCandidatesExcludingSelf(candidates, point.Owner)
	switch len(beanCandidates) {
	case 1:
		return beanCandidates[0], true
	case 0:
		r.sink.Report(fmt.Sprintf(
			"%s: multiple candidates for type %s, none annotated as primary or service: %s",
			point.Describe(), declared.QualifiedName, classNames(candidates)))
		return nil, false
	}

	primaries := r.primaryCandidates(beanCandidates)
	switch len(primaries) {
	case 1:
		return primaries[0], true
	case 0:
		r.sink.Report(fmt.Sprintf(
			"%s: multiple candidates for type %s but missing a qualifier or primary marker: %s",
			point.Describe(), declared.QualifiedName, classNames(beanCandidates)))
		return nil, false
	default:
		r.sink.Report(fmt.Sprintf(
			"%s: multiple primary candidates for type %s: %s",
			point.Describe(), declared.QualifiedName, classNames(primaries)))
		return nil, false
	}
}

// beanCandidatesExcludingSelf filters candidates to bean-classified classes
// and drops the owning class: a self reference is never a valid auto-pick.
func (r *Resolver) beanCandidatesExcludingSelf(candidates []*ast.ClassSymbol, owner *ast.ClassSymbol) []*ast.ClassSymbol {
	result := make([]*ast.ClassSymbol, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.QualifiedName == owner.QualifiedName {
			continue
		}
		if r.classifier.IsBean(candidate) {
			result = append(result, candidate)
		}
	}
	return result
}

// primaryCandidates returns the subset carrying the primary marker.
func (r *Resolver) primaryCandidates(candidates []*ast.ClassSymbol) []*ast.ClassSymbol {
	markers := r.classifier.Markers()
	var result []*ast.ClassSymbol
	for _, candidate := range candidates {
		if candidate.HasAnnotation(markers.Primary) {
			result = append(result, candidate)
		}
	}
	return result
}

// classNames renders a candidate list for diagnostics.
func classNames(classes []*ast.ClassSymbol) string {
	names := make([]string, len(classes))
	for i, cls := range classes {
		names[i] = cls.QualifiedName
	}
	return strings.Join(names, " ")
}
