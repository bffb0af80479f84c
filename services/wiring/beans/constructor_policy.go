// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package beans

import (
	"fmt"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/diag"
)

// ConstructorPolicyChecker validates constructor-selection rules for a bean,
// independent of the dependency graph.
//
// Rules:
//   - exactly one constructor: implicitly selected, no marker required
//   - more than one: at least one must carry the autowire marker, unless a
//     no-argument constructor exists
//   - more than one autowire-marked constructor: each must declare
//     required=false
type ConstructorPolicyChecker struct {
	markers Markers
	sink    diag.Sink
}

// NewConstructorPolicyChecker creates a checker reporting to the given sink.
func NewConstructorPolicyChecker(markers Markers, sink diag.Sink) *ConstructorPolicyChecker {
	return &ConstructorPolicyChecker{markers: markers, sink: sink}
}

// Check validates the class's constructors and reports any violations.
func (c *ConstructorPolicyChecker) Check(cls *ast.ClassSymbol) {
	if cls == nil || len(cls.Constructors) <= 1 {
		return
	}

	selected := 0
	hasNoArg := false
	for i := range cls.Constructors {
		ctor := &cls.Constructors[i]
		if ctor.HasAnnotation(c.markers.Autowired) {
			selected++
		}
		if len(ctor.Params) == 0 {
			hasNoArg = true
		}
	}

	if selected == 0 && !hasNoArg {
		c.sink.Report(fmt.Sprintf(
			"class %s has multiple constructors but no constructor selected for autowiring; mark one with @Autowired or add a no-argument constructor",
			cls.QualifiedName))
		return
	}

	if selected > 1 {
		for i := range cls.Constructors {
			ctor := &cls.Constructors[i]
			ref := ctor.FindAnnotation(c.markers.Autowired)
			if ref == nil {
				continue
			}
			if required, ok := ref.BoolAttr("required"); !ok || required {
				c.sink.Report(fmt.Sprintf(
					"class %s: multiple selectable constructors must be non-required; an @Autowired constructor is missing required=false",
					cls.QualifiedName))
			}
		}
	}
}
