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
)

// PointKind distinguishes the three injection point variants.
type PointKind int

const (
	// PointField is a field injection point.
	PointField PointKind = iota

	// PointConstructorParam is a constructor parameter injection point.
	PointConstructorParam

	// PointSetterParam is a setter parameter injection point.
	PointSetterParam
)

// String returns the string representation of the PointKind.
func (k PointKind) String() string {
	switch k {
	case PointField:
		return "field"
	case PointConstructorParam:
		return "parameter"
	case PointSetterParam:
		return "parameter"
	default:
		return "unknown"
	}
}

// InjectionPoint is one place the container would wire a bean into.
//
// The qualifier reference and lazy flag are derived once, when the point is
// enumerated, so downstream code never re-scans raw annotations.
type InjectionPoint struct {
	// Kind is the injection point variant.
	Kind PointKind

	// Owner is the class declaring the injection point.
	Owner *ast.ClassSymbol

	// Member is the field or parameter name.
	Member string

	// TypeName is the declared type of the injection point.
	TypeName string

	// Annotations declared on the member or parameter.
	Annotations []ast.AnnotationRef

	// Qualifier is the qualifier annotation on this point, nil when absent.
	Qualifier *ast.AnnotationRef

	// Lazy is true when the point carries the lazy marker. Lazy points
	// contribute no edge to the dependency graph at all.
	Lazy bool
}

// Describe renders the point for diagnostics, e.g.
// "field gateway in class com.shop.CheckoutService".
func (p *InjectionPoint) Describe() string {
	return fmt.Sprintf("%s %s in class %s", p.Kind, p.Member, p.Owner.QualifiedName)
}

// Classifier decides whether a class is a bean and enumerates its injection
// points.
//
// The marker set is fixed at construction for the whole run.
type Classifier struct {
	markers Markers
}

// NewClassifier creates a Classifier for the given marker set.
func NewClassifier(markers Markers) *Classifier {
	return &Classifier{markers: markers}
}

// Markers returns the marker set this classifier uses.
func (c *Classifier) Markers() Markers {
	return c.markers
}

// IsBean reports whether the class carries one of the configured bean
// marker annotations.
func (c *Classifier) IsBean(cls *ast.ClassSymbol) bool {
	if cls == nil {
		return false
	}
	for _, marker := range c.markers.Bean {
		if cls.HasAnnotation(marker) {
			return true
		}
	}
	return false
}

// InjectionPoints enumerates every injection point of the class.
//
// Constructor selection follows the container's rule: a class with exactly
// one constructor injects all of its parameters regardless of markers; with
// more than one, only parameters of autowire-marked constructors count.
// Field points are autowire-marked fields; setter points are parameters of
// autowire-marked setX(single-arg) void methods.
func (c *Classifier) InjectionPoints(cls *ast.ClassSymbol) []InjectionPoint {
	if cls == nil {
		return nil
	}

	var points []InjectionPoint

	for i := range cls.Fields {
		field := &cls.Fields[i]
		if findAnnotation(field.Annotations, c.markers.Autowired) == nil {
			continue
		}
		points = append(points, c.newPoint(PointField, cls, field.Name, field.TypeName, field.Annotations))
	}

	switch {
	case len(cls.Constructors) == 1:
		for _, param := range cls.Constructors[0].Params {
			points = append(points, c.newPoint(PointConstructorParam, cls, param.Name, param.TypeName, param.Annotations))
		}
	case len(cls.Constructors) > 1:
		for i := range cls.Constructors {
			ctor := &cls.Constructors[i]
			if !ctor.HasAnnotation(c.markers.Autowired) {
				continue
			}
			for _, param := range ctor.Params {
				points = append(points, c.newPoint(PointConstructorParam, cls, param.Name, param.TypeName, param.Annotations))
			}
		}
	}

	for i := range cls.Methods {
		method := &cls.Methods[i]
		if !method.IsSetter() || !method.HasAnnotation(c.markers.Autowired) {
			continue
		}
		param := method.Params[0]
		points = append(points, c.newPoint(PointSetterParam, cls, param.Name, param.TypeName, param.Annotations))
	}

	return points
}

// newPoint builds an InjectionPoint with its derived qualifier and lazy
// state resolved up front.
func (c *Classifier) newPoint(kind PointKind, owner *ast.ClassSymbol, member, typeName string, annotations []ast.AnnotationRef) InjectionPoint {
	return InjectionPoint{
		Kind:        kind,
		Owner:       owner,
		Member:      member,
		TypeName:    typeName,
		Annotations: annotations,
		Qualifier:   findAnnotation(annotations, c.markers.Qualifier),
		Lazy:        findAnnotation(annotations, c.markers.Lazy) != nil,
	}
}

func findAnnotation(refs []ast.AnnotationRef, qualifiedName string) *ast.AnnotationRef {
	for i := range refs {
		if refs[i].Matches(qualifiedName) {
			return &refs[i]
		}
	}
	return nil
}
