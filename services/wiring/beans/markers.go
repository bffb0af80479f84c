// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package beans classifies classes as container-managed beans and enumerates
// their injection points, following the annotation conventions of a Spring
// style container.
package beans

// Well-known Spring annotation names.
const (
	ServiceAnnotation    = "org.springframework.stereotype.Service"
	ComponentAnnotation  = "org.springframework.stereotype.Component"
	RepositoryAnnotation = "org.springframework.stereotype.Repository"
	ControllerAnnotation = "org.springframework.stereotype.Controller"

	AutowiredAnnotation = "org.springframework.beans.factory.annotation.Autowired"
	QualifierAnnotation = "org.springframework.beans.factory.annotation.Qualifier"
	PrimaryAnnotation   = "org.springframework.context.annotation.Primary"
	LazyAnnotation      = "org.springframework.context.annotation.Lazy"
)

// Markers is the fixed set of annotation names one analysis run recognizes.
//
// Constructed once per run from configuration and treated as read-only
// afterwards; nothing in the analysis mutates it.
type Markers struct {
	// Bean lists the marker annotations that make a class a bean
	// (service/component/repository/controller equivalents).
	Bean []string

	// Autowired marks injection points and selectable constructors.
	Autowired string

	// Qualifier disambiguates among multiple type-matching candidates.
	Qualifier string

	// Primary marks the default winner among ambiguous candidates.
	Primary string

	// Lazy marks injection points excluded from cycle analysis.
	Lazy string
}

// DefaultMarkers returns the standard Spring annotation set.
func DefaultMarkers() Markers {
	return Markers{
		Bean: []string{
			ServiceAnnotation,
			ComponentAnnotation,
			RepositoryAnnotation,
			ControllerAnnotation,
		},
		Autowired: AutowiredAnnotation,
		Qualifier: QualifierAnnotation,
		Primary:   PrimaryAnnotation,
		Lazy:      LazyAnnotation,
	}
}
