// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolve

import (
	"strings"
	"testing"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/beans"
	"github.com/wirecheck/wirecheck/services/wiring/diag"
)

type stubRegistry map[string]struct{}

func (s stubRegistry) Exists(name string) bool {
	_, ok := s[name]
	return ok
}

func qualifierRef(value string) ast.AnnotationRef {
	return ast.AnnotationRef{
		Name: "Qualifier",
		Attrs: map[string]ast.AttrValue{
			"value": {Kind: ast.AttrString, Str: value},
		},
	}
}

func qualifiedPoint(owner *ast.ClassSymbol, name string) *beans.InjectionPoint {
	ref := qualifierRef(name)
	return &beans.InjectionPoint{
		Kind:      beans.PointField,
		Owner:     owner,
		Member:    "gateway",
		TypeName:  "com.shop.PaymentGateway",
		Qualifier: &ref,
	}
}

func TestQualifierValidator_Resolve(t *testing.T) {
	owner := testClass("com.shop.CheckoutService", ast.KindConcrete, serviceAnnotation())
	card := testClass("com.shop.CardGateway", ast.KindConcrete, serviceAnnotation(), "com.shop.PaymentGateway")
	paypal := testClass("com.shop.PayPalGateway", ast.KindConcrete, serviceAnnotation(), "com.shop.PaymentGateway")
	candidates := []*ast.ClassSymbol{card, paypal}

	t.Run("candidate own qualifier value wins", func(t *testing.T) {
		named := testClass("com.shop.SpecialGateway", ast.KindConcrete,
			append(serviceAnnotation(), qualifierRef("fancy")), "com.shop.PaymentGateway")
		collector := diag.NewCollector()
		v := NewQualifierValidator(beans.DefaultMarkers(), nil, collector)

		got, ok := v.Resolve(NewPass(), qualifiedPoint(owner, "fancy"), append(candidates, named))
		if !ok || got == nil || got.QualifiedName != "com.shop.SpecialGateway" {
			t.Fatalf("expected SpecialGateway, got %v ok=%v", got, ok)
		}
	})

	t.Run("decapitalized class name matches", func(t *testing.T) {
		collector := diag.NewCollector()
		v := NewQualifierValidator(beans.DefaultMarkers(), nil, collector)

		got, ok := v.Resolve(NewPass(), qualifiedPoint(owner, "cardGateway"), candidates)
		if !ok || got == nil || got.QualifiedName != "com.shop.CardGateway" {
			t.Fatalf("expected CardGateway, got %v ok=%v", got, ok)
		}
		if collector.Len() != 0 {
			t.Errorf("expected no diagnostics, got %v", collector.Messages())
		}
	})

	t.Run("binding recorded earlier in the pass is reused", func(t *testing.T) {
		collector := diag.NewCollector()
		v := NewQualifierValidator(beans.DefaultMarkers(), nil, collector)
		pass := NewPass()
		pass.bindQualifier("legacyName", paypal)

		got, ok := v.Resolve(pass, qualifiedPoint(owner, "legacyName"), candidates)
		if !ok || got == nil || got.QualifiedName != "com.shop.PayPalGateway" {
			t.Fatalf("expected PayPalGateway from pass binding, got %v ok=%v", got, ok)
		}
	})

	t.Run("xml bean id is valid without a class", func(t *testing.T) {
		collector := diag.NewCollector()
		v := NewQualifierValidator(beans.DefaultMarkers(), stubRegistry{"xmlGateway": {}}, collector)

		got, ok := v.Resolve(NewPass(), qualifiedPoint(owner, "xmlGateway"), candidates)
		if !ok {
			t.Fatal("expected registry match to be valid")
		}
		if got != nil {
			t.Fatalf("expected no class for a registry match, got %v", got)
		}
		if collector.Len() != 0 {
			t.Errorf("expected no diagnostics, got %v", collector.Messages())
		}
	})

	t.Run("unknown name is reported once", func(t *testing.T) {
		collector := diag.NewCollector()
		v := NewQualifierValidator(beans.DefaultMarkers(), nil, collector)

		got, ok := v.Resolve(NewPass(), qualifiedPoint(owner, "nothingHere"), candidates)
		if ok || got != nil {
			t.Fatalf("expected failed resolution, got %v ok=%v", got, ok)
		}
		messages := collector.Messages()
		if len(messages) != 1 || !strings.Contains(messages[0], `invalid name "nothingHere"`) {
			t.Errorf("unexpected diagnostics %v", messages)
		}
	})

	t.Run("missing name is reported", func(t *testing.T) {
		collector := diag.NewCollector()
		v := NewQualifierValidator(beans.DefaultMarkers(), nil, collector)

		ref := ast.AnnotationRef{Name: "Qualifier"}
		point := &beans.InjectionPoint{
			Kind:      beans.PointField,
			Owner:     owner,
			Member:    "gateway",
			TypeName:  "com.shop.PaymentGateway",
			Qualifier: &ref,
		}
		got, ok := v.Resolve(NewPass(), point, candidates)
		if ok || got != nil {
			t.Fatalf("expected failed resolution, got %v ok=%v", got, ok)
		}
		messages := collector.Messages()
		if len(messages) != 1 || !strings.Contains(messages[0], "missing a name") {
			t.Errorf("unexpected diagnostics %v", messages)
		}
	})
}

func TestDecapitalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CardGateway", "cardGateway"},
		{"URLService", "URLService"},
		{"A", "a"},
		{"", ""},
		{"already", "already"},
	}
	for _, tc := range cases {
		if got := Decapitalize(tc.in); got != tc.want {
			t.Errorf("Decapitalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
