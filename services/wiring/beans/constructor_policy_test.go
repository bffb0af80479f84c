// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package beans

import (
	"strings"
	"testing"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/diag"
)

func autowiredRequired(required bool) ast.AnnotationRef {
	return ast.AnnotationRef{
		Name: "Autowired",
		Attrs: map[string]ast.AttrValue{
			"required": {Kind: ast.AttrBool, Bool: required},
		},
	}
}

func TestConstructorPolicyChecker_Check(t *testing.T) {
	oneParam := []ast.ParamSymbol{{Name: "gateway", TypeName: "PaymentGateway"}}

	t.Run("single constructor needs no marker", func(t *testing.T) {
		collector := diag.NewCollector()
		checker := NewConstructorPolicyChecker(DefaultMarkers(), collector)

		cls := testClass("com.shop.CheckoutService", "Service")
		cls.Constructors = []ast.ConstructorSymbol{{Params: oneParam}}

		checker.Check(cls)
		if collector.Len() != 0 {
			t.Errorf("expected no diagnostics, got %v", collector.Messages())
		}
	})

	t.Run("multiple constructors none selected no no-arg", func(t *testing.T) {
		collector := diag.NewCollector()
		checker := NewConstructorPolicyChecker(DefaultMarkers(), collector)

		cls := testClass("com.shop.CheckoutService", "Service")
		cls.Constructors = []ast.ConstructorSymbol{
			{Params: oneParam},
			{Params: []ast.ParamSymbol{{Name: "billing", TypeName: "BillingService"}}},
		}

		checker.Check(cls)
		messages := collector.Messages()
		if len(messages) != 1 {
			t.Fatalf("expected 1 diagnostic, got %d", len(messages))
		}
		if !strings.Contains(messages[0], "no constructor selected for autowiring") {
			t.Errorf("unexpected message %q", messages[0])
		}
	})

	t.Run("multiple constructors with no-arg fallback", func(t *testing.T) {
		collector := diag.NewCollector()
		checker := NewConstructorPolicyChecker(DefaultMarkers(), collector)

		cls := testClass("com.shop.CheckoutService", "Service")
		cls.Constructors = []ast.ConstructorSymbol{
			{Params: oneParam},
			{}, // no-arg
		}

		checker.Check(cls)
		if collector.Len() != 0 {
			t.Errorf("expected no diagnostics, got %v", collector.Messages())
		}
	})

	t.Run("multiple autowired constructors all non-required", func(t *testing.T) {
		collector := diag.NewCollector()
		checker := NewConstructorPolicyChecker(DefaultMarkers(), collector)

		cls := testClass("com.shop.CheckoutService", "Service")
		cls.Constructors = []ast.ConstructorSymbol{
			{Params: oneParam, Annotations: []ast.AnnotationRef{autowiredRequired(false)}},
			{Annotations: []ast.AnnotationRef{autowiredRequired(false)}},
		}

		checker.Check(cls)
		if collector.Len() != 0 {
			t.Errorf("expected no diagnostics, got %v", collector.Messages())
		}
	})

	t.Run("multiple autowired constructors missing required false", func(t *testing.T) {
		collector := diag.NewCollector()
		checker := NewConstructorPolicyChecker(DefaultMarkers(), collector)

		cls := testClass("com.shop.CheckoutService", "Service")
		cls.Constructors = []ast.ConstructorSymbol{
			{Params: oneParam, Annotations: []ast.AnnotationRef{autowired()}},
			{Annotations: []ast.AnnotationRef{autowiredRequired(false)}},
		}

		checker.Check(cls)
		messages := collector.Messages()
		if len(messages) != 1 {
			t.Fatalf("expected 1 diagnostic, got %d", len(messages))
		}
		if !strings.Contains(messages[0], "required=false") {
			t.Errorf("unexpected message %q", messages[0])
		}
	})

	t.Run("nil class is ignored", func(t *testing.T) {
		collector := diag.NewCollector()
		checker := NewConstructorPolicyChecker(DefaultMarkers(), collector)
		checker.Check(nil)
		if collector.Len() != 0 {
			t.Error("expected no diagnostics for nil class")
		}
	})
}
