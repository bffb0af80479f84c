// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/wirecheck/wirecheck/services/wiring/ast"
	"github.com/wirecheck/wirecheck/services/wiring/index"
	"github.com/wirecheck/wirecheck/services/wiring/springxml"
)

// Helper function to create a test class.
func testClass(qualified string, kind ast.ClassKind, annotations []string, superTypes ...string) *ast.ClassSymbol {
	idx := strings.LastIndex(qualified, ".")
	refs := make([]ast.AnnotationRef, 0, len(annotations))
	for _, name := range annotations {
		refs = append(refs, ast.AnnotationRef{Name: name})
	}
	return &ast.ClassSymbol{
		QualifiedName: qualified,
		Name:          qualified[idx+1:],
		Package:       qualified[:idx],
		Kind:          kind,
		Annotations:   refs,
		SuperTypes:    superTypes,
	}
}

// Helper function to add an autowired field to a class.
func withField(cls *ast.ClassSymbol, name, typeName string, extra ...ast.AnnotationRef) *ast.ClassSymbol {
	annotations := append([]ast.AnnotationRef{{Name: "Autowired"}}, extra...)
	cls.Fields = append(cls.Fields, ast.FieldSymbol{
		Name:        name,
		TypeName:    typeName,
		Annotations: annotations,
	})
	return cls
}

func buildTable(t *testing.T, classes ...*ast.ClassSymbol) *index.SymbolTable {
	t.Helper()
	table := index.NewSymbolTable()
	for _, cls := range classes {
		if err := table.Add(cls); err != nil {
			t.Fatalf("adding %s: %v", cls.QualifiedName, err)
		}
	}
	return table
}

func TestAnalyzer_Run_CleanProject(t *testing.T) {
	table := buildTable(t,
		withField(testClass("com.shop.CheckoutService", ast.KindConcrete, []string{"Service"}),
			"billing", "com.shop.BillingService"),
		testClass("com.shop.BillingService", ast.KindConcrete, []string{"Service"}),
	)

	report, err := New().Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Clean() {
		t.Errorf("expected clean report, got diagnostics=%v cycles=%v errors=%v",
			report.Diagnostics, report.Cycles, report.ClassErrors)
	}
	if report.ID == "" {
		t.Error("expected report id")
	}
	if report.Stats.ClassesTotal != 2 || report.Stats.BeansFound != 2 {
		t.Errorf("unexpected stats %+v", report.Stats)
	}
	if report.Stats.EdgesCreated != 1 {
		t.Errorf("expected 1 edge, got %d", report.Stats.EdgesCreated)
	}
}

func TestAnalyzer_Run_AmbiguousBinding(t *testing.T) {
	table := buildTable(t,
		withField(testClass("com.shop.CheckoutService", ast.KindConcrete, []string{"Service"}),
			"gateway", "com.shop.PaymentGateway"),
		testClass("com.shop.PaymentGateway", ast.KindInterface, nil),
		testClass("com.shop.CardGateway", ast.KindConcrete, []string{"Service"}, "com.shop.PaymentGateway"),
		testClass("com.shop.PayPalGateway", ast.KindConcrete, []string{"Service"}, "com.shop.PaymentGateway"),
	)

	report, err := New().Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Diagnostics) != 1 || !strings.Contains(report.Diagnostics[0], "missing a qualifier or primary") {
		t.Errorf("unexpected diagnostics %v", report.Diagnostics)
	}
	if report.Stats.EdgesCreated != 0 {
		t.Errorf("ambiguous binding must not record an edge, got %d", report.Stats.EdgesCreated)
	}
}

func TestAnalyzer_Run_CycleDetection(t *testing.T) {
	t.Run("mutual dependency is a cycle", func(t *testing.T) {
		table := buildTable(t,
			withField(testClass("com.shop.OrderService", ast.KindConcrete, []string{"Service"}),
				"billing", "com.shop.BillingService"),
			withField(testClass("com.shop.BillingService", ast.KindConcrete, []string{"Service"}),
				"orders", "com.shop.OrderService"),
		)

		report, err := New().Run(context.Background(), table)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Cycles) != 1 {
			t.Fatalf("expected one cycle, got %v", report.Cycles)
		}
		if report.Stats.CyclesFound != 1 {
			t.Errorf("stats disagree with cycles: %+v", report.Stats)
		}
	})

	t.Run("lazy point breaks the cycle", func(t *testing.T) {
		table := buildTable(t,
			withField(testClass("com.shop.OrderService", ast.KindConcrete, []string{"Service"}),
				"billing", "com.shop.BillingService", ast.AnnotationRef{Name: "Lazy"}),
			withField(testClass("com.shop.BillingService", ast.KindConcrete, []string{"Service"}),
				"orders", "com.shop.OrderService"),
		)

		report, err := New().Run(context.Background(), table)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Cycles) != 0 {
			t.Fatalf("expected no cycles with a lazy edge, got %v", report.Cycles)
		}
		if report.Stats.EdgesCreated != 1 {
			t.Errorf("expected only the non-lazy edge, got %d", report.Stats.EdgesCreated)
		}
	})

	t.Run("self dependency", func(t *testing.T) {
		table := buildTable(t,
			withField(testClass("com.shop.LoopService", ast.KindConcrete, []string{"Service"}),
				"self", "com.shop.LoopService"),
		)

		report, err := New().Run(context.Background(), table)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Cycles) != 1 || !report.Cycles[0].SelfLoop() {
			t.Fatalf("expected a self loop, got %v", report.Cycles)
		}
	})
}

func TestAnalyzer_Run_ComponentScan(t *testing.T) {
	registry := springxml.NewRegistry()
	registry.AddScanPackage("com.shop")

	table := buildTable(t,
		testClass("com.shop.CheckoutService", ast.KindConcrete, []string{"Service"}),
		testClass("org.other.StrayService", ast.KindConcrete, []string{"Service"}),
	)

	report, err := New(WithXMLRegistry(registry)).Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Diagnostics) != 1 || !strings.Contains(report.Diagnostics[0], "outside all component-scan packages") {
		t.Errorf("unexpected diagnostics %v", report.Diagnostics)
	}
	if !strings.Contains(report.Diagnostics[0], "org.other.StrayService") {
		t.Errorf("diagnostic should name the stray bean: %q", report.Diagnostics[0])
	}
}

func TestAnalyzer_Run_Cancellation(t *testing.T) {
	classes := make([]*ast.ClassSymbol, 0, 200)
	for i := 0; i < 200; i++ {
		name := "com.shop.Service" + strings.Repeat("x", i%5) + string(rune('A'+i%26)) + strings.Repeat("y", i/26)
		classes = append(classes, testClass(name, ast.KindConcrete, []string{"Service"}))
	}
	table := buildTable(t, classes...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New().Run(ctx, table)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Incomplete {
		t.Error("expected incomplete report after cancellation")
	}
}

func TestAnalyzer_Run_NilTable(t *testing.T) {
	if _, err := New().Run(context.Background(), nil); err == nil {
		t.Error("expected error for nil table")
	}
}

func TestAnalyzer_ProgressCallback(t *testing.T) {
	table := buildTable(t,
		testClass("com.shop.CheckoutService", ast.KindConcrete, []string{"Service"}),
	)

	var phases []Phase
	_, err := New(WithProgressCallback(func(p Progress) {
		phases = append(phases, p.Phase)
	})).Run(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}

	sawCycles, sawFinalizing := false, false
	for _, phase := range phases {
		if phase == PhaseCycles {
			sawCycles = true
		}
		if phase == PhaseFinalizing {
			sawFinalizing = true
		}
	}
	if !sawCycles || !sawFinalizing {
		t.Errorf("expected cycle and finalize phases, got %v", phases)
	}
}
