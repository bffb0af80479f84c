// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wiring

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wirecheck/wirecheck/services/wiring/analyzer"
	"github.com/wirecheck/wirecheck/services/wiring/config"
	"github.com/wirecheck/wirecheck/services/wiring/storage"
)

// Helper function to create a test router with a fresh service.
func testRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.Open(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	service, err := NewService(cfg, store, logger)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandlers(service))
	return router, service
}

// Helper function to lay out a minimal analyzable project.
func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	source := `package com.shop;

import org.springframework.stereotype.Service;
import org.springframework.beans.factory.annotation.Autowired;

@Service
public class CheckoutService {
    @Autowired
    private BillingService billing;
}

@Service
class BillingService {
}
`
	path := filepath.Join(root, "CheckoutService.java")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(router, http.MethodGet, "/v1/wiring/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/v1/wiring/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("missing body", func(t *testing.T) {
		router, _ := testRouter(t)
		rec := doRequest(router, http.MethodPost, "/v1/wiring/analyze", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Code != "MISSING_PARAMETER" {
			t.Errorf("unexpected error code %q", resp.Code)
		}
	})

	t.Run("unloadable project", func(t *testing.T) {
		router, _ := testRouter(t)
		rec := doRequest(router, http.MethodPost, "/v1/wiring/analyze",
			`{"project_root": "/does/not/exist"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("successful analysis", func(t *testing.T) {
		router, _ := testRouter(t)
		root := testProject(t)

		rec := doRequest(router, http.MethodPost, "/v1/wiring/analyze",
			`{"project_root": `+jsonQuote(root)+`}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var report analyzer.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatal(err)
		}
		if report.ID == "" || report.Stats.ClassesTotal != 2 {
			t.Errorf("unexpected report %+v", report)
		}

		// The report is now retrievable by id and as latest.
		rec = doRequest(router, http.MethodGet, "/v1/wiring/reports/"+report.ID, "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected stored report, got %d", rec.Code)
		}
		rec = doRequest(router, http.MethodGet, "/v1/wiring/reports/latest", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected latest report, got %d", rec.Code)
		}
	})
}

func TestHandleGetReport_NotFound(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(router, http.MethodGet, "/v1/wiring/reports/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/v1/wiring/reports/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty store, got %d", rec.Code)
	}
}

func TestHandleListReports(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(router, http.MethodGet, "/v1/wiring/reports", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Reports []storage.ReportSummary `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reports == nil {
		t.Error("expected an empty list, not null")
	}
}

func TestHandleDeleteReport(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(router, http.MethodDelete, "/v1/wiring/reports/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	root := testProject(t)
	rec = doRequest(router, http.MethodPost, "/v1/wiring/analyze",
		`{"project_root": `+jsonQuote(root)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Body.String())
	}
	var report analyzer.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}

	rec = doRequest(router, http.MethodDelete, "/v1/wiring/reports/"+report.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doRequest(router, http.MethodGet, "/v1/wiring/reports/"+report.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected report gone, got %d", rec.Code)
	}
}

// jsonQuote JSON-quotes a string for request bodies.
func jsonQuote(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
