// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wiring

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wirecheck/wirecheck/services/wiring/storage"
)

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeRequest is the body of POST /v1/wiring/analyze.
type AnalyzeRequest struct {
	// ProjectRoot is the directory to analyze.
	ProjectRoot string `json:"project_root" binding:"required"`
}

// Handlers holds the HTTP handlers for the wiring API.
type Handlers struct {
	service *Service
}

// NewHandlers creates the handlers for a service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleAnalyze handles POST /v1/wiring/analyze.
//
// Description:
//
//	Loads and analyzes the project named in the request body, returning
//	the full report. Analysis is synchronous; the request context bounds
//	it, so a dropped client cancels the pass.
//
// Response:
//
//	200 OK: analyzer.Report
//	400 Bad Request: Missing or invalid body
//	422 Unprocessable Entity: Project could not be loaded
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "project_root is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	logger.Info("analysis requested", "project_root", req.ProjectRoot)
	report, err := h.service.Analyze(c.Request.Context(), req.ProjectRoot, nil)
	if err != nil {
		logger.Warn("analysis failed", "error", err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "ANALYSIS_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleGetReport handles GET /v1/wiring/reports/:id. The id "latest" is
// reserved and returns the most recent report.
//
// Response:
//
//	200 OK: analyzer.Report
//	404 Not Found: Unknown report id
func (h *Handlers) HandleGetReport(c *gin.Context) {
	id := c.Param("id")
	if id == "latest" {
		h.HandleLatestReport(c)
		return
	}
	report, err := h.service.Report(c.Request.Context(), id)
	if errors.Is(err, storage.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "report not found",
			Code:  "NOT_FOUND",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "STORAGE_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleLatestReport serves GET /v1/wiring/reports/latest via the reserved
// "latest" id.
//
// Response:
//
//	200 OK: analyzer.Report
//	404 Not Found: No analysis has run yet
func (h *Handlers) HandleLatestReport(c *gin.Context) {
	report, err := h.service.Latest(c.Request.Context())
	if errors.Is(err, storage.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no reports available",
			Code:  "NOT_FOUND",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "STORAGE_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleListReports handles GET /v1/wiring/reports.
//
// Response:
//
//	200 OK: {"reports": [ReportSummary]}
func (h *Handlers) HandleListReports(c *gin.Context) {
	summaries, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "STORAGE_ERROR",
		})
		return
	}
	if summaries == nil {
		summaries = []storage.ReportSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": summaries})
}

// HandleDeleteReport handles DELETE /v1/wiring/reports/:id.
//
// Response:
//
//	204 No Content: Deleted
//	404 Not Found: Unknown report id
func (h *Handlers) HandleDeleteReport(c *gin.Context) {
	err := h.service.DeleteReport(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "report not found",
			Code:  "NOT_FOUND",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "STORAGE_ERROR",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/wiring/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /v1/wiring/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
