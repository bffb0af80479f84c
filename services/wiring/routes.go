// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wiring

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all wiring routes with the router group.
//
// Description:
//
//	Registers all /v1/wiring/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Endpoints:
//
//	POST   /v1/wiring/analyze - Run an analysis pass over a project
//	GET    /v1/wiring/reports - List stored report summaries
//	GET    /v1/wiring/reports/:id - Get a report ("latest" is reserved)
//	DELETE /v1/wiring/reports/:id - Delete a report
//	GET    /v1/wiring/health - Health check
//	GET    /v1/wiring/ready - Readiness check
//
// Example:
//
//	service, _ := wiring.NewService(cfg, store, logger)
//	handlers := wiring.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	wiring.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	wiring := rg.Group("/wiring")
	{
		wiring.POST("/analyze", handlers.HandleAnalyze)

		wiring.GET("/reports", handlers.HandleListReports)
		wiring.GET("/reports/:id", handlers.HandleGetReport)
		wiring.DELETE("/reports/:id", handlers.HandleDeleteReport)

		wiring.GET("/health", handlers.HandleHealth)
		wiring.GET("/ready", handlers.HandleReady)
	}
}
