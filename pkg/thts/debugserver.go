// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package thts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DebugServer exposes a running TrialEngine's health, Prometheus metrics,
// and a pretty-printed tree snapshot over HTTP, built on gin the way the
// teacher exposes its own debug/admin endpoints.
type DebugServer struct {
	engine *TrialEngine
	router *gin.Engine
}

// NewDebugServer builds the gin router for engine. Routes:
//
//	GET /healthz        -> 200 once the engine has a root node
//	GET /metrics         -> Prometheus exposition format
//	GET /tree?depth=N    -> pretty-printed subtree to depth N (default 3)
func NewDebugServer(engine *TrialEngine) *DebugServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &DebugServer{engine: engine, router: r}
	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/tree", s.handleTree)
	return s
}

// Handler returns the http.Handler to mount on an *http.Server.
func (s *DebugServer) Handler() http.Handler { return s.router }

func (s *DebugServer) handleHealthz(c *gin.Context) {
	if s.engine.Root() == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"trials_completed": s.engine.TrialsCompleted(),
	})
}

func (s *DebugServer) handleTree(c *gin.Context) {
	depth := 3
	if q := c.Query("depth"); q != "" {
		if v, err := parsePositiveInt(q); err == nil {
			depth = v
		}
	}
	root := s.engine.Root()
	c.String(http.StatusOK, root.PrettyPrint(depth))
}

func parsePositiveInt(s string) (int, error) {
	var v int
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, newConfigError("depth", "must be a non-negative integer")
		}
		v = v*10 + int(r-'0')
	}
	return v, nil
}
