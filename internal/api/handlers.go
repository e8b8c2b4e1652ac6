// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/report"
)

// ReportService is the pipeline surface the handlers depend on. Tests
// substitute a stub.
type ReportService interface {
	Analyze(ctx context.Context, title string, refresh bool) (*report.Result, error)
	AnalyzeStream(ctx context.Context, title string, refresh bool, emit func(report.Event))
}

// StorePinger is the store reachability check the health probes use.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their injected dependencies.
type Handler struct {
	service         ReportService
	store           StorePinger
	security        config.SecurityConfig
	analysisTimeout time.Duration
	startTime       time.Time
}

func NewHandler(service ReportService, store StorePinger, security config.SecurityConfig, analysisTimeout time.Duration) *Handler {
	return &Handler{
		service:         service,
		store:           store,
		security:        security,
		analysisTimeout: analysisTimeout,
		startTime:       time.Now(),
	}
}

// analysisContext bounds a pipeline run. A zero timeout leaves the
// request context untouched.
func (h *Handler) analysisContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.analysisTimeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), h.analysisTimeout)
}

// refreshRequested reports whether a cache-bypassing refresh should be
// honored. Refresh is privileged: the caller's X-Admin-Key must match
// the configured admin key, and a mismatch (or an unset server key)
// silently downgrades the request to a normal cache-checked one
// instead of erroring.
func (h *Handler) refreshRequested(r *http.Request) bool {
	requested, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if !requested {
		return false
	}
	if h.security.AdminKey == "" {
		return false
	}
	supplied := r.Header.Get("X-Admin-Key")
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(h.security.AdminKey)) == 1
}
