// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reelguard/reelguard/internal/config"
)

func testRouter(t *testing.T, svc ReportService) http.Handler {
	t.Helper()
	security := config.SecurityConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   100,
		RateLimitWindow: time.Minute,
	}
	return NewRouter(NewHandler(svc, healthyStore{}, security, time.Minute), security)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := testRouter(t, &stubService{})

	for _, path := range []string{
		"/api/v1/health",
		"/api/v1/health/live",
		"/api/v1/health/ready",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterAnalyzeRoute(t *testing.T) {
	router := testRouter(t, &stubService{result: liveResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyze?title=The+Matrix", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if id := rec.Header().Get("X-Request-ID"); id == "" {
		t.Error("expected request ID header on response")
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := testRouter(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics endpoint, got %d", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := testRouter(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
