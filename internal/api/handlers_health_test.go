// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/config"
)

type healthyStore struct{}

func (healthyStore) Ping(context.Context) error { return nil }

type brokenStore struct{}

func (brokenStore) Ping(context.Context) error { return errors.New("store closed") }

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) healthResponse {
	t.Helper()
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health response not valid JSON: %v", err)
	}
	return body
}

func TestHealthReportsStoreAndUptime(t *testing.T) {
	h := NewHandler(&stubService{}, healthyStore{}, config.SecurityConfig{}, time.Minute)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeHealth(t, rec)
	if body.Status != "healthy" || !body.StoreConnected {
		t.Errorf("expected healthy with store connected, got %+v", body)
	}
	if body.UptimeSeconds < 0 {
		t.Errorf("expected non-negative uptime, got %f", body.UptimeSeconds)
	}
}

func TestHealthDegradedWhenStoreDown(t *testing.T) {
	h := NewHandler(&stubService{}, brokenStore{}, config.SecurityConfig{}, time.Minute)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	// Degraded service still answers 200: the pipeline can serve
	// uncached reports without its store.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeHealth(t, rec)
	if body.Status != "degraded" || body.StoreConnected {
		t.Errorf("expected degraded with store down, got %+v", body)
	}
}

func TestHealthReadyRequiresStore(t *testing.T) {
	h := NewHandler(&stubService{}, brokenStore{}, config.SecurityConfig{}, time.Minute)

	rec := httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when store unreachable, got %d", rec.Code)
	}
	if body := decodeHealth(t, rec); body.Status != "not_ready" {
		t.Errorf("expected not_ready, got %+v", body)
	}

	h = NewHandler(&stubService{}, healthyStore{}, config.SecurityConfig{}, time.Minute)
	rec = httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when store answers, got %d", rec.Code)
	}
}

func TestHealthLiveIgnoresDependencies(t *testing.T) {
	h := NewHandler(&stubService{}, brokenStore{}, config.SecurityConfig{}, time.Minute)

	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on the store, got %d", rec.Code)
	}
}
