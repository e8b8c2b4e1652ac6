// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status         string    `json:"status"`
	StoreConnected bool      `json:"store_connected"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

type livenessResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// storeConnected reports whether the report store answers reads. A
// nil store means not connected.
func (h *Handler) storeConnected(r *http.Request) bool {
	return h.store != nil && h.store.Ping(r.Context()) == nil
}

// Health handles GET /api/v1/health. The process can serve degraded
// reports without its cache, so a store failure reports as degraded
// rather than an error status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.storeConnected(r)

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	WriteJSON(w, r, http.StatusOK, healthResponse{
		Status:         status,
		StoreConnected: connected,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
		Timestamp:      time.Now().UTC(),
	})
}

// HealthLive handles GET /api/v1/health/live: process liveness only,
// regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, livenessResponse{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Timestamp:     time.Now().UTC(),
	})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires
// the report store to answer reads; 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	connected := h.storeConnected(r)

	statusCode := http.StatusOK
	status := "ready"
	if !connected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	WriteJSON(w, r, statusCode, healthResponse{
		Status:         status,
		StoreConnected: connected,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
		Timestamp:      time.Now().UTC(),
	})
}
