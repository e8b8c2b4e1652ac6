// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package api exposes the advisory pipeline over HTTP: a single-shot
// JSON endpoint, a per-dimension SSE streaming endpoint, and health
// plus metrics surfaces.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/middleware"
)

// APIError is the standardized error body for non-streaming endpoints.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// WriteJSON writes a JSON document with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, r, status, errorResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}
