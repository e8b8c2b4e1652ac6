// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/report"
	"github.com/reelguard/reelguard/internal/resolver"
)

// Analyze handles GET /api/v1/analyze: the single-shot JSON endpoint.
// The response is one document {id, source, title, movie, dimensions,
// overall}; a degraded pipeline still answers 200 with Unknown levels
// and failure text inside the document.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "title query parameter is required")
		return
	}

	ctx, cancel := h.analysisContext(r)
	defer cancel()

	result, err := h.service.Analyze(ctx, title, h.refreshRequested(r))
	if err != nil {
		if errors.Is(err, resolver.ErrMovieNotFound) {
			WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("title", title).Msg("Analysis failed")
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "analysis failed")
		return
	}

	WriteJSON(w, r, http.StatusOK, result)
}

// AnalyzeStream handles GET /api/v1/analyze/stream: per-dimension SSE.
// Event order: meta, then one dim per completed dimension in
// completion order, then overall, then done — or a single cache or
// error event.
func (h *Handler) AnalyzeStream(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "title query parameter is required")
		return
	}

	sse, ok := newSSEWriter(w)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "streaming unsupported")
		return
	}

	ctx, cancel := h.analysisContext(r)
	defer cancel()

	h.service.AnalyzeStream(ctx, title, h.refreshRequested(r), func(e report.Event) {
		sse.Send(r, e.Type, e.Payload)
	})
}
