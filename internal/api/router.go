// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it works with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter wires all HTTP routes.
func NewRouter(handler *Handler, security config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Key", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		// Permissive rate limit so monitoring can poll freely
		r.Use(httprate.LimitByIP(1000, security.RateLimitWindow))
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if security.RateLimitReqs > 0 {
			r.Use(httprate.LimitByIP(security.RateLimitReqs, security.RateLimitWindow))
		}
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/analyze", handler.Analyze)
		r.Get("/analyze/stream", handler.AnalyzeStream)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
