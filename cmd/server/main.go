// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package main is the entry point for the Reelguard server.
//
// Reelguard turns a movie title into a structured parental content
// advisory report: it resolves the title to an IMDb id via TMDB,
// scrapes the IMDb parental guide, and has Gemini synthesize a
// four-dimension advisory (sex/nudity, violence, profanity,
// frightening scenes) with Chinese-language summaries and an overall
// viewing recommendation. Completed reports are cached in BadgerDB.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and config file (Koanf v2)
//  2. Report store: BadgerDB-backed cache of completed reports
//  3. Resolver: TMDB title-to-IMDb-id lookup and movie metadata
//  4. Scraper: IMDb parental guide fetcher with retry and UA rotation
//  5. Reasoner: Gemini client with circuit breaker, streaming
//     extraction and batch fallback
//  6. HTTP server: Chi router with SSE streaming and single-shot JSON
//     endpoints
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. TMDB_API_KEY and GEMINI_API_KEY are required.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it
// stops accepting new connections, waits for in-flight requests to
// complete (bounded by SHUTDOWN_TIMEOUT), then closes the report
// store.
//
// # Example Usage
//
//	export TMDB_API_KEY=your-tmdb-key
//	export GEMINI_API_KEY=your-gemini-key
//	export STORE_PATH=/data/reports
//	./reelguard
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reelguard/reelguard/internal/api"
	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/llm"
	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/report"
	"github.com/reelguard/reelguard/internal/resolver"
	"github.com/reelguard/reelguard/internal/scraper"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("parse_model", cfg.Gemini.ParseModel).
		Str("analysis_model", cfg.Gemini.AnalysisModel).
		Str("store_path", cfg.Store.Path).
		Bool("store_in_memory", cfg.Store.InMemory).
		Msg("Starting Reelguard")

	store, err := report.NewBadgerStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open report store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing report store")
		}
	}()
	logging.Info().Msg("Report store initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize Gemini client")
	}

	orchestrator := report.NewOrchestrator(
		resolver.NewTMDBResolver(cfg.TMDB),
		scraper.NewIMDBScraper(cfg.Scraper),
		llm.NewReasoner(gemini, cfg.Gemini),
		store,
	)

	handler := api.NewHandler(orchestrator, store, cfg.Security, cfg.Server.AnalysisTimeout)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      api.NewRouter(handler, cfg.Security),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
