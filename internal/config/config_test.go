// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TMDB_API_KEY", "tmdb-test-key")
	t.Setenv("GEMINI_API_KEY", "gemini-test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Gemini.ParseModel != "gemini-3-flash-preview" {
		t.Errorf("expected default parse model, got %q", cfg.Gemini.ParseModel)
	}
	if cfg.Gemini.AnalysisModel != "gemini-3-pro-preview" {
		t.Errorf("expected default analysis model, got %q", cfg.Gemini.AnalysisModel)
	}
	if cfg.Gemini.Temperature != 0.1 {
		t.Errorf("expected default temperature 0.1, got %v", cfg.Gemini.Temperature)
	}
	if cfg.Scraper.MaxSectionChars != 2000 {
		t.Errorf("expected default section cap 2000, got %d", cfg.Scraper.MaxSectionChars)
	}
	if cfg.Server.AnalysisTimeout != 5*time.Minute {
		t.Errorf("expected default analysis timeout 5m, got %s", cfg.Server.AnalysisTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("GEMINI_PARSE_MODEL", "gemini-test-model")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090 from env, got %d", cfg.Server.Port)
	}
	if cfg.Gemini.ParseModel != "gemini-test-model" {
		t.Errorf("expected parse model override, got %q", cfg.Gemini.ParseModel)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://a.example" {
		t.Errorf("expected two CORS origins, got %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7777\nscraper:\n  max_section_chars: 1500\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777 from file, got %d", cfg.Server.Port)
	}
	if cfg.Scraper.MaxSectionChars != 1500 {
		t.Errorf("expected section cap 1500 from file, got %d", cfg.Scraper.MaxSectionChars)
	}
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error when API keys are missing")
	}
}

func TestValidateRejectsShortWriteTimeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.TMDB.APIKey = "k"
	cfg.Gemini.APIKey = "k"
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Server.AnalysisTimeout = 5 * time.Minute

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for write_timeout < analysis_timeout")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"GEMINI_API_KEY", "gemini.api_key"},
		{"HTTP_PORT", "server.port"},
		{"ADMIN_KEY", "security.admin_key"},
		{"IMDB_BASE_URL", "scraper.base_url"},
		{"RANDOM_UNRELATED_VAR", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
