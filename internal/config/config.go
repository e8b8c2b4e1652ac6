// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Gemini   GeminiConfig   `koanf:"gemini"`
	Scraper  ScraperConfig  `koanf:"scraper"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_HOST: listen address (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 8000)
//   - HTTP_READ_TIMEOUT / HTTP_WRITE_TIMEOUT: socket timeouts
//   - ANALYSIS_TIMEOUT: end-to-end budget for one report pipeline run
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// AnalysisTimeout bounds a full pipeline run (resolve, scrape,
	// generation). Streaming responses can outlive WriteTimeout, so
	// WriteTimeout must be 0 or >= AnalysisTimeout.
	AnalysisTimeout time.Duration `koanf:"analysis_timeout"`
}

// TMDBConfig holds TMDB API settings for title resolution and metadata.
//
// Environment variables:
//   - TMDB_API_KEY: TMDB v3 API key (required)
//   - TMDB_BASE_URL: API base URL override, mainly for tests
type TMDBConfig struct {
	APIKey   string        `koanf:"api_key" validate:"required"`
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	Language string        `koanf:"language"`
	Timeout  time.Duration `koanf:"timeout"`
}

// GeminiConfig holds generation service settings.
//
// Two model tiers are used: a fast model for structured extraction of
// the four advisory dimensions, and a stronger model for the overall
// narrative analysis.
//
// Environment variables:
//   - GEMINI_API_KEY: API key (required)
//   - GEMINI_PARSE_MODEL / GEMINI_ANALYSIS_MODEL: model overrides
type GeminiConfig struct {
	APIKey        string  `koanf:"api_key" validate:"required"`
	ParseModel    string  `koanf:"parse_model" validate:"required"`
	AnalysisModel string  `koanf:"analysis_model" validate:"required"`
	Temperature   float64 `koanf:"temperature" validate:"gte=0,lte=2"`

	// Retry policy for transient generation failures.
	MaxAttempts     int           `koanf:"max_attempts" validate:"gte=1,lte=10"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`

	// Circuit breaker thresholds.
	BreakerFailureThreshold int           `koanf:"breaker_failure_threshold" validate:"gte=1"`
	BreakerOpenTimeout      time.Duration `koanf:"breaker_open_timeout"`
}

// ScraperConfig holds IMDb parental guide scraper settings.
type ScraperConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts" validate:"gte=1,lte=10"`
	RetryDelay  time.Duration `koanf:"retry_delay"`

	// MaxSectionChars truncates each advisory section before it is fed
	// to the generation service, keeping prompts within budget.
	MaxSectionChars int `koanf:"max_section_chars" validate:"gte=100"`
}

// StoreConfig holds report store (BadgerDB) settings.
type StoreConfig struct {
	Path     string `koanf:"path" validate:"required"`
	InMemory bool   `koanf:"in_memory"`
}

// SecurityConfig holds API security settings.
//
// Environment variables:
//   - ADMIN_KEY: privileged key allowing cache-bypass refresh requests
//   - CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	AdminKey        string        `koanf:"admin_key"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for errors beyond what struct tags
// can express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Server.AnalysisTimeout <= 0 {
		return fmt.Errorf("server.analysis_timeout must be positive, got %s", c.Server.AnalysisTimeout)
	}
	if c.Server.WriteTimeout != 0 && c.Server.WriteTimeout < c.Server.AnalysisTimeout {
		return fmt.Errorf("server.write_timeout (%s) must be 0 or >= server.analysis_timeout (%s)",
			c.Server.WriteTimeout, c.Server.AnalysisTimeout)
	}
	if c.Gemini.InitialInterval <= 0 || c.Gemini.MaxInterval < c.Gemini.InitialInterval {
		return fmt.Errorf("gemini retry intervals invalid: initial=%s max=%s",
			c.Gemini.InitialInterval, c.Gemini.MaxInterval)
	}
	return nil
}

// ListenAddr returns the host:port pair the HTTP server binds to.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
