// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelguard/config.yaml",
	"/etc/reelguard/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // streaming responses outlive fixed write deadlines
			ShutdownTimeout: 15 * time.Second,
			AnalysisTimeout: 5 * time.Minute,
		},
		TMDB: TMDBConfig{
			APIKey:   "",
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "zh-CN",
			Timeout:  10 * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:                  "",
			ParseModel:              "gemini-3-flash-preview",
			AnalysisModel:           "gemini-3-pro-preview",
			Temperature:             0.1,
			MaxAttempts:             5,
			InitialInterval:         2 * time.Second,
			MaxInterval:             30 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerOpenTimeout:      60 * time.Second,
		},
		Scraper: ScraperConfig{
			BaseURL:         "https://www.imdb.com",
			Timeout:         20 * time.Second,
			MaxAttempts:     3,
			RetryDelay:      2 * time.Second,
			MaxSectionChars: 2000,
		},
		Store: StoreConfig{
			Path:     "/data/reports",
			InMemory: false,
		},
		Security: SecurityConfig{
			AdminKey:        "",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: 1 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config file: optional YAML config file (if present)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// TMDB_API_KEY -> tmdb.api_key, HTTP_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars come in as strings, so comma-separated slice fields need
	// an explicit split.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, checking the env override
// first, then the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when set via env vars.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML), skip.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables return "" and are skipped, preventing
// random environment noise from polluting the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":          "server.host",
		"http_port":          "server.port",
		"http_read_timeout":  "server.read_timeout",
		"http_write_timeout": "server.write_timeout",
		"shutdown_timeout":   "server.shutdown_timeout",
		"analysis_timeout":   "server.analysis_timeout",

		// TMDB mappings
		"tmdb_api_key":  "tmdb.api_key",
		"tmdb_base_url": "tmdb.base_url",
		"tmdb_language": "tmdb.language",
		"tmdb_timeout":  "tmdb.timeout",

		// Gemini mappings
		"gemini_api_key":        "gemini.api_key",
		"gemini_parse_model":    "gemini.parse_model",
		"gemini_analysis_model": "gemini.analysis_model",
		"gemini_temperature":    "gemini.temperature",
		"gemini_max_attempts":   "gemini.max_attempts",

		// Scraper mappings
		"imdb_base_url":        "scraper.base_url",
		"scraper_timeout":      "scraper.timeout",
		"scraper_max_attempts": "scraper.max_attempts",
		"scraper_retry_delay":  "scraper.retry_delay",

		// Store mappings
		"store_path":      "store.path",
		"store_in_memory": "store.in_memory",

		// Security mappings
		"admin_key":           "security.admin_key",
		"cors_origins":        "security.cors_origins",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}
