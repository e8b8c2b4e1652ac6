// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package llm synthesizes structured advisory reports from raw guide
// text using a generation service, with streaming partial-object
// extraction and a tiered fallback chain.
package llm

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// GenerationClient is the transport to the generation service. Both
// methods request schema-constrained JSON output.
//
// GenerateStream returns a channel of text chunks and a one-shot error
// channel. The chunk channel is closed when the stream ends; the error
// channel then yields nil on clean completion or the terminal error.
// Chunks received before a mid-stream error are still valid prefix
// text.
type GenerationClient interface {
	Generate(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error)
	GenerateStream(ctx context.Context, model, prompt string, schema *genai.Schema) (<-chan string, <-chan error)
}

// IsTransient classifies a generation error as retryable. Only
// capacity-style server failures are worth retrying; schema errors,
// auth failures, and safety blocks fail fast.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "503") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "capacity") {
		return true
	}
	if strings.Contains(msg, "500") || strings.Contains(msg, "internal") {
		return true
	}
	return false
}
