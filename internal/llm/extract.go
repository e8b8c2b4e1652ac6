// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package llm

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/metrics"
	"github.com/reelguard/reelguard/internal/models"
)

// ExtractDimension scans a partial JSON buffer for a complete object
// value under the given key and decodes it. It returns ok=false while
// the object is still incomplete.
//
// A balanced span that fails to decode is also reported as not-found:
// the buffer may legitimately grow into a parseable state later. That
// leniency can mask a broken payload until the stream ends, so
// malformed spans are counted and logged.
func ExtractDimension(buffer, key string) (models.DimensionResult, bool) {
	span, ok := balancedSpan(buffer, key)
	if !ok {
		return models.DimensionResult{}, false
	}

	var d models.DimensionResult
	if err := json.Unmarshal([]byte(span), &d); err != nil {
		metrics.ExtractorMalformedSpans.Inc()
		logging.Warn().
			Err(err).
			Str("dimension", key).
			Int("span_bytes", len(span)).
			Msg("Balanced JSON span failed to decode")
		return models.DimensionResult{}, false
	}
	return d, true
}

// balancedSpan finds the object value for key and returns the text of
// its first brace-balanced span. Brace counting is string-aware and
// escape-aware, so braces and escaped quotes inside string values do
// not terminate the span early.
func balancedSpan(buffer, key string) (string, bool) {
	marker := `"` + key + `"`
	idx := strings.Index(buffer, marker)
	if idx == -1 {
		return "", false
	}

	rest := buffer[idx+len(marker):]
	colon := strings.IndexByte(rest, ':')
	if colon == -1 {
		return "", false
	}

	braceOff := strings.IndexByte(rest[colon:], '{')
	if braceOff == -1 {
		return "", false
	}
	start := idx + len(marker) + colon + braceOff

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(buffer); i++ {
		ch := buffer[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return buffer[start : i+1], true
			}
		}
	}

	// Object not yet complete
	return "", false
}
