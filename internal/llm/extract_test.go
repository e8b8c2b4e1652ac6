// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package llm

import (
	"testing"

	"github.com/reelguard/reelguard/internal/models"
)

func TestExtractDimensionComplete(t *testing.T) {
	buffer := `{"sex_and_nudity": {"level": "Mild", "score": 2, "summary": "轻微", "original_quotes": ["a kiss"], "confidence_score": 0.9}, "violence_and_gore": {"level"`

	d, ok := ExtractDimension(buffer, "sex_and_nudity")
	if !ok {
		t.Fatal("expected complete object to extract")
	}
	if d.Level != models.LevelMild || d.Score != 2 || d.Confidence != 0.9 {
		t.Errorf("unexpected result: %+v", d)
	}
	if len(d.Quotes) != 1 || d.Quotes[0] != "a kiss" {
		t.Errorf("unexpected quotes: %v", d.Quotes)
	}
}

func TestExtractDimensionIncomplete(t *testing.T) {
	buffers := []string{
		``,
		`{"sex_and`,
		`{"sex_and_nudity"`,
		`{"sex_and_nudity":`,
		`{"sex_and_nudity": {"level": "Mild", "score": 2`,
		`{"sex_and_nudity": {"level": "Mild", "summary": "open string`,
	}
	for _, buf := range buffers {
		if _, ok := ExtractDimension(buf, "sex_and_nudity"); ok {
			t.Errorf("expected no extraction from %q", buf)
		}
	}
}

func TestExtractDimensionBracesInStrings(t *testing.T) {
	buffer := `{"violence_and_gore": {"level": "Severe", "score": 9, "summary": "包含 } 与 { 符号", "original_quotes": ["blood {everywhere}"], "confidence_score": 0.8}`

	d, ok := ExtractDimension(buffer, "violence_and_gore")
	if !ok {
		t.Fatal("expected extraction despite braces inside strings")
	}
	if d.Level != models.LevelSevere || d.Score != 9 {
		t.Errorf("unexpected result: %+v", d)
	}
}

func TestExtractDimensionEscapedQuotes(t *testing.T) {
	// The crafted value {"a": "}"} must not terminate the span early:
	// the closing brace sits inside a string.
	buffer := `{"profanity": {"level": "Mild", "score": 1, "summary": "he said \"}\" aloud", "original_quotes": ["{\"a\": \"}\"}"], "confidence_score": 0.5}}`

	d, ok := ExtractDimension(buffer, "profanity")
	if !ok {
		t.Fatal("expected extraction despite escaped quotes and braces")
	}
	if d.Summary != `he said "}" aloud` {
		t.Errorf("unexpected summary: %q", d.Summary)
	}
	if len(d.Quotes) != 1 || d.Quotes[0] != `{"a": "}"}` {
		t.Errorf("unexpected quotes: %v", d.Quotes)
	}
}

func TestExtractDimensionMalformedSpan(t *testing.T) {
	// Balanced but not decodable as a dimension (score must be a
	// number): treated as not-yet-available, never as a hard error.
	buffer := `{"frightening_scenes": {"level": "Mild", "score": "two"}}`

	if _, ok := ExtractDimension(buffer, "frightening_scenes"); ok {
		t.Fatal("expected malformed span to be skipped")
	}
}

func TestDecodeDimensionSet(t *testing.T) {
	doc := `{
		"sex_and_nudity": {"level": "None", "score": 0, "summary": "无", "original_quotes": [], "confidence_score": 1.0},
		"violence_and_gore": {"level": "Severe", "score": 9, "summary": "血腥", "original_quotes": ["lots of blood"], "confidence_score": 0.85},
		"profanity": {"level": "Mild", "score": 3, "summary": "粗口", "original_quotes": [], "confidence_score": 0.7},
		"frightening_scenes": {"level": "Moderate", "score": 5, "summary": "紧张", "original_quotes": [], "confidence_score": 0.6}
	}`

	set, err := decodeDimensionSet(doc)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !set.Complete() {
		t.Error("expected a complete dimension set")
	}
	if set[models.DimViolenceAndGore].Score != 9 {
		t.Errorf("unexpected violence result: %+v", set[models.DimViolenceAndGore])
	}

	if _, err := decodeDimensionSet("not json"); err == nil {
		t.Error("expected error for undecodable document")
	}
}
