// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package models defines the advisory report data model shared across the
// pipeline: dimension results, the overall analysis, and the assembled
// report that is cached and returned to callers.
package models

// Level is the severity classification of one advisory dimension.
type Level string

// Severity levels. Unknown marks a fallback/placeholder result produced when
// the language model could not assess the dimension; a report containing an
// Unknown level is returned to the caller but never persisted.
const (
	LevelNone     Level = "None"
	LevelMild     Level = "Mild"
	LevelModerate Level = "Moderate"
	LevelSevere   Level = "Severe"
	LevelUnknown  Level = "Unknown"
)

// Dimension keys, fixed. Every completed report maps exactly these four keys
// to a DimensionResult regardless of which upstream calls failed.
const (
	DimSexAndNudity      = "sex_and_nudity"
	DimViolenceAndGore   = "violence_and_gore"
	DimProfanity         = "profanity"
	DimFrighteningScenes = "frightening_scenes"
)

// DimensionKeys lists the four advisory dimension keys in schema order.
// Emission order during streaming is completion order, not this order.
var DimensionKeys = []string{
	DimSexAndNudity,
	DimViolenceAndGore,
	DimProfanity,
	DimFrighteningScenes,
}

// DimensionResult is one advisory dimension's assessment.
type DimensionResult struct {
	Level      Level    `json:"level"`
	Score      int      `json:"score" validate:"gte=0,lte=10"`
	Summary    string   `json:"summary"`
	Quotes     []string `json:"original_quotes"`
	Confidence float64  `json:"confidence_score" validate:"gte=0,lte=1"`
}

// IsFallback reports whether the result is a synthetic placeholder rather
// than a model assessment.
func (d DimensionResult) IsFallback() bool {
	return d.Level == LevelUnknown
}

// FallbackDimension builds the synthetic placeholder emitted when every
// generation tier failed for a dimension. The captured error text rides in
// the summary so the degradation stays structurally visible downstream.
func FallbackDimension(reason string) DimensionResult {
	return DimensionResult{
		Level:      LevelUnknown,
		Score:      0,
		Summary:    "分析失败: " + reason,
		Quotes:     []string{},
		Confidence: 0.0,
	}
}

// DimensionSet maps the four fixed dimension keys to their results.
type DimensionSet map[string]DimensionResult

// Complete reports whether every dimension key is present with a real
// (non-fallback) result.
func (s DimensionSet) Complete() bool {
	for _, key := range DimensionKeys {
		result, ok := s[key]
		if !ok || result.IsFallback() {
			return false
		}
	}
	return true
}

// OverallAnalysis is the synthesized verdict over all four dimensions.
type OverallAnalysis struct {
	Analysis    string   `json:"analysis"`
	Conclusion  string   `json:"conclusion"`
	ContextTags []string `json:"context_tags"`
}

// OverallFailureAnalysis is the terminal fallback when every overall
// synthesis attempt failed. The fixed analysis text doubles as the marker
// the completeness predicate checks before persisting.
const OverallFailureAnalysis = "分析超时或失败"

// FallbackOverall builds the fixed overall-analysis placeholder.
func FallbackOverall() OverallAnalysis {
	return OverallAnalysis{
		Analysis:    OverallFailureAnalysis,
		Conclusion:  "请重试",
		ContextTags: []string{"系统超时"},
	}
}

// MovieMeta is the display metadata returned by the identity resolver.
// It is passed through to callers opaque to the pipeline.
type MovieMeta struct {
	Title       string  `json:"title"`
	Year        string  `json:"year"`
	PosterURL   string  `json:"poster_url"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

// IsZero reports whether no metadata was resolved.
func (m MovieMeta) IsZero() bool {
	return m == MovieMeta{}
}

// Report is the assembled advisory report for one movie. It is built
// incrementally by the orchestrator across one request and immutable once
// assembled; the store keeps its own copy on a successful commit.
type Report struct {
	Title      string          `json:"title"`
	Movie      MovieMeta       `json:"movie"`
	Dimensions DimensionSet    `json:"dimensions"`
	Overall    OverallAnalysis `json:"overall"`
}

// Complete is the validation gate for persistence: every dimension resolved
// to a real level and the overall analysis is neither empty nor the fixed
// failure text. Degraded reports are still returned to callers but never
// written to the store as if they were complete answers.
func (r *Report) Complete() bool {
	if !r.Dimensions.Complete() {
		return false
	}
	return r.Overall.Analysis != "" && r.Overall.Analysis != OverallFailureAnalysis
}

// RawAdvisoryText maps dimension keys to scraped source text. An empty or
// very short value signifies "no data" and the prompt instructs the model to
// produce an Unknown placeholder for it. Never persisted.
type RawAdvisoryText map[string]string
