// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package llm

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/models"
)

// buildDimensionsPrompt asks for all four dimension assessments in one
// call. Keeping everything in a single response lets the streaming
// path emit dimensions as they complete without four separate calls.
func buildDimensionsPrompt(raw models.RawAdvisoryText) string {
	rawJSON, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		rawJSON = []byte(fmt.Sprintf("%v", raw))
	}

	return fmt.Sprintf(`You are an expert film content analyst. Analyze the raw text from IMDb's Parental Guide.

Output a pure JSON object with exactly these four keys in order:
sex_and_nudity, violence_and_gore, profanity, frightening_scenes.

RULES:
1. Each dimension needs: level (None/Mild/Moderate/Severe), score (0-10), summary (简体中文), original_quotes (English list), confidence_score (0.0-1.0).
2. Provide exactly matching original_quotes from the raw text that justify your score. Keep quotes precise.
3. If text < 10 chars or meaningless, force level="Unknown", score=0, summary="数据缺失", original_quotes=[].
4. NO markdown, NO explanation, ONLY the JSON object.

RAW TEXTS:
%s`, rawJSON)
}

// buildOverallPrompt asks the stronger model to synthesize a verdict
// from the already-assessed dimensions.
func buildOverallPrompt(dims models.DimensionSet) string {
	dimsJSON, err := json.MarshalIndent(dims, "", "  ")
	if err != nil {
		dimsJSON = []byte(fmt.Sprintf("%v", dims))
	}

	return fmt.Sprintf(`You are an expert parental guide evaluator. Below are the summarized dimension scores and quotes for a movie.

%s

Please provide a detailed overall analysis, a final conclusion, and context tags.

CRITICAL INSTRUCTIONS:
1. ALL OUTPUT STRINGS (analysis, conclusion, context_tags) MUST BE IN **Simplified Chinese (简体中文)**.
2. context_tags should be 3-5 short phrases suitable for UI badges (e.g., "重度暴力", "轻微粗口", "裸露镜头").`, dimsJSON)
}
