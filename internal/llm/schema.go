// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package llm

import (
	"google.golang.org/genai"

	"github.com/reelguard/reelguard/internal/models"
)

// Response schemas constraining generation output. Constrained JSON
// keeps the stream parseable by the partial-object extractor.

func newDimensionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"level": {
				Type:        genai.TypeString,
				Description: "Exactly one of: None, Mild, Moderate, Severe, Unknown.",
			},
			"score": {
				Type:        genai.TypeInteger,
				Description: "Intensity score from 0 to 10.",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "Brief summary of this dimension. MUST be in Simplified Chinese.",
			},
			"original_quotes": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Exact quotes from the raw English text supporting the score.",
			},
			"confidence_score": {
				Type:        genai.TypeNumber,
				Description: "Confidence in this assessment from 0.0 to 1.0.",
			},
		},
		Required: []string{"level", "score", "summary", "original_quotes", "confidence_score"},
		PropertyOrdering: []string{
			"level", "score", "summary", "original_quotes", "confidence_score",
		},
	}
}

// allDimensionsSchema covers the four advisory dimensions in one
// object. PropertyOrdering pushes the model to emit dimensions in a
// stable order, although the extractor does not depend on it.
var allDimensionsSchema = func() *genai.Schema {
	props := make(map[string]*genai.Schema, len(models.DimensionKeys))
	for _, key := range models.DimensionKeys {
		props[key] = newDimensionSchema()
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         models.DimensionKeys,
		PropertyOrdering: models.DimensionKeys,
	}
}()

var overallSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis": {
			Type:        genai.TypeString,
			Description: "Detailed overall analysis of all dimensions. MUST be in Simplified Chinese.",
		},
		"conclusion": {
			Type:        genai.TypeString,
			Description: "Final brief recommendation for parents. MUST be in Simplified Chinese.",
		},
		"context_tags": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Short UI badge tags, e.g. 血腥镜头, 脏话较多, 适合全家. MUST be in Simplified Chinese.",
		},
	},
	Required:         []string{"analysis", "conclusion", "context_tags"},
	PropertyOrdering: []string{"analysis", "conclusion", "context_tags"},
}
