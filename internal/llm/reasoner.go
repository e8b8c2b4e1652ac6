// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/metrics"
	"github.com/reelguard/reelguard/internal/models"
)

// Emission stages, used as metric labels and carried on streamed
// events so clients can tell a live result from a recovered one.
const (
	StageStream  = "stream"
	StageSweep   = "sweep"
	StageBatch   = "batch"
	StageDefault = "default"
)

// EmitFunc receives one dimension result as soon as it is available.
// stage identifies which pipeline tier produced it.
type EmitFunc func(key string, result models.DimensionResult, stage string)

// Reasoner drives the generation service: structured extraction of the
// four advisory dimensions on the fast model, overall synthesis on the
// stronger model.
type Reasoner struct {
	client GenerationClient
	cfg    config.GeminiConfig
}

func NewReasoner(client GenerationClient, cfg config.GeminiConfig) *Reasoner {
	return &Reasoner{client: client, cfg: cfg}
}

// ParseAllDimensions assesses all four dimensions in one unary call.
// It never returns an error: a failed call yields a set of fallback
// placeholders so the pipeline can keep going.
func (r *Reasoner) ParseAllDimensions(ctx context.Context, raw models.RawAdvisoryText) models.DimensionSet {
	start := time.Now()
	defer func() {
		metrics.RecordGeneration("batch", time.Since(start))
	}()

	prompt := buildDimensionsPrompt(raw)
	text, err := r.client.Generate(ctx, r.cfg.ParseModel, prompt, allDimensionsSchema)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Batch dimension generation failed")
		return fallbackSet(fmt.Sprintf("提取失败或分析超时: %v", err))
	}

	set, err := decodeDimensionSet(text)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Batch dimension response undecodable")
		return fallbackSet(fmt.Sprintf("提取失败或分析超时: %v", err))
	}
	return set
}

// StreamDimensions produces all four dimension results, calling emit
// for each exactly once in completion order. Three tiers run in
// sequence until every dimension is covered:
//
//  1. Streaming: partial-object extraction over the live token stream.
//  2. Batch: one unary call filling in whatever streaming missed.
//  3. Default: synthetic Unknown placeholders for anything left.
//
// The returned set always holds all four keys.
func (r *Reasoner) StreamDimensions(ctx context.Context, raw models.RawAdvisoryText, emit EmitFunc) models.DimensionSet {
	prompt := buildDimensionsPrompt(raw)
	results := make(models.DimensionSet, len(models.DimensionKeys))

	wrapped := func(key string, d models.DimensionResult, stage string) {
		results[key] = d
		metrics.DimensionsEmitted.WithLabelValues(stage).Inc()
		emit(key, d, stage)
	}

	r.streamTier(ctx, prompt, results, wrapped)

	var batchErr error
	if len(results) < len(models.DimensionKeys) {
		metrics.FallbackStageEntered.WithLabelValues(StageBatch).Inc()
		batchErr = r.batchTier(ctx, prompt, results, wrapped)
	}

	if len(results) < len(models.DimensionKeys) {
		metrics.FallbackStageEntered.WithLabelValues(StageDefault).Inc()
	}
	// The placeholders carry the batch failure so the rendered report
	// says what actually went wrong.
	reason := "所有生成尝试均失败"
	if batchErr != nil {
		reason = batchErr.Error()
	}
	for _, key := range models.DimensionKeys {
		if _, ok := results[key]; !ok {
			wrapped(key, models.FallbackDimension(reason), StageDefault)
		}
	}

	return results
}

// streamTier consumes the token stream, emitting each dimension as
// soon as its object completes in the buffer. When the stream ends
// with dimensions still missing, a final sweep parses the full buffer:
// the lenient extractor may have skipped spans that are valid in the
// complete document.
func (r *Reasoner) streamTier(ctx context.Context, prompt string, results models.DimensionSet, emit EmitFunc) {
	chunks, errs := r.client.GenerateStream(ctx, r.cfg.ParseModel, prompt, allDimensionsSchema)

	var buf strings.Builder
	for chunk := range chunks {
		buf.WriteString(chunk)
		for _, key := range models.DimensionKeys {
			if _, done := results[key]; done {
				continue
			}
			if d, ok := ExtractDimension(buf.String(), key); ok {
				emit(key, d, StageStream)
			}
		}
	}

	if err := <-errs; err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Dimension stream broke, falling back")
	}

	if len(results) < len(models.DimensionKeys) && buf.Len() > 0 {
		if set, err := decodeDimensionSet(buf.String()); err == nil {
			for _, key := range models.DimensionKeys {
				if _, done := results[key]; done {
					continue
				}
				if d, ok := set[key]; ok {
					emit(key, d, StageSweep)
				}
			}
		}
	}
}

// batchTier retries missing dimensions with one unary call. The
// returned error is what the default tier puts into its placeholder
// summaries.
func (r *Reasoner) batchTier(ctx context.Context, prompt string, results models.DimensionSet, emit EmitFunc) error {
	start := time.Now()
	defer func() {
		metrics.RecordGeneration("batch", time.Since(start))
	}()

	logging.Ctx(ctx).Info().
		Int("missing", len(models.DimensionKeys)-len(results)).
		Msg("Using batch generation fallback")

	text, err := r.client.Generate(ctx, r.cfg.ParseModel, prompt, allDimensionsSchema)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Batch generation fallback failed")
		return err
	}

	set, err := decodeDimensionSet(text)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Batch fallback response undecodable")
		return err
	}

	for _, key := range models.DimensionKeys {
		if _, done := results[key]; done {
			continue
		}
		if d, ok := set[key]; ok {
			emit(key, d, StageBatch)
		}
	}
	return nil
}

// GenerateOverall synthesizes the overall verdict on the stronger
// model. Like dimension parsing it degrades instead of failing: the
// fixed failure placeholder keeps the report renderable and blocks
// persistence.
func (r *Reasoner) GenerateOverall(ctx context.Context, dims models.DimensionSet) models.OverallAnalysis {
	start := time.Now()
	defer func() {
		metrics.RecordGeneration("overall", time.Since(start))
	}()

	prompt := buildOverallPrompt(dims)
	text, err := r.client.Generate(ctx, r.cfg.AnalysisModel, prompt, overallSchema)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Overall analysis generation failed")
		return overallFailure(err)
	}

	var overall models.OverallAnalysis
	if err := json.Unmarshal([]byte(text), &overall); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Overall analysis response undecodable")
		return overallFailure(err)
	}
	return overall
}

func overallFailure(err error) models.OverallAnalysis {
	o := models.FallbackOverall()
	o.Conclusion = fmt.Sprintf("大模型返回异常: %v", err)
	return o
}

func decodeDimensionSet(text string) (models.DimensionSet, error) {
	var set models.DimensionSet
	if err := json.Unmarshal([]byte(text), &set); err != nil {
		return nil, err
	}
	return set, nil
}

func fallbackSet(reason string) models.DimensionSet {
	set := make(models.DimensionSet, len(models.DimensionKeys))
	for _, key := range models.DimensionKeys {
		d := models.FallbackDimension("")
		d.Summary = reason
		set[key] = d
	}
	return set
}
