// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/metrics"
)

// GeminiClient talks to the Gemini API through the official SDK.
// Unary calls retry transient failures with exponential backoff and
// run behind a circuit breaker shared across all callers, so a
// capacity incident upstream sheds load quickly instead of queueing.
type GeminiClient struct {
	client  *genai.Client
	cfg     config.GeminiConfig
	breaker *gobreaker.CircuitBreaker[string]
}

// NewGeminiClient creates a client from config.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	settings := gobreaker.Settings{
		Name: "gemini",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailureThreshold)
		},
		Timeout: cfg.BreakerOpenTimeout,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Generation circuit breaker state change")
		},
	}

	return &GeminiClient{
		client:  client,
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

func (c *GeminiClient) generationConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		// Low temperature for analytical consistency
		Temperature: genai.Ptr(float32(c.cfg.Temperature)),
	}
}

func (c *GeminiClient) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialInterval
	b.MaxInterval = c.cfg.MaxInterval
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	var policy backoff.BackOff = b
	if c.cfg.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.cfg.MaxAttempts-1))
	}
	return backoff.WithContext(policy, ctx)
}

// Generate implements GenerationClient.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		var out string
		op := func() error {
			resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), c.generationConfig(schema))
			if err != nil {
				if !IsTransient(err) {
					return backoff.Permanent(err)
				}
				metrics.GenerationRetries.WithLabelValues(model).Inc()
				logging.Ctx(ctx).Warn().
					Err(err).
					Str("model", model).
					Msg("Transient generation failure, retrying")
				return err
			}
			out = resp.Text()
			return nil
		}

		if err := backoff.Retry(op, c.newBackoff(ctx)); err != nil {
			metrics.GenerationFailures.WithLabelValues(model).Inc()
			return "", fmt.Errorf("generation failed for %s: %w", model, err)
		}
		return out, nil
	})
}

// GenerateStream implements GenerationClient. The stream itself is not
// retried chunk-by-chunk; a broken stream surfaces on the error
// channel and callers fall back to a unary call.
func (c *GeminiClient) GenerateStream(ctx context.Context, model, prompt string, schema *genai.Schema) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)

		start := time.Now()
		var streamErr error
		for resp, err := range c.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), c.generationConfig(schema)) {
			if err != nil {
				streamErr = err
				break
			}
			if text := resp.Text(); text != "" {
				select {
				case chunks <- text:
				case <-ctx.Done():
					streamErr = ctx.Err()
					errs <- streamErr
					return
				}
			}
		}
		metrics.RecordGeneration("stream", time.Since(start))
		if streamErr != nil {
			metrics.GenerationFailures.WithLabelValues(model).Inc()
		}
		errs <- streamErr
	}()

	return chunks, errs
}
