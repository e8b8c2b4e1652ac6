// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package report

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/reelguard/reelguard/internal/llm"
	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/metrics"
	"github.com/reelguard/reelguard/internal/models"
	"github.com/reelguard/reelguard/internal/resolver"
	"github.com/reelguard/reelguard/internal/scraper"
)

// Event types emitted by the streaming entry point, in strict order:
// meta, then dim per completed dimension in completion order, then
// overall, then done. A cache hit collapses to a single cache event;
// a resolution failure to a single error event. No event is ever
// retracted or corrected after emission.
const (
	EventMeta    = "meta"
	EventDim     = "dim"
	EventOverall = "overall"
	EventDone    = "done"
	EventError   = "error"
	EventCache   = "cache"
)

// Event is one typed progress notification pushed to a streaming
// caller.
type Event struct {
	Type    string
	Payload any
}

type MetaPayload struct {
	ID    string           `json:"id"`
	Movie models.MovieMeta `json:"movie"`
}

// DimPayload is one completed dimension. Stage tells the caller which
// pipeline tier produced the result (stream, sweep, batch, default).
type DimPayload struct {
	Key   string `json:"key"`
	Stage string `json:"stage"`
	models.DimensionResult
}

type DonePayload struct {
	Source string `json:"source"`
}

type ErrorPayload struct {
	Detail string `json:"detail"`
}

type CachePayload struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Title      string                 `json:"title"`
	Movie      models.MovieMeta       `json:"movie"`
	Dimensions models.DimensionSet    `json:"dimensions"`
	Overall    models.OverallAnalysis `json:"overall"`
}

// Result is the single-shot response document.
type Result struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Title      string                 `json:"title"`
	Movie      models.MovieMeta       `json:"movie"`
	Dimensions models.DimensionSet    `json:"dimensions"`
	Overall    models.OverallAnalysis `json:"overall"`
}

const (
	sourceCache = "cache"
	sourceLive  = "live"
)

// Orchestrator drives one request end to end: identity resolution,
// concurrent metadata and advisory-text fetch, dimension generation
// through the fallback tiers, overall synthesis, and the validated
// cache commit. All dependencies are injected.
type Orchestrator struct {
	resolver resolver.Resolver
	fetcher  scraper.Fetcher
	reasoner *llm.Reasoner
	store    Store
}

func NewOrchestrator(res resolver.Resolver, fetch scraper.Fetcher, reasoner *llm.Reasoner, store Store) *Orchestrator {
	return &Orchestrator{
		resolver: res,
		fetcher:  fetch,
		reasoner: reasoner,
		store:    store,
	}
}

// Analyze is the single-shot entry point. Once the title resolves, it
// always returns a report; upstream failures degrade to Unknown
// placeholders or fixed failure text instead of erroring.
func (o *Orchestrator) Analyze(ctx context.Context, title string, refresh bool) (*Result, error) {
	imdbID, err := o.resolver.Resolve(ctx, title)
	if err != nil {
		return nil, err
	}

	if !refresh {
		if cached := o.cacheLookup(ctx, imdbID); cached != nil {
			return &Result{
				ID:         imdbID,
				Source:     sourceCache,
				Title:      cached.Title,
				Movie:      cached.Movie,
				Dimensions: cached.Dimensions,
				Overall:    cached.Overall,
			}, nil
		}
	}

	meta, raw := o.fetchInputs(ctx, imdbID)

	dims := o.reasoner.ParseAllDimensions(ctx, raw)
	overall := o.reasoner.GenerateOverall(ctx, dims)

	rep := o.assemble(imdbID, meta, dims, overall)
	o.commit(ctx, imdbID, rep)

	return &Result{
		ID:         imdbID,
		Source:     sourceLive,
		Title:      rep.Title,
		Movie:      rep.Movie,
		Dimensions: rep.Dimensions,
		Overall:    rep.Overall,
	}, nil
}

// AnalyzeStream is the streaming entry point. Progress is pushed to
// emit in order; the sequence always ends with a done, cache, or error
// event. The cache commit happens only after the full in-process
// sequence completes, never from a partially consumed stream.
func (o *Orchestrator) AnalyzeStream(ctx context.Context, title string, refresh bool, emit func(Event)) {
	imdbID, err := o.resolver.Resolve(ctx, title)
	if err != nil {
		detail := "Movie not found: " + err.Error()
		if !errors.Is(err, resolver.ErrMovieNotFound) {
			detail = "Resolution failed: " + err.Error()
		}
		emit(Event{Type: EventError, Payload: ErrorPayload{Detail: detail}})
		return
	}

	if !refresh {
		if cached := o.cacheLookup(ctx, imdbID); cached != nil {
			emit(Event{Type: EventCache, Payload: CachePayload{
				ID:         imdbID,
				Source:     sourceCache,
				Title:      cached.Title,
				Movie:      cached.Movie,
				Dimensions: cached.Dimensions,
				Overall:    cached.Overall,
			}})
			return
		}
	}

	meta, raw := o.fetchInputs(ctx, imdbID)
	emit(Event{Type: EventMeta, Payload: MetaPayload{ID: imdbID, Movie: meta}})

	dims := o.reasoner.StreamDimensions(ctx, raw, func(key string, d models.DimensionResult, stage string) {
		emit(Event{Type: EventDim, Payload: DimPayload{Key: key, Stage: stage, DimensionResult: d}})
	})

	overall := o.reasoner.GenerateOverall(ctx, dims)

	rep := o.assemble(imdbID, meta, dims, overall)
	o.commit(ctx, imdbID, rep)

	emit(Event{Type: EventOverall, Payload: overall})
	emit(Event{Type: EventDone, Payload: DonePayload{Source: sourceLive}})
}

// cacheLookup returns the stored report for imdbID augmented with
// freshly fetched metadata, or nil on a miss. Stored records
// predating the metadata field are healed: the record is rewritten
// once with the fresh metadata merged in, without re-running
// generation.
func (o *Orchestrator) cacheLookup(ctx context.Context, imdbID string) *models.Report {
	cached, err := o.store.Get(ctx, imdbID)
	if err != nil {
		if !errors.Is(err, ErrStoreMiss) {
			metrics.StoreErrors.WithLabelValues("get").Inc()
			logging.Ctx(ctx).Error().Err(err).Str("imdb_id", imdbID).Msg("Report store read failed, treating as miss")
		}
		metrics.CacheMisses.Inc()
		return nil
	}
	metrics.CacheHits.Inc()

	needsHeal := cached.Movie.IsZero()
	meta, err := o.resolver.MovieMeta(ctx, imdbID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("Metadata refresh failed on cache hit")
		return cached
	}
	if meta.IsZero() {
		return cached
	}

	cached.Movie = meta
	if cached.Title == "" || cached.Title == imdbID {
		cached.Title = meta.Title
	}
	if needsHeal {
		logging.Ctx(ctx).Info().Str("imdb_id", imdbID).Msg("Cached report lacked metadata, healing record")
		o.commit(ctx, imdbID, cached)
	}

	return cached
}

// fetchInputs runs the metadata and advisory-text fetches
// concurrently. Both are soft failures: either result may come back
// empty and the pipeline proceeds with what it has.
func (o *Orchestrator) fetchInputs(ctx context.Context, imdbID string) (models.MovieMeta, models.RawAdvisoryText) {
	var (
		meta models.MovieMeta
		raw  models.RawAdvisoryText
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := o.resolver.MovieMeta(gctx, imdbID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("Metadata fetch failed")
			return nil
		}
		meta = m
		return nil
	})
	g.Go(func() error {
		r, err := o.fetcher.FetchParentalGuide(gctx, imdbID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("Advisory text fetch failed")
			return nil
		}
		raw = r
		return nil
	})
	_ = g.Wait()

	if raw == nil {
		raw = models.RawAdvisoryText{}
	}
	return meta, raw
}

func (o *Orchestrator) assemble(imdbID string, meta models.MovieMeta, dims models.DimensionSet, overall models.OverallAnalysis) *models.Report {
	title := meta.Title
	if title == "" {
		title = imdbID
	}
	return &models.Report{
		Title:      title,
		Movie:      meta,
		Dimensions: dims,
		Overall:    overall,
	}
}

// commit writes the report through to the store when it passes the
// completeness predicate. Incomplete reports are skipped silently and
// write failures are swallowed; neither is surfaced to the caller.
func (o *Orchestrator) commit(ctx context.Context, imdbID string, rep *models.Report) {
	if !rep.Complete() {
		metrics.IncompleteReportsSkipped.Inc()
		logging.Ctx(ctx).Info().Str("imdb_id", imdbID).Msg("Report incomplete, skipping cache write")
		return
	}
	if err := o.store.Set(ctx, imdbID, rep); err != nil {
		metrics.StoreErrors.WithLabelValues("set").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("imdb_id", imdbID).Msg("Report store write failed")
	}
}
