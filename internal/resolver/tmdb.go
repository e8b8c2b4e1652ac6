// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/metrics"
	"github.com/reelguard/reelguard/internal/models"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// trailingYearRe matches a trailing release year, bare or in
// parentheses: "The Matrix 1999" or "The Matrix (1999)".
var trailingYearRe = regexp.MustCompile(`\(?\b((?:19|20)\d{2})\b\)?\s*$`)

// TMDBResolver resolves titles via the TMDB v3 API using a two-step
// lookup: text search for the TMDB entry, then the details endpoint
// for its IMDb ID.
type TMDBResolver struct {
	cfg    config.TMDBConfig
	client *http.Client
}

// NewTMDBResolver creates a resolver from config. The HTTP client
// timeout applies per request, not per Resolve call.
func NewTMDBResolver(cfg config.TMDBConfig) *TMDBResolver {
	return &TMDBResolver{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ParseTitleAndYear splits a trailing year off a raw title. Returns
// the cleaned title and the year, or an empty year when absent.
func ParseTitleAndYear(raw string) (string, string) {
	if m := trailingYearRe.FindStringSubmatchIndex(raw); m != nil {
		year := raw[m[2]:m[3]]
		title := strings.TrimSpace(raw[:m[0]])
		if title != "" {
			return title, year
		}
	}
	return strings.TrimSpace(raw), ""
}

type searchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

type detailsResponse struct {
	IMDBID string `json:"imdb_id"`
}

type findEntry struct {
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
}

type findResponse struct {
	MovieResults []findEntry `json:"movie_results"`
	TVResults    []findEntry `json:"tv_results"`
}

// Resolve implements Resolver.
func (r *TMDBResolver) Resolve(ctx context.Context, title string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	cleanTitle, year := ParseTitleAndYear(title)

	params := url.Values{
		"query":         {cleanTitle},
		"api_key":       {r.cfg.APIKey},
		"language":      {"en-US"},
		"page":          {"1"},
		"include_adult": {"false"},
	}
	if year != "" {
		params.Set("year", year)
	}

	var search searchResponse
	if err := r.get(ctx, "/search/movie", params, &search); err != nil {
		return "", fmt.Errorf("tmdb search failed: %w", err)
	}
	if len(search.Results) == 0 {
		return "", fmt.Errorf("%w: no TMDB results for %q", ErrMovieNotFound, title)
	}

	// First result is TMDB's best match.
	tmdbID := search.Results[0].ID

	var details detailsResponse
	detailsParams := url.Values{
		"api_key":  {r.cfg.APIKey},
		"language": {"en-US"},
	}
	if err := r.get(ctx, fmt.Sprintf("/movie/%d", tmdbID), detailsParams, &details); err != nil {
		return "", fmt.Errorf("tmdb details failed: %w", err)
	}
	if details.IMDBID == "" {
		return "", fmt.Errorf("%w: TMDB entry %d has no IMDb ID", ErrMovieNotFound, tmdbID)
	}

	logging.Ctx(ctx).Debug().
		Str("title", cleanTitle).
		Str("imdb_id", details.IMDBID).
		Msg("Resolved title via TMDB")

	return details.IMDBID, nil
}

// MovieMeta implements Resolver. It uses the /find endpoint keyed by
// IMDb ID, falling back to TV results when the ID is not a movie.
func (r *TMDBResolver) MovieMeta(ctx context.Context, imdbID string) (models.MovieMeta, error) {
	params := url.Values{
		"api_key":         {r.cfg.APIKey},
		"external_source": {"imdb_id"},
	}

	var find findResponse
	if err := r.get(ctx, "/find/"+url.PathEscape(imdbID), params, &find); err != nil {
		return models.MovieMeta{}, fmt.Errorf("tmdb find failed: %w", err)
	}

	entries := find.MovieResults
	isTV := false
	if len(entries) == 0 {
		entries = find.TVResults
		isTV = true
	}
	if len(entries) == 0 {
		return models.MovieMeta{}, nil
	}

	e := entries[0]
	title, date := e.Title, e.ReleaseDate
	if isTV {
		title, date = e.Name, e.FirstAirDate
	}

	meta := models.MovieMeta{
		Title:       title,
		Overview:    e.Overview,
		VoteAverage: e.VoteAverage,
	}
	if len(date) >= 4 {
		meta.Year = date[:4]
	}
	if e.PosterPath != "" {
		meta.PosterURL = posterBaseURL + e.PosterPath
	}
	return meta, nil
}

func (r *TMDBResolver) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
