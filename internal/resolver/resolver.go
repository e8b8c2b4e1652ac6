// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package resolver turns free-form movie titles into IMDb identifiers
// and fetches display metadata, both backed by the TMDB API.
package resolver

import (
	"context"
	"errors"

	"github.com/reelguard/reelguard/internal/models"
)

// ErrMovieNotFound is returned when no TMDB entry matches the title,
// or the matched entry carries no IMDb ID.
var ErrMovieNotFound = errors.New("movie not found")

// Resolver maps user-supplied titles to IMDb IDs and looks up movie
// metadata for display.
type Resolver interface {
	// Resolve returns the IMDb ID (e.g. "tt0133093") for a title.
	// A trailing year in the title ("The Matrix 1999" or
	// "The Matrix (1999)") narrows the search.
	Resolve(ctx context.Context, title string) (string, error)

	// MovieMeta fetches poster, title, year, and overview for an IMDb
	// ID. A zero MovieMeta with nil error means nothing was found.
	MovieMeta(ctx context.Context, imdbID string) (models.MovieMeta, error)
}
