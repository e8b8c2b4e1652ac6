// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package scraper fetches raw parental advisory text from IMDb title
// pages for downstream analysis.
package scraper

import (
	"context"
	"errors"

	"github.com/reelguard/reelguard/internal/models"
)

// ErrGuideUnavailable is returned when the parental guide page could
// not be fetched or yields no advisory text for some dimension. The
// page structure may have changed or anti-scraping kicked in.
var ErrGuideUnavailable = errors.New("parental guide unavailable")

// Fetcher retrieves the raw advisory text for each content dimension
// of a title.
type Fetcher interface {
	// FetchParentalGuide returns advisory text keyed by dimension
	// (models.DimensionKeys). Every key is present and non-empty on
	// success.
	FetchParentalGuide(ctx context.Context, imdbID string) (models.RawAdvisoryText, error)
}
