// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/logging"
	"github.com/reelguard/reelguard/internal/metrics"
	"github.com/reelguard/reelguard/internal/models"
)

// userAgents is rotated per attempt to dodge trivial UA-based blocks.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// minBodyBytes below this the response is treated as an anti-scraping
// placeholder even when the status is 200.
const minBodyBytes = 100

// sectionID maps each dimension to its classic advisory section id.
// Newer IMDb builds drop these ids, so parsing falls back to matching
// section header text.
var sectionID = map[string]string{
	models.DimSexAndNudity:      "advisory-nudity",
	models.DimViolenceAndGore:   "advisory-violence",
	models.DimProfanity:         "advisory-profanity",
	models.DimFrighteningScenes: "advisory-frightening",
}

// headerTerm is the leading word of each dimension's section header,
// stable across IMDb's header renames ("Frightening Scenes" is now
// "Frightening & Intense Scenes").
var headerTerm = map[string]string{
	models.DimSexAndNudity:      "Sex",
	models.DimViolenceAndGore:   "Violence",
	models.DimProfanity:         "Profanity",
	models.DimFrighteningScenes: "Frightening",
}

var (
	htmlEntityRe = regexp.MustCompile(`&[a-z]+;`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// IMDBScraper fetches parental guide pages over plain HTTP and parses
// them with goquery. IMDb sometimes answers 202 with an empty body as
// an anti-scraping measure, so fetches retry with rotated user agents
// and a linearly growing delay.
type IMDBScraper struct {
	cfg    config.ScraperConfig
	client *http.Client
}

func NewIMDBScraper(cfg config.ScraperConfig) *IMDBScraper {
	return &IMDBScraper{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// FetchParentalGuide implements Fetcher.
func (s *IMDBScraper) FetchParentalGuide(ctx context.Context, imdbID string) (models.RawAdvisoryText, error) {
	start := time.Now()
	defer func() {
		metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
	}()

	url := fmt.Sprintf("%s/title/%s/parentalguide", s.cfg.BaseURL, imdbID)

	var lastStatus int
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		body, status, err := s.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGuideUnavailable, err)
		}
		lastStatus = status

		if status == http.StatusAccepted || len(body) < minBodyBytes {
			if attempt == s.cfg.MaxAttempts {
				break
			}
			metrics.ScrapeRetries.Inc()
			logging.Ctx(ctx).Warn().
				Str("imdb_id", imdbID).
				Int("status", status).
				Int("attempt", attempt).
				Msg("IMDb anti-scraping response, retrying")
			if err := sleepCtx(ctx, s.cfg.RetryDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: IMDb returned status %d", ErrGuideUnavailable, status)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: parse failed: %v", ErrGuideUnavailable, err)
		}
		return s.parseGuide(doc)
	}

	return nil, fmt.Errorf("%w: empty response after %d attempts (status %d)",
		ErrGuideUnavailable, s.cfg.MaxAttempts, lastStatus)
}

func (s *IMDBScraper) fetch(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	return string(body), resp.StatusCode, nil
}

// parseGuide extracts the advisory text for all four dimensions. A
// dimension with no text at all fails the whole fetch: partial guides
// would silently skew the generated report.
func (s *IMDBScraper) parseGuide(doc *goquery.Document) (models.RawAdvisoryText, error) {
	result := make(models.RawAdvisoryText, len(models.DimensionKeys))

	for _, dim := range models.DimensionKeys {
		section := doc.Find("#" + sectionID[dim])

		if section.Length() == 0 {
			section = findSectionByHeader(doc, headerTerm[dim])
		}

		var text string
		if section.Length() > 0 {
			items := section.Find(".ipl-zebra-list__item, .ipc-html-content-inner-div")
			if items.Length() > 0 {
				parts := make([]string, 0, items.Length())
				items.Each(func(_ int, sel *goquery.Selection) {
					parts = append(parts, sel.Text())
				})
				text = strings.Join(parts, " \n ")
			} else {
				text = section.Text()
			}
		}

		cleaned := s.cleanText(text)
		if cleaned == "" {
			return nil, fmt.Errorf("%w: no advisory text for %s", ErrGuideUnavailable, dim)
		}
		result[dim] = cleaned
	}

	return result, nil
}

// findSectionByHeader locates a dimension section on modern IMDb pages
// by matching the leading word of its header, then walking up to the
// enclosing section container.
func findSectionByHeader(doc *goquery.Document, term string) *goquery.Selection {
	header := doc.Find("h3, h4, span").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.Contains(strings.TrimSpace(sel.Text()), term)
	}).First()

	if header.Length() == 0 {
		return header
	}

	section := header.Closest("section")
	if section.Length() == 0 {
		section = header.Closest("div.ipc-page-section")
	}
	return section
}

// cleanText strips residual HTML entities, collapses whitespace, and
// truncates to the configured cap to bound prompt size. The cut backs
// up to a rune boundary so multibyte text is never split mid-sequence.
func (s *IMDBScraper) cleanText(text string) string {
	text = htmlEntityRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if limit := s.cfg.MaxSectionChars; limit > 0 && len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
