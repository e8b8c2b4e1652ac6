// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/models"
)

const classicGuideHTML = `<html><body>
<section id="advisory-nudity">
  <ul><li class="ipl-zebra-list__item">A kissing scene.</li></ul>
</section>
<section id="advisory-violence">
  <ul>
    <li class="ipl-zebra-list__item">Gun fights throughout.</li>
    <li class="ipl-zebra-list__item">A character is &amp; injured.</li>
  </ul>
</section>
<section id="advisory-profanity">
  <ul><li class="ipl-zebra-list__item">Some strong language.</li></ul>
</section>
<section id="advisory-frightening">
  <ul><li class="ipl-zebra-list__item">Tense sequences.</li></ul>
</section>
</body></html>`

const modernGuideHTML = `<html><body>
<section class="ipc-page-section"><h3>Sex &amp; Nudity</h3>
  <div class="ipc-html-content-inner-div">A kissing scene.</div>
</section>
<section class="ipc-page-section"><h3>Violence &amp; Gore</h3>
  <div class="ipc-html-content-inner-div">Gun fights throughout.</div>
</section>
<section class="ipc-page-section"><h3>Profanity</h3>
  <div class="ipc-html-content-inner-div">Some strong language.</div>
</section>
<section class="ipc-page-section"><h3>Frightening &amp; Intense Scenes</h3>
  <div class="ipc-html-content-inner-div">Tense sequences.</div>
</section>
</body></html>`

func testScraperConfig(baseURL string) config.ScraperConfig {
	return config.ScraperConfig{
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		MaxAttempts:     3,
		RetryDelay:      time.Millisecond,
		MaxSectionChars: 2000,
	}
}

func TestFetchParentalGuideClassicLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/title/tt0133093/parentalguide" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(classicGuideHTML))
	}))
	defer srv.Close()

	s := NewIMDBScraper(testScraperConfig(srv.URL))
	guide, err := s.FetchParentalGuide(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("FetchParentalGuide failed: %v", err)
	}

	for _, dim := range models.DimensionKeys {
		if guide[dim] == "" {
			t.Errorf("missing advisory text for %s", dim)
		}
	}
	if !strings.Contains(guide[models.DimViolenceAndGore], "Gun fights") {
		t.Errorf("unexpected violence text: %q", guide[models.DimViolenceAndGore])
	}
	if strings.Contains(guide[models.DimViolenceAndGore], "&amp;") {
		t.Errorf("HTML entity leaked into text: %q", guide[models.DimViolenceAndGore])
	}
}

func TestFetchParentalGuideModernLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modernGuideHTML))
	}))
	defer srv.Close()

	s := NewIMDBScraper(testScraperConfig(srv.URL))
	guide, err := s.FetchParentalGuide(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("FetchParentalGuide failed: %v", err)
	}

	if got := guide[models.DimFrighteningScenes]; !strings.Contains(got, "Tense sequences") {
		t.Errorf("header fallback failed for frightening scenes: %q", got)
	}
}

func TestFetchParentalGuideRetriesAntiScraping(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Write([]byte(classicGuideHTML))
	}))
	defer srv.Close()

	s := NewIMDBScraper(testScraperConfig(srv.URL))
	if _, err := s.FetchParentalGuide(context.Background(), "tt0133093"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchParentalGuideExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewIMDBScraper(testScraperConfig(srv.URL))
	_, err := s.FetchParentalGuide(context.Background(), "tt0133093")
	if !errors.Is(err, ErrGuideUnavailable) {
		t.Fatalf("expected ErrGuideUnavailable, got %v", err)
	}
}

func TestFetchParentalGuideMissingDimension(t *testing.T) {
	// Page is large enough to pass the anti-scraping body check but
	// has no profanity section.
	html := `<html><body>
<section id="advisory-nudity"><li class="ipl-zebra-list__item">x</li></section>
<section id="advisory-violence"><li class="ipl-zebra-list__item">x</li></section>
<section id="advisory-frightening"><li class="ipl-zebra-list__item">x</li></section>
<div>` + strings.Repeat("pad ", 50) + `</div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	s := NewIMDBScraper(testScraperConfig(srv.URL))
	_, err := s.FetchParentalGuide(context.Background(), "tt0133093")
	if !errors.Is(err, ErrGuideUnavailable) {
		t.Fatalf("expected ErrGuideUnavailable for missing section, got %v", err)
	}
}

func TestCleanTextTruncation(t *testing.T) {
	cfg := testScraperConfig("http://unused")
	cfg.MaxSectionChars = 10
	s := NewIMDBScraper(cfg)

	got := s.cleanText("aaaaaaaaaaaaaaaaaaaa")
	if got != "aaaaaaaaaa..." {
		t.Errorf("expected truncated text with ellipsis, got %q", got)
	}

	got = s.cleanText("  a  \n\t b  ")
	if got != "a b" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
}

func TestCleanTextTruncatesOnRuneBoundary(t *testing.T) {
	cfg := testScraperConfig("http://unused")
	cfg.MaxSectionChars = 10
	s := NewIMDBScraper(cfg)

	// "é" is two bytes; byte 10 falls in the middle of the second one.
	got := s.cleanText("aaaaaaaaaéa")
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if got != "aaaaaaaaa..." {
		t.Errorf("expected cut backed up to the rune boundary, got %q", got)
	}
}
