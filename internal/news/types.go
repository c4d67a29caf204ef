// Package news defines core types shared across the pipeline subsystems.
package news

import "time"

// Source identifies one configured news outlet.
type Source struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	Language string `json:"language"`
	Active   bool   `json:"is_active"`
}

// ArticleDraft is the in-memory result of scraping one URL before persistence.
// Missing fields are explicit empty strings, never absent.
type ArticleDraft struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`

	// PublishedAt defaults to fetch time when the page carries no parseable
	// date; PublishedGuessed marks that fallback so callers can treat the
	// timestamp as low-confidence.
	PublishedAt      time.Time `json:"published_at"`
	PublishedGuessed bool      `json:"published_guessed"`

	// RawHTML carries the fetched page body for optional archiving.
	RawHTML []byte `json:"-"`
}

// ArticleSummary is the per-article record appended to a run summary.
type ArticleSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ItemError records one per-URL failure inside a run.
type ItemError struct {
	URL string `json:"url"`
	Err string `json:"error"`
}

// RunResult aggregates the outcome of one scrape run for a source.
type RunResult struct {
	RunID      string           `json:"run_id"`
	Source     string           `json:"source"`
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Articles   []ArticleSummary `json:"articles"`
	Errors     []ItemError      `json:"errors,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}
