// Package store defines the persistence contract for the pipeline. By using
// an interface, the scrape and enrichment layers stay decoupled from the
// Postgres implementation and can be tested against fakes.
package store

import (
	"context"
	"fmt"
	"time"
)

// Article is the persistable form of a scraped article.
type Article struct {
	SourceID    int64
	URL         string
	Title       string
	Content     string
	Author      string
	PublishedAt time.Time
	ScrapedAt   time.Time
	ContentHash string
}

// PendingArticle is an article awaiting AI enrichment.
type PendingArticle struct {
	ID          int64
	Title       string
	Content     string
	SourceName  string
	PublishedAt time.Time
}

// Classification is one provider verdict for an article. Uniqueness is
// (article, model version); re-running the same model upserts.
type Classification struct {
	ArticleID           int64
	IsPoliticalViolence bool
	Confidence          float64
	Reasoning           string
	KeyIndicators       []string
	ModelVersion        string
	ProcessingTimeMs    int64
	ProcessedAt         time.Time
}

// LocationRow is one extracted location ready for persistence. WKT carries
// an optional "POINT(lng lat)" literal; Confidence is the bucketed value.
type LocationRow struct {
	ExtractedText  string
	NormalizedName string
	WKT            *string
	Confidence     string
	Method         string
	Context        string
}

// Session records the aggregate outcome of one scrape run.
type Session struct {
	SourceID        int64
	RunID           string
	StartedAt       time.Time
	CompletedAt     time.Time
	Status          string
	ArticlesFound   int
	ArticlesNew     int
	ArticlesUpdated int
	ErrorsCount     int
}

// SourceNotFoundError indicates a scraper was configured for a source name
// missing from the sources table. This is fatal for a run.
type SourceNotFoundError struct {
	Name string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("news source %q not found", e.Name)
}

// Store is the persistence contract. The scrape layer owns Article writes;
// the enrichment layer owns Classification/LocationRow writes and the
// processed flag.
type Store interface {
	// SourceIDByName resolves a configured source, failing with
	// *SourceNotFoundError when absent.
	SourceIDByName(ctx context.Context, name string) (int64, error)

	// Exists reports whether an article with the URL is already stored.
	Exists(ctx context.Context, url string) (bool, error)

	// UpsertArticle inserts or updates keyed on URL and reports the row ID
	// plus whether a new row was created.
	UpsertArticle(ctx context.Context, article Article) (int64, bool, error)

	// ListUnprocessed returns articles whose processed flag is unset.
	ListUnprocessed(ctx context.Context, limit int) ([]PendingArticle, error)

	// ListUnclassified returns articles lacking a classification for the
	// given model version.
	ListUnclassified(ctx context.Context, modelVersion string, limit int) ([]PendingArticle, error)

	// SaveClassification upserts on (article_id, model_version).
	SaveClassification(ctx context.Context, c Classification) (int64, error)

	// SaveLocations inserts the rows and flips the article's processed flag
	// in one transaction. A zero-row call still marks the article processed.
	SaveLocations(ctx context.Context, articleID int64, rows []LocationRow, at time.Time) ([]int64, error)

	// RecordSession persists a scrape run's aggregate counters.
	RecordSession(ctx context.Context, s Session) error

	// TouchSourceScraped updates the source's last_scraped_at marker.
	TouchSourceScraped(ctx context.Context, sourceID int64, at time.Time) error

	// Ping verifies database connectivity for readiness checks.
	Ping(ctx context.Context) error

	Close()
}
