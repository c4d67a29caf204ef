package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redline-bd/redline/internal/metrics"
	"github.com/redline-bd/redline/internal/news"
	"github.com/redline-bd/redline/internal/store"
)

// Orchestrator runs the scrape pipeline for one source: discover, dedupe,
// scrape, validate, persist, record.
type Orchestrator struct {
	store   store.Store
	adapter news.Adapter
	hasher  news.Hasher
	clock   news.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger

	// blob is optional; when set, every scraped page is archived under
	// blobPrefix, best effort.
	blob       news.BlobStore
	blobPrefix string

	delay      time.Duration
	minContent int
	pause      func(ctx context.Context, d time.Duration) error
}

// OrchestratorConfig wires an Orchestrator's collaborators.
type OrchestratorConfig struct {
	Store      store.Store
	Adapter    news.Adapter
	Hasher     news.Hasher
	Clock      news.Clock
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Blob       news.BlobStore
	BlobPrefix string
	Delay      time.Duration

	// MinContentLen is the outlet profile's minimum content length; drafts
	// below it are counted failed rather than persisted.
	MinContentLen int
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		store:      cfg.Store,
		adapter:    cfg.Adapter,
		hasher:     cfg.Hasher,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		blob:       cfg.Blob,
		blobPrefix: cfg.BlobPrefix,
		delay:      cfg.Delay,
		minContent: cfg.MinContentLen,
		pause:      sleepContext,
	}
}

// Run executes one scrape for the adapter's source. Per-URL failures are
// recorded in the result; only setup failures (unknown source, discovery
// failure) abort the run.
func (o *Orchestrator) Run(ctx context.Context, limit int) (*news.RunResult, error) {
	source := o.adapter.Source()
	result := &news.RunResult{
		RunID:     uuid.NewString(),
		Source:    source.Name,
		StartedAt: o.clock.Now(),
	}
	logger := o.logger.With(zap.String("run_id", result.RunID), zap.String("source", source.Name))

	sourceID, err := o.store.SourceIDByName(ctx, source.Name)
	if err != nil {
		return nil, err
	}

	urls, err := o.adapter.DiscoverURLs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("discovering urls: %w", err)
	}
	result.Total = len(urls)

	var newCount, updatedCount int
	for _, url := range urls {
		outcome, err := o.processURL(ctx, logger, sourceID, url, result, &newCount, &updatedCount)
		if o.metrics != nil {
			o.metrics.ArticlesScraped.WithLabelValues(source.Name, outcome).Inc()
		}
		if err != nil {
			return result, err
		}
	}

	result.FinishedAt = o.clock.Now()

	status := "completed"
	if result.Failed > 0 {
		status = "completed_with_errors"
	}
	session := store.Session{
		SourceID:        sourceID,
		RunID:           result.RunID,
		StartedAt:       result.StartedAt,
		CompletedAt:     result.FinishedAt,
		Status:          status,
		ArticlesFound:   result.Total,
		ArticlesNew:     newCount,
		ArticlesUpdated: updatedCount,
		ErrorsCount:     result.Failed,
	}
	if err := o.store.RecordSession(ctx, session); err != nil {
		logger.Warn("recording session failed", zap.Error(err))
	}
	if err := o.store.TouchSourceScraped(ctx, sourceID, result.FinishedAt); err != nil {
		logger.Warn("updating source timestamp failed", zap.Error(err))
	}

	logger.Info("scrape run finished",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// processURL handles one article URL and returns a metrics outcome label.
// The returned error is non-nil only when the run context is cancelled.
func (o *Orchestrator) processURL(ctx context.Context, logger *zap.Logger, sourceID int64, url string, result *news.RunResult, newCount, updatedCount *int) (string, error) {
	// A duplicate check failure falls through to scraping; the upsert keeps
	// the operation safe either way.
	exists, err := o.store.Exists(ctx, url)
	if err != nil {
		logger.Warn("duplicate check failed, scraping anyway", zap.String("url", url), zap.Error(err))
	} else if exists {
		result.Skipped++
		return "skipped", nil
	}

	// Politeness delay only before real fetches; skips cost nothing.
	if err := o.pause(ctx, o.delay); err != nil {
		return "error", err
	}

	fetchStart := time.Now()
	draft, err := o.adapter.ScrapeArticle(ctx, url)
	if o.metrics != nil {
		o.metrics.FetchDuration.WithLabelValues(o.adapter.Source().Name).Observe(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		o.recordFailure(logger, result, url, "fetch", err)
		return "error", nil
	}

	if err := validateDraft(draft, o.minContent); err != nil {
		o.recordFailure(logger, result, url, "extract", err)
		return "error", nil
	}

	hash, err := o.hasher.Hash([]byte(draft.Content))
	if err != nil {
		o.recordFailure(logger, result, url, "hash", err)
		return "error", nil
	}

	id, inserted, err := o.store.UpsertArticle(ctx, store.Article{
		SourceID:    sourceID,
		URL:         url,
		Title:       draft.Title,
		Content:     draft.Content,
		Author:      draft.Author,
		PublishedAt: draft.PublishedAt,
		ScrapedAt:   o.clock.Now(),
		ContentHash: hash,
	})
	if err != nil {
		o.recordFailure(logger, result, url, "store", err)
		return "error", nil
	}

	o.archive(ctx, logger, result.RunID, hash, draft.RawHTML)

	if inserted {
		*newCount++
	} else {
		*updatedCount++
	}
	result.Successful++
	result.Articles = append(result.Articles, news.ArticleSummary{
		ID:    id,
		Title: draft.Title,
		URL:   url,
	})
	return "success", nil
}

func (o *Orchestrator) recordFailure(logger *zap.Logger, result *news.RunResult, url, stage string, err error) {
	result.Failed++
	result.Errors = append(result.Errors, news.ItemError{URL: url, Err: err.Error()})
	logger.Warn("article failed", zap.String("url", url), zap.String("stage", stage), zap.Error(err))
	if o.metrics != nil {
		o.metrics.ScrapeErrors.WithLabelValues(o.adapter.Source().Name, stage).Inc()
	}
}

// archive stores the raw page HTML, best effort.
func (o *Orchestrator) archive(ctx context.Context, logger *zap.Logger, runID, hash string, raw []byte) {
	if o.blob == nil || len(raw) == 0 {
		return
	}
	path := fmt.Sprintf("%s/%s/%s/%s.html", o.blobPrefix, slugify(o.adapter.Source().Name), runID, hash)
	if _, err := o.blob.PutObject(ctx, path, "text/html", strings.NewReader(string(raw))); err != nil {
		logger.Warn("archiving raw html failed", zap.String("path", path), zap.Error(err))
	}
}

// validateDraft rejects drafts with missing fields; minContent is the
// outlet profile's floor on extracted content length.
func validateDraft(d news.ArticleDraft, minContent int) error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("empty title")
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("empty content")
	}
	if len(d.Content) < minContent {
		return fmt.Errorf("content too short (%d chars, need %d)", len(d.Content), minContent)
	}
	return nil
}

func slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
