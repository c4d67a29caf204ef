package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/redline-bd/redline/internal/metrics"
	"github.com/redline-bd/redline/internal/news"
	"github.com/redline-bd/redline/internal/store"
)

// extractionMethod tags every stored location row. Other methods (manual
// review, gazetteer match) would use their own tag.
const extractionMethod = "ai"

// Options configures a Service.
type Options struct {
	BatchSize     int
	BatchDelay    time.Duration
	LocationDelay time.Duration

	// Publisher is optional; when set, enrichment results are announced on
	// Topic after each successful save.
	Publisher news.Publisher
	Topic     string
}

// Service drives batch enrichment over stored articles.
type Service struct {
	store    store.Store
	selector *Selector
	opts     Options
	metrics  *metrics.Metrics
	logger   *zap.Logger
	clock    news.Clock
}

func NewService(st store.Store, sel *Selector, opts Options, m *metrics.Metrics, logger *zap.Logger, clock news.Clock) *Service {
	return &Service{
		store:    st,
		selector: sel,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		clock:    clock,
	}
}

// Report summarizes one enrichment run.
type Report struct {
	Provider  string
	Model     string
	Total     int
	Succeeded int
	Failed    int
}

// ClassifyPending classifies every article lacking a verdict from the active
// provider's model. Items in a group run concurrently; individual failures
// are logged and counted without stopping the run.
func (s *Service) ClassifyPending(ctx context.Context, limit int) (*Report, error) {
	provider, err := s.selector.Active()
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ListUnclassified(ctx, provider.ModelVersion(), limit)
	if err != nil {
		return nil, err
	}

	report := &Report{Provider: provider.Name(), Model: provider.ModelVersion(), Total: len(pending)}
	s.logger.Info("starting classification run",
		zap.String("provider", report.Provider),
		zap.String("model", report.Model),
		zap.Int("pending", report.Total))

	var mu sync.Mutex
	runner := &Runner{
		Size:       s.opts.BatchSize,
		Delay:      s.opts.BatchDelay,
		Concurrent: true,
		OnProgress: func(done, total int) {
			mu.Lock()
			succeeded, failed := report.Succeeded, report.Failed
			mu.Unlock()
			s.logger.Info("classification progress",
				zap.Int("done", done), zap.Int("total", total),
				zap.Int("succeeded", succeeded), zap.Int("failed", failed))
		},
	}

	runErr := runner.Run(ctx, len(pending), func(ctx context.Context, idx int) {
		article := pending[idx]
		err := s.classifyOne(ctx, provider, article)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed++
			s.logger.Warn("classification failed",
				zap.Int64("article_id", article.ID), zap.Error(err))
			return
		}
		report.Succeeded++
	})
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

func (s *Service) classifyOne(ctx context.Context, provider Provider, article store.PendingArticle) error {
	start := time.Now()
	result, err := provider.Classify(ctx, Input{
		ArticleID:   article.ID,
		Title:       article.Title,
		Content:     article.Content,
		SourceName:  article.SourceName,
		PublishedAt: article.PublishedAt,
	})
	s.observeAI(provider.Name(), "classify", start, err)
	if err != nil {
		return &ClassificationError{ArticleID: article.ID, Provider: provider.Name(), Err: err}
	}

	_, err = s.store.SaveClassification(ctx, store.Classification{
		ArticleID:           article.ID,
		IsPoliticalViolence: result.IsPoliticalViolence,
		Confidence:          result.Confidence,
		Reasoning:           result.Reasoning,
		KeyIndicators:       result.KeyIndicators,
		ModelVersion:        result.ModelVersion,
		ProcessingTimeMs:    result.ProcessingTime.Milliseconds(),
		ProcessedAt:         s.clock.Now(),
	})
	if err != nil {
		return &ClassificationError{ArticleID: article.ID, Provider: provider.Name(), Err: err}
	}

	s.announce(ctx, map[string]any{
		"type":                  "classification",
		"article_id":            article.ID,
		"model_version":         result.ModelVersion,
		"is_political_violence": result.IsPoliticalViolence,
		"confidence":            result.Confidence,
	})
	return nil
}

// ExtractPending extracts locations for every unprocessed article, strictly
// one at a time. Articles whose extraction succeeds are marked processed in
// the same transaction that stores their locations.
func (s *Service) ExtractPending(ctx context.Context, limit int) (*Report, error) {
	provider, err := s.selector.Active()
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ListUnprocessed(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &Report{Provider: provider.Name(), Model: provider.ModelVersion(), Total: len(pending)}
	s.logger.Info("starting location extraction run",
		zap.String("provider", report.Provider),
		zap.String("model", report.Model),
		zap.Int("pending", report.Total))

	runner := &Runner{
		Size:  s.opts.BatchSize,
		Delay: s.opts.LocationDelay,
		OnProgress: func(done, total int) {
			s.logger.Info("location extraction progress",
				zap.Int("done", done), zap.Int("total", total),
				zap.Int("succeeded", report.Succeeded), zap.Int("failed", report.Failed))
		},
	}

	runErr := runner.Run(ctx, len(pending), func(ctx context.Context, idx int) {
		article := pending[idx]
		if err := s.extractOne(ctx, provider, article); err != nil {
			report.Failed++
			s.logger.Warn("location extraction failed",
				zap.Int64("article_id", article.ID), zap.Error(err))
			return
		}
		report.Succeeded++
	})
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

func (s *Service) extractOne(ctx context.Context, provider Provider, article store.PendingArticle) error {
	start := time.Now()
	result, err := provider.ExtractLocations(ctx, Input{
		ArticleID:   article.ID,
		Title:       article.Title,
		Content:     article.Content,
		SourceName:  article.SourceName,
		PublishedAt: article.PublishedAt,
	})
	s.observeAI(provider.Name(), "locations", start, err)
	if err != nil {
		return &ExtractionError{ArticleID: article.ID, Provider: provider.Name(), Err: err}
	}

	rows := make([]store.LocationRow, 0, len(result.Locations))
	for _, loc := range result.Locations {
		rows = append(rows, store.LocationRow{
			ExtractedText:  loc.Name,
			NormalizedName: loc.NormalizedName,
			WKT:            wktPoint(loc.Latitude, loc.Longitude),
			Confidence:     Bucket(loc.Confidence),
			Method:         extractionMethod,
			Context:        loc.Context,
		})
	}

	if _, err := s.store.SaveLocations(ctx, article.ID, rows, s.clock.Now()); err != nil {
		return &ExtractionError{ArticleID: article.ID, Provider: provider.Name(), Err: err}
	}

	s.announce(ctx, map[string]any{
		"type":          "locations",
		"article_id":    article.ID,
		"model_version": result.ModelVersion,
		"count":         len(rows),
	})
	return nil
}

// wktPoint renders coordinates as a PostGIS point literal, longitude first.
func wktPoint(lat, lng *float64) *string {
	if lat == nil || lng == nil {
		return nil
	}
	wkt := fmt.Sprintf("POINT(%g %g)", *lng, *lat)
	return &wkt
}

func (s *Service) observeAI(provider, operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.AICalls.WithLabelValues(provider, operation, outcome).Inc()
	s.metrics.AILatency.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// announce publishes an enrichment event, best effort. A broker outage never
// fails the article.
func (s *Service) announce(ctx context.Context, payload map[string]any) {
	if s.opts.Publisher == nil {
		return
	}
	if _, err := s.opts.Publisher.Publish(ctx, s.opts.Topic, payload); err != nil {
		s.logger.Warn("publishing enrichment event", zap.Error(err))
	}
}
