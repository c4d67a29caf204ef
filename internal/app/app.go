// Package app wires configuration into the pipeline's runtime dependencies.
package app

import (
	"context"
	"fmt"
	"time"

	gcsclient "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/redline-bd/redline/internal/blob/gcs"
	"github.com/redline-bd/redline/internal/blob/local"
	memoryblob "github.com/redline-bd/redline/internal/blob/memory"
	"github.com/redline-bd/redline/internal/clock/system"
	"github.com/redline-bd/redline/internal/config"
	"github.com/redline-bd/redline/internal/enrich"
	"github.com/redline-bd/redline/internal/fetch"
	sha256hash "github.com/redline-bd/redline/internal/hash/sha256"
	"github.com/redline-bd/redline/internal/logging"
	"github.com/redline-bd/redline/internal/metrics"
	"github.com/redline-bd/redline/internal/news"
	pubsubpublish "github.com/redline-bd/redline/internal/publish/pubsub"
	"github.com/redline-bd/redline/internal/scrape"
	"github.com/redline-bd/redline/internal/store"
	"github.com/redline-bd/redline/internal/store/postgres"
)

// App is the assembled dependency container shared by every subcommand.
type App struct {
	Cfg     config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Clock   news.Clock
	Hasher  news.Hasher

	Store     store.Store // nil when no DSN is configured
	Fetcher   news.Fetcher
	Headless  *fetch.HeadlessFetcher // nil unless enabled
	Blob      news.BlobStore         // nil unless an archive backend is set
	Publisher news.Publisher         // nil unless events are enabled
	Selector  *enrich.Selector

	closers []func()
}

// New builds the container. Optional subsystems (database, archive, events,
// headless) stay nil when unconfigured; commands that need them check.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	a := &App{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Clock:   system.New(),
		Hasher:  sha256hash.New(),
	}

	a.Fetcher = fetch.NewClient(fetch.Config{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.FetchTimeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		Backoff:    time.Second,
	})

	if cfg.Headless.Enabled {
		a.Headless = fetch.NewHeadless(fetch.HeadlessConfig{
			UserAgent:         cfg.HTTP.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		a.closers = append(a.closers, a.Headless.Close)
	}

	if cfg.DB.DSN != "" {
		st, err := postgres.New(ctx, postgres.Config{DSN: cfg.DB.DSN, MaxConns: cfg.DB.MaxConns}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Store = st
		a.closers = append(a.closers, st.Close)
	}

	if err := a.setupArchive(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Events.Enabled {
		pub, err := pubsubpublish.New(ctx, cfg.Events.ProjectID, cfg.Events.Topic)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Publisher = pub
		a.closers = append(a.closers, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("closing publisher", zap.Error(err))
			}
		})
	}

	a.Selector = enrich.NewSelector()
	var anthropicProvider, openaiProvider enrich.Provider
	if cfg.AI.Anthropic.APIKey != "" {
		anthropicProvider = enrich.NewAnthropic(cfg.AI.Anthropic.APIKey, cfg.AI.Anthropic.Model)
	}
	if cfg.AI.OpenAI.APIKey != "" {
		openaiProvider = enrich.NewOpenAI(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model)
	}
	a.Selector.Register("anthropic", cfg.AI.Anthropic.Model, anthropicProvider)
	a.Selector.Register("openai", cfg.AI.OpenAI.Model, openaiProvider)

	return a, nil
}

func (a *App) setupArchive(ctx context.Context) error {
	switch a.Cfg.Archive.Backend {
	case "":
	case "local":
		bs, err := local.New(local.Config{BaseDir: a.Cfg.Archive.LocalDir})
		if err != nil {
			return fmt.Errorf("local archive init: %w", err)
		}
		a.Blob = bs
		a.Logger.Info("archiving raw html locally", zap.String("dir", a.Cfg.Archive.LocalDir))
	case "gcs":
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("gcs client init: %w", err)
		}
		bs, err := gcs.New(client, gcs.Config{Bucket: a.Cfg.Archive.GCSBucket})
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("gcs archive init: %w", err)
		}
		a.Blob = bs
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.Logger.Info("archiving raw html to gcs", zap.String("bucket", a.Cfg.Archive.GCSBucket))
	case "memory":
		a.Blob = memoryblob.NewBlobStore()
	default:
		return fmt.Errorf("unknown archive backend %q", a.Cfg.Archive.Backend)
	}
	return nil
}

// Orchestrator assembles a scrape run for one outlet profile.
func (a *App) Orchestrator(profile scrape.Profile) *scrape.Orchestrator {
	var headless news.Fetcher
	if a.Headless != nil {
		headless = a.Headless
	}
	adapter := scrape.NewSiteAdapter(profile, a.Fetcher, headless,
		scrape.AdapterConfig{SectionDelay: a.Cfg.ScrapeDelay()}, a.Clock, a.Logger)

	return scrape.NewOrchestrator(scrape.OrchestratorConfig{
		Store:      a.Store,
		Adapter:    adapter,
		Hasher:     a.Hasher,
		Clock:      a.Clock,
		Metrics:    a.Metrics,
		Logger:     a.Logger,
		Blob:       a.Blob,
		BlobPrefix:    a.Cfg.Archive.Prefix,
		Delay:         a.Cfg.ScrapeDelay(),
		MinContentLen: profile.MinContentLen,
	})
}

// Enricher assembles the AI enrichment service.
func (a *App) Enricher() *enrich.Service {
	return enrich.NewService(a.Store, a.Selector, enrich.Options{
		BatchSize:     a.Cfg.AI.BatchSize,
		BatchDelay:    a.Cfg.BatchDelay(),
		LocationDelay: a.Cfg.LocationDelay(),
		Publisher:     a.Publisher,
		Topic:         a.Cfg.Events.Topic,
	}, a.Metrics, a.Logger, a.Clock)
}

// Close releases resources in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.Logger.Sync()
}
