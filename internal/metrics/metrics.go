// Package metrics exposes the Prometheus instrumentation for the pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the pipeline reports to. Collectors register
// on the default registry, so construct at most one per process.
type Metrics struct {
	ArticlesScraped *prometheus.CounterVec
	ScrapeErrors    *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	AICalls         *prometheus.CounterVec
	AILatency       *prometheus.HistogramVec
}

var (
	once     sync.Once
	instance *Metrics
)

// New returns the process-wide metrics set.
func New() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			ArticlesScraped: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "redline_articles_scraped_total",
				Help: "Articles scraped, by source and outcome.",
			}, []string{"source", "outcome"}),
			ScrapeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "redline_scrape_errors_total",
				Help: "Scrape errors, by source and stage.",
			}, []string{"source", "stage"}),
			FetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "redline_fetch_duration_seconds",
				Help:    "Time spent fetching article pages.",
				Buckets: prometheus.DefBuckets,
			}, []string{"source"}),
			AICalls: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "redline_ai_calls_total",
				Help: "AI provider calls, by provider, operation and outcome.",
			}, []string{"provider", "operation", "outcome"}),
			AILatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "redline_ai_latency_seconds",
				Help:    "AI provider call latency.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			}, []string{"provider", "operation"}),
		}
	})
	return instance
}
