// Package fetch implements the HTTP fetch client used by source adapters.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/redline-bd/redline/internal/news"
)

// defaultHeaders mimic a desktop browser; several outlets serve reduced
// markup to unknown agents.
var defaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Upgrade-Insecure-Requests": "1",
}

// Config controls fetch client behavior.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration // base for the linear attempt*Backoff wait
}

// Error is returned after all fetch attempts for one URL are exhausted.
// It carries the last underlying error.
type Error struct {
	URL      string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client implements news.Fetcher using the Colly collector. It is safe for
// concurrent use across URLs; every fetch clones the base collector.
type Client struct {
	cfg   Config
	base  *colly.Collector
	pause func(ctx context.Context, d time.Duration)
}

// NewClient builds a Client with connection pooling and sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	// AllowURLRevisit lets the retry loop re-issue the same URL.
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Client{
		cfg:   cfg,
		base:  c,
		pause: sleepContext,
	}
}

// Fetch executes a GET with bounded retries and linearly increasing backoff
// between attempts. It never mutates shared state.
func (c *Client) Fetch(ctx context.Context, url string) (news.FetchResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.fetchOnce(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < c.cfg.MaxRetries {
			c.pause(ctx, time.Duration(attempt)*c.cfg.Backoff)
		}
	}
	return news.FetchResponse{}, &Error{URL: url, Attempts: c.cfg.MaxRetries, Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context, url string) (news.FetchResponse, error) {
	var (
		result   news.FetchResponse
		fetchErr error
	)
	start := time.Now()

	collector := c.base.Clone()
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(c.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		for key, value := range defaultHeaders {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result = news.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return news.FetchResponse{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return news.FetchResponse{}, fmt.Errorf("visit failed: %w", err)
		}
		if fetchErr != nil {
			return news.FetchResponse{}, fmt.Errorf("response failed: %w", fetchErr)
		}
		return result, nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
