package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/redline-bd/redline/internal/extract"
	"github.com/redline-bd/redline/internal/news"
)

// AdapterConfig tunes a SiteAdapter.
type AdapterConfig struct {
	// SectionDelay is the politeness pause between section page fetches.
	SectionDelay time.Duration
}

// SiteAdapter implements news.Adapter for one declaratively-profiled outlet.
// Headless is optional; when present, thin article pages are refetched with
// it before extraction gives up.
type SiteAdapter struct {
	profile  Profile
	fetcher  news.Fetcher
	headless news.Fetcher
	cfg      AdapterConfig
	clock    news.Clock
	logger   *zap.Logger

	pause func(ctx context.Context, d time.Duration) error
}

func NewSiteAdapter(profile Profile, fetcher news.Fetcher, headless news.Fetcher, cfg AdapterConfig, clock news.Clock, logger *zap.Logger) *SiteAdapter {
	return &SiteAdapter{
		profile:  profile,
		fetcher:  fetcher,
		headless: headless,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		pause:    sleepContext,
	}
}

func (a *SiteAdapter) Source() news.Source {
	return a.profile.Source
}

// DiscoverURLs harvests candidate article URLs from the profile's section
// pages, falling back to the homepage when the sections yield nothing. A
// failing section is logged and skipped; finding zero URLs is not an error.
func (a *SiteAdapter) DiscoverURLs(ctx context.Context, limit int) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string

	for i, section := range a.profile.Sections {
		if len(urls) >= limit {
			break
		}
		if i > 0 {
			if err := a.pause(ctx, a.cfg.SectionDelay); err != nil {
				return urls, err
			}
		}

		pageURL := a.profile.Source.BaseURL + section
		found, err := a.harvest(ctx, pageURL, limit-len(urls), seen)
		if err != nil {
			a.logger.Warn("section fetch failed",
				zap.String("section", pageURL), zap.Error(err))
			continue
		}
		urls = append(urls, found...)
	}

	if len(urls) == 0 {
		a.logger.Info("sections yielded no articles, scanning homepage",
			zap.String("source", a.profile.Source.Name))
		found, err := a.harvest(ctx, a.profile.Source.BaseURL, limit, seen)
		if err != nil {
			return nil, fmt.Errorf("homepage scan: %w", err)
		}
		urls = found
	}

	a.logger.Info("discovered article urls",
		zap.String("source", a.profile.Source.Name), zap.Int("count", len(urls)))
	return urls, nil
}

func (a *SiteAdapter) harvest(ctx context.Context, pageURL string, limit int, seen map[string]bool) ([]string, error) {
	resp, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	var urls []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved, err := news.ResolveURL(a.profile.Source.BaseURL, href)
		if err != nil {
			return true
		}
		if seen[resolved] || !a.profile.Rules.IsArticle(resolved) {
			return true
		}
		seen[resolved] = true
		urls = append(urls, resolved)
		return len(urls) < limit
	})
	return urls, nil
}

// ScrapeArticle fetches one article page and extracts its fields. Pages whose
// content comes out thinner than the profile's threshold are retried through
// the headless fetcher when one is configured.
func (a *SiteAdapter) ScrapeArticle(ctx context.Context, url string) (news.ArticleDraft, error) {
	resp, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return news.ArticleDraft{}, err
	}

	draft, err := a.extractDraft(url, resp.Body)
	if err != nil {
		return news.ArticleDraft{}, err
	}

	if a.headless != nil && len(draft.Content) < a.profile.MinContentLen {
		a.logger.Info("thin content, promoting to headless fetch", zap.String("url", url))
		headlessResp, headlessErr := a.headless.Fetch(ctx, url)
		if headlessErr != nil {
			a.logger.Warn("headless fetch failed", zap.String("url", url), zap.Error(headlessErr))
			return draft, nil
		}
		if retried, retryErr := a.extractDraft(url, headlessResp.Body); retryErr == nil && len(retried.Content) > len(draft.Content) {
			draft = retried
		}
	}

	return draft, nil
}

func (a *SiteAdapter) extractDraft(url string, body []byte) (news.ArticleDraft, error) {
	doc, err := extract.Document(body)
	if err != nil {
		return news.ArticleDraft{}, fmt.Errorf("parsing %s: %w", url, err)
	}

	title := extract.Field(doc, a.profile.Title)
	for _, suffix := range a.profile.TitleTrim {
		title = strings.TrimSuffix(title, suffix)
	}

	publishedAt, guessed := extract.Date(doc, a.profile.DateSelectors, a.clock.Now())

	return news.ArticleDraft{
		URL:              url,
		Title:            strings.TrimSpace(title),
		Content:          extract.Field(doc, a.profile.Content),
		Author:           extract.Field(doc, a.profile.Author),
		PublishedAt:      publishedAt,
		PublishedGuessed: guessed,
		RawHTML:          body,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
