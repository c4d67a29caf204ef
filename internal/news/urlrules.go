package news

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URLRules classifies harvested anchors as article pages or noise. A URL is
// an article when it matches at least one article pattern and no exclusion
// pattern.
type URLRules struct {
	Article []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// DefaultURLRules returns the shapes shared by most news outlets:
// date-in-path, long trailing numeric ID, and section+slug URLs, minus
// listing, tag, search, author, category and static-asset pages. Sections
// are the outlet's single-segment article sections (e.g. "city/...slug").
func DefaultURLRules(sections ...string) URLRules {
	if len(sections) == 0 {
		sections = []string{"city", "politics"}
	}
	group := strings.Join(sections, "|")
	return URLRules{
		Article: []*regexp.Regexp{
			regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`),
			regexp.MustCompile(`-\d{6,}$`),
			regexp.MustCompile(`/news/.+/[^/]+$`),
			regexp.MustCompile(fmt.Sprintf(`/(%s)/[^/]+$`, group)),
		},
		Exclude: []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`/(news|%s|business|sports)/?$`, group)),
			regexp.MustCompile(`/tags/`),
			regexp.MustCompile(`/search/`),
			regexp.MustCompile(`/author/`),
			regexp.MustCompile(`/category/`),
			regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|pdf|css|js)$`),
		},
	}
}

// IsArticle reports whether u looks like an article page.
func (r URLRules) IsArticle(u string) bool {
	if u == "" {
		return false
	}
	for _, pattern := range r.Exclude {
		if pattern.MatchString(u) {
			return false
		}
	}
	for _, pattern := range r.Article {
		if pattern.MatchString(u) {
			return true
		}
	}
	return false
}

// ResolveURL turns a possibly relative href into an absolute URL under base.
// It drops fragments and rejects non-HTTP schemes.
func ResolveURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	resolved := b.ResolveReference(h)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", resolved.Scheme)
	}
	resolved.Fragment = ""
	return resolved.String(), nil
}
