package scrape

import (
	"fmt"
	"sort"

	"github.com/redline-bd/redline/internal/extract"
	"github.com/redline-bd/redline/internal/news"
)

// Profile declares how one outlet is scraped: where to find article links
// and which selector chains pull each field out of an article page.
type Profile struct {
	Source   news.Source
	Sections []string
	Rules    news.URLRules

	Title         extract.Chain
	TitleTrim     []string
	Content       extract.Chain
	Author        extract.Chain
	DateSelectors []string

	// MinContentLen is the outlet's minimum extracted content length. Drafts
	// below it are refetched with the headless browser (for outlets that
	// render content client side) and rejected at persistence if still thin.
	MinContentLen int
}

func titleChain() extract.Chain {
	return extract.Chain{
		Candidates: []extract.Candidate{
			{Selector: "h1", Validate: extract.MinLen(10)},
			{Selector: ".headline", Validate: extract.MinLen(10)},
			{Selector: ".title", Validate: extract.MinLen(10)},
			{Selector: "title", Validate: extract.MinLen(10)},
		},
	}
}

func contentChain(selectors ...string) extract.Chain {
	candidates := make([]extract.Candidate, 0, len(selectors))
	for _, sel := range selectors {
		candidates = append(candidates, extract.Candidate{
			Selector: sel,
			Join:     true,
			Validate: extract.Content(200, 2),
		})
	}
	return extract.Chain{Candidates: candidates}
}

// DailyStar scrapes the English-language Daily Star.
func DailyStar() Profile {
	return Profile{
		Source: news.Source{
			Name:     "The Daily Star",
			BaseURL:  "https://www.thedailystar.net",
			Language: "en",
			Active:   true,
		},
		Sections: []string{"/news/bangladesh", "/city", "/politics"},
		Rules:    news.DefaultURLRules("city", "politics"),
		Title:    titleChain(),
		TitleTrim: []string{
			" | The Daily Star",
		},
		Content: contentChain(
			".story-content p",
			".article-content p",
			".news-content p",
			"article p",
			".content p",
			"p",
		),
		Author: extract.Chain{
			Candidates: []extract.Candidate{
				{Selector: ".author"},
				{Selector: ".byline"},
				{Selector: ".writer"},
				{Selector: `[class*="author"]`},
			},
		},
		DateSelectors: []string{".publish-date", ".date", ".published", "[datetime]", "time"},
		MinContentLen: 100,
	}
}

// ProthomAlo scrapes the English edition of Prothom Alo.
func ProthomAlo() Profile {
	return Profile{
		Source: news.Source{
			Name:     "Prothom Alo",
			BaseURL:  "https://en.prothomalo.com",
			Language: "en",
			Active:   true,
		},
		Sections: []string{"/bangladesh", "/politics"},
		Rules:    news.DefaultURLRules("bangladesh", "politics"),
		Title:    titleChain(),
		TitleTrim: []string{
			" | Prothom Alo",
		},
		Content: contentChain(
			".story-element-text p",
			".story-content p",
			"article p",
			"p",
		),
		Author: extract.Chain{
			Candidates: []extract.Candidate{
				{Selector: ".author-name"},
				{Selector: ".contributor-name"},
				{Selector: ".byline"},
			},
		},
		DateSelectors: []string{"time", ".publish-time", ".published-at"},
		MinContentLen: 100,
	}
}

// Profiles maps CLI source keys to outlet profiles.
func Profiles() map[string]Profile {
	return map[string]Profile{
		"dailystar":  DailyStar(),
		"prothomalo": ProthomAlo(),
	}
}

// ProfileFor resolves a CLI source key, listing valid keys on a miss.
func ProfileFor(key string) (Profile, error) {
	profiles := Profiles()
	if p, ok := profiles[key]; ok {
		return p, nil
	}

	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Profile{}, fmt.Errorf("unknown source %q (known sources: %v)", key, keys)
}
