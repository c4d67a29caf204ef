// Package extract pulls article fields out of parsed HTML documents using
// ordered selector chains with per-candidate validators.
package extract

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// minParagraphChars filters boilerplate fragments (captions, share links)
// from paragraph-joined content.
const minParagraphChars = 20

// Validator accepts a candidate's extracted value. matches is the number of
// document nodes the selector hit (paragraph count in join mode).
type Validator func(value string, matches int) bool

// Any accepts every non-empty value.
func Any() Validator {
	return func(value string, _ int) bool {
		return value != ""
	}
}

// MinLen requires the value to be longer than n characters.
func MinLen(n int) Validator {
	return func(value string, _ int) bool {
		return len(value) > n
	}
}

// Content requires substantial joined text spread over several paragraphs.
func Content(minChars, minParagraphs int) Validator {
	return func(value string, matches int) bool {
		return len(value) > minChars && matches > minParagraphs
	}
}

// Candidate is one (selector, validator) pair in a chain.
type Candidate struct {
	Selector string
	Attr     string // read this attribute instead of element text
	Join     bool   // join all matches with blank lines instead of taking the first
	Validate Validator
}

// Chain is an ordered list of candidates tried against a document. The first
// candidate whose value passes its validator wins. When none qualify and
// Fallback is set, the last candidate's raw value is returned; otherwise the
// result is the empty string.
type Chain struct {
	Candidates []Candidate
	Fallback   bool
}

// Document parses an HTML body.
func Document(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Field evaluates a chain against the document.
func Field(doc *goquery.Document, chain Chain) string {
	var lastRaw string
	for _, candidate := range chain.Candidates {
		value, matches := evaluate(doc, candidate)
		lastRaw = value
		validate := candidate.Validate
		if validate == nil {
			validate = Any()
		}
		if validate(value, matches) {
			return value
		}
	}
	if chain.Fallback {
		return lastRaw
	}
	return ""
}

func evaluate(doc *goquery.Document, candidate Candidate) (string, int) {
	selection := doc.Find(candidate.Selector)
	if selection.Length() == 0 {
		return "", 0
	}
	if candidate.Join {
		return joinParagraphs(selection)
	}
	first := selection.First()
	if candidate.Attr != "" {
		value, _ := first.Attr(candidate.Attr)
		return strings.TrimSpace(value), selection.Length()
	}
	return CleanText(first.Text()), selection.Length()
}

func joinParagraphs(selection *goquery.Selection) (string, int) {
	var paragraphs []string
	selection.Each(func(_ int, s *goquery.Selection) {
		text := CleanText(s.Text())
		if len(text) >= minParagraphChars {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n"), len(paragraphs)
}

// CleanText collapses runs of whitespace into single spaces and trims.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// dateLayouts are tried in order against machine-readable attributes first,
// then element text.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 January, 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// Date extracts a published timestamp. For each selector the machine-readable
// "datetime" attribute is tried before the element text. An unparseable or
// missing date yields now with guessed=true; scraping never fails on a bad
// date.
func Date(doc *goquery.Document, selectors []string, now time.Time) (parsed time.Time, guessed bool) {
	for _, selector := range selectors {
		element := doc.Find(selector).First()
		if element.Length() == 0 {
			continue
		}
		if attr, ok := element.Attr("datetime"); ok {
			if t, ok := parseDate(attr); ok {
				return t, false
			}
		}
		if t, ok := parseDate(element.Text()); ok {
			return t, false
		}
	}
	return now, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
