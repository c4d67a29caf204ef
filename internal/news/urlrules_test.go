package news

import "testing"

func TestURLRulesIsArticle(t *testing.T) {
	t.Parallel()

	rules := DefaultURLRules()

	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"date and trailing id", "https://site.example/news/2024/05/10/some-slug-123456", true},
		{"bare section page", "https://site.example/news/", false},
		{"bare section page no slash", "https://site.example/politics", false},
		{"news with nested slug", "https://site.example/news/bangladesh/protest-turns-violent", true},
		{"city slug", "https://site.example/city/road-blockade-in-dhanmondi", true},
		{"single news segment", "https://site.example/news/bangladesh", false},
		{"tag page", "https://site.example/tags/election-2024", false},
		{"search page", "https://site.example/search/?q=clash", false},
		{"author page", "https://site.example/author/staff-correspondent", false},
		{"static asset", "https://site.example/news/2024/05/10/photo.jpg", false},
		{"trailing id alone", "https://site.example/frontpage/clash-in-paltan-3371621", true},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := rules.IsArticle(tc.url); got != tc.want {
				t.Fatalf("IsArticle(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	base := "https://www.thedailystar.net"

	got, err := ResolveURL(base, "/news/bangladesh/some-story-123456")
	if err != nil {
		t.Fatalf("ResolveURL() error = %v", err)
	}
	if got != "https://www.thedailystar.net/news/bangladesh/some-story-123456" {
		t.Fatalf("unexpected resolved url %q", got)
	}

	got, err = ResolveURL(base, "https://other.example/story#section")
	if err != nil {
		t.Fatalf("ResolveURL() error = %v", err)
	}
	if got != "https://other.example/story" {
		t.Fatalf("expected fragment stripped, got %q", got)
	}

	if _, err := ResolveURL(base, "mailto:tips@thedailystar.net"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}
