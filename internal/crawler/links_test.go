package crawler

import (
	"testing"

	"github.com/sitegist/sitegist/internal/model"
)

// TestCleanURL tests link canonicalization.
func TestCleanURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips query", "https://example.com/pricing?utm_source=nav", "https://example.com/pricing"},
		{"strips fragment", "https://example.com/about#team", "https://example.com/about"},
		{"strips query and fragment", "https://example.com/docs?v=2#setup", "https://example.com/docs"},
		{"trims trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"trims repeated trailing slashes", "https://example.com/docs///", "https://example.com/docs"},
		{"root slash collapses to host", "https://example.com/", "https://example.com"},
		{"bare host unchanged", "https://example.com", "https://example.com"},
		{"deep path unchanged", "https://example.com/blog/2024/launch", "https://example.com/blog/2024/launch"},
		{"unparsable URL passes through", "://bad", "://bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cleanURL(tt.input); got != tt.want {
				t.Errorf("cleanURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestShouldCrawl tests link filtering against the built-in skip tables.
func TestShouldCrawl(t *testing.T) {
	t.Parallel()

	scraper := NewScraper(model.MustNewTarget("https://example.com"), nil)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"content page", "https://example.com/pricing", true},
		{"site root", "https://example.com", true},
		{"other host", "https://other.com/pricing", false},
		{"subdomain", "https://blog.example.com/post", false},

		// Static assets
		{"pdf", "https://example.com/brochure.pdf", false},
		{"stylesheet", "https://example.com/style.css", false},
		{"uppercase extension", "https://example.com/logo.PNG", false},
		{"webfont", "https://example.com/fonts/inter.woff2", false},

		// Built-in skip patterns
		{"privacy", "https://example.com/privacy", false},
		{"terms with slash", "https://example.com/terms/", false},
		{"contact", "https://example.com/contact", false},
		{"search", "https://example.com/search", false},
		{"login", "https://example.com/login", false},
		{"signup", "https://example.com/signup", false},
		{"cart", "https://example.com/cart", false},
		{"checkout", "https://example.com/checkout", false},
		{"robots file", "https://example.com/robots.txt", false},
		{"sitemap file", "https://example.com/sitemap.xml", false},
		{"favicon", "https://example.com/favicon.ico", false},

		// Patterns are anchored to the end of the URL.
		{"privacy prefix only", "https://example.com/privacy-policy", true},
		{"checkout in the middle", "https://example.com/blog/checkout-tips", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := scraper.shouldCrawl(tt.url); got != tt.want {
				t.Errorf("shouldCrawl(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// TestShouldCrawlSkipPatterns tests user-supplied skip patterns.
func TestShouldCrawlSkipPatterns(t *testing.T) {
	t.Parallel()

	t.Run("extra patterns block matching URLs", func(t *testing.T) {
		t.Parallel()

		scraper := NewScraper(model.MustNewTarget("https://example.com"), nil,
			WithSkipPatterns([]string{`/beta/`, `/internal/`}),
		)

		if scraper.shouldCrawl("https://example.com/beta/feature") {
			t.Error("expected /beta/ URL to be skipped")
		}
		if scraper.shouldCrawl("https://example.com/internal/tools") {
			t.Error("expected /internal/ URL to be skipped")
		}
		if !scraper.shouldCrawl("https://example.com/pricing") {
			t.Error("expected unmatched URL to be crawlable")
		}
	})

	t.Run("invalid patterns are dropped", func(t *testing.T) {
		t.Parallel()

		scraper := NewScraper(model.MustNewTarget("https://example.com"), nil,
			WithSkipPatterns([]string{`(`, `/beta/`}),
		)

		if len(scraper.skipPatterns) != 1 {
			t.Fatalf("expected 1 compiled pattern, got %d", len(scraper.skipPatterns))
		}
		if scraper.shouldCrawl("https://example.com/beta/feature") {
			t.Error("expected valid pattern to still apply")
		}
	})
}

// TestOutboundLinks tests cleaning, filtering, and deduplication of the
// links found on a page.
func TestOutboundLinks(t *testing.T) {
	t.Parallel()

	scraper := NewScraper(model.MustNewTarget("https://example.com"), nil)

	parsed := &ParseResult{
		Links: []string{
			"https://example.com/pricing?utm_source=nav",
			"https://example.com/features/",
			"https://example.com/pricing#plans",
			"https://other.com/pricing",
			"https://example.com/brochure.pdf",
			"https://example.com/privacy",
		},
		NavLinks: []string{
			"https://example.com/about",
			"https://example.com/features",
		},
	}

	got := scraper.outboundLinks(parsed)

	want := []string{
		"https://example.com/pricing",
		"https://example.com/features",
		"https://example.com/about",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
