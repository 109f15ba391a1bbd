package crawler

import (
	"net/url"
	"regexp"
	"strings"
)

// skipExtensions are static asset extensions that are never crawled.
var skipExtensions = []string{
	".css", ".js", ".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg",
	".ico", ".woff", ".woff2", ".ttf", ".eot",
}

// skipPathPatterns match pages excluded from crawling: legal boilerplate,
// auth flows, commerce checkout machinery, and crawler metadata files.
// Matched against the lowercased full URL.
var skipPathPatterns = mustCompileAll(
	`/privacy/?$`,
	`/terms/?$`,
	`/contact/?$`,
	`/search/?$`,
	`/login/?$`,
	`/signup/?$`,
	`/cart/?$`,
	`/checkout/?$`,
	`/robots\.txt$`,
	`/sitemap\.xml$`,
	`/favicon\.ico$`,
)

// mustCompileAll compiles a pattern list, panicking on invalid patterns.
// Only called with the built-in table; user-supplied patterns go through
// WithSkipPatterns, which drops invalid ones instead.
func mustCompileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// cleanURL canonicalizes a discovered link: the query string and fragment
// are dropped and trailing slashes are trimmed, so every variant of a page
// URL maps to the same string. The site root loses its slash too:
// "https://example.com/" becomes "https://example.com".
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""

	cleaned := u.String()
	base := u.Scheme + "://" + u.Host
	if strings.HasSuffix(cleaned, "/") && len(cleaned) > len(base) {
		cleaned = strings.TrimRight(cleaned, "/")
	}
	return cleaned
}

// shouldCrawl reports whether a cleaned link is worth queueing: it must be
// on the target host (subdomains do not count), must not be a static
// asset, and must not match a skip pattern.
func (s *Scraper) shouldCrawl(rawURL string) bool {
	if !s.target.SameHost(rawURL) {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	for _, re := range skipPathPatterns {
		if re.MatchString(lower) {
			return false
		}
	}
	for _, re := range s.skipPatterns {
		if re.MatchString(lower) {
			return false
		}
	}
	return true
}

// outboundLinks cleans and filters the links found on one page. Body links
// come first, then navigation links; duplicates collapse to the first
// occurrence so the order is stable across runs.
func (s *Scraper) outboundLinks(parsed *ParseResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{parsed.Links, parsed.NavLinks} {
		for _, link := range group {
			cleaned := cleanURL(link)
			if cleaned == "" || seen[cleaned] {
				continue
			}
			seen[cleaned] = true
			if !s.shouldCrawl(cleaned) {
				continue
			}
			out = append(out, cleaned)
		}
	}
	return out
}
