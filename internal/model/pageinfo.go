package model

import "time"

// PageSource identifies how a page URL was discovered.
type PageSource string

// PageSource constants.
const (
	// SourceSitemap indicates the URL came from a sitemap.
	SourceSitemap PageSource = "sitemap"
	// SourceRecursive indicates the URL was discovered while crawling.
	SourceRecursive PageSource = "recursive"
	// SourceHomepage indicates the URL is the fallback base URL used when
	// no sitemap could be discovered.
	SourceHomepage PageSource = "homepage"
)

// String returns the string representation of the PageSource.
func (s PageSource) String() string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

// IsValid checks if the page source is a known valid value.
func (s PageSource) IsValid() bool {
	switch s {
	case SourceSitemap, SourceRecursive, SourceHomepage:
		return true
	default:
		return false
	}
}

// PageInfo holds the metadata known about a candidate or processed page.
// Before a fetch it carries sitemap data and the URL heuristic score;
// after a fetch the title, content score, and word count are filled in.
type PageInfo struct {
	// URL is the cleaned absolute URL of the page.
	URL string `json:"url"`

	// Title is the page title. Empty until the page has been fetched.
	Title string `json:"title"`

	// ContentScore is the page's content quality score, clamped to [0, 1].
	// Before a fetch this is the URL heuristic score; after a fetch it is
	// replaced by the content score.
	ContentScore float64 `json:"content_score"`

	// WordCount is the number of words in the page's main content.
	WordCount int `json:"word_count"`

	// Depth is the crawl depth at which the URL was found.
	// Sitemap and homepage entries are depth 0.
	Depth int `json:"depth"`

	// Source records how the URL was discovered.
	Source PageSource `json:"source"`

	// LastModified is the last modification time from the sitemap,
	// nil when unknown.
	LastModified *time.Time `json:"last_modified,omitempty"`

	// Priority is the sitemap priority hint, 0.5 when unspecified.
	Priority float64 `json:"priority"`

	// ChangeFreq is the sitemap change frequency hint, empty when
	// unspecified.
	ChangeFreq string `json:"change_freq,omitempty"`
}

// Band returns the content-score band the page falls into.
func (p *PageInfo) Band() Band {
	return BandForScore(p.ContentScore)
}
