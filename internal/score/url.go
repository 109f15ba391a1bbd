package score

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// urlBaseScore is the neutral starting score for every URL.
	urlBaseScore = 0.5

	// highValueBonus is added when the path matches a high-value pattern.
	highValueBonus = 0.3

	// lowValuePenalty is subtracted when the path matches a low-value
	// pattern. Larger than the bonus so a URL matching both kinds still
	// lands below the neutral score.
	lowValuePenalty = 0.4

	// rootBonus is added for the site root, which is always worth a look.
	rootBonus = 0.2
)

// URLScorer rates URLs from their path alone, before any fetch. Scores
// feed the crawl prioritization: candidates are sorted by URL score and
// anything below the configured threshold is dropped.
//
// Design decision: path patterns are matched unanchored (first match per
// list wins) because marketing sites nest the interesting sections under
// arbitrary prefixes:
//  1. "/en/pricing" and "/v2/docs/setup" must rate as high as "/pricing"
//  2. one bonus and one penalty at most keeps the score range predictable
//  3. the asset-extension pattern is the only anchored one, since an
//     extension only counts at the end of the path
type URLScorer struct {
	// highValue matches content-bearing sections worth +0.3.
	highValue []*regexp.Regexp

	// lowValue matches utility pages and assets worth -0.4.
	lowValue []*regexp.Regexp
}

// NewURLScorer creates a URLScorer with the built-in pattern tables.
func NewURLScorer() *URLScorer {
	return &URLScorer{
		highValue: compileAll(
			`/how-it-works/?`,
			`/pricing/?`,
			`/use-cases/?`,
			`/help/?`,
			`/blog/?`,
			`/articles/?`,
			`/docs/?`,
			`/features/?`,
			`/solutions/?`,
			`/guides/?`,
			`/tutorials/?`,
			`/documentation/?`,
			`/news/?`,
			`/post/?`,
			`/about/?`,
			`/product/?`,
			`/services/?`,
		),
		lowValue: compileAll(
			`/contact/?`,
			`/privacy/?`,
			`/terms/?`,
			`/login/?`,
			`/cart/?`,
			`/checkout/?`,
			`/search/?`,
			`/sitemap/?`,
			`/robots\.txt`,
			`/favicon\.ico`,
			`\.(css|js|png|jpg|jpeg|gif|svg|pdf)$`,
		),
	}
}

// Score rates a URL in [0, 1]. Pure function of the URL string.
//
// Starts at 0.5; +0.3 for the first high-value pattern match, -0.4 for the
// first low-value match, +0.2 when the path is the site root. An
// unparsable URL is matched as-is with no root bonus.
func (s *URLScorer) Score(rawURL string) float64 {
	scored := urlBaseScore

	path := strings.ToLower(rawURL)
	root := false
	if u, err := url.Parse(rawURL); err == nil {
		path = strings.ToLower(u.Path)
		root = u.Path == "" || u.Path == "/"
	}

	for _, pattern := range s.highValue {
		if pattern.MatchString(path) {
			scored += highValueBonus
			break
		}
	}

	for _, pattern := range s.lowValue {
		if pattern.MatchString(path) {
			scored -= lowValuePenalty
			break
		}
	}

	if root {
		scored += rootBonus
	}

	return clamp(scored)
}

// compileAll compiles a pattern list, panicking on invalid patterns.
// Only called with the built-in tables.
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// clamp bounds a score to [0, 1].
func clamp(v float64) float64 {
	return min(1.0, max(0.0, v))
}
