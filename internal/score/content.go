package score

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentBaseScore is the neutral starting score for fetched content.
const contentBaseScore = 0.5

// ContentScorer rates a fetched document from the structure and length of
// its main content area. The resulting score replaces the URL heuristic
// score on the page record once the page has actually been fetched.
type ContentScorer struct {
	// selectors locate the main content container, tried in order.
	selectors []string

	// semanticTags is the selector counting content-structure elements
	// inside the main container.
	semanticTags string

	// headingTags is the selector counting section headings (h1 through
	// h3) inside the main container.
	headingTags string
}

// NewContentScorer creates a ContentScorer with the built-in selector
// tables.
func NewContentScorer() *ContentScorer {
	return &ContentScorer{
		selectors: []string{
			"main", "article", `[role="main"]`, ".main-content", ".content",
			".post-content", ".entry-content", ".article-content", "#content",
			"#main", ".main", ".page-content",
		},
		semanticTags: "article,section,main,aside,nav,header,footer," +
			"h1,h2,h3,h4,h5,h6,p,blockquote,pre",
		headingTags: "h1,h2,h3",
	}
}

// Score rates a parsed document in [0, 1] and returns the word count of
// its main content area. Deterministic for identical HTML.
//
// Starting from 0.5, the main container contributes a word-count tier
// (>1000 +0.3, >500 +0.2, >100 +0.1, otherwise -0.2), a semantic-tag
// density bonus, and a heading bonus. Independently of the container, a
// non-empty meta description adds 0.1 and the presence of an <article>
// element adds 0.2. When no container can be located at all the container
// adjustments are skipped and the word count is zero.
func (s *ContentScorer) Score(doc *goquery.Document) (float64, int) {
	scored := contentBaseScore
	wordCount := 0

	if main := s.mainContent(doc); main != nil {
		wordCount = len(strings.Fields(main.Text()))

		switch {
		case wordCount > 1000:
			scored += 0.3
		case wordCount > 500:
			scored += 0.2
		case wordCount > 100:
			scored += 0.1
		default:
			scored -= 0.2
		}

		if n := main.Find(s.semanticTags).Length(); n > 10 {
			scored += 0.2
		} else if n > 5 {
			scored += 0.1
		}

		if n := main.Find(s.headingTags).Length(); n > 3 {
			scored += 0.2
		} else if n > 1 {
			scored += 0.1
		}
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && desc != "" {
		scored += 0.1
	}

	if doc.Find("article").Length() > 0 {
		scored += 0.2
	}

	return clamp(scored), wordCount
}

// mainContent locates the main content container: the first match among
// the priority selectors, else the <div>/<section>/<article> with the
// highest word count (first wins ties), else nil.
func (s *ContentScorer) mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range s.selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}

	var best *goquery.Selection
	bestWords := -1
	doc.Find("div, section, article").Each(func(_ int, sel *goquery.Selection) {
		if words := len(strings.Fields(sel.Text())); words > bestWords {
			bestWords = words
			best = sel
		}
	})
	return best
}
