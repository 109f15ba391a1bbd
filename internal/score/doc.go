// Package score implements the content-relevance heuristics that decide
// which pages of a site are worth fetching and summarizing.
//
// # Purpose
//
// Scraping every page of a site wastes budget on privacy policies, carts,
// and asset files. This package produces a relevance score in [0, 1] at two
// points in the crawl:
//  1. Before fetching: URLScorer rates a URL from its path alone, so the
//     crawler can rank candidates and drop obvious utility pages cheaply.
//  2. After fetching: ContentScorer rates the parsed document from its
//     main-content word count and semantic structure, which becomes the
//     page's recorded content score.
//
// # Score Semantics
//
// Both scorers start from a neutral 0.5 and apply bounded adjustments, so
// a page with no signals in either direction stays in the middle of the
// range. Scores are always clamped to [0, 1]. URLs matching a high-value
// path pattern score above 0.5; utility pages and asset files score at or
// below it.
package score
