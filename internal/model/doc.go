// Package model defines the core data structures used throughout sitegist.
//
// This package contains the following main types:
//   - Target: A validated website target (the crawl entry point)
//   - Page: A fetched web page with parsed content
//   - PageInfo: Scoring and sitemap metadata for a candidate or processed page
//   - ScrapeResult: The outcome of processing one page (summary, key points)
//   - ScrapeReport: The main result structure for a run
//   - Digest: A condensed view of a report for console and Markdown output
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, insights, report) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for results output.
package model
