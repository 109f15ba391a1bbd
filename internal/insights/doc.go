// Package insights mines deterministic company signals from crawled pages.
//
// Unlike the LLM key points, everything in this package is derived from
// the page content itself: email addresses, social profiles, analytics
// IDs, payment providers, technology fingerprints, partner domains, and
// image metadata. The findings complement the model output and remain
// reproducible across runs.
//
// The package is organized around the Classifier interface: each
// classifier owns one category of insight and is registered with an
// Engine that runs them all against the crawled pages. This keeps the
// pattern tables for each concern in one file and lets callers register
// their own classifiers.
package insights
