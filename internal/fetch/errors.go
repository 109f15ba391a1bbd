package fetch

import "errors"

// Fetch errors.
// These errors are returned when a page cannot be retrieved.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. This allows callers to handle different failure modes
// appropriately (e.g., skip a malformed URL, but surface network failures
// in the scrape results).
var (
	// ErrEmptyURL is returned when an empty or whitespace-only URL is passed.
	ErrEmptyURL = errors.New("empty URL")

	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	// The scraper only speaks HTTP; mailto:, tel:, javascript: and friends
	// are filtered out during link extraction but may still reach the
	// fetcher through sitemaps or user input.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme: only http and https are supported")
)
