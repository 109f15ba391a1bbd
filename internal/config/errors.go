package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no target URL or list file is specified.
	// This error occurs when neither --list nor a positional argument provides a target.
	ErrNoTarget = errors.New("no target specified: provide a website URL or use --list")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxDepth is returned when the crawl depth is not positive.
	// A depth of zero would prevent even the initial prioritized pages
	// from being scraped.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is not positive.
	// A limit of zero would mean no pages are scraped at all.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidDelay is returned when the request delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidConcurrency is returned when concurrent requests is not positive.
	// Zero concurrency would mean no requests are ever issued.
	ErrInvalidConcurrency = errors.New("invalid concurrent requests: must be positive")

	// ErrInvalidThreshold is returned when the content threshold is outside [0,1].
	// URL scores are clamped to that range, so thresholds beyond it would
	// either admit everything or nothing.
	ErrInvalidThreshold = errors.New("invalid content threshold: must be between 0 and 1")

	// ErrInvalidCacheDuration is returned when the cache duration is negative.
	// A negative duration is invalid; use 0 to disable the cache.
	ErrInvalidCacheDuration = errors.New("invalid cache duration: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingVerbosity is returned when both --verbose and --quiet
	// are specified. Only one verbosity mode can be used at a time.
	ErrConflictingVerbosity = errors.New("conflicting verbosity: --verbose and --quiet cannot be used together")

	// ErrListFileNotFound is returned when the --list file does not exist.
	ErrListFileNotFound = errors.New("list file not found")
)
