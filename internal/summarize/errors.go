package summarize

import (
	"errors"
	"fmt"
)

// Sentinel errors for the completions client.
var (
	// ErrNoAPIKey is returned when a client is constructed without a key.
	ErrNoAPIKey = errors.New("summarize: API key is required")

	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("summarize: empty model response")
)

// HTTPError is a non-2xx response from the completions endpoint.
type HTTPError struct {
	// StatusCode is the HTTP status returned.
	StatusCode int

	// Body is the response body, truncated for log friendliness.
	Body string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("summarize: completions endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("summarize: completions endpoint returned %d: %s", e.StatusCode, e.Body)
}

// ParseError reports a key points response that could not be parsed as
// JSON, even after a repair pass.
type ParseError struct {
	// Response is the raw model output.
	Response string

	// Repaired is the post-repair payload when repair itself succeeded but
	// the result still failed to parse. Empty otherwise.
	Repaired string

	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("summarize: unparsable key points response: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a key points response that parsed as JSON but did
// not match the expected category-to-list schema.
type SchemaError struct {
	// Category is the offending category key.
	Category string

	// Err describes the shape mismatch.
	Err error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("summarize: key points schema violation in %q: %v", e.Category, e.Err)
}

// Unwrap returns the underlying shape error.
func (e *SchemaError) Unwrap() error { return e.Err }
