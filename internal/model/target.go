package model

import (
	"errors"
	"net/url"
	"strings"
)

// Target errors.
var (
	// ErrInvalidTarget is returned when the target URL cannot be parsed
	// or has no usable host.
	ErrInvalidTarget = errors.New("invalid target URL")
	// ErrEmptyTarget is returned when the target is empty.
	ErrEmptyTarget = errors.New("target URL cannot be empty")
)

// Target is an immutable value object representing a website to scrape.
// It normalizes the raw input (scheme, host casing) and provides the
// derived forms the rest of the system needs: the base URL for sitemap
// candidates, the host for same-domain checks, and a filesystem-safe slug
// for default output names.
type Target struct {
	rawURL string // Normalized full URL
	host   string // Lowercased host (with port if present)
	scheme string // http or https
}

// NewTarget creates a Target from a raw URL string.
// A missing scheme defaults to https. Query strings and fragments are
// dropped since crawling always starts from a canonical entry point.
// Returns an error if the URL is unparsable or has no host.
func NewTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrEmptyTarget
	}

	// Default scheme so bare domains like "example.com" work.
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, ErrInvalidTarget
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, ErrInvalidTarget
	}
	if u.Host == "" {
		return Target{}, ErrInvalidTarget
	}

	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	if u.Path == "/" {
		u.Path = ""
	}

	return Target{
		rawURL: u.String(),
		host:   u.Host,
		scheme: u.Scheme,
	}, nil
}

// MustNewTarget creates a Target or panics if invalid.
// Use only for known-valid URLs in tests or initialization.
func MustNewTarget(raw string) Target {
	t, err := NewTarget(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the normalized target URL.
func (t Target) String() string {
	return t.rawURL
}

// Host returns the lowercased host, including the port if present.
func (t Target) Host() string {
	return t.host
}

// BaseURL returns scheme://host with no path.
// Sitemap candidate paths and robots.txt are resolved against this.
func (t Target) BaseURL() string {
	return t.scheme + "://" + t.host
}

// Slug returns a filesystem-safe identifier derived from the host.
// Dots and colons become underscores, e.g. "www.example.com" ->
// "www_example_com". Used for default output filenames.
func (t Target) Slug() string {
	r := strings.NewReplacer(".", "_", ":", "_")
	return r.Replace(t.host)
}

// IsZero returns true if this is a zero value (empty) Target.
func (t Target) IsZero() bool {
	return t.rawURL == ""
}

// Equals returns true if two Target values refer to the same URL.
func (t Target) Equals(other Target) bool {
	return t.rawURL == other.rawURL
}

// SameHost reports whether rawURL has exactly the same host as the target.
// Subdomains do not match: "blog.example.com" is not the same host as
// "example.com".
func (t Target) SameHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.ToLower(u.Host) == t.host
}
