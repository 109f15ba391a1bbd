package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Page represents a fetched web page with all extracted information.
// This structure holds both the raw response data and parsed content.
//
// Design decision: We store both raw bytes and parsed content because:
// 1. Raw bytes are needed for caching and change detection
// 2. Parsed content is needed for scoring and insight classification
// 3. The hash allows deduplication across crawl waves
type Page struct {
	// URL is the full URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	// Keys are header names (canonicalized), values are slices of header values.
	Headers map[string][]string `json:"headers"`

	// ContentType is the MIME type of the response.
	// Extracted from Content-Type header for convenience.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from the <title> tag.
	// Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// Anchors contains all anchor (<a>) elements.
	// Used for link discovery and partner analysis.
	Anchors []Element `json:"anchors,omitempty"`

	// Images contains all images referenced by the page.
	Images []Element `json:"images,omitempty"`

	// Scripts contains all script references.
	Scripts []Element `json:"scripts,omitempty"`

	// Snapshot is a text-only snapshot of the page content with scripts
	// and styles stripped. Limited to MaxSnapshotSize bytes.
	// Insight classifiers search this rather than raw HTML.
	Snapshot string `json:"snapshot,omitempty"`

	// Raw contains the raw response body bytes.
	// Limited to MaxPageSize bytes.
	Raw []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the SHA-256 hash of the raw content.
	// Used for deduplication and change detection.
	Hash string `json:"hash"`

	// FetchedAt records when the page was retrieved.
	// The page cache uses this to enforce its TTL.
	FetchedAt time.Time `json:"fetched_at"`

	// FromCache is true when the page was served from the local cache
	// rather than the network.
	FromCache bool `json:"-"`
}

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// We limit this to prevent memory issues with very large pages.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// MaxPageSize is the maximum size of raw page content to store.
// Larger pages are truncated to this size.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// Element represents a generic HTML element with a source URL.
// Used for images, scripts, and anchors.
type Element struct {
	// Source is the element's src, href, or equivalent URL attribute,
	// resolved to an absolute URL where possible.
	Source string `json:"source"`

	// Alt is the alt text (for images).
	Alt string `json:"alt,omitempty"`

	// Text is the inner text content (for anchors).
	Text string `json:"text,omitempty"`

	// Rel is the rel attribute (for anchors).
	Rel string `json:"rel,omitempty"`
}

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
// Header names are case-insensitive in HTTP, but Go's http package
// canonicalizes them, so we store them in canonical form.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// GetAllHeaders returns all values of the specified header.
// Returns nil if the header is not present.
func (p *Page) GetAllHeaders(name string) []string {
	return p.Headers[name]
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		// Handle content types with charset suffix
		len(p.ContentType) > 9 && p.ContentType[:9] == "text/html"
}

// IsImage returns true if the page content type indicates an image.
func (p *Page) IsImage() bool {
	return len(p.ContentType) >= 6 && p.ContentType[:6] == "image/"
}

// TruncateSnapshot ensures the snapshot doesn't exceed MaxSnapshotSize.
// Call this after setting the snapshot to enforce the size limit.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
// Call this after setting Raw to enforce the size limit.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}

// Expired reports whether the page's cache entry is older than ttl.
func (p *Page) Expired(ttl time.Duration, now time.Time) bool {
	if p.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(p.FetchedAt) > ttl
}
