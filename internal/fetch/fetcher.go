package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sitegist/sitegist/internal/config"
	"github.com/sitegist/sitegist/internal/model"
	"golang.org/x/net/html/charset"
)

// PageCache is the subset of the page cache the fetcher consults.
// It is satisfied by cache.DB; defining the interface here keeps the
// fetcher testable without a database.
type PageCache interface {
	// Get returns the cached page for a URL if a fresh entry exists.
	Get(ctx context.Context, url string) (*model.Page, bool)

	// Put stores a fetched page.
	Put(ctx context.Context, page *model.Page) error
}

// Fetcher retrieves pages over HTTP with caching and size limits.
// It is safe for concurrent use as long as the underlying http.Client
// and PageCache are (both are).
type Fetcher struct {
	// client is the HTTP client, pre-configured with timeouts and
	// optionally a site profile transport.
	client *http.Client

	// cache is consulted before the network and updated after successful
	// fetches. Nil disables caching.
	cache PageCache

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger receives debug output for cache hits and fetch timing.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache sets the page cache consulted before fetching.
func WithCache(c PageCache) Option {
	return func(f *Fetcher) {
		f.cache = c
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new Fetcher with the given HTTP client.
//
// Design decision: We require an external client because:
//  1. Transport tuning and site profiles are handled by NewHTTPClient
//  2. Consistent with the robots checker and sitemap fetcher
//  3. Allows for different configurations in tests
func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves a single page, consulting the cache first.
//
// Non-2xx responses are not errors: the page is returned with its status
// code and the caller decides how to record it. Transport failures,
// unsupported schemes, and context cancellation are errors.
//
// Cached hits are marked with Page.FromCache so crawl pacing can skip the
// politeness delay for pages that never touched the network.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrEmptyURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}

	// Cache first
	if f.cache != nil {
		if page, ok := f.cache.Get(ctx, rawURL); ok {
			page.FromCache = true
			f.logger.Debug("cache hit", "url", rawURL)
			return page, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")

	// Decode textual bodies to UTF-8; binary bodies (images for EXIF
	// analysis) pass through untouched.
	var reader io.Reader = resp.Body
	if isTextual(contentType) {
		if decoded, charsetErr := charset.NewReader(resp.Body, contentType); charsetErr == nil {
			reader = decoded
		}
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	page := &model.Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Headers:     resp.Header,
		Raw:         body,
		FetchedAt:   time.Now(),
	}
	if isTextual(contentType) {
		page.Snapshot = string(body)
	}

	// Compute hash and enforce size limits
	page.ComputeHash()
	page.TruncateSnapshot()
	page.TruncateRaw()

	f.logger.Debug("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	// Only successful responses are cached; transient errors should be
	// retried on the next run rather than served stale.
	if f.cache != nil && resp.StatusCode == http.StatusOK {
		if err := f.cache.Put(ctx, page); err != nil {
			f.logger.Warn("cache write failed", "url", rawURL, "error", err)
		}
	}

	return page, nil
}

// isTextual reports whether the content type describes text that should be
// charset-decoded and snapshotted. An empty content type is assumed to be
// HTML because many servers omit the header on HTML responses.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/") ||
		strings.Contains(ct, "html") ||
		strings.Contains(ct, "xml") ||
		strings.Contains(ct, "json")
}
