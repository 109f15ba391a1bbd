package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sitegist/sitegist/internal/config"
	"github.com/temoto/robotstxt"
)

const (
	// robotsTxtPath is the well-known path for robots.txt files.
	robotsTxtPath = "/robots.txt"

	// maxRobotsBodySize limits the size of robots.txt responses we will read.
	// Real robots.txt files are a few KB; anything bigger is either broken
	// or hostile.
	maxRobotsBodySize = 512 * 1024 // 512 KB

	// defaultTTL is how long a fetched robots.txt stays cached.
	defaultTTL = 1 * time.Hour
)

// Checker checks and caches robots.txt rules per host.
//
// Design decision: Failures FAIL OPEN. A site whose robots.txt cannot be
// fetched or parsed is treated as allowing everything, because the scraper's
// job is gathering public marketing pages and a transient network error
// should not silently empty the crawl. Server-error (5xx) responses are the
// one exception: the robotstxt library treats those as "disallow all" per
// RFC 9309, and we keep that behavior.
type Checker struct {
	// client is the HTTP client used to fetch robots.txt files.
	client *http.Client

	// userAgent is the agent name tested against robots.txt groups.
	userAgent string

	// ttl is how long cached entries stay valid.
	ttl time.Duration

	// logger receives debug output for fetches and rule decisions.
	logger *slog.Logger

	// mu protects cache.
	mu sync.RWMutex

	// cache holds parsed robots.txt data keyed by lowercased host.
	cache map[string]*hostEntry
}

// hostEntry stores the parsed robots.txt data for a host.
// A nil data field means the fetch failed and everything is allowed.
type hostEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithUserAgent sets the agent name tested against robots.txt groups.
// Group matching uses the product token, so "sitegist-scraper/1.0" matches
// a "User-agent: sitegist-scraper" group.
func WithUserAgent(ua string) CheckerOption {
	return func(c *Checker) {
		c.userAgent = ua
	}
}

// WithTTL sets how long cached robots.txt entries stay valid.
func WithTTL(ttl time.Duration) CheckerOption {
	return func(c *Checker) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for robots diagnostics.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a new Checker using the given HTTP client.
func NewChecker(client *http.Client, opts ...CheckerOption) *Checker {
	c := &Checker{
		client:    client,
		userAgent: config.DefaultUserAgent,
		ttl:       defaultTTL,
		logger:    slog.Default(),
		cache:     make(map[string]*hostEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Allowed reports whether the given URL may be fetched according to the
// host's robots.txt. Malformed URLs are allowed; they will fail at fetch
// time with a better error than this layer could produce.
func (c *Checker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	entry := c.entryFor(ctx, u)
	if entry.data == nil {
		// Fetch or parse failure: fail open
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	allowed := entry.data.TestAgent(path, c.userAgent)
	if !allowed {
		c.logger.Debug("blocked by robots.txt", "url", rawURL)
	}
	return allowed
}

// Sitemaps returns the Sitemap directives declared in the host's robots.txt.
// Returns nil when robots.txt is unavailable or declares none.
func (c *Checker) Sitemaps(ctx context.Context, rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}

	entry := c.entryFor(ctx, u)
	if entry.data == nil {
		return nil
	}
	return entry.data.Sitemaps
}

// CrawlDelay returns the Crawl-delay directive for our user agent on the
// URL's host, or 0 when none is declared. The crawler honors this when it
// exceeds the configured delay.
func (c *Checker) CrawlDelay(ctx context.Context, rawURL string) time.Duration {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return 0
	}

	entry := c.entryFor(ctx, u)
	if entry.data == nil {
		return 0
	}

	group := entry.data.FindGroup(c.userAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}

// entryFor returns the cached entry for the URL's host, fetching and
// caching robots.txt when missing or stale.
func (c *Checker) entryFor(ctx context.Context, u *url.URL) *hostEntry {
	host := strings.ToLower(u.Host)

	c.mu.RLock()
	entry, ok := c.cache[host]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) <= c.ttl {
		return entry
	}

	entry = c.fetch(ctx, u.Scheme, host)

	c.mu.Lock()
	c.cache[host] = entry
	c.mu.Unlock()

	return entry
}

// fetch retrieves and parses robots.txt for a host.
// Failures are cached as allow-all entries so an unreachable host does not
// get hammered with a robots request per page.
func (c *Checker) fetch(ctx context.Context, scheme, host string) *hostEntry {
	if scheme == "" {
		scheme = "https"
	}
	robotsURL := scheme + "://" + host + robotsTxtPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return &hostEntry{fetchedAt: time.Now()}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("robots.txt fetch failed, allowing all", "host", host, "error", err)
		return &hostEntry{fetchedAt: time.Now()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodySize))
	if err != nil {
		c.logger.Debug("robots.txt read failed, allowing all", "host", host, "error", err)
		return &hostEntry{fetchedAt: time.Now()}
	}

	// FromStatusAndBytes applies the standard status semantics:
	// 2xx parses the body, 4xx allows everything, 5xx disallows everything.
	// On 5xx it returns disallow-all data alongside an error, so the data
	// check comes first; only a nil result (unparseable body, odd status)
	// falls back to allow-all.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if data == nil {
		c.logger.Debug("robots.txt unusable, allowing all", "host", host, "error", err)
		return &hostEntry{fetchedAt: time.Now()}
	}

	c.logger.Debug("robots.txt loaded",
		"host", host,
		"status", resp.StatusCode,
		"sitemaps", len(data.Sitemaps),
	)
	return &hostEntry{data: data, fetchedAt: time.Now()}
}
