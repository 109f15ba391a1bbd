package fetch

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/sitegist/sitegist/internal/config"
)

// HTTP transport tuning.
// These values prevent indefinite blocking on slow or unresponsive servers
// while keeping connection reuse effective across a multi-page crawl.
const (
	// dialTimeout is the maximum time to wait for a TCP connection.
	dialTimeout = 10 * time.Second

	// tlsHandshakeTimeout is the maximum time to wait for the TLS handshake.
	tlsHandshakeTimeout = 10 * time.Second

	// responseHeaderTimeout is the maximum time to wait for response headers
	// after the request is fully written.
	responseHeaderTimeout = 10 * time.Second

	// idleConnTimeout is the maximum time an idle connection is kept for reuse.
	// Crawls hit the same host repeatedly, so generous reuse pays off.
	idleConnTimeout = 90 * time.Second

	// maxRedirects caps redirect chains to prevent loops while allowing
	// normal http->https and www canonicalization hops.
	maxRedirects = 10
)

// NewHTTPClient creates an HTTP client tuned for polite site crawling.
//
// Design decisions:
// - We enable cookies via a cookie jar for session continuity during crawling
// - Redirect limit is 10; beyond that the last response is returned as-is
//   rather than erroring, so the caller still sees the page and status code
// - Connection pool allows warm connections per host because a crawl issues
//   many requests against one origin
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		IdleConnTimeout:       idleConnTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
	}

	// Create cookie jar for session management
	// This allows crawling authenticated areas when a session cookie is provided
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// NewHTTPClientWithProfile creates an HTTP client that applies a site
// profile's cookie, headers, and user agent to every request.
//
// Design decision: We use a custom RoundTripper to inject headers/cookies
// rather than modifying each request. This ensures all requests (including
// redirects and subrequests) include the configured values.
func NewHTTPClientWithProfile(timeout time.Duration, profile config.SiteProfile) *http.Client {
	client := NewHTTPClient(timeout)
	if profile.IsZero() {
		return client
	}

	client.Transport = &headerInjectingTransport{
		base:      client.Transport,
		cookie:    profile.Cookie,
		headers:   profile.Headers,
		userAgent: profile.UserAgent,
	}
	return client
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// custom headers, cookies, and a user agent into every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	cookie    string
	headers   map[string]string
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	// Inject cookie if configured
	if t.cookie != "" {
		// Append to existing Cookie header or set new one
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	// Inject custom headers
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	// Profile user agent wins over the per-request default
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	return t.base.RoundTrip(clone)
}
