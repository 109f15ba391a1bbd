package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sitegist/sitegist/internal/config"
	"github.com/sitegist/sitegist/internal/model"
)

const (
	// maxIndexDepth bounds recursion through nested sitemap index files.
	// Real sites rarely nest beyond index -> sitemap; three levels covers
	// index -> sub-index -> sitemap without risking cycles.
	maxIndexDepth = 3

	// maxSitemapSize limits the size of sitemap responses we will read.
	// The sitemap protocol caps files at 50MB, but anything near that is
	// pathological for our purposes; 10MB covers tens of thousands of URLs.
	maxSitemapSize = 10 * 1024 * 1024

	// defaultPriority is assigned to entries without a <priority> element,
	// matching the sitemap protocol's documented default.
	defaultPriority = 0.5
)

// candidatePaths are the conventional sitemap locations probed during
// discovery, in order.
var candidatePaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemaps.xml",
	"/sitemap/sitemap.xml",
}

// errNotSitemap is returned when a document parses as XML but is neither
// a <urlset> nor a <sitemapindex>.
var errNotSitemap = errors.New("not a sitemap document")

// urlSet is the <urlset> sitemap document.
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []urlSetItem `xml:"url"`
}

// urlSetItem is a single <url> entry.
type urlSetItem struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// sitemapIndex is the <sitemapindex> document referencing child sitemaps.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// sitemapRef is a single <sitemap> reference inside an index.
type sitemapRef struct {
	Loc string `xml:"loc"`
}

// Fetcher discovers and parses sitemaps for a site.
type Fetcher struct {
	// client is the HTTP client used to fetch sitemap documents.
	client *http.Client

	// userAgent is the User-Agent header to send.
	userAgent string

	// logger receives debug output; individual sitemap failures are
	// logged and skipped rather than failing discovery.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLogger sets the logger for sitemap diagnostics.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new sitemap Fetcher using the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    client,
		userAgent: config.DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Discover probes the conventional sitemap locations for the target plus
// any extra sitemap URLs (typically robots.txt Sitemap directives), parses
// everything found, and returns the deduplicated entries.
//
// When nothing yields a single URL, Discover falls back to one entry for
// the site's base URL at priority 1.0 so the scrape always has a starting
// point.
func (f *Fetcher) Discover(ctx context.Context, target model.Target, extra ...string) []model.PageInfo {
	entries, _ := f.DiscoverSources(ctx, target, extra...)
	return entries
}

// DiscoverSources is Discover plus the list of sitemap documents that
// actually yielded page entries, in probe order. Reports record the
// sources so a reader can tell which sitemap fed the crawl.
func (f *Fetcher) DiscoverSources(ctx context.Context, target model.Target, extra ...string) ([]model.PageInfo, []string) {
	base := target.BaseURL()

	candidates := make([]string, 0, len(candidatePaths)+len(extra))
	for _, p := range candidatePaths {
		candidates = append(candidates, base+p)
	}
	candidates = append(candidates, extra...)

	// seen tracks processed sitemap documents, entryURLs collected pages.
	seen := make(map[string]bool)
	entryURLs := make(map[string]bool)
	var entries []model.PageInfo
	var sources []string

	for _, candidate := range candidates {
		f.collect(ctx, target, candidate, 0, seen, entryURLs, &entries, &sources)
	}

	if len(entries) == 0 {
		f.logger.Info("no sitemap entries found, falling back to base URL", "target", target.String())
		return []model.PageInfo{{
			URL:      base,
			Priority: 1.0,
			Source:   model.SourceHomepage,
		}}, nil
	}

	f.logger.Info("sitemap discovery complete",
		"target", target.String(),
		"checked", len(seen),
		"urls", len(entries),
	)
	return entries, sources
}

// collect fetches and parses one sitemap document, recursing into index
// children and appending new page entries. Entries pointing off the
// target's host are dropped; sitemaps occasionally advertise CDN or
// partner URLs, and the crawl stays on the target site.
func (f *Fetcher) collect(ctx context.Context, target model.Target, sitemapURL string, depth int, seen, entryURLs map[string]bool, entries *[]model.PageInfo, sources *[]string) {
	if depth > maxIndexDepth {
		f.logger.Debug("sitemap index too deep, skipping", "url", sitemapURL, "depth", depth)
		return
	}
	if seen[sitemapURL] {
		return
	}
	seen[sitemapURL] = true

	select {
	case <-ctx.Done():
		return
	default:
	}

	body, err := f.fetch(ctx, sitemapURL)
	if err != nil {
		f.logger.Debug("sitemap fetch failed, skipping", "url", sitemapURL, "error", err)
		return
	}

	items, children, err := parseSitemap(body)
	if err != nil {
		f.logger.Debug("sitemap parse failed, skipping", "url", sitemapURL, "error", err)
		return
	}

	for _, child := range children {
		f.collect(ctx, target, child, depth+1, seen, entryURLs, entries, sources)
	}

	added := 0
	for _, item := range items {
		loc := strings.TrimSpace(item.Loc)
		if loc == "" || entryURLs[loc] {
			continue
		}
		if !target.SameHost(loc) {
			f.logger.Debug("skipping off-host sitemap entry", "url", loc, "sitemap", sitemapURL)
			continue
		}
		entryURLs[loc] = true

		*entries = append(*entries, model.PageInfo{
			URL:          loc,
			Source:       model.SourceSitemap,
			LastModified: parseLastMod(item.LastMod),
			Priority:     parsePriority(item.Priority),
			ChangeFreq:   strings.TrimSpace(item.ChangeFreq),
		})
		added++
	}
	if added > 0 {
		*sources = append(*sources, sitemapURL)
	}
}

// fetch retrieves a sitemap document body.
// Non-2xx statuses are errors here; unlike page fetching, a missing
// sitemap candidate is expected and just means "try the next one".
func (f *Fetcher) fetch(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSitemapSize))
}

// parseSitemap decodes a sitemap document into either page entries
// (<urlset>) or child sitemap URLs (<sitemapindex>).
func parseSitemap(data []byte) ([]urlSetItem, []string, error) {
	var us urlSet
	if err := xml.Unmarshal(data, &us); err == nil {
		return us.URLs, nil, nil
	}

	var idx sitemapIndex
	if err := xml.Unmarshal(data, &idx); err == nil {
		children := make([]string, 0, len(idx.Sitemaps))
		for _, ref := range idx.Sitemaps {
			if loc := strings.TrimSpace(ref.Loc); loc != "" {
				children = append(children, loc)
			}
		}
		return nil, children, nil
	}

	return nil, nil, errNotSitemap
}

// parseLastMod parses a <lastmod> value.
// The sitemap protocol allows full W3C datetime or a bare date; anything
// unparsable becomes nil rather than failing the entry.
func parseLastMod(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parsePriority parses a <priority> value, defaulting to 0.5 as the
// sitemap protocol specifies.
func parsePriority(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultPriority
	}

	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultPriority
	}
	return p
}
