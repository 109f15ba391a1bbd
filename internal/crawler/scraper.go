package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/sitegist/sitegist/internal/config"
	"github.com/sitegist/sitegist/internal/model"
	"github.com/sitegist/sitegist/internal/score"
	"github.com/sitegist/sitegist/internal/summarize"
)

// Fetcher retrieves a single page. It is satisfied by fetch.Fetcher;
// defining the interface here keeps the scraper testable without a network.
type Fetcher interface {
	// Fetch returns the page at rawURL. Non-2xx responses are pages, not
	// errors; transport failures are errors.
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
}

// Policy decides whether a URL may be crawled. It is satisfied by
// robots.Checker.
type Policy interface {
	// Allowed reports whether crawling rawURL is permitted.
	Allowed(ctx context.Context, rawURL string) bool
}

// Summarizer produces a summary and key points for a fetched page. It is
// satisfied by summarize.Summarizer.
type Summarizer interface {
	// Summarize returns a usable result even on failure; the error reports
	// what went wrong so the caller can record it.
	Summarize(ctx context.Context, page *model.Page) (*summarize.Result, error)
}

// Scraper crawls one website: it ranks candidate URLs, fetches the best
// ones concurrently, scores and summarizes each page, and discovers new
// URLs from the links it finds.
//
// Design decision: We call it "Scraper" rather than "Crawler" because:
//  1. It extracts and processes content, not just link graphs
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewScraper() vs crawler.NewCrawler()
type Scraper struct {
	// target is the site being scraped; link filtering is scoped to its
	// host.
	target model.Target

	// fetcher retrieves pages, typically with caching behind it.
	fetcher Fetcher

	// policy is consulted before every fetch. Nil allows every URL.
	policy Policy

	// summarizer produces summaries and key points. Nil skips
	// summarization entirely.
	summarizer Summarizer

	// urlScorer rates URLs before any fetch; drives prioritization.
	urlScorer *score.URLScorer

	// contentScorer rates fetched pages from their HTML.
	contentScorer *score.ContentScorer

	// maxDepth limits how many discovery waves run after the initial
	// crawl. 0 disables recursive discovery.
	maxDepth int

	// maxPages caps the total number of recorded results.
	maxPages int

	// delay is the politeness budget per request, divided across workers.
	delay time.Duration

	// crawlDelay is the robots.txt crawl-delay; it raises the launch
	// stagger when longer than the divided delay.
	crawlDelay time.Duration

	// concurrent is how many pages may be in flight at once.
	concurrent int

	// threshold is the minimum URL score a candidate needs to be crawled.
	// The comparison is inclusive: a score equal to the threshold passes.
	threshold float64

	// skipPatterns are extra user-supplied URL patterns to skip, on top
	// of the built-in table.
	skipPatterns []*regexp.Regexp

	// logger receives crawl progress and per-page failures.
	logger *slog.Logger

	// mu protects processed, results, pages, and pageOrder.
	mu sync.Mutex

	// processed tracks claimed URLs so no page is handled twice.
	processed map[string]bool

	// results accumulates one entry per processed page, failures included.
	results []*model.ScrapeResult

	// pages holds fetched page bodies by normalized URL for the insight
	// classifiers; pageOrder preserves completion order.
	pages     map[string]*model.Page
	pageOrder []string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithMaxDepth sets how many discovery waves may run after the initial
// crawl. 0 disables recursive discovery.
func WithMaxDepth(depth int) Option {
	return func(s *Scraper) {
		s.maxDepth = depth
	}
}

// WithMaxPages caps the total number of recorded results.
func WithMaxPages(n int) Option {
	return func(s *Scraper) {
		s.maxPages = n
	}
}

// WithDelay sets the politeness delay budget per request.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.delay = d
	}
}

// WithConcurrentRequests sets how many pages may be in flight at once.
func WithConcurrentRequests(n int) Option {
	return func(s *Scraper) {
		s.concurrent = n
	}
}

// WithContentThreshold sets the minimum URL score a candidate needs to be
// crawled. Scores equal to the threshold pass.
func WithContentThreshold(t float64) Option {
	return func(s *Scraper) {
		s.threshold = t
	}
}

// WithPolicy sets the robots.txt policy consulted before each fetch.
// Nil allows every URL.
func WithPolicy(p Policy) Option {
	return func(s *Scraper) {
		s.policy = p
	}
}

// WithSummarizer sets the page summarizer. Nil skips summarization.
func WithSummarizer(sum Summarizer) Option {
	return func(s *Scraper) {
		s.summarizer = sum
	}
}

// WithCrawlDelay sets the site's declared robots.txt crawl-delay. It
// raises the launch stagger when longer than the divided politeness delay.
func WithCrawlDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.crawlDelay = d
	}
}

// WithSkipPatterns adds extra URL patterns to skip, on top of the built-in
// table. Patterns are regular expressions matched against the lowercased
// full URL; invalid patterns are dropped.
func WithSkipPatterns(patterns []string) Option {
	return func(s *Scraper) {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			s.skipPatterns = append(s.skipPatterns, re)
		}
	}
}

// WithLogger sets the logger for crawl diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// NewScraper creates a Scraper for the given target.
//
// Design decision: The fetcher, policy, and summarizer are injected rather
// than constructed here because:
//  1. The fetcher carries the HTTP client, cache, and site profile wiring
//  2. robots.txt checking and summarization are optional; nil disables them
//  3. Tests substitute fakes without a network or an API key
func NewScraper(target model.Target, fetcher Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		target:        target,
		fetcher:       fetcher,
		urlScorer:     score.NewURLScorer(),
		contentScorer: score.NewContentScorer(),
		maxDepth:      config.DefaultMaxDepth,
		maxPages:      config.DefaultMaxPages,
		delay:         config.DefaultDelay,
		concurrent:    config.DefaultConcurrentRequests,
		threshold:     config.DefaultContentThreshold,
		logger:        slog.Default(),
		processed:     make(map[string]bool),
		pages:         make(map[string]*model.Page),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.maxPages < 1 {
		s.maxPages = 1
	}
	if s.concurrent < 1 {
		s.concurrent = 1
	}

	return s
}

// Prioritize ranks candidate pages by URL heuristics and keeps the ones
// worth fetching: entries are scored, sorted by score descending, filtered
// against the content threshold, and cut to the page budget.
//
// The incoming entries keep their sitemap metadata; only ContentScore is
// overwritten with the URL heuristic score. The sort is stable, so equally
// scored URLs keep their sitemap order and the crawl order is reproducible.
func (s *Scraper) Prioritize(entries []model.PageInfo) []model.PageInfo {
	scored := make([]model.PageInfo, len(entries))
	copy(scored, entries)
	for i := range scored {
		scored[i].ContentScore = s.urlScorer.Score(scored[i].URL)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ContentScore > scored[j].ContentScore
	})

	selected := make([]model.PageInfo, 0, len(scored))
	for _, entry := range scored {
		if entry.ContentScore >= s.threshold {
			selected = append(selected, entry)
		}
	}
	if len(selected) > s.maxPages {
		selected = selected[:s.maxPages]
	}

	s.logger.Info("prioritized candidate URLs",
		"candidates", len(entries),
		"selected", len(selected),
		"threshold", s.threshold,
	)
	return selected
}

// Crawl fetches and processes the given entries concurrently. At most
// `concurrent` pages are in flight at once, and launches are staggered so
// the aggregate request rate stays near one per delay window.
//
// Per-page failures are recorded as results and never returned here; the
// only error Crawl reports is context cancellation.
func (s *Scraper) Crawl(ctx context.Context, entries []model.PageInfo) error {
	if len(entries) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrent)

	stagger := s.stagger()

launch:
	for _, entry := range entries {
		// Stop launching once the budget is reached. Workers still in
		// flight were launched under budget; appendResult caps whatever
		// they record.
		if s.resultCount() >= s.maxPages {
			break
		}
		if s.isProcessed(entry.URL) {
			continue
		}

		select {
		case <-gctx.Done():
			break launch
		default:
		}

		g.Go(func() error {
			s.processPage(gctx, entry)
			return nil
		})

		if stagger > 0 {
			select {
			case <-gctx.Done():
				break launch
			case <-time.After(stagger):
			}
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Discover runs recursive link discovery: outbound links collected from
// processed pages are scored, filtered, and crawled in waves until the
// page budget fills, a wave yields nothing new, or the depth limit is
// reached.
func (s *Scraper) Discover(ctx context.Context) error {
	for depth := 1; depth <= s.maxDepth; depth++ {
		room := s.maxPages - s.resultCount()
		if room <= 0 {
			return nil
		}

		wave := s.discoverWave(depth, room)
		if len(wave) == 0 {
			return nil
		}

		s.logger.Info("discovery wave", "depth", depth, "urls", len(wave))

		if err := s.Crawl(ctx, wave); err != nil {
			return err
		}
	}
	return nil
}

// Run crawls the prioritized entries, then keeps discovering until the
// page budget fills.
func (s *Scraper) Run(ctx context.Context, entries []model.PageInfo) error {
	if err := s.Crawl(ctx, entries); err != nil {
		return err
	}
	return s.Discover(ctx)
}

// discoverWave collects unprocessed outbound links from the results so far
// and selects the next wave. Candidates are gathered in first-seen order,
// cut to the remaining page budget before scoring, filtered against the
// threshold, and sorted by score descending.
func (s *Scraper) discoverWave(depth, room int) []model.PageInfo {
	s.mu.Lock()
	seen := make(map[string]bool)
	var candidates []string
	for _, res := range s.results {
		for _, link := range res.OutboundLinks {
			key := normalizeURL(link)
			if seen[key] || s.processed[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, link)
		}
	}
	s.mu.Unlock()

	if len(candidates) > room {
		candidates = candidates[:room]
	}

	wave := make([]model.PageInfo, 0, len(candidates))
	for _, link := range candidates {
		urlScore := s.urlScorer.Score(link)
		if urlScore < s.threshold {
			continue
		}
		wave = append(wave, model.PageInfo{
			URL:          link,
			ContentScore: urlScore,
			Depth:        depth,
			Source:       model.SourceRecursive,
			Priority:     0.5,
		})
	}

	sort.SliceStable(wave, func(i, j int) bool {
		return wave[i].ContentScore > wave[j].ContentScore
	})

	return wave
}

// processPage fetches, scores, and summarizes one page. It never returns
// an error: failures become results with the Error field set.
func (s *Scraper) processPage(ctx context.Context, entry model.PageInfo) {
	// Claim the URL before doing any work so concurrent workers and later
	// waves cannot process it twice.
	if !s.markProcessed(entry.URL) {
		return
	}

	if s.policy != nil && !s.policy.Allowed(ctx, entry.URL) {
		s.logger.Info("blocked by robots.txt", "url", entry.URL)
		return
	}

	start := time.Now()

	page, err := s.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		s.recordFailure(entry, fmt.Sprintf("fetch failed: %v", err), time.Since(start))
		return
	}
	if page.StatusCode != http.StatusOK {
		s.recordFailure(entry, fmt.Sprintf("HTTP %d", page.StatusCode), time.Since(start))
		return
	}

	if !page.IsHTML() {
		// Non-HTML content (images, feeds) is kept for the insight
		// classifiers but never scored or summarized.
		entry.ContentScore = 0
		result := &model.ScrapeResult{
			Page:           &entry,
			ProcessingTime: time.Since(start),
			Timestamp:      time.Now(),
		}
		if s.appendResult(result) {
			s.storePage(page)
		}
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Raw))
	if err != nil {
		s.recordFailure(entry, fmt.Sprintf("parse failed: %v", err), time.Since(start))
		return
	}

	contentScore, wordCount := s.contentScorer.Score(doc)
	entry.ContentScore = contentScore
	entry.WordCount = wordCount

	var outbound []string
	if parser, err := NewParser(page.URL); err == nil {
		parsed := parser.Parse(doc)
		entry.Title = parsed.Title
		page.Title = parsed.Title
		page.Anchors = parsed.Anchors
		page.Images = parsed.Images
		page.Scripts = parsed.Scripts
		outbound = s.outboundLinks(parsed)
	}

	result := &model.ScrapeResult{
		Page:          &entry,
		OutboundLinks: outbound,
		Timestamp:     time.Now(),
	}

	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, page)
		if err != nil {
			result.Error = fmt.Sprintf("summarization failed: %v", err)
			s.logger.Warn("summarization failed", "url", entry.URL, "error", err)
		}
		if summary != nil {
			result.Summary = summary.Summary
			result.KeyPoints = summary.KeyPoints
		}
	}

	result.ProcessingTime = time.Since(start)

	if s.appendResult(result) {
		s.storePage(page)
	}

	s.logger.Debug("processed page",
		"url", entry.URL,
		"score", contentScore,
		"words", wordCount,
		"links", len(outbound),
		"elapsed", result.ProcessingTime.Round(time.Millisecond),
	)
}

// recordFailure records a failed page as a result with the Error field set.
func (s *Scraper) recordFailure(entry model.PageInfo, msg string, elapsed time.Duration) {
	s.appendResult(&model.ScrapeResult{
		Page:           &entry,
		Error:          msg,
		ProcessingTime: elapsed,
		Timestamp:      time.Now(),
	})
	s.logger.Warn("page processing failed", "url", entry.URL, "error", msg)
}

// appendResult records a result, enforcing the page budget. The budget
// check and the append happen under one lock so concurrent workers cannot
// push the result count past maxPages.
func (s *Scraper) appendResult(res *model.ScrapeResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) >= s.maxPages {
		return false
	}
	s.results = append(s.results, res)
	return true
}

// storePage keeps a fetched page body for the insight classifiers.
func (s *Scraper) storePage(page *model.Page) {
	key := normalizeURL(page.URL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[key]; ok {
		return
	}
	s.pages[key] = page
	s.pageOrder = append(s.pageOrder, key)
}

// markProcessed claims a URL for processing. It returns false when the URL
// was already claimed, guaranteeing at-most-once processing across workers
// and waves.
func (s *Scraper) markProcessed(rawURL string) bool {
	key := normalizeURL(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed[key] {
		return false
	}
	s.processed[key] = true
	return true
}

// isProcessed reports whether a URL has already been claimed.
func (s *Scraper) isProcessed(rawURL string) bool {
	key := normalizeURL(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed[key]
}

// resultCount returns the number of results recorded so far.
func (s *Scraper) resultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// stagger returns the pause between request launches: the politeness delay
// divided across workers, raised to the robots.txt crawl-delay when the
// site declares a longer one.
func (s *Scraper) stagger() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.delay / time.Duration(s.concurrent)
	if s.crawlDelay > d {
		d = s.crawlDelay
	}
	return d
}

// SetCrawlDelay applies a robots.txt crawl-delay discovered after
// construction. It only takes effect for launches after the next call
// to Crawl.
func (s *Scraper) SetCrawlDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crawlDelay = d
}

// Results returns the results recorded so far, in completion order.
func (s *Scraper) Results() []*model.ScrapeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ScrapeResult, len(s.results))
	copy(out, s.results)
	return out
}

// Pages returns the successfully fetched pages, in completion order.
func (s *Scraper) Pages() []*model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Page, 0, len(s.pageOrder))
	for _, key := range s.pageOrder {
		out = append(out, s.pages[key])
	}
	return out
}

// Stats contains crawl statistics.
type Stats struct {
	// PagesProcessed is the number of results recorded, failures included.
	PagesProcessed int

	// URLsSeen is the number of unique URLs claimed for processing.
	URLsSeen int
}

// Stats returns current crawl statistics.
func (s *Scraper) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		PagesProcessed: len(s.results),
		URLsSeen:       len(s.processed),
	}
}

// Reset clears crawl state so the scraper can be reused for another run.
func (s *Scraper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = make(map[string]bool)
	s.results = nil
	s.pages = make(map[string]*model.Page)
	s.pageOrder = nil
}

// normalizeURL produces the deduplication key for a URL: the fragment is
// dropped, scheme and host are lowercased, and an empty path becomes "/"
// so "http://example.com" and "http://example.com/" collapse to one key.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
