package pipeline

import (
	"context"
	"log/slog"

	"github.com/sitegist/sitegist/internal/crawler"
	"github.com/sitegist/sitegist/internal/insights"
	"github.com/sitegist/sitegist/internal/model"
	"github.com/sitegist/sitegist/internal/robots"
	"github.com/sitegist/sitegist/internal/sitemap"
)

// RobotsStep checks robots.txt before any page is fetched.
// It verifies that the site's base URL may be crawled and applies the
// declared crawl-delay to the scraper.
//
// Design decision: The robots check is a separate step because:
// 1. It must run before sitemap discovery and crawling
// 2. Its result (crawl-delay) configures later steps
// 3. It can be dropped from the pipeline when robots.txt is ignored
type RobotsStep struct {
	// checker fetches and caches robots.txt per host.
	checker *robots.Checker

	// scraper receives the crawl-delay declared by the site.
	scraper *crawler.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// RobotsStepOption configures a RobotsStep.
type RobotsStepOption func(*RobotsStep)

// WithRobotsLogger sets a custom logger for the robots step.
func WithRobotsLogger(logger *slog.Logger) RobotsStepOption {
	return func(s *RobotsStep) {
		s.logger = logger
	}
}

// NewRobotsStep creates a new robots.txt check step.
// The scraper may be nil when no crawl-delay handoff is wanted.
func NewRobotsStep(checker *robots.Checker, scraper *crawler.Scraper, opts ...RobotsStepOption) *RobotsStep {
	s := &RobotsStep{
		checker: checker,
		scraper: scraper,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RobotsStep) Name() string {
	return "robots"
}

// Do executes the robots.txt check step.
// A disallowed base URL is not fatal: the scraper's policy blocks the
// individual pages, and the run still reports what happened.
func (s *RobotsStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	if !s.checker.Allowed(ctx, report.Target) {
		s.logger.Warn("base URL disallowed by robots.txt", "target", report.Target)
	}

	if s.scraper != nil {
		if d := s.checker.CrawlDelay(ctx, report.Target); d > 0 {
			s.logger.Info("applying robots.txt crawl-delay",
				"target", report.Target,
				"delay", d,
			)
			s.scraper.SetCrawlDelay(d)
		}
	}

	report.RobotsChecked = true
	return nil
}

// SitemapStep discovers candidate URLs from the site's sitemaps.
// It probes the well-known sitemap locations plus any sitemaps declared
// in robots.txt, and stores the collected entries as crawl candidates.
//
// Design decision: Sitemap discovery is separate from crawling because:
// 1. It produces the candidate queue the later steps consume
// 2. Its fallback behavior (homepage only) is its own concern
// 3. The report records which sitemaps actually fed the crawl
type SitemapStep struct {
	// fetcher retrieves and parses sitemap documents.
	fetcher *sitemap.Fetcher

	// target is the site being scraped.
	target model.Target

	// checker supplies sitemap locations declared in robots.txt.
	// Nil means only the well-known paths are probed.
	checker *robots.Checker

	// logger for structured logging.
	logger *slog.Logger
}

// SitemapStepOption configures a SitemapStep.
type SitemapStepOption func(*SitemapStep)

// WithSitemapRobots sets the robots checker used to pick up sitemap
// locations declared in robots.txt.
func WithSitemapRobots(checker *robots.Checker) SitemapStepOption {
	return func(s *SitemapStep) {
		s.checker = checker
	}
}

// WithSitemapLogger sets a custom logger for the sitemap step.
func WithSitemapLogger(logger *slog.Logger) SitemapStepOption {
	return func(s *SitemapStep) {
		s.logger = logger
	}
}

// NewSitemapStep creates a new sitemap discovery step.
func NewSitemapStep(fetcher *sitemap.Fetcher, target model.Target, opts ...SitemapStepOption) *SitemapStep {
	s := &SitemapStep{
		fetcher: fetcher,
		target:  target,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SitemapStep) Name() string {
	return "sitemap"
}

// Do executes the sitemap discovery step.
func (s *SitemapStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	var extra []string
	if s.checker != nil {
		extra = s.checker.Sitemaps(ctx, report.Target)
	}

	entries, sources := s.fetcher.DiscoverSources(ctx, s.target, extra...)

	report.SitemapURLs = sources
	report.UsedFallback = len(sources) == 0
	report.Candidates = make([]*model.PageInfo, len(entries))
	for i := range entries {
		report.Candidates[i] = &entries[i]
	}

	s.logger.Info("sitemap discovery completed",
		"target", report.Target,
		"candidates", len(entries),
		"sitemaps", len(sources),
		"fallback", report.UsedFallback,
	)

	return nil
}

// PrioritizeStep ranks the candidate queue by URL heuristics.
// Candidates below the content threshold are dropped; the rest are
// reordered so the most promising pages are crawled first.
type PrioritizeStep struct {
	// scraper supplies the URL scorer and threshold.
	scraper *crawler.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// PrioritizeStepOption configures a PrioritizeStep.
type PrioritizeStepOption func(*PrioritizeStep)

// WithPrioritizeLogger sets a custom logger for the prioritize step.
func WithPrioritizeLogger(logger *slog.Logger) PrioritizeStepOption {
	return func(s *PrioritizeStep) {
		s.logger = logger
	}
}

// NewPrioritizeStep creates a new candidate prioritization step.
func NewPrioritizeStep(scraper *crawler.Scraper, opts ...PrioritizeStepOption) *PrioritizeStep {
	s := &PrioritizeStep{
		scraper: scraper,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PrioritizeStep) Name() string {
	return "prioritize"
}

// Do executes the prioritization step.
func (s *PrioritizeStep) Do(_ context.Context, report *model.ScrapeReport) error {
	if len(report.Candidates) == 0 {
		s.logger.Debug("skipping prioritization, no candidates")
		return nil
	}

	entries := make([]model.PageInfo, len(report.Candidates))
	for i, c := range report.Candidates {
		entries[i] = *c
	}

	ranked := s.scraper.Prioritize(entries)

	report.Candidates = make([]*model.PageInfo, len(ranked))
	for i := range ranked {
		report.Candidates[i] = &ranked[i]
	}

	s.logger.Info("candidates prioritized",
		"target", report.Target,
		"kept", len(ranked),
		"dropped", len(entries)-len(ranked),
	)

	return nil
}

// CrawlStep fetches the prioritized candidates concurrently.
// Per-page failures are recorded inside the scraper as failed results;
// the step itself only fails on context cancellation.
type CrawlStep struct {
	// scraper performs the fetching, scoring, and summarization.
	scraper *crawler.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step.
func NewCrawlStep(scraper *crawler.Scraper, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		scraper: scraper,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	if len(report.Candidates) == 0 {
		s.logger.Debug("skipping crawl, no candidates")
		return nil
	}

	entries := make([]model.PageInfo, len(report.Candidates))
	for i, c := range report.Candidates {
		entries[i] = *c
	}

	return s.scraper.Crawl(ctx, entries)
}

// DiscoverStep runs recursive link discovery and syncs the scraper's
// accumulated results into the report.
//
// Design decision: Discovery is separate from the initial crawl because:
// 1. It only runs when the page budget has room left
// 2. A depth limit of zero turns it into a pure sync step
// 3. It marks the point where the report becomes complete
type DiscoverStep struct {
	// scraper performs the discovery waves.
	scraper *crawler.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// DiscoverStepOption configures a DiscoverStep.
type DiscoverStepOption func(*DiscoverStep)

// WithDiscoverLogger sets a custom logger for the discover step.
func WithDiscoverLogger(logger *slog.Logger) DiscoverStepOption {
	return func(s *DiscoverStep) {
		s.logger = logger
	}
}

// NewDiscoverStep creates a new recursive discovery step.
func NewDiscoverStep(scraper *crawler.Scraper, opts ...DiscoverStepOption) *DiscoverStep {
	s := &DiscoverStep{
		scraper: scraper,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do executes the discovery step. The scraper's results and pages are
// copied into the report even when discovery is cut short, so partial
// runs still produce a usable report.
func (s *DiscoverStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	err := s.scraper.Discover(ctx)

	for _, res := range s.scraper.Results() {
		report.AddResult(res)
	}
	for _, page := range s.scraper.Pages() {
		report.AddPage(page)
	}

	stats := s.scraper.Stats()
	s.logger.Info("crawl completed",
		"target", report.Target,
		"pages_processed", stats.PagesProcessed,
		"urls_seen", stats.URLsSeen,
		"successful", report.SuccessfulCount(),
		"failed", report.FailedCount(),
	)

	return err
}

// InsightsStep runs the insight classifiers over the fetched pages.
// This step analyzes pages for contact details, social profiles,
// technology fingerprints, and other business signals.
//
// Design decision: Insight classification is a separate step because:
// 1. It operates on accumulated data from previous steps
// 2. It has its own configuration (which classifiers to run)
// 3. It can be dropped from the pipeline entirely (--no-insights)
type InsightsStep struct {
	// engine is the classifier coordinator.
	engine *insights.Engine

	// logger for structured logging.
	logger *slog.Logger
}

// InsightsStepOption configures an InsightsStep.
type InsightsStepOption func(*InsightsStep)

// WithInsightsLogger sets a custom logger for the insights step.
func WithInsightsLogger(logger *slog.Logger) InsightsStepOption {
	return func(s *InsightsStep) {
		s.logger = logger
	}
}

// NewInsightsStep creates a new insight classification step.
func NewInsightsStep(engine *insights.Engine, opts ...InsightsStepOption) *InsightsStep {
	s := &InsightsStep{
		engine: engine,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *InsightsStep) Name() string {
	return "insights"
}

// Do executes the insight classification step.
func (s *InsightsStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	pages := report.Pages()
	if len(pages) == 0 {
		s.logger.Debug("skipping insights, no pages fetched")
		return nil
	}

	src := &insights.Source{
		Host:   report.Host,
		Pages:  pages,
		Report: report,
	}

	found, err := s.engine.Run(ctx, src)
	for _, in := range found {
		report.AddInsight(in)
	}
	if err != nil {
		// Partial insights are already recorded; the only error Run
		// returns is context cancellation.
		return err
	}

	s.logger.Info("insight classification completed",
		"target", report.Target,
		"insights", len(report.Insights),
	)

	return nil
}

// Components bundles the per-target pieces the default pipeline wires
// together. Robots and Insights are optional; a nil field drops the
// corresponding step.
type Components struct {
	// Scraper performs prioritization, crawling, and discovery.
	Scraper *crawler.Scraper

	// Robots checks robots.txt and supplies sitemap hints. Optional.
	Robots *robots.Checker

	// Sitemaps discovers candidate URLs.
	Sitemaps *sitemap.Fetcher

	// Insights classifies fetched pages. Optional.
	Insights *insights.Engine
}

// DefaultPipeline creates a pipeline with the standard steps for a full
// website scrape, in order: robots, sitemap, prioritize, crawl,
// discover, insights.
//
// Design decision: We provide a default pipeline because:
// 1. Most runs want all phases
// 2. Reduces boilerplate in the CLI
// 3. Ensures consistent ordering
func DefaultPipeline(target model.Target, c Components, opts ...Option) *Pipeline {
	p := New(opts...)

	if c.Robots != nil {
		p.AddStep(NewRobotsStep(c.Robots, c.Scraper))
	}

	sitemapOpts := []SitemapStepOption{}
	if c.Robots != nil {
		sitemapOpts = append(sitemapOpts, WithSitemapRobots(c.Robots))
	}
	p.AddSteps(
		NewSitemapStep(c.Sitemaps, target, sitemapOpts...),
		NewPrioritizeStep(c.Scraper),
		NewCrawlStep(c.Scraper),
		NewDiscoverStep(c.Scraper),
	)

	if c.Insights != nil {
		p.AddStep(NewInsightsStep(c.Insights))
	}

	return p
}
