package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sitegist/sitegist/internal/cache"
	"github.com/sitegist/sitegist/internal/config"
	"github.com/sitegist/sitegist/internal/crawler"
	"github.com/sitegist/sitegist/internal/fetch"
	"github.com/sitegist/sitegist/internal/insights"
	"github.com/sitegist/sitegist/internal/log"
	"github.com/sitegist/sitegist/internal/model"
	"github.com/sitegist/sitegist/internal/pipeline"
	"github.com/sitegist/sitegist/internal/report"
	"github.com/sitegist/sitegist/internal/robots"
	"github.com/sitegist/sitegist/internal/sitemap"
	"github.com/sitegist/sitegist/internal/summarize"
	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape a website and analyze its content",
		Long: `Scrape discovers, fetches, and analyzes the pages of a website.

It reads robots.txt and sitemaps to find candidate pages, prioritizes
the ones most likely to carry real content, scrapes them politely, and
produces:
- AI summaries and key points for each page (requires LLAMA_API_KEY)
- Content quality scores
- Business insights (contact channels, tech stack, analytics, partners)

Results are written to a JSON file; a human-readable report is printed
to the console.

Examples:
  # Scrape a single website
  sitegist scrape https://example.com

  # Scrape multiple websites from a list file (one URL per line)
  sitegist scrape --list targets.txt

  # Limit the scrape and skip AI summarization
  sitegist scrape --max-pages 50 --skip-summaries https://example.com

  # Write a Markdown report alongside the JSON results
  sitegist scrape --markdown report.md https://example.com

  # Preview what would be scraped without fetching page content
  sitegist scrape --dry-run https://example.com

Configuration file (.sitegist.yaml) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    docs.example.org:
      delay: 3.0`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "m", config.DefaultMaxPages,
		"Maximum number of pages to scrape per site")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum recursion depth for link discovery")
	cmd.Flags().DurationP("delay", "w", config.DefaultDelay,
		"Delay between request launches within a batch")
	cmd.Flags().IntP("concurrent", "c", config.DefaultConcurrentRequests,
		"Number of pages fetched in parallel")
	cmd.Flags().Float64P("content-threshold", "t", config.DefaultContentThreshold,
		"Minimum URL score for a page to be scraped (0-1)")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Cache flags
	cmd.Flags().Duration("cache-duration", config.DefaultCacheDuration,
		"How long cached pages remain valid (0 disables the cache)")

	// Summarization flags
	cmd.Flags().String("model", config.DefaultModel,
		"LLM model identifier for summarization")
	cmd.Flags().Bool("skip-summaries", false,
		"Skip AI summarization even when an API key is set")

	// Analysis flags
	cmd.Flags().Bool("no-insights", false,
		"Disable the deterministic insight classifiers")

	// Batch scraping flags
	cmd.Flags().StringP("list", "l", "",
		"File with one target URL per line (batch mode)")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .sitegist.yaml in current, config, or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Output file path for JSON results (default: <host>_scraping_results.json)")
	cmd.Flags().String("markdown", "",
		"Write a Markdown report to the specified file path")

	// Preview flag
	cmd.Flags().Bool("dry-run", false,
		"Show the configuration and prioritized URL list without scraping")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with secret redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.LogLevel())
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScrape(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.ConcurrentRequests, err = cmd.Flags().GetInt("concurrent")
	if err != nil {
		return nil, err
	}

	cfg.ContentThreshold, err = cmd.Flags().GetFloat64("content-threshold")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.CacheDuration, err = cmd.Flags().GetDuration("cache-duration")
	if err != nil {
		return nil, err
	}

	cfg.Model, err = cmd.Flags().GetString("model")
	if err != nil {
		return nil, err
	}

	cfg.SkipSummaries, err = cmd.Flags().GetBool("skip-summaries")
	if err != nil {
		return nil, err
	}

	cfg.NoInsights, err = cmd.Flags().GetBool("no-insights")
	if err != nil {
		return nil, err
	}

	cfg.ListFile, err = cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownPath, err = cmd.Flags().GetString("markdown")
	if err != nil {
		return nil, err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.Quiet = getBoolFlag(cmd, "quiet")

	// Load site-specific profiles from the config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteProfiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteProfiles = &config.File{
			Sites: make(map[string]config.SiteProfile),
		}
	}

	// Load the API key from the environment, with .env as a fallback.
	// The key never comes from a flag so it stays out of shell history.
	_ = godotenv.Load() //nolint:errcheck // Missing .env is the common case
	cfg.APIKey = os.Getenv(config.APIKeyEnv)

	// Collect targets from positional arguments and the list file
	cfg.Targets = args
	if cfg.ListFile != "" {
		listed, err := config.ReadTargetList(cfg.ListFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read target list %s: %w", cfg.ListFile, err)
		}
		cfg.Targets = append(cfg.Targets, listed...)
	}

	return cfg, nil
}

// getBoolFlag retrieves a boolean flag from the command or its parent.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// runScrape executes the scrape.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Validate and normalize all target URLs up front
	targets := make([]model.Target, 0, len(cfg.Targets))
	for _, raw := range cfg.Targets {
		target, err := model.NewTarget(raw)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", raw, err)
		}
		targets = append(targets, target)
	}

	logger.Info("starting scrape",
		"targets", len(targets),
		"maxPages", cfg.MaxPages,
		"maxDepth", cfg.MaxDepth,
		"summaries", cfg.APIKey != "" && !cfg.SkipSummaries,
	)

	// Open the page cache unless disabled
	var pageCache *cache.DB
	if cfg.CacheDuration > 0 {
		var err error
		pageCache, err = cache.Open(config.XDGCacheDir(), cfg.CacheDuration, cache.DefaultOptions())
		if err != nil {
			// A broken cache should not prevent scraping
			logger.Warn("page cache unavailable, fetching without cache", "error", err)
		} else {
			defer pageCache.Close()
			logger.Debug("page cache opened", "path", pageCache.Path())
		}
	}

	// Set up the summarizer when an API key is available
	var summarizer crawler.Summarizer
	if cfg.APIKey != "" && !cfg.SkipSummaries {
		client, err := summarize.NewLlamaClient(cfg.APIKey,
			summarize.WithModel(cfg.Model),
			summarize.WithEndpoint(cfg.APIBaseURL),
			summarize.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		summarizer = summarize.NewSummarizer(client, logger)
	} else if !cfg.SkipSummaries {
		fmt.Fprintf(os.Stderr, "Note: %s is not set; pages will be scraped without AI summaries.\n\n", config.APIKeyEnv)
	}

	runner := &scrapeRunner{
		cfg:        cfg,
		logger:     logger,
		pageCache:  pageCache,
		summarizer: summarizer,
	}

	if cfg.DryRun {
		return runner.dryRun(ctx, targets)
	}

	// Use the batch processor for parallel scraping of multiple targets
	if len(targets) > 1 {
		return runner.runBatch(ctx, targets)
	}

	return runner.runSequential(ctx, targets)
}

// scrapeRunner holds the shared dependencies for a scrape run.
// Per-target components (HTTP client, scraper, pipeline) are built
// fresh for each target because scrapers carry per-site state.
type scrapeRunner struct {
	cfg        *config.Config
	logger     *slog.Logger
	pageCache  *cache.DB
	summarizer crawler.Summarizer

	// out receives user-facing output; nil means os.Stdout.
	out io.Writer
}

// stdout returns the destination for user-facing output.
func (r *scrapeRunner) stdout() io.Writer {
	if r.out != nil {
		return r.out
	}
	return os.Stdout
}

// components builds the pipeline components for a single target,
// applying the site profile for the target's host.
func (r *scrapeRunner) components(target model.Target) pipeline.Components {
	profile := r.cfg.SiteProfiles.GetProfile(target.Host())

	var httpClient *http.Client
	if profile.IsZero() {
		httpClient = fetch.NewHTTPClient(r.cfg.Timeout)
	} else {
		httpClient = fetch.NewHTTPClientWithProfile(r.cfg.Timeout, profile)
	}

	userAgent := r.cfg.UserAgent
	if profile.UserAgent != "" {
		userAgent = profile.UserAgent
	}

	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(userAgent),
		fetch.WithMaxBodySize(r.cfg.MaxBodySize),
		fetch.WithLogger(r.logger),
	}
	if r.pageCache != nil {
		fetchOpts = append(fetchOpts, fetch.WithCache(r.pageCache))
	}
	fetcher := fetch.NewFetcher(httpClient, fetchOpts...)

	checker := robots.NewChecker(httpClient,
		robots.WithUserAgent(userAgent),
		robots.WithLogger(r.logger),
	)

	sitemaps := sitemap.NewFetcher(httpClient,
		sitemap.WithUserAgent(userAgent),
		sitemap.WithLogger(r.logger),
	)

	delay := r.cfg.Delay
	if profile.Delay > 0 {
		delay = time.Duration(profile.Delay * float64(time.Second))
	}

	scraperOpts := []crawler.Option{
		crawler.WithMaxDepth(r.cfg.MaxDepth),
		crawler.WithMaxPages(r.cfg.MaxPages),
		crawler.WithDelay(delay),
		crawler.WithConcurrentRequests(r.cfg.ConcurrentRequests),
		crawler.WithContentThreshold(r.cfg.ContentThreshold),
		crawler.WithPolicy(checker),
		crawler.WithLogger(r.logger),
	}
	if r.summarizer != nil {
		scraperOpts = append(scraperOpts, crawler.WithSummarizer(r.summarizer))
	}
	if len(profile.SkipPatterns) > 0 {
		scraperOpts = append(scraperOpts, crawler.WithSkipPatterns(profile.SkipPatterns))
	}
	scraper := crawler.NewScraper(target, fetcher, scraperOpts...)

	c := pipeline.Components{
		Scraper:  scraper,
		Robots:   checker,
		Sitemaps: sitemaps,
	}
	if !r.cfg.NoInsights {
		engine := insights.NewEngine(r.logger)
		// The media classifier fetches images itself and needs the same
		// profile-aware client the rest of the scrape uses.
		engine.SetHTTPClient(httpClient)
		c.Insights = engine
	}

	return c
}

// newPipeline builds the full pipeline and a fresh report for a target.
func (r *scrapeRunner) newPipeline(target model.Target) (*pipeline.Pipeline, *model.ScrapeReport) {
	p := pipeline.DefaultPipeline(target, r.components(target),
		pipeline.WithLogger(r.logger),
		pipeline.WithContinueOnError(true),
	)
	return p, model.NewScrapeReport(target, r.cfg.Snapshot())
}

// runSequential scrapes targets one at a time.
func (r *scrapeRunner) runSequential(ctx context.Context, targets []model.Target) error {
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, scrapeReport := r.newPipeline(target)

		fmt.Printf("Scraping %s...\n", target)
		startTime := time.Now()

		err := p.Execute(ctx, scrapeReport)
		scrapeReport.Finish(err)
		if err != nil {
			r.logger.Error("scrape failed", "target", target.String(), "error", err)
			fmt.Fprintf(os.Stderr, "Scrape error for %s: %v\n", target, err)
			if errors.Is(err, context.Canceled) {
				return err
			}
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scrape completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := r.outputReport(scrapeReport); err != nil {
			r.logger.Error("report failed", "target", target.String(), "error", err)
		}
	}

	return nil
}

// runBatch scrapes multiple targets concurrently using BatchProcessor.
func (r *scrapeRunner) runBatch(ctx context.Context, targets []model.Target) error {
	fmt.Printf("Starting batch scrape of %d targets...\n\n", len(targets))

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(r.newPipeline,
		pipeline.WithBatchLogger(r.logger),
	)

	// Process with a callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, targets, func(scrapeReport *model.ScrapeReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scrape completed: %s\n", index+1, len(targets), scrapeReport.Target)

		if err := r.outputReport(scrapeReport); err != nil {
			r.logger.Error("report failed", "target", scrapeReport.Target, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scrape completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// dryRun previews the scrape without fetching page content.
// It runs only the discovery phases (robots, sitemap, prioritize) and
// prints the prioritized URL list that a real run would scrape.
func (r *scrapeRunner) dryRun(ctx context.Context, targets []model.Target) error {
	out := r.stdout()
	fmt.Fprintln(out, "Dry run: no page content will be fetched.")
	fmt.Fprintf(out, "  max pages:     %d\n", r.cfg.MaxPages)
	fmt.Fprintf(out, "  max depth:     %d\n", r.cfg.MaxDepth)
	fmt.Fprintf(out, "  concurrency:   %d\n", r.cfg.ConcurrentRequests)
	fmt.Fprintf(out, "  threshold:     %.2f\n", r.cfg.ContentThreshold)
	fmt.Fprintln(out)

	for _, target := range targets {
		c := r.components(target)

		p := pipeline.New(
			pipeline.WithLogger(r.logger),
			pipeline.WithContinueOnError(true),
		)
		p.AddSteps(
			pipeline.NewRobotsStep(c.Robots, c.Scraper),
			pipeline.NewSitemapStep(c.Sitemaps, target, pipeline.WithSitemapRobots(c.Robots)),
			pipeline.NewPrioritizeStep(c.Scraper),
		)

		scrapeReport := model.NewScrapeReport(target, r.cfg.Snapshot())
		if err := p.Execute(ctx, scrapeReport); err != nil {
			return fmt.Errorf("discovery failed for %s: %w", target, err)
		}

		fmt.Fprintf(out, "%s: %d pages would be scraped\n", target, len(scrapeReport.Candidates))
		for i, entry := range scrapeReport.Candidates {
			fmt.Fprintf(out, "  %2d. [%.2f] %s\n", i+1, entry.ContentScore, entry.URL)
		}
		fmt.Fprintln(out)
	}

	return nil
}

// outputReport writes the JSON results file, the optional Markdown
// report, and the console summary.
func (r *scrapeRunner) outputReport(scrapeReport *model.ScrapeReport) error {
	jsonPath := r.outputPath(scrapeReport)
	jsonWriter := func(f *os.File) report.Writer {
		return report.NewFullJSONWriter(f, getVersion(), report.WithPrettyPrint())
	}
	if err := writeReportFile(jsonPath, jsonWriter, scrapeReport); err != nil {
		return err
	}
	fmt.Printf("Results written to %s\n", jsonPath)

	if r.cfg.MarkdownPath != "" {
		mdWriter := func(f *os.File) report.Writer { return report.NewMarkdownWriter(f) }
		if err := writeReportFile(r.cfg.MarkdownPath, mdWriter, scrapeReport); err != nil {
			return err
		}
		fmt.Printf("Markdown report written to %s\n", r.cfg.MarkdownPath)
	}

	// Human-readable summary to the console, unless quiet
	if r.cfg.Quiet {
		return nil
	}
	console := report.NewSimpleWriter(os.Stdout, report.WithVerbose(r.cfg.Verbose))
	_, err := console.Write(scrapeReport)
	return err
}

// outputPath returns the JSON results path for a report. An explicit
// --output path wins; otherwise the name is derived from the target
// host so batch runs don't overwrite each other.
func (r *scrapeRunner) outputPath(scrapeReport *model.ScrapeReport) string {
	if r.cfg.OutputPath != "" && len(r.cfg.Targets) == 1 {
		return r.cfg.OutputPath
	}
	target, err := model.NewTarget(scrapeReport.Target)
	if err != nil {
		return "scraping_results.json"
	}
	return target.Slug() + "_scraping_results.json"
}

// writeReportFile writes a report to path, creating parent directories
// as needed. Files are created with 0600 because scraped content may
// include pages fetched with authentication cookies.
func writeReportFile(path string, newWriter func(f *os.File) report.Writer, scrapeReport *model.ScrapeReport) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := newWriter(f).Write(scrapeReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
