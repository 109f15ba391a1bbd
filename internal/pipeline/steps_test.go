package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sitegist/sitegist/internal/crawler"
	"github.com/sitegist/sitegist/internal/insights"
	"github.com/sitegist/sitegist/internal/model"
	"github.com/sitegist/sitegist/internal/robots"
	"github.com/sitegist/sitegist/internal/sitemap"
)

// stubFetcher serves pages from memory so crawl steps run without a
// network. URLs not in the map come back as 404s.
type stubFetcher struct {
	pages map[string]string
}

// Fetch implements crawler.Fetcher.
func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*model.Page, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return &model.Page{
			URL:         rawURL,
			StatusCode:  http.StatusNotFound,
			ContentType: "text/html",
			FetchedAt:   time.Now(),
		}, nil
	}
	return &model.Page{
		URL:         rawURL,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Raw:         []byte(body),
		Snapshot:    body,
		FetchedAt:   time.Now(),
	}, nil
}

// newTestScraper builds a scraper over the stub fetcher with delays
// removed so tests run fast.
func newTestScraper(t *testing.T, target model.Target, fetcher crawler.Fetcher, opts ...crawler.Option) *crawler.Scraper {
	t.Helper()
	base := []crawler.Option{
		crawler.WithDelay(0),
		crawler.WithMaxDepth(0),
	}
	return crawler.NewScraper(target, fetcher, append(base, opts...)...)
}

// TestRobotsStep tests the robots.txt check step.
func TestRobotsStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		step := NewRobotsStep(robots.NewChecker(http.DefaultClient), nil)
		if step.Name() != "robots" {
			t.Errorf("expected name 'robots', got %q", step.Name())
		}
	})

	t.Run("marks robots as checked", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/robots.txt" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintln(w, "User-agent: *\nAllow: /")
		}))
		defer server.Close()

		checker := robots.NewChecker(server.Client())
		step := NewRobotsStep(checker, nil)

		target := model.MustNewTarget(server.URL)
		report := model.NewScrapeReport(target, model.ConfigSnapshot{})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.RobotsChecked {
			t.Error("expected RobotsChecked to be true")
		}
	})

	t.Run("applies crawl-delay to scraper", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/robots.txt" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintln(w, "User-agent: *\nCrawl-delay: 2")
		}))
		defer server.Close()

		target := model.MustNewTarget(server.URL)
		scraper := newTestScraper(t, target, &stubFetcher{})
		checker := robots.NewChecker(server.Client())
		step := NewRobotsStep(checker, scraper)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.RobotsChecked {
			t.Error("expected RobotsChecked to be true")
		}
	})

	t.Run("disallowed base URL is not fatal", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/robots.txt" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintln(w, "User-agent: *\nDisallow: /")
		}))
		defer server.Close()

		checker := robots.NewChecker(server.Client())
		step := NewRobotsStep(checker, nil)

		target := model.MustNewTarget(server.URL)
		report := model.NewScrapeReport(target, model.ConfigSnapshot{})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected nil error for disallowed base URL, got %v", err)
		}
		if !report.RobotsChecked {
			t.Error("expected RobotsChecked to be true")
		}
	})
}

// TestSitemapStep tests the sitemap discovery step.
func TestSitemapStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		step := NewSitemapStep(sitemap.NewFetcher(http.DefaultClient), model.Target{})
		if step.Name() != "sitemap" {
			t.Errorf("expected name 'sitemap', got %q", step.Name())
		}
	})

	t.Run("stores sitemap entries as candidates", func(t *testing.T) {
		t.Parallel()

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/sitemap.xml" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/</loc><priority>1.0</priority></url>
  <url><loc>%s/about</loc><priority>0.8</priority></url>
</urlset>`, server.URL, server.URL)
		}))
		defer server.Close()

		target := model.MustNewTarget(server.URL)
		step := NewSitemapStep(sitemap.NewFetcher(server.Client()), target)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(report.Candidates))
		}
		if report.UsedFallback {
			t.Error("expected UsedFallback to be false")
		}
		if len(report.SitemapURLs) != 1 {
			t.Errorf("expected 1 sitemap URL, got %v", report.SitemapURLs)
		}
		if !strings.HasSuffix(report.SitemapURLs[0], "/sitemap.xml") {
			t.Errorf("unexpected sitemap URL: %q", report.SitemapURLs[0])
		}
	})

	t.Run("falls back to homepage when no sitemap exists", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		target := model.MustNewTarget(server.URL)
		step := NewSitemapStep(sitemap.NewFetcher(server.Client()), target)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Candidates) != 1 {
			t.Fatalf("expected 1 fallback candidate, got %d", len(report.Candidates))
		}
		if report.Candidates[0].Source != model.SourceHomepage {
			t.Errorf("expected homepage source, got %q", report.Candidates[0].Source)
		}
		if !report.UsedFallback {
			t.Error("expected UsedFallback to be true")
		}
		if len(report.SitemapURLs) != 0 {
			t.Errorf("expected no sitemap URLs, got %v", report.SitemapURLs)
		}
	})

	t.Run("uses sitemaps declared in robots.txt", func(t *testing.T) {
		t.Parallel()

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/robots.txt":
				fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s/custom-map.xml\n", server.URL)
			case "/custom-map.xml":
				w.Header().Set("Content-Type", "application/xml")
				fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/features</loc></url>
</urlset>`, server.URL)
			default:
				http.NotFound(w, r)
			}
		}))
		defer server.Close()

		target := model.MustNewTarget(server.URL)
		checker := robots.NewChecker(server.Client())
		step := NewSitemapStep(sitemap.NewFetcher(server.Client()), target, WithSitemapRobots(checker))

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(report.Candidates))
		}
		if !strings.HasSuffix(report.Candidates[0].URL, "/features") {
			t.Errorf("unexpected candidate URL: %q", report.Candidates[0].URL)
		}
	})
}

// TestPrioritizeStep tests candidate prioritization.
func TestPrioritizeStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		step := NewPrioritizeStep(newTestScraper(t, target, &stubFetcher{}))
		if step.Name() != "prioritize" {
			t.Errorf("expected name 'prioritize', got %q", step.Name())
		}
	})

	t.Run("drops low-value candidates and ranks the rest", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		scraper := newTestScraper(t, target, &stubFetcher{})
		step := NewPrioritizeStep(scraper)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		report.Candidates = []*model.PageInfo{
			{URL: "https://example.com/blog/post", Source: model.SourceSitemap},
			{URL: "https://example.com/login", Source: model.SourceSitemap},
			{URL: "https://example.com/about", Source: model.SourceSitemap},
		}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, c := range report.Candidates {
			if strings.Contains(c.URL, "/login") {
				t.Errorf("low-value candidate should have been dropped: %q", c.URL)
			}
		}
		if len(report.Candidates) != 2 {
			t.Fatalf("expected 2 candidates after prioritization, got %d", len(report.Candidates))
		}
	})

	t.Run("skips when no candidates", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		step := NewPrioritizeStep(newTestScraper(t, target, &stubFetcher{}))

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestCrawlStep tests the crawl step.
func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		step := NewCrawlStep(newTestScraper(t, target, &stubFetcher{}))
		if step.Name() != "crawl" {
			t.Errorf("expected name 'crawl', got %q", step.Name())
		}
	})

	t.Run("crawls candidate pages", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		fetcher := &stubFetcher{pages: map[string]string{
			"https://example.com/":      "<html><head><title>Home</title></head><body><main><p>Welcome to Example.</p></main></body></html>",
			"https://example.com/about": "<html><head><title>About</title></head><body><main><p>We build examples.</p></main></body></html>",
		}}
		scraper := newTestScraper(t, target, fetcher)
		step := NewCrawlStep(scraper)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		report.Candidates = []*model.PageInfo{
			{URL: "https://example.com/", Source: model.SourceSitemap},
			{URL: "https://example.com/about", Source: model.SourceSitemap},
		}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := len(scraper.Results()); got != 2 {
			t.Errorf("expected 2 results, got %d", got)
		}
	})

	t.Run("records failed pages as results", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		scraper := newTestScraper(t, target, &stubFetcher{})
		step := NewCrawlStep(scraper)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		report.Candidates = []*model.PageInfo{
			{URL: "https://example.com/missing", Source: model.SourceSitemap},
		}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		results := scraper.Results()
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Error == "" {
			t.Error("expected failed result to carry an error message")
		}
	})

	t.Run("skips when no candidates", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		step := NewCrawlStep(newTestScraper(t, target, &stubFetcher{}))

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestDiscoverStep tests recursive discovery and report syncing.
func TestDiscoverStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		step := NewDiscoverStep(newTestScraper(t, target, &stubFetcher{}))
		if step.Name() != "discover" {
			t.Errorf("expected name 'discover', got %q", step.Name())
		}
	})

	t.Run("syncs scraper results into report", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		fetcher := &stubFetcher{pages: map[string]string{
			"https://example.com/": "<html><head><title>Home</title></head><body><main><p>Welcome.</p></main></body></html>",
		}}
		scraper := newTestScraper(t, target, fetcher)

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		entries := []model.PageInfo{{URL: "https://example.com/", Source: model.SourceSitemap}}
		if err := scraper.Crawl(context.Background(), entries); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		step := NewDiscoverStep(scraper)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Results) != 1 {
			t.Errorf("expected 1 report result, got %d", len(report.Results))
		}
		if len(report.Pages()) != 1 {
			t.Errorf("expected 1 report page, got %d", len(report.Pages()))
		}
	})

	t.Run("follows discovered links up to depth", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		fetcher := &stubFetcher{pages: map[string]string{
			"https://example.com/": `<html><head><title>Home</title></head><body><main>
				<p>Welcome to the example site, where we write about examples.</p>
				<a href="/about">About us</a></main></body></html>`,
			"https://example.com/about": "<html><head><title>About</title></head><body><main><p>We build examples.</p></main></body></html>",
		}}
		scraper := newTestScraper(t, target, fetcher, crawler.WithMaxDepth(2))

		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		entries := []model.PageInfo{{URL: "https://example.com/", Source: model.SourceSitemap}}
		if err := scraper.Crawl(context.Background(), entries); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		step := NewDiscoverStep(scraper)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Results) != 2 {
			t.Errorf("expected 2 report results after discovery, got %d", len(report.Results))
		}
		if report.GetPage("https://example.com/about") == nil {
			t.Error("expected discovered page in report")
		}
	})
}

// TestInsightsStep tests the insight classification step.
func TestInsightsStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		step := NewInsightsStep(insights.NewEngine(nil))
		if step.Name() != "insights" {
			t.Errorf("expected name 'insights', got %q", step.Name())
		}
	})

	t.Run("records insights from fetched pages", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		report := model.NewScrapeReport(target, model.ConfigSnapshot{})
		report.AddPage(&model.Page{
			URL:         "https://example.com/contact",
			StatusCode:  http.StatusOK,
			ContentType: "text/html",
			Snapshot:    "Reach us at hello@example-widgets.io for sales inquiries.",
			Raw:         []byte("Reach us at hello@example-widgets.io for sales inquiries."),
		})

		step := NewInsightsStep(insights.NewEngine(nil))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		found := false
		for _, in := range report.Insights {
			if in.Value == "hello@example-widgets.io" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected contact email insight, got %v", report.Insights)
		}
	})

	t.Run("skips when no pages", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		report := model.NewScrapeReport(target, model.ConfigSnapshot{})

		step := NewInsightsStep(insights.NewEngine(nil))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Insights) != 0 {
			t.Errorf("expected no insights, got %d", len(report.Insights))
		}
	})
}

// TestDefaultPipeline tests the default pipeline composition.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("includes all steps with full components", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		p := DefaultPipeline(target, Components{
			Scraper:  newTestScraper(t, target, &stubFetcher{}),
			Robots:   robots.NewChecker(http.DefaultClient),
			Sitemaps: sitemap.NewFetcher(http.DefaultClient),
			Insights: insights.NewEngine(nil),
		})

		want := []string{"robots", "sitemap", "prioritize", "crawl", "discover", "insights"}
		got := p.StepNames()
		if len(got) != len(want) {
			t.Fatalf("expected %d steps, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("step %d: got %q, expected %q", i, got[i], want[i])
			}
		}
	})

	t.Run("drops optional steps when components are nil", func(t *testing.T) {
		t.Parallel()

		target := model.MustNewTarget("https://example.com")
		p := DefaultPipeline(target, Components{
			Scraper:  newTestScraper(t, target, &stubFetcher{}),
			Sitemaps: sitemap.NewFetcher(http.DefaultClient),
		})

		want := []string{"sitemap", "prioritize", "crawl", "discover"}
		got := p.StepNames()
		if len(got) != len(want) {
			t.Fatalf("expected %d steps, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("step %d: got %q, expected %q", i, got[i], want[i])
			}
		}
	})
}
