package model

import (
	"time"
)

// ScrapeReport is the main result structure for a scraping run.
// It aggregates everything collected while processing one target site:
// discovered sitemaps, prioritized candidates, per-page results, and
// deterministic insights.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and hand-off between pipeline steps. Working
// state needed only during the run (crawled pages, candidate queue) is
// excluded from JSON.
type ScrapeReport struct {
	// === Session Information ===

	// Target is the normalized base URL that was scraped.
	Target string `json:"target"`

	// Host is the target's host; same-domain checks compare against it.
	Host string `json:"host"`

	// StartTime is when the run began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run finished. Zero until Finish is called.
	EndTime time.Time `json:"end_time"`

	// Config is the effective configuration snapshot for the run.
	Config ConfigSnapshot `json:"configuration"`

	// === Discovery ===

	// RobotsChecked is true once the robots.txt phase completed
	// (successfully or fail-open).
	RobotsChecked bool `json:"robots_checked"`

	// SitemapURLs lists the sitemap locations that yielded entries.
	SitemapURLs []string `json:"sitemap_urls,omitempty"`

	// UsedFallback is true when no sitemap URLs were discovered and the
	// run fell back to crawling from the base URL.
	UsedFallback bool `json:"used_fallback"`

	// Candidates is the prioritized crawl queue. Working state only.
	Candidates []*PageInfo `json:"-"`

	// === Outcomes ===

	// Results holds one entry per processed page, including failures.
	Results []*ScrapeResult `json:"results"`

	// Insights holds the deterministic findings mined from crawled pages,
	// deduplicated by title and value.
	Insights []Insight `json:"insights,omitempty"`

	// PerformedSteps lists the names of pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut indicates the run was cut short by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error holds a fatal run error (not per-page errors).
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error_message,omitempty"`

	// pages indexes crawled pages by URL for classifiers and reporting.
	pages map[string]*Page

	// pageOrder preserves crawl order for deterministic iteration.
	pageOrder []string

	// insightKeys tracks added insights for deduplication.
	insightKeys map[string]bool
}

// ConfigSnapshot is the subset of configuration recorded in the results
// summary. Field names match the results JSON schema.
type ConfigSnapshot struct {
	// MaxDepth is the maximum crawl depth.
	MaxDepth int `json:"max_depth"`
	// MaxPages is the maximum number of pages to process.
	MaxPages int `json:"max_pages"`
	// Delay is the politeness delay between requests, in seconds.
	Delay float64 `json:"delay"`
	// ConcurrentRequests is the crawl concurrency bound.
	ConcurrentRequests int `json:"concurrent_requests"`
	// ContentThreshold is the minimum URL score for a candidate to be crawled.
	ContentThreshold float64 `json:"content_threshold"`
}

// NewScrapeReport creates a new report for the given target.
// StartTime is set to the current time.
func NewScrapeReport(target Target, cfg ConfigSnapshot) *ScrapeReport {
	return &ScrapeReport{
		Target:      target.String(),
		Host:        target.Host(),
		StartTime:   time.Now(),
		Config:      cfg,
		Results:     make([]*ScrapeResult, 0),
		pages:       make(map[string]*Page),
		insightKeys: make(map[string]bool),
	}
}

// Finish marks the run complete, recording the end time and any fatal error.
func (r *ScrapeReport) Finish(err error) {
	r.EndTime = time.Now()
	if err != nil {
		r.Error = err
		r.ErrorMessage = err.Error()
	}
}

// AddPage stores a crawled page, replacing any previous page for the
// same URL.
func (r *ScrapeReport) AddPage(p *Page) {
	if p == nil || p.URL == "" {
		return
	}
	if _, exists := r.pages[p.URL]; !exists {
		r.pageOrder = append(r.pageOrder, p.URL)
	}
	r.pages[p.URL] = p
}

// GetPage returns the crawled page for the URL, or nil if not crawled.
func (r *ScrapeReport) GetPage(url string) *Page {
	return r.pages[url]
}

// Pages returns all crawled pages in crawl order.
func (r *ScrapeReport) Pages() []*Page {
	out := make([]*Page, 0, len(r.pageOrder))
	for _, u := range r.pageOrder {
		out = append(out, r.pages[u])
	}
	return out
}

// AddResult appends a page result.
func (r *ScrapeReport) AddResult(res *ScrapeResult) {
	if res == nil {
		return
	}
	r.Results = append(r.Results, res)
}

// AddInsight appends an insight unless an identical one (same title and
// value) was already recorded. Returns true if the insight was added.
func (r *ScrapeReport) AddInsight(in Insight) bool {
	key := in.Key()
	if r.insightKeys == nil {
		r.insightKeys = make(map[string]bool)
	}
	if r.insightKeys[key] {
		return false
	}
	r.insightKeys[key] = true
	r.Insights = append(r.Insights, in)
	return true
}

// MarkStep records that a pipeline step ran.
func (r *ScrapeReport) MarkStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// SuccessfulCount returns the number of results without errors.
func (r *ScrapeReport) SuccessfulCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Succeeded() {
			n++
		}
	}
	return n
}

// FailedCount returns the number of results with errors.
func (r *ScrapeReport) FailedCount() int {
	return len(r.Results) - r.SuccessfulCount()
}

// TotalTime returns the wall-clock duration of the run.
// Falls back to time since start when the run has not finished.
func (r *ScrapeReport) TotalTime() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// ResultsSummary is the serializable results document.
// Its shape is stable: external consumers parse it.
type ResultsSummary struct {
	// Session holds run-level metadata.
	Session SessionSummary `json:"scraping_session"`

	// Results holds one entry per processed page.
	Results []ResultSummary `json:"results"`
}

// SessionSummary is the run-level portion of the results document.
type SessionSummary struct {
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	BaseURL         string         `json:"base_url"`
	TotalPages      int            `json:"total_pages"`
	SuccessfulPages int            `json:"successful_pages"`
	FailedPages     int            `json:"failed_pages"`
	TotalTime       float64        `json:"total_time"`
	Configuration   ConfigSnapshot `json:"configuration"`
}

// ResultSummary is the per-page portion of the results document.
// Key points are serialized in their bracketed display form.
type ResultSummary struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points"`
	ContentScore   float64  `json:"content_score"`
	WordCount      int      `json:"word_count"`
	ProcessingTime float64  `json:"processing_time"`
	Error          string   `json:"error,omitempty"`
}

// Summary builds the serializable results document from the report.
func (r *ScrapeReport) Summary() ResultsSummary {
	results := make([]ResultSummary, 0, len(r.Results))
	for _, res := range r.Results {
		rs := ResultSummary{
			Summary:        res.Summary,
			KeyPoints:      res.KeyPointStrings(),
			ProcessingTime: res.ProcessingTime.Seconds(),
			Error:          res.Error,
		}
		if rs.KeyPoints == nil {
			rs.KeyPoints = []string{}
		}
		if res.Page != nil {
			rs.URL = res.Page.URL
			rs.Title = res.Page.Title
			rs.ContentScore = res.Page.ContentScore
			rs.WordCount = res.Page.WordCount
		}
		results = append(results, rs)
	}

	return ResultsSummary{
		Session: SessionSummary{
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			BaseURL:         r.Target,
			TotalPages:      len(r.Results),
			SuccessfulPages: r.SuccessfulCount(),
			FailedPages:     r.FailedCount(),
			TotalTime:       r.TotalTime().Seconds(),
			Configuration:   r.Config,
		},
		Results: results,
	}
}
