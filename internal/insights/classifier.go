package insights

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sitegist/sitegist/internal/model"
)

// Classifier defines the interface for individual insight classifiers.
// Each classifier owns one category and one kind of signal.
//
// Design decision: We use an interface rather than concrete types because:
//  1. Allows for easy extension with new classifiers
//  2. Enables testing with mock classifiers
//  3. Replaces scattered string-matching heuristics with typed categories
type Classifier interface {
	// Name returns the classifier's name for logging and reporting.
	Name() string

	// Category returns the category every insight from this classifier
	// belongs to.
	Category() model.Category

	// Classify inspects the crawled pages and returns its insights.
	Classify(ctx context.Context, src *Source) ([]model.Insight, error)
}

// Source contains all data available for classification.
//
// Design decision: We pass all data in a single struct rather than
// multiple parameters because:
//  1. Not all classifiers need all data
//  2. Adding new data doesn't change classifier signatures
//  3. Easier to mock in tests
type Source struct {
	// Host is the scraped site's host. Classifiers use it to separate
	// internal references from external ones.
	Host string

	// Pages contains all fetched pages, in crawl order.
	Pages []*model.Page

	// Report is the current scrape report, for classifiers that need the
	// per-page results (e.g. pricing page detection).
	Report *model.ScrapeReport
}

// Options configures which built-in classifiers the engine registers.
type Options struct {
	// EnableMedia enables EXIF metadata extraction from images.
	// This fetches image bytes and can be slow on image-heavy sites.
	EnableMedia bool
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		EnableMedia: true,
	}
}

// Engine coordinates insight classifiers and aggregates their findings.
//
// Design decision: We use a coordinator rather than running classifiers
// independently because:
//  1. Unified deduplication across classifiers
//  2. Consistent context and cancellation handling
//  3. One classifier failing must not lose the others' findings
type Engine struct {
	// classifiers is the list of registered classifiers, run in order.
	classifiers []Classifier

	// options configures engine behavior.
	options Options

	// logger receives per-classifier progress and failures.
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Options)

// WithMedia toggles the EXIF media classifier.
func WithMedia(enable bool) EngineOption {
	return func(o *Options) {
		o.EnableMedia = enable
	}
}

// NewEngine creates an Engine with the built-in classifiers registered.
func NewEngine(logger *slog.Logger, opts ...EngineOption) *Engine {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		options:     options,
		classifiers: make([]Classifier, 0),
		logger:      logger,
	}

	e.Register(NewContactClassifier())
	e.Register(NewSocialClassifier())
	e.Register(NewTechStackClassifier())
	e.Register(NewAnalyticsClassifier())
	e.Register(NewPartnersClassifier())
	e.Register(NewMonetizationClassifier())
	if options.EnableMedia {
		e.Register(NewMediaClassifier())
	}

	return e
}

// Register adds a classifier to the engine.
func (e *Engine) Register(c Classifier) {
	e.classifiers = append(e.classifiers, c)
}

// HTTPClientSetter is implemented by classifiers that fetch supporting
// resources themselves (currently only the media classifier).
type HTTPClientSetter interface {
	SetHTTPClient(client *http.Client)
}

// SetHTTPClient injects an HTTP client into classifiers that need one.
func (e *Engine) SetHTTPClient(client *http.Client) {
	for _, c := range e.classifiers {
		if setter, ok := c.(HTTPClientSetter); ok {
			setter.SetHTTPClient(client)
		}
	}
}

// Run executes all registered classifiers and aggregates their insights.
// A classifier error is logged and skipped; the remaining classifiers
// still run. The returned slice is deduplicated by title and value.
func (e *Engine) Run(ctx context.Context, src *Source) ([]model.Insight, error) {
	var all []model.Insight

	for _, c := range e.classifiers {
		select {
		case <-ctx.Done():
			return dedupeInsights(all), ctx.Err()
		default:
		}

		insights, err := c.Classify(ctx, src)
		if err != nil {
			e.logger.Warn("classifier failed",
				"classifier", c.Name(),
				"error", err,
			)
			continue
		}

		e.logger.Debug("classifier completed",
			"classifier", c.Name(),
			"insights", len(insights),
		)
		all = append(all, insights...)
	}

	return dedupeInsights(all), nil
}

// dedupeInsights removes duplicate insights based on title and value.
// Multiple classifiers (or the same classifier on multiple pages) may
// detect the same fact; only the first occurrence is kept.
func dedupeInsights(insights []model.Insight) []model.Insight {
	seen := make(map[string]bool, len(insights))
	result := make([]model.Insight, 0, len(insights))
	for _, in := range insights {
		key := in.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, in)
	}
	return result
}
