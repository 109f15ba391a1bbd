package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sitegist/sitegist/internal/model"
	"golang.org/x/sync/errgroup"
)

// Factory creates a fresh pipeline and report for one target.
// The scraper inside a pipeline is bound to its target, so every target
// needs its own pipeline instance.
type Factory func(target model.Target) (*Pipeline, *model.ScrapeReport)

// BatchProcessor handles concurrent processing of multiple targets.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-target execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// factory creates a new pipeline and report for each target.
	// A factory ensures each run gets fresh scraper state.
	factory Factory

	// concurrency is the maximum number of concurrent scrapes.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.ScrapeReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scrapes.
// Default is 3 if not specified. Batch concurrency multiplies with the
// per-scrape request concurrency, so the default stays small.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The factory function is called for each target to create a fresh
// pipeline and report. This ensures that scraper state doesn't leak
// between targets and allows for per-target customization if needed.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: 3,
		results:     make([]*model.ScrapeReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scrapes multiple targets concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for targets that failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []model.Target) ([]*model.ScrapeReport, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ScrapeReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scraping target",
				"target", target.String(),
				"index", i+1,
				"total", len(targets),
			)

			pipeline, report := bp.factory(target)
			err := pipeline.Execute(ctx, report)
			report.Finish(err)

			// Store result regardless of error
			// The report contains error information if the run failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("scrape failed",
					"target", target.String(),
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// other targets. The error is recorded in the report.
				return nil
			}

			bp.logger.Info("scrape completed",
				"target", target.String(),
			)

			return nil
		})
	}

	// Wait for all scrapes to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback scrapes multiple targets and calls a callback
// for each completed run. This is useful for streaming results to disk
// as they finish instead of holding every report in memory.
//
// The callback receives the report and the index of the target in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []model.Target,
	callback func(report *model.ScrapeReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			pipeline, report := bp.factory(target)
			err := pipeline.Execute(ctx, report)
			report.Finish(err)

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
