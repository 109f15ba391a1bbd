package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sitegist/sitegist/internal/model"
)

// testFactory creates a Factory that builds a one-step pipeline per
// target. A fresh mockStep is created for every pipeline so step state
// never leaks between concurrent runs.
func testFactory(name string, doFunc func(ctx context.Context, report *model.ScrapeReport) error) Factory {
	return func(target model.Target) (*Pipeline, *model.ScrapeReport) {
		p := New()
		if name != "" {
			p.AddStep(&mockStep{name: name, doFunc: doFunc})
		}
		return p, model.NewScrapeReport(target, model.ConfigSnapshot{})
	}
}

// testTargets builds targets from hosts for batch tests.
func testTargets(hosts ...string) []model.Target {
	targets := make([]model.Target, len(hosts))
	for i, h := range hosts {
		targets[i] = model.MustNewTarget("https://" + h)
	}
	return targets
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testFactory("", nil))

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 3 {
			t.Errorf("expected default concurrency 3, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testFactory("", nil), WithConcurrency(5))

		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testFactory("", nil), WithConcurrency(0))

		if bp.concurrency != 3 { // Should keep default
			t.Errorf("expected concurrency 3, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithBatchLogger option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testFactory("", nil), WithBatchLogger(nil))

		// When WithBatchLogger(nil) is passed, the logger should be set to default
		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all targets", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(testFactory("counter",
			func(_ context.Context, _ *model.ScrapeReport) error {
				processedCount.Add(1)
				return nil
			}))

		targets := testTargets("one.example.com", "two.example.com", "three.example.com")

		results, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
		for _, report := range results {
			if report.EndTime.IsZero() {
				t.Error("expected report to be finished")
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var maxConcurrent atomic.Int32
		var currentConcurrent atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(
			testFactory("concurrent-counter",
				func(_ context.Context, _ *model.ScrapeReport) error {
					current := currentConcurrent.Add(1)

					// Update max if needed (with mutex for safety)
					mu.Lock()
					if current > maxConcurrent.Load() {
						maxConcurrent.Store(current)
					}
					mu.Unlock()

					// Simulate some work
					time.Sleep(50 * time.Millisecond)

					currentConcurrent.Add(-1)
					return nil
				}),
			WithConcurrency(2),
		)

		hosts := make([]string, 10)
		for i := range hosts {
			hosts[i] = "site.example.com"
		}

		_, err := bp.ProcessBatch(context.Background(), testTargets(hosts...))

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if maxConcurrent.Load() > 2 {
			t.Errorf("max concurrent was %d, expected <= 2", maxConcurrent.Load())
		}
	})

	t.Run("maintains result order", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(testFactory("noop", nil))

		hosts := []string{"first.example.com", "second.example.com", "third.example.com"}

		results, err := bp.ProcessBatch(context.Background(), testTargets(hosts...))

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, result := range results {
			if result.Host != hosts[i] {
				t.Errorf("result[%d]: got %q, expected %q", i, result.Host, hosts[i])
			}
		}
	})

	t.Run("continues after individual failure", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(testFactory("sometimes-fails",
			func(_ context.Context, report *model.ScrapeReport) error {
				processedCount.Add(1)
				// Fail for the second target only
				if strings.Contains(report.Host, "fail") {
					return errors.New("simulated scrape failure")
				}
				return nil
			}))

		targets := testTargets("first.example.com", "fail.example.com", "third.example.com")

		results, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
		// Check that the failed run has an error recorded
		if results[1].Error == nil {
			t.Error("expected error in second result")
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var startedCount atomic.Int32

		bp := NewBatchProcessor(
			testFactory("slow-step",
				func(ctx context.Context, _ *model.ScrapeReport) error {
					startedCount.Add(1)
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(time.Second):
						return nil
					}
				}),
			WithConcurrency(2),
		)

		hosts := make([]string, 10)
		for i := range hosts {
			hosts[i] = "site.example.com"
		}

		// Cancel after a short delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		_, err := bp.ProcessBatch(ctx, testTargets(hosts...))

		// Should return context.Canceled
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		// Not all targets should have started
		//nolint:gosec // len(hosts) is small, no overflow risk
		if startedCount.Load() >= int32(len(hosts)) {
			t.Error("expected some targets to not start due to cancellation")
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests callback-based processing.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	t.Run("calls callback for each result", func(t *testing.T) {
		t.Parallel()

		var callbackCount atomic.Int32
		var mu sync.Mutex
		receivedHosts := make(map[string]bool)

		bp := NewBatchProcessor(testFactory("noop", nil))

		hosts := []string{"first.example.com", "second.example.com", "third.example.com"}

		err := bp.ProcessBatchWithCallback(
			context.Background(),
			testTargets(hosts...),
			func(report *model.ScrapeReport, _ int) {
				callbackCount.Add(1)
				mu.Lock()
				receivedHosts[report.Host] = true
				mu.Unlock()
			},
		)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if callbackCount.Load() != 3 {
			t.Errorf("expected 3 callbacks, got %d", callbackCount.Load())
		}
		for _, host := range hosts {
			if !receivedHosts[host] {
				t.Errorf("missing callback for %q", host)
			}
		}
	})
}
