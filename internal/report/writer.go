package report

import (
	"io"
	"sort"

	"github.com/sitegist/sitegist/internal/model"
)

// Writer defines the interface for report output.
// Implementations write scrape results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScrapeReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ScrapeReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// insightsByCategory groups a report's insights by category, preserving
// the order insights were recorded within each category. The returned
// category slice follows the canonical report ordering and only contains
// categories that hold at least one insight.
func insightsByCategory(report *model.ScrapeReport) ([]model.Category, map[model.Category][]model.Insight) {
	grouped := make(map[model.Category][]model.Insight)
	for _, in := range report.Insights {
		grouped[in.Category] = append(grouped[in.Category], in)
	}

	categories := make([]model.Category, 0, len(grouped))
	for _, c := range model.AllCategories() {
		if len(grouped[c]) > 0 {
			categories = append(categories, c)
		}
	}

	// Unknown categories come last, sorted for stable output.
	var extra []model.Category
	for c := range grouped {
		if !c.IsValid() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	categories = append(categories, extra...)

	return categories, grouped
}
