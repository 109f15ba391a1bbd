package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sitegist/sitegist/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with score-band
// indicators and clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScrapeReport) (int, error) {
	digest := model.BuildDigest(report)

	var sb strings.Builder

	w.writeHeader(&sb, report, digest)
	w.writeSummary(&sb, digest)
	w.writeBands(&sb, digest)
	w.writeTopPages(&sb, digest)
	if w.verbose {
		w.writeSummaries(&sb, report)
	}
	w.writeInsights(&sb, report)
	w.writeFailures(&sb, digest)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScrapeReport, digest *model.Digest) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SITEGIST REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:          %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Scrape Date:     %s\n", report.StartTime.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Processed: %d\n", digest.TotalPages))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:          TIMED OUT (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:          ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:          Complete\n")
	}

	if digest.UsedFallback {
		sb.WriteString("Note:            No sitemap found, crawl started from the base URL\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the run summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, digest *model.Digest) {
	w.sectionHeader(sb, "SCRAPE SUMMARY")

	sb.WriteString(fmt.Sprintf("  Successful:    %d\n", digest.Successful))
	sb.WriteString(fmt.Sprintf("  Failed:        %d\n", digest.Failed))
	sb.WriteString(fmt.Sprintf("  Total words:   %d\n", digest.TotalWords))
	sb.WriteString(fmt.Sprintf("  Average score: %.2f\n", digest.AverageScore))
	sb.WriteString(fmt.Sprintf("  Total time:    %s\n", digest.TotalTime.Round(time.Millisecond)))
	sb.WriteString("\n")
}

// writeBands writes the content quality distribution section.
func (w *SimpleWriter) writeBands(sb *strings.Builder, digest *model.Digest) {
	if digest.Successful == 0 && !w.showEmpty {
		return
	}

	w.sectionHeader(sb, "CONTENT QUALITY")

	for _, band := range model.AllBands() {
		count := digest.BandCounts[band]
		if count == 0 && !w.showEmpty {
			continue
		}
		sb.WriteString(fmt.Sprintf("  [%s] %-9s %d\n", bandIndicator(band), band.String(), count))
	}
	sb.WriteString("\n")
}

// writeTopPages writes the top pages section.
func (w *SimpleWriter) writeTopPages(sb *strings.Builder, digest *model.Digest) {
	if len(digest.TopPages) == 0 && !w.showEmpty {
		return
	}

	w.sectionHeader(sb, "TOP PAGES")

	if len(digest.TopPages) == 0 {
		sb.WriteString("  No pages scraped\n")
	}
	for i, page := range digest.TopPages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString(fmt.Sprintf("  %d. [%.2f] %s\n", i+1, page.ContentScore, title))
		sb.WriteString(fmt.Sprintf("     %s\n", page.URL))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("     words: %d, source: %s\n", page.WordCount, page.Source))
		}
	}
	sb.WriteString("\n")
}

// writeSummaries writes per-page summaries and key points. Only shown
// in verbose mode since summaries can run long.
func (w *SimpleWriter) writeSummaries(sb *strings.Builder, report *model.ScrapeReport) {
	var results []*model.ScrapeResult
	for _, res := range report.Results {
		if res.Succeeded() && res.Summary != "" {
			results = append(results, res)
		}
	}
	if len(results) == 0 {
		return
	}

	w.sectionHeader(sb, "PAGE SUMMARIES")

	for _, res := range results {
		title := res.Page.Title
		if title == "" {
			title = res.Page.URL
		}
		sb.WriteString(fmt.Sprintf("%s\n", title))
		sb.WriteString(fmt.Sprintf("  %s\n", res.Summary))
		for _, point := range res.KeyPointStrings() {
			sb.WriteString(fmt.Sprintf("  - %s\n", point))
		}
		sb.WriteString("\n")
	}
}

// writeInsights writes the insights grouped by category.
func (w *SimpleWriter) writeInsights(sb *strings.Builder, report *model.ScrapeReport) {
	if len(report.Insights) == 0 && !w.showEmpty {
		return
	}

	w.sectionHeader(sb, "INSIGHTS")

	if len(report.Insights) == 0 {
		sb.WriteString("  No insights detected\n\n")
		return
	}

	categories, grouped := insightsByCategory(report)
	for _, category := range categories {
		insights := grouped[category]
		sb.WriteString(fmt.Sprintf("[%s] (%d)\n", category.DisplayName(), len(insights)))

		for _, in := range insights {
			sb.WriteString(fmt.Sprintf("  * %s\n", in.Title))
			if in.Value != "" {
				sb.WriteString(fmt.Sprintf("    Value: %s\n", in.Value))
			}
			if in.Location != "" {
				sb.WriteString(fmt.Sprintf("    Location: %s\n", in.Location))
			}
			if w.verbose && in.Detail != "" {
				sb.WriteString(fmt.Sprintf("    Detail: %s\n", in.Detail))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFailures writes the failed pages section.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, digest *model.Digest) {
	if len(digest.Failures) == 0 && !w.showEmpty {
		return
	}

	w.sectionHeader(sb, "FAILURES")

	if len(digest.Failures) == 0 {
		sb.WriteString("  No failures\n")
	}
	for _, res := range digest.Failures {
		url := ""
		if res.Page != nil {
			url = res.Page.URL
		}
		sb.WriteString(fmt.Sprintf("  * %s\n    %s\n", url, res.Error))
	}
	sb.WriteString("\n")
}

// sectionHeader writes a dashed section header.
func (w *SimpleWriter) sectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitegist\n")
	sb.WriteString("https://github.com/sitegist/sitegist\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// bandIndicator returns a visual indicator for the score band.
func bandIndicator(band model.Band) string {
	switch band {
	case model.BandExcellent:
		return "+++"
	case model.BandStrong:
		return "++"
	case model.BandGood:
		return "+"
	case model.BandFair:
		return "-"
	case model.BandPoor:
		return "."
	default:
		return "?"
	}
}
