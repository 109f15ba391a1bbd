package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/sitegist/sitegist/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScrapeReport) (int, error) {
	digest := model.BuildDigest(report)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report, digest)
	w.writeSummary(md, digest)
	w.writeTopPages(md, digest)
	w.writePageDetails(md, report)
	w.writeInsights(md, report)
	w.writeFailures(md, digest)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScrapeReport, digest *model.Digest) {
	md.H1("Website Scrape Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Scrape Date", report.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Pages Processed", strconv.Itoa(digest.TotalPages)},
			{"Successful", strconv.Itoa(digest.Successful)},
			{"Failed", strconv.Itoa(digest.Failed)},
			{"Average Score", fmt.Sprintf("%.2f", digest.AverageScore)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")

	if digest.UsedFallback {
		md.Note("No sitemap was found; the crawl started from the base URL.")
		md.PlainText("")
	}
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ScrapeReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the content quality summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, digest *model.Digest) {
	md.H2("Content Quality")
	md.PlainText("")

	rows := make([][]string, 0, len(model.AllBands())+1)
	for _, band := range model.AllBands() {
		rows = append(rows, []string{bandLabel(band), strconv.Itoa(digest.BandCounts[band])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(digest.Successful) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Band", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	// Add pie chart if any page succeeded
	if digest.Successful > 0 {
		w.writePieChart(md, digest)
	}

	// Add alert based on crawl outcome
	w.writeAlert(md, digest)
}

// writePieChart writes a mermaid pie chart for the band distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, digest *model.Digest) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Content Score Distribution"),
		piechart.WithShowData(true),
	)

	for _, band := range model.AllBands() {
		if count := digest.BandCounts[band]; count > 0 {
			chart.LabelAndIntValue(band.String(), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, digest *model.Digest) {
	switch {
	case digest.AllFailed():
		md.Cautionf(
			"Every page failed to process (%d failure(s)). The site may be blocking automated access.",
			digest.Failed,
		)
	case digest.Failed > 0:
		md.Warningf(
			"%d page(s) failed to process; their entries carry error messages.",
			digest.Failed,
		)
	case digest.TotalPages == 0:
		md.Note("No pages were processed.")
	default:
		md.Tip("All pages processed successfully.")
	}
	md.PlainText("")
}

// writeTopPages writes the top pages section.
func (w *MarkdownWriter) writeTopPages(md *markdown.Markdown, digest *model.Digest) {
	md.H2("Top Pages")
	md.PlainText("")

	if len(digest.TopPages) == 0 {
		md.PlainText("No pages scraped.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(digest.TopPages))
	for i, page := range digest.TopPages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		rows[i] = []string{
			fmt.Sprintf("%.2f", page.ContentScore),
			truncateString(title, 50),
			strconv.Itoa(page.WordCount),
			"`" + truncateString(page.URL, 60) + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Score", "Title", "Words", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePageDetails writes collapsible per-page summary blocks.
// Only pages that were actually summarized get a block.
func (w *MarkdownWriter) writePageDetails(md *markdown.Markdown, report *model.ScrapeReport) {
	var results []*model.ScrapeResult
	for _, res := range report.Results {
		if res.Succeeded() && res.Summary != "" {
			results = append(results, res)
		}
	}
	if len(results) == 0 {
		return
	}

	md.H2("Page Summaries")
	md.PlainText("")

	for _, res := range results {
		title := res.Page.Title
		if title == "" {
			title = res.Page.URL
		}

		var body strings.Builder
		body.WriteString(res.Summary)
		if points := res.KeyPointStrings(); len(points) > 0 {
			body.WriteString("\n")
			for _, point := range points {
				body.WriteString("\n- " + point)
			}
		}
		md.Details(truncateString(title, 60), body.String())
		md.PlainText("")
	}
}

// writeInsights writes the insights grouped by category.
func (w *MarkdownWriter) writeInsights(md *markdown.Markdown, report *model.ScrapeReport) {
	md.H2("Insights")
	md.PlainText("")

	if len(report.Insights) == 0 {
		md.PlainText("No insights detected.")
		md.PlainText("")
		return
	}

	categories, grouped := insightsByCategory(report)
	for _, category := range categories {
		md.PlainText("### " + category.DisplayName())
		md.PlainText("")
		if desc := category.Description(); desc != "" {
			md.PlainText(desc)
			md.PlainText("")
		}
		w.writeInsightsTable(md, grouped[category])
	}
}

// writeInsightsTable writes a table of insights with details.
func (w *MarkdownWriter) writeInsightsTable(md *markdown.Markdown, insights []model.Insight) {
	rows := make([][]string, len(insights))
	for i, in := range insights {
		value := in.Value
		if value == "" {
			value = "-"
		}
		location := in.Location
		if location == "" {
			location = "-"
		}

		rows[i] = []string{
			in.Title,
			truncateString(value, 50),
			truncateString(location, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Value", "Location"},
		Rows:   rows,
	})
	md.PlainText("")

	// Add detailed descriptions for all insights
	for _, in := range insights {
		if in.Detail != "" {
			md.Details(in.Title, in.Detail)
		}
	}
	md.PlainText("")
}

// writeFailures writes the failed pages section.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, digest *model.Digest) {
	if len(digest.Failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(digest.Failures))
	for i, res := range digest.Failures {
		url := "-"
		if res.Page != nil && res.Page.URL != "" {
			url = "`" + truncateString(res.Page.URL, 60) + "`"
		}
		rows[i] = []string{url, truncateString(res.Error, 60)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitegist](https://github.com/sitegist/sitegist)*")
}

// bandLabel returns the display label for a score band.
func bandLabel(band model.Band) string {
	switch band {
	case model.BandExcellent:
		return "🟢 Excellent"
	case model.BandStrong:
		return "🟡 Strong"
	case model.BandGood:
		return "🟠 Good"
	case model.BandFair:
		return "🔵 Fair"
	case model.BandPoor:
		return "⚪ Poor"
	default:
		return "Unknown"
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
