package model

import (
	"fmt"
	"strings"
	"time"
)

// KeyPoint is a single categorized takeaway extracted from a page.
type KeyPoint struct {
	// Category is the business theme the point belongs to.
	Category Category `json:"category"`

	// Text is the point itself.
	Text string `json:"text"`
}

// String renders the key point in the bracketed display form used by
// reports: "[Product Market Fit] Strong community presence on GitHub".
func (k KeyPoint) String() string {
	return fmt.Sprintf("[%s] %s", k.Category.DisplayName(), k.Text)
}

// ParseKeyPoint parses the bracketed display form back into a KeyPoint.
// Input without a leading bracket becomes an uncategorized point.
func ParseKeyPoint(s string) KeyPoint {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if end := strings.Index(s, "]"); end > 0 {
			return KeyPoint{
				Category: ParseCategory(s[1:end]),
				Text:     strings.TrimSpace(s[end+1:]),
			}
		}
	}
	return KeyPoint{Category: CategoryUnknown, Text: s}
}

// ScrapeResult is the outcome of processing a single page: the page
// metadata plus the LLM summary and the links found on the page.
//
// Design decision: Failures become results with the Error field set rather
// than being dropped because:
//  1. The results summary must report failed page counts
//  2. A partial crawl is still useful; the caller decides what to skip
//  3. Per-page errors must never abort the run
type ScrapeResult struct {
	// Page is the page metadata, including the final content score.
	Page *PageInfo `json:"page_info"`

	// Summary is the executive summary of the page content.
	// Empty when summarization is disabled or failed.
	Summary string `json:"summary"`

	// KeyPoints are the categorized takeaways from the page.
	KeyPoints []KeyPoint `json:"key_points"`

	// OutboundLinks are the cleaned same-domain links found on the page.
	OutboundLinks []string `json:"outbound_links,omitempty"`

	// ProcessingTime is how long the page took to fetch and process.
	ProcessingTime time.Duration `json:"-"`

	// Timestamp records when processing finished.
	Timestamp time.Time `json:"timestamp"`

	// Error holds the failure message when processing failed.
	// Empty on success.
	Error string `json:"error,omitempty"`
}

// Succeeded reports whether the page was processed without error.
func (r *ScrapeResult) Succeeded() bool {
	return r.Error == ""
}

// KeyPointStrings returns the key points in bracketed display form.
func (r *ScrapeResult) KeyPointStrings() []string {
	if len(r.KeyPoints) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.KeyPoints))
	for _, kp := range r.KeyPoints {
		out = append(out, kp.String())
	}
	return out
}
