package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	readability "github.com/go-shiori/go-readability"
	"github.com/sitegist/sitegist/internal/model"
)

// Mode selects the summary style.
type Mode string

// Summary modes.
const (
	// ModeExecutive produces a short executive summary.
	ModeExecutive Mode = "executive"
	// ModeDetailed produces a longer summary covering all key points.
	ModeDetailed Mode = "detailed"
	// ModeBullet produces the key points as bullet points.
	ModeBullet Mode = "bullet"
)

// maxInputChars is the page text budget per model call. Longer pages are
// truncated; the lead content carries the signal.
const maxInputChars = 4000

// NoContentMessage is recorded as the summary for pages without any
// extractable text.
const NoContentMessage = "No content available"

// summaryPrompts maps each mode to its instruction line.
var summaryPrompts = map[Mode]string{
	ModeExecutive: "Provide a concise executive summary of the following text in 9-10 sentences:",
	ModeDetailed:  "Provide a detailed summary of the following text, covering all key points:",
	ModeBullet:    "Extract the key points from the following text as bullet points:",
}

// Result is the outcome of summarizing one page.
type Result struct {
	// Summary is the executive summary, or a placeholder message when the
	// page had no text or summarization failed.
	Summary string

	// KeyPoints are the categorized business takeaways.
	KeyPoints []model.KeyPoint
}

// Summarizer turns page HTML into an executive summary with categorized
// key points.
//
// Design decision: The completions client is injected rather than
// constructed internally because:
//  1. Tests substitute a fake without touching environment variables
//  2. The caller decides whether summarization is enabled at all
//  3. Retry and transport policy stay in one place, the client
type Summarizer struct {
	client Client
	logger *slog.Logger
}

// NewSummarizer creates a Summarizer backed by the given client.
// A nil logger falls back to slog.Default().
func NewSummarizer(client Client, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{client: client, logger: logger}
}

// Summarize produces the summary and key points for a fetched page.
//
// The returned Result is always usable, even when err is non-nil: a page
// with no text gets NoContentMessage, a failed summary gets a placeholder
// message, and a failed key point extraction keeps the summary. Callers
// record the error on the page's result and continue.
func (s *Summarizer) Summarize(ctx context.Context, page *model.Page) (*Result, error) {
	text := ExtractText(page.Snapshot, page.URL)
	if text == "" {
		s.logger.Debug("no text to summarize", "url", page.URL)
		return &Result{Summary: NoContentMessage}, nil
	}
	text = truncate(text, maxInputChars)

	summary, err := s.SummarizeText(ctx, text, ModeExecutive)
	if err != nil {
		return &Result{Summary: fmt.Sprintf("Processing failed: %v", err)},
			fmt.Errorf("summarize %s: %w", page.URL, err)
	}

	points, err := s.ExtractKeyPoints(ctx, text)
	if err != nil {
		return &Result{Summary: summary}, fmt.Errorf("extract key points for %s: %w", page.URL, err)
	}

	return &Result{Summary: summary, KeyPoints: points}, nil
}

// SummarizeText produces a summary of the text in the given mode. Unknown
// modes fall back to ModeExecutive. Empty input returns a fixed message
// without calling the model.
func (s *Summarizer) SummarizeText(ctx context.Context, text string, mode Mode) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "No text to summarize.", nil
	}

	prompt, ok := summaryPrompts[mode]
	if !ok {
		prompt = summaryPrompts[ModeExecutive]
	}

	response, err := s.client.Complete(ctx, prompt+"\n\n"+text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// ExtractKeyPoints asks the model for categorized business takeaways.
//
// The model must answer with a JSON object keyed by category. Responses
// that fail to decode get one jsonrepair pass before giving up with a
// *ParseError; decoded responses with values of the wrong shape yield a
// *SchemaError. Empty input returns no points without calling the model.
func (s *Summarizer) ExtractKeyPoints(ctx context.Context, text string) ([]model.KeyPoint, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	response, err := s.client.Complete(ctx, keyPointsPrompt+"\n\n"+text)
	if err != nil {
		return nil, err
	}

	points, err := parseKeyPoints(response)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("extracted key points", "count", len(points))
	return points, nil
}

// ExtractText converts page HTML into clean text for the model.
//
// The main article region is isolated with readability and converted to
// markdown so headings and lists survive. When readability finds no
// article the whole document is converted instead. Returns "" when
// nothing extractable remains.
func ExtractText(html, pageURL string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}

	if md := readableMarkdown(html, pageURL); md != "" {
		return md
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}

// readableMarkdown isolates the main article region and converts it to
// markdown. Returns "" when the page has no identifiable article content.
func readableMarkdown(html, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return ""
	}

	content := strings.TrimSpace(article.Content)
	if content == "" {
		return ""
	}

	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}

// truncate caps text at limit characters, appending an ellipsis marker
// when content was dropped.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
