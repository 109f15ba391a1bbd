package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sitegist/sitegist/internal/model"
)

// navSelectors pick out anchors inside navigation chrome. Menu and footer
// links name the pages a site considers important, so they are collected
// separately from body links and merged in by the scraper.
var navSelectors = []string{
	"nav a[href]",
	".nav a[href]",
	".navigation a[href]",
	".menu a[href]",
	".header a[href]",
	".footer a[href]",
	`[role="navigation"] a[href]`,
	".main-nav a[href]",
	".primary-nav a[href]",
}

// Parser extracts titles, links, and page elements from parsed HTML.
//
// Design decision: We parse with goquery rather than walking the node tree
// by hand because:
//  1. The content scorer already produces a goquery document, so one parse
//     serves both scoring and extraction
//  2. Navigation links are defined by CSS selectors, which goquery matches
//     directly
//  3. It tolerates the malformed HTML common on marketing sites
type Parser struct {
	// base is the URL of the page being parsed, used for resolving
	// relative links.
	base *url.URL
}

// ParseResult contains everything extracted from one HTML page.
//
// Design decision: We return a single result struct rather than offering
// per-field methods because:
//  1. One pass over the document collects everything
//  2. Links, elements, and meta tags are consumed together downstream
type ParseResult struct {
	// Title is the page title from the <title> tag, trimmed.
	Title string

	// Links are all resolved anchor URLs in document order, duplicates
	// included.
	Links []string

	// NavLinks are the resolved anchor URLs found inside navigation
	// chrome, deduplicated because the selectors overlap.
	NavLinks []string

	// Anchors are the anchor elements with their text and rel attributes.
	Anchors []model.Element

	// Images are the image sources, favicons included.
	Images []model.Element

	// Scripts are the external script sources.
	Scripts []model.Element

	// Meta maps meta tag names (or OpenGraph properties) to their content.
	Meta map[string]string
}

// NewParser creates a Parser that resolves relative links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{base: u}, nil
}

// Parse extracts the title, links, elements, and meta tags from doc.
func (p *Parser) Parse(doc *goquery.Document) *ParseResult {
	result := &ParseResult{
		Meta: make(map[string]string),
	}

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := p.resolve(href)
		if resolved == "" {
			return
		}
		result.Links = append(result.Links, resolved)
		result.Anchors = append(result.Anchors, model.Element{
			Source: resolved,
			Text:   strings.TrimSpace(sel.Text()),
			Rel:    sel.AttrOr("rel", ""),
		})
	})

	navSeen := make(map[string]bool)
	for _, selector := range navSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			resolved := p.resolve(href)
			if resolved == "" || navSeen[resolved] {
				return
			}
			navSeen[resolved] = true
			result.NavLinks = append(result.NavLinks, resolved)
		})
	}

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		resolved := p.resolve(src)
		if resolved == "" {
			return
		}
		result.Images = append(result.Images, model.Element{
			Source: resolved,
			Alt:    sel.AttrOr("alt", ""),
		})
	})

	// Favicons count as images for the media classifiers.
	doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if resolved := p.resolve(href); resolved != "" {
			result.Images = append(result.Images, model.Element{Source: resolved})
		}
	})

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if resolved := p.resolve(src); resolved != "" {
			result.Scripts = append(result.Scripts, model.Element{Source: resolved})
		}
	})

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name == "" {
			name = sel.AttrOr("property", "") // OpenGraph uses property
		}
		content := sel.AttrOr("content", "")
		if name != "" && content != "" {
			result.Meta[name] = content
		}
	})

	return result
}

// resolve resolves href against the page URL and drops pseudo-links.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication possible
//  2. Same-domain checks need absolute URLs
//  3. Reduces ambiguity in results
func (p *Parser) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.base.ResolveReference(u).String()
}
