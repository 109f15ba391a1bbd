package insights

import (
	"context"
	"regexp"
	"strings"

	"github.com/sitegist/sitegist/internal/model"
)

// TechStackClassifier fingerprints the technology behind a site.
// The stack hints at engineering maturity: a hand-rolled Next.js app
// and a templated Shopify storefront imply very different teams.
//
// Signals, in decreasing reliability:
//   - Server and X-Powered-By response headers
//   - the generator meta tag
//   - framework-specific asset paths in script references
type TechStackClassifier struct {
	// generatorPattern extracts the generator meta tag from raw HTML.
	// The snapshot strips tags, so this one runs against page.Raw.
	generatorPattern *regexp.Regexp

	// scriptHints maps an asset path fragment to the framework it betrays.
	scriptHints map[string]string
}

// NewTechStackClassifier creates a new TechStackClassifier.
func NewTechStackClassifier() *TechStackClassifier {
	return &TechStackClassifier{
		generatorPattern: regexp.MustCompile(`(?i)<meta[^>]+name\s*=\s*["']generator["'][^>]+content\s*=\s*["']([^"']+)["']`),
		scriptHints: map[string]string{
			"/wp-content/":            "WordPress",
			"/wp-includes/":           "WordPress",
			"/_next/":                 "Next.js",
			"/_nuxt/":                 "Nuxt",
			"cdn.shopify.com":         "Shopify",
			"static.squarespace.com":  "Squarespace",
			"assets.website-files.com": "Webflow",
			"/gatsby-":                "Gatsby",
			"wix.com":                 "Wix",
		},
	}
}

// Name returns the classifier name.
func (c *TechStackClassifier) Name() string {
	return "techstack"
}

// Category returns the classifier category.
func (c *TechStackClassifier) Category() model.Category {
	return model.CategoryTechnicalInsights
}

// Classify examines headers, meta tags, and script paths for stack hints.
func (c *TechStackClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	insights := make([]model.Insight, 0)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		if server := page.GetHeader("Server"); server != "" {
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "server_software",
				Title:    "Web server identified",
				Detail:   "The Server response header names the web server software.",
				Value:    server,
				Location: page.URL,
			})
		}

		if poweredBy := page.GetHeader("X-Powered-By"); poweredBy != "" {
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "backend_technology",
				Title:    "Backend technology identified",
				Detail:   "The X-Powered-By response header names the backend runtime or framework.",
				Value:    poweredBy,
				Location: page.URL,
			})
		}

		if via := page.GetHeader("Via"); via != "" {
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "proxy_layer",
				Title:    "Proxy or CDN layer identified",
				Detail:   "The Via response header indicates an intermediate proxy or CDN.",
				Value:    via,
				Location: page.URL,
			})
		}

		if generator := c.generator(page); generator != "" {
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "site_generator",
				Title:    "Site generator identified",
				Detail:   "The generator meta tag names the CMS or static site generator.",
				Value:    generator,
				Location: page.URL,
			})
		}

		insights = append(insights, c.frameworkHints(page)...)
	}

	return insights, nil
}

// generator extracts the generator meta tag content, if present.
func (c *TechStackClassifier) generator(page *model.Page) string {
	if len(page.Raw) == 0 {
		return ""
	}
	match := c.generatorPattern.FindSubmatch(page.Raw)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(string(match[1]))
}

// frameworkHints inspects script references for framework asset paths.
func (c *TechStackClassifier) frameworkHints(page *model.Page) []model.Insight {
	insights := make([]model.Insight, 0)
	for _, script := range page.Scripts {
		lower := strings.ToLower(script.Source)
		for fragment, framework := range c.scriptHints {
			if !strings.Contains(lower, fragment) {
				continue
			}
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "frontend_framework",
				Title:    framework + " assets detected",
				Detail:   "Script asset paths match the " + framework + " build layout.",
				Value:    framework,
				Location: page.URL,
			})
		}
	}
	return insights
}

// Ensure TechStackClassifier implements Classifier.
var _ Classifier = (*TechStackClassifier)(nil)
