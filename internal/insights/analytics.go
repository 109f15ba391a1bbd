package insights

import (
	"context"
	"regexp"

	"github.com/sitegist/sitegist/internal/model"
)

// AnalyticsClassifier detects analytics and tracking tooling.
// The tracking a company installs says a lot about its data discipline:
// a bare site, a single GA4 tag, and a GA4 + Hotjar + pixel stack are
// three different stages of measurement maturity.
type AnalyticsClassifier struct {
	// patterns maps analytics platforms to their ID patterns.
	// Matched against raw HTML, since tracking IDs live inside inline
	// scripts that the text snapshot strips out.
	patterns map[model.AnalyticsPlatform]*regexp.Regexp
}

// NewAnalyticsClassifier creates a new AnalyticsClassifier.
func NewAnalyticsClassifier() *AnalyticsClassifier {
	return &AnalyticsClassifier{
		patterns: map[model.AnalyticsPlatform]*regexp.Regexp{
			// Google Analytics Universal (UA-XXXXX-Y)
			model.AnalyticsPlatformGoogleUA: regexp.MustCompile(`UA-\d{4,10}-\d{1,4}`),

			// Google Analytics 4 (G-XXXXXXXXXX)
			model.AnalyticsPlatformGoogleGA4: regexp.MustCompile(`G-[A-Z0-9]{10,12}`),

			// Google Tag Manager (GTM-XXXXXX)
			model.AnalyticsPlatformGTM: regexp.MustCompile(`GTM-[A-Z0-9]{6,8}`),

			// Meta (Facebook) Pixel
			model.AnalyticsPlatformMetaPixel: regexp.MustCompile(`fbq\s*\(\s*['"]init['"]\s*,\s*['"](\d{15,16})['"]`),

			// Hotjar
			model.AnalyticsPlatformHotjar: regexp.MustCompile(`hjid\s*:\s*(\d{6,7})`),

			// Microsoft Clarity
			model.AnalyticsPlatformClarity: regexp.MustCompile(`clarity\s*\(\s*['"]set['"]\s*,\s*['"]([a-z0-9]+)['"]`),

			// Yandex Metrica
			model.AnalyticsPlatformYandex: regexp.MustCompile(`ym\s*\(\s*(\d{8,9})`),

			// Matomo/Piwik
			model.AnalyticsPlatformMatomo: regexp.MustCompile(`_paq\.push\s*\(\s*\[\s*['"]setSiteId['"]\s*,\s*['"]?(\d+)['"]?\s*\]`),
		},
	}
}

// Name returns the classifier name.
func (c *AnalyticsClassifier) Name() string {
	return "analytics"
}

// Category returns the classifier category.
func (c *AnalyticsClassifier) Category() model.Category {
	return model.CategoryDataAnalytics
}

// Classify searches raw page HTML for tracking IDs.
func (c *AnalyticsClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	insights := make([]model.Insight, 0)
	seen := make(map[string]bool)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		content := string(page.Raw)

		for platform, pattern := range c.patterns {
			for _, match := range pattern.FindAllStringSubmatch(content, -1) {
				// Use the first capture group when the pattern has one,
				// otherwise the full match is the ID.
				id := match[0]
				if len(match) > 1 && match[1] != "" {
					id = match[1]
				}

				key := string(platform) + ":" + id
				if seen[key] {
					continue
				}
				seen[key] = true

				insights = append(insights, model.Insight{
					Category: c.Category(),
					Type:     "analytics_id",
					Title:    c.title(platform),
					Detail:   "A tracking ID for " + c.platformName(platform) + " is embedded in the page.",
					Value:    id,
					Location: page.URL,
				})
			}
		}
	}

	return insights, nil
}

// title returns a human-readable headline for the platform.
func (c *AnalyticsClassifier) title(platform model.AnalyticsPlatform) string {
	return c.platformName(platform) + " installed"
}

// platformName returns a display name for the platform.
func (c *AnalyticsClassifier) platformName(platform model.AnalyticsPlatform) string {
	names := map[model.AnalyticsPlatform]string{
		model.AnalyticsPlatformGoogleUA:  "Google Analytics (Universal)",
		model.AnalyticsPlatformGoogleGA4: "Google Analytics 4",
		model.AnalyticsPlatformGTM:       "Google Tag Manager",
		model.AnalyticsPlatformMetaPixel: "Meta Pixel",
		model.AnalyticsPlatformHotjar:    "Hotjar",
		model.AnalyticsPlatformClarity:   "Microsoft Clarity",
		model.AnalyticsPlatformYandex:    "Yandex Metrica",
		model.AnalyticsPlatformMatomo:    "Matomo",
	}
	if name, ok := names[platform]; ok {
		return name
	}
	return "an analytics platform"
}

// Ensure AnalyticsClassifier implements Classifier.
var _ Classifier = (*AnalyticsClassifier)(nil)
