package insights

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/sitegist/sitegist/internal/model"
)

// MonetizationClassifier detects how a site takes money.
// A payment provider integration is hard evidence of live revenue
// intent, and a pricing page shows the company is ready to name
// numbers publicly.
type MonetizationClassifier struct {
	// providerPatterns maps payment providers to detection regexes,
	// matched against raw HTML and script references.
	providerPatterns map[model.PaymentProvider]*regexp.Regexp

	// pricingPath matches pricing-page URL paths.
	pricingPath *regexp.Regexp
}

// NewMonetizationClassifier creates a new MonetizationClassifier.
func NewMonetizationClassifier() *MonetizationClassifier {
	return &MonetizationClassifier{
		providerPatterns: map[model.PaymentProvider]*regexp.Regexp{
			model.PaymentProviderStripe:       regexp.MustCompile(`(?i)js\.stripe\.com|checkout\.stripe\.com|buy\.stripe\.com`),
			model.PaymentProviderPayPal:       regexp.MustCompile(`(?i)paypal\.com/sdk|paypalobjects\.com|paypal\.me/`),
			model.PaymentProviderPaddle:       regexp.MustCompile(`(?i)cdn\.paddle\.com|paddle\.js|buy\.paddle\.com`),
			model.PaymentProviderShopify:      regexp.MustCompile(`(?i)cdn\.shopify\.com|myshopify\.com|shopify\.com/checkout`),
			model.PaymentProviderLemonSqueezy: regexp.MustCompile(`(?i)lemonsqueezy\.com`),
			model.PaymentProviderGumroad:      regexp.MustCompile(`(?i)gumroad\.com`),
			model.PaymentProviderBraintree:    regexp.MustCompile(`(?i)js\.braintreegateway\.com`),
		},
		pricingPath: regexp.MustCompile(`(?i)^/(pricing|plans)/?$`),
	}
}

// Name returns the classifier name.
func (c *MonetizationClassifier) Name() string {
	return "monetization"
}

// Category returns the classifier category.
func (c *MonetizationClassifier) Category() model.Category {
	return model.CategoryMonetization
}

// Classify searches for payment provider references and pricing pages.
func (c *MonetizationClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	insights := make([]model.Insight, 0)
	seenProviders := make(map[model.PaymentProvider]bool)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		content := string(page.Raw)
		for _, script := range page.Scripts {
			content += "\n" + script.Source
		}

		for provider, pattern := range c.providerPatterns {
			if seenProviders[provider] || !pattern.MatchString(content) {
				continue
			}
			seenProviders[provider] = true

			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "payment_provider",
				Title:    provider.DisplayName() + " integration",
				Detail:   "References to " + provider.DisplayName() + " indicate live payment acceptance.",
				Value:    provider.String(),
				Location: page.URL,
			})
		}
	}

	insights = append(insights, c.pricingPages(src)...)
	return insights, nil
}

// pricingPages reports crawled pages whose path is a pricing page.
func (c *MonetizationClassifier) pricingPages(src *Source) []model.Insight {
	if src.Report == nil {
		return nil
	}

	insights := make([]model.Insight, 0)
	for _, res := range src.Report.Results {
		if res.Page == nil || !res.Succeeded() {
			continue
		}
		u, err := url.Parse(res.Page.URL)
		if err != nil || !c.pricingPath.MatchString(u.Path) {
			continue
		}

		insights = append(insights, model.Insight{
			Category: c.Category(),
			Type:     "pricing_page",
			Title:    "Public pricing page",
			Detail:   "The site publishes a pricing page, so the monetization model is stated openly.",
			Value:    strings.TrimPrefix(u.Path, "/"),
			Location: res.Page.URL,
		})
	}
	return insights
}

// Ensure MonetizationClassifier implements Classifier.
var _ Classifier = (*MonetizationClassifier)(nil)
