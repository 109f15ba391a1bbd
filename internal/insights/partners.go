package insights

import (
	"context"
	"net/url"
	"strings"

	"github.com/sitegist/sitegist/internal/model"
)

// PartnersClassifier surfaces the external domains a site links to.
// Outbound links to other companies hint at the ecosystem a startup
// plays in: integrations, customers, press, investors.
//
// Infrastructure domains (CDNs, font hosts, tag managers) are excluded,
// as are social platforms, which the social classifier already covers.
type PartnersClassifier struct{}

// infraDomains are shared-infrastructure hosts that appear on most sites
// and carry no partnership signal.
var infraDomains = []string{
	"cdn.jsdelivr.net", "cdnjs.cloudflare.com", "unpkg.com",
	"fonts.googleapis.com", "fonts.gstatic.com", "ajax.googleapis.com",
	"www.googletagmanager.com", "www.google-analytics.com",
	"connect.facebook.net", "static.doubleclick.net",
	"www.gstatic.com", "maps.googleapis.com", "use.typekit.net",
	"polyfill.io", "code.jquery.com",
}

// socialDomains are hosts the social classifier owns.
var socialDomains = []string{
	"twitter.com", "x.com", "facebook.com", "instagram.com",
	"linkedin.com", "github.com", "youtube.com", "tiktok.com",
	"discord.gg", "discord.com", "reddit.com", "medium.com",
	"t.me", "youtu.be",
}

// NewPartnersClassifier creates a new PartnersClassifier.
func NewPartnersClassifier() *PartnersClassifier {
	return &PartnersClassifier{}
}

// Name returns the classifier name.
func (c *PartnersClassifier) Name() string {
	return "partners"
}

// Category returns the classifier category.
func (c *PartnersClassifier) Category() model.Category {
	return model.CategoryCompetitiveLandscape
}

// Classify collects external anchor domains across all pages.
func (c *PartnersClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	insights := make([]model.Insight, 0)
	seen := make(map[string]bool)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		for _, anchor := range page.Anchors {
			domain := c.externalDomain(anchor.Source, src.Host)
			if domain == "" || seen[domain] {
				continue
			}
			seen[domain] = true

			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "partner_domain",
				Title:    "Outbound link to " + domain,
				Detail:   "The site links out to " + domain + ", a possible partner, customer, or ecosystem reference.",
				Value:    domain,
				Location: page.URL,
			})
		}
	}

	return insights, nil
}

// externalDomain returns the linked host when it is a plausible partner
// domain, or an empty string when the link is internal, infrastructure,
// or a social platform.
func (c *PartnersClassifier) externalDomain(rawURL, ownHost string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == strings.ToLower(ownHost) {
		return ""
	}

	bare := strings.TrimPrefix(host, "www.")
	for _, infra := range infraDomains {
		if host == infra || bare == strings.TrimPrefix(infra, "www.") {
			return ""
		}
	}
	for _, social := range socialDomains {
		if bare == social || strings.HasSuffix(bare, "."+social) {
			return ""
		}
	}

	return bare
}

// Ensure PartnersClassifier implements Classifier.
var _ Classifier = (*PartnersClassifier)(nil)
