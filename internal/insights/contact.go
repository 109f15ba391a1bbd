package insights

import (
	"context"
	"regexp"
	"strings"

	"github.com/sitegist/sitegist/internal/model"
)

// ContactClassifier detects email addresses in page content.
// Published contact addresses reveal how a company wants to be reached
// and whether it runs on its own domain or a free provider.
type ContactClassifier struct {
	// emailRegex matches email addresses in text.
	emailRegex *regexp.Regexp
}

// freeMailProviders are consumer email domains. A company whose published
// contact lives on one of these reads differently from one on its own
// domain, so the detail text distinguishes them.
var freeMailProviders = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"protonmail.com", "proton.me", "aol.com", "icloud.com",
	"mail.com", "yandex.com", "gmx.com", "zoho.com",
}

// NewContactClassifier creates a new ContactClassifier.
func NewContactClassifier() *ContactClassifier {
	return &ContactClassifier{
		// Standard email regex that catches most valid addresses
		emailRegex: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	}
}

// Name returns the classifier name.
func (c *ContactClassifier) Name() string {
	return "contact"
}

// Category returns the classifier category.
func (c *ContactClassifier) Category() model.Category {
	return model.CategoryBusinessModel
}

// Classify searches for email addresses in all page snapshots.
func (c *ContactClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	insights := make([]model.Insight, 0)
	seen := make(map[string]bool)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		for _, email := range c.emailRegex.FindAllString(page.Snapshot, -1) {
			email = strings.ToLower(email)
			if seen[email] {
				continue
			}
			seen[email] = true

			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "contact_email",
				Title:    "Contact email address",
				Detail:   c.describeDomain(email),
				Value:    email,
				Location: page.URL,
			})
		}
	}

	return insights, nil
}

// describeDomain explains what the email's domain says about the company.
func (c *ContactClassifier) describeDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "An email address was published on the site."
	}
	domain := parts[1]

	for _, provider := range freeMailProviders {
		if domain == provider {
			return "A contact address on a free email provider (" + domain +
				"). The company may not run its own mail infrastructure yet."
		}
	}
	return "A contact address on the corporate domain " + domain +
		". Indicates an owned email setup and a named contact channel."
}

// Ensure ContactClassifier implements Classifier.
var _ Classifier = (*ContactClassifier)(nil)
