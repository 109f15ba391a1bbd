package insights

import (
	"context"
	"regexp"
	"strings"

	"github.com/sitegist/sitegist/internal/model"
)

// SocialClassifier detects social media profile links.
// An active social footprint is a product-market-fit signal: it shows
// where a company invests in community and which audiences it targets.
//
// This classifier checks for:
//   - Twitter/X profiles
//   - LinkedIn profiles and company pages
//   - GitHub organizations and repositories
//   - Facebook, Instagram, YouTube, TikTok
//   - Discord invites, Reddit communities, Medium publications
type SocialClassifier struct {
	// patterns maps platforms to their detection patterns.
	patterns map[model.SocialPlatform]*socialPattern
}

// socialPattern holds detection info for one platform.
type socialPattern struct {
	urlPatterns []*regexp.Regexp
	detail      string
}

// invalidHandles are path segments that look like profile handles but are
// platform plumbing (share dialogs, auth flows, search).
var invalidHandles = map[string]bool{
	"share": true, "sharer": true, "intent": true, "login": true,
	"signup": true, "home": true, "search": true, "hashtag": true,
	"plugins": true, "about": true, "privacy": true, "legal": true,
	"help": true, "settings": true, "explore": true,
}

// NewSocialClassifier creates a new SocialClassifier.
func NewSocialClassifier() *SocialClassifier {
	return &SocialClassifier{
		patterns: map[model.SocialPlatform]*socialPattern{
			model.SocialPlatformTwitter: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?(?:twitter\.com|x\.com)/([A-Za-z0-9_]{1,15})(?:/|$|\?)`),
				},
				detail: "A Twitter/X profile is linked from the site.",
			},
			model.SocialPlatformLinkedIn: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?linkedin\.com/in/([A-Za-z0-9_-]+)(?:/|$|\?)`),
					regexp.MustCompile(`(?i)https?://(?:www\.)?linkedin\.com/company/([A-Za-z0-9_-]+)(?:/|$|\?)`),
				},
				detail: "A LinkedIn presence is linked, usually the company page or founders.",
			},
			model.SocialPlatformGitHub: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?github\.com/([A-Za-z0-9_-]+)(?:/|$|\?)`),
				},
				detail: "A GitHub presence is linked. Public repositories signal developer-facing positioning.",
			},
			model.SocialPlatformFacebook: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?facebook\.com/([A-Za-z0-9.]+)(?:/|$|\?)`),
				},
				detail: "A Facebook page is linked from the site.",
			},
			model.SocialPlatformInstagram: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?instagram\.com/([A-Za-z0-9_.]+)(?:/|$|\?)`),
				},
				detail: "An Instagram profile is linked from the site.",
			},
			model.SocialPlatformYouTube: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/(?:channel|c|user)/([A-Za-z0-9_-]+)`),
					regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/@([A-Za-z0-9_.-]+)`),
				},
				detail: "A YouTube channel is linked, suggesting video content production.",
			},
			model.SocialPlatformTikTok: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?tiktok\.com/@([A-Za-z0-9_.]+)`),
				},
				detail: "A TikTok profile is linked from the site.",
			},
			model.SocialPlatformDiscord: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?discord\.(?:gg|com/invite)/([A-Za-z0-9]+)`),
				},
				detail: "A Discord invite is linked, suggesting a community-driven product.",
			},
			model.SocialPlatformReddit: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?reddit\.com/r/([A-Za-z0-9_]+)`),
				},
				detail: "A subreddit is linked, suggesting an existing user community.",
			},
			model.SocialPlatformMedium: {
				urlPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)https?://(?:www\.)?medium\.com/@?([A-Za-z0-9_.-]+)(?:/|$|\?)`),
				},
				detail: "A Medium publication is linked, suggesting content marketing activity.",
			},
		},
	}
}

// Name returns the classifier name.
func (c *SocialClassifier) Name() string {
	return "social"
}

// Category returns the classifier category.
func (c *SocialClassifier) Category() model.Category {
	return model.CategoryProductMarketFit
}

// Classify searches anchors and snapshots for social profile links.
func (c *SocialClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	insights := make([]model.Insight, 0)
	seen := make(map[string]bool)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		for _, candidate := range c.candidateTexts(page) {
			for platform, pattern := range c.patterns {
				for _, re := range pattern.urlPatterns {
					for _, match := range re.FindAllStringSubmatch(candidate, -1) {
						handle := c.handleFrom(match)
						if handle == "" {
							continue
						}

						key := string(platform) + ":" + strings.ToLower(handle)
						if seen[key] {
							continue
						}
						seen[key] = true

						insights = append(insights, model.Insight{
							Category: c.Category(),
							Type:     "social_profile",
							Title:    platform.DisplayName() + " presence",
							Detail:   pattern.detail,
							Value:    handle,
							Location: page.URL,
						})
					}
				}
			}
		}
	}

	return insights, nil
}

// candidateTexts returns the strings worth scanning on a page: anchor
// targets first (most reliable), then the text snapshot for plain-text
// mentions.
func (c *SocialClassifier) candidateTexts(page *model.Page) []string {
	texts := make([]string, 0, len(page.Anchors)+1)
	for _, a := range page.Anchors {
		if a.Source != "" {
			texts = append(texts, a.Source)
		}
	}
	texts = append(texts, page.Snapshot)
	return texts
}

// handleFrom extracts a usable handle from a regex match, filtering out
// platform plumbing paths that are not profiles.
func (c *SocialClassifier) handleFrom(match []string) string {
	if len(match) < 2 {
		return ""
	}
	handle := strings.TrimSuffix(match[1], "/")
	if handle == "" || invalidHandles[strings.ToLower(handle)] {
		return ""
	}
	return handle
}

// Ensure SocialClassifier implements Classifier.
var _ Classifier = (*SocialClassifier)(nil)
