package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category classifies key points and insights by business theme.
// The set matches the categories the summarization prompts ask for, so a
// category parsed from an LLM response and a category assigned by a
// deterministic classifier land in the same buckets.
type Category string

// Category constants for classified findings.
const (
	// CategoryProductMarketFit covers audience, community, and traction signals.
	CategoryProductMarketFit Category = "product_market_fit"
	// CategoryVisualContent covers imagery, media, and content production signals.
	CategoryVisualContent Category = "visual_content"
	// CategoryMonetization covers pricing, payments, and revenue signals.
	CategoryMonetization Category = "monetization"
	// CategoryDataAnalytics covers measurement and tracking tooling.
	CategoryDataAnalytics Category = "data_analytics"
	// CategoryCompetitiveLandscape covers partners, integrations, and ecosystem references.
	CategoryCompetitiveLandscape Category = "competitive_landscape"
	// CategoryBusinessModel covers sales motion, contact channels, and positioning.
	CategoryBusinessModel Category = "business_model"
	// CategoryTechnicalInsights covers the technology stack and infrastructure.
	CategoryTechnicalInsights Category = "technical_insights"
	// CategoryUnknown indicates an unrecognized category.
	CategoryUnknown Category = "unknown"
)

// String returns the string representation of the Category.
func (c Category) String() string {
	if c == "" {
		return string(CategoryUnknown)
	}
	return string(c)
}

// IsValid checks if the category is a known valid value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProductMarketFit, CategoryVisualContent, CategoryMonetization,
		CategoryDataAnalytics, CategoryCompetitiveLandscape, CategoryBusinessModel,
		CategoryTechnicalInsights:
		return true
	default:
		return false
	}
}

// AllCategories returns every valid category in report ordering.
func AllCategories() []Category {
	return []Category{
		CategoryProductMarketFit,
		CategoryVisualContent,
		CategoryMonetization,
		CategoryDataAnalytics,
		CategoryCompetitiveLandscape,
		CategoryBusinessModel,
		CategoryTechnicalInsights,
	}
}

// ParseCategory converts a string into a Category.
// It accepts the canonical snake_case form as well as the display form
// ("Product Market Fit") and hyphenated variants that LLM responses
// occasionally produce. Unrecognized input maps to CategoryUnknown.
func ParseCategory(s string) Category {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	c := Category(normalized)
	if c.IsValid() {
		return c
	}
	return CategoryUnknown
}

// DisplayName returns the human-readable form of the category,
// e.g. "product_market_fit" -> "Product Market Fit".
func (c Category) DisplayName() string {
	if info, ok := categoryInfoMapping[c]; ok {
		return info.DisplayName
	}
	// Fall back to title-casing the raw value for unknown categories.
	return titleCase(c.String())
}

// titleCase converts a snake_case or lowercase identifier to a
// title-cased display string.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// Description returns a short explanation of what the category covers.
// Returns an empty string for unknown categories.
func (c Category) Description() string {
	if info, ok := categoryInfoMapping[c]; ok {
		return info.Description
	}
	return ""
}

// CategoryInfo holds display metadata for a category.
type CategoryInfo struct {
	// DisplayName is the human-readable category name.
	DisplayName string
	// Description explains what kind of findings belong to the category.
	Description string
}

// categoryInfoMapping maps each category to its display metadata.
// Report writers use this to render section headers and legends without
// hardcoding strings in multiple places.
var categoryInfoMapping = map[Category]CategoryInfo{
	CategoryProductMarketFit: {
		DisplayName: "Product Market Fit",
		Description: "Audience, community presence, and traction signals.",
	},
	CategoryVisualContent: {
		DisplayName: "Visual Content",
		Description: "Imagery, media assets, and content production signals.",
	},
	CategoryMonetization: {
		DisplayName: "Monetization",
		Description: "Pricing, payment providers, and revenue model signals.",
	},
	CategoryDataAnalytics: {
		DisplayName: "Data Analytics",
		Description: "Measurement, tracking, and analytics tooling in use.",
	},
	CategoryCompetitiveLandscape: {
		DisplayName: "Competitive Landscape",
		Description: "Partners, integrations, and ecosystem references.",
	},
	CategoryBusinessModel: {
		DisplayName: "Business Model",
		Description: "Sales motion, contact channels, and positioning.",
	},
	CategoryTechnicalInsights: {
		DisplayName: "Technical Insights",
		Description: "Technology stack and infrastructure choices.",
	},
}
