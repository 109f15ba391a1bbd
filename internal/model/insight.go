package model

// Insight is a deterministic finding mined from crawled pages, as opposed
// to a key point produced by the LLM. Examples: a detected analytics ID,
// a payment provider script, a social profile link.
type Insight struct {
	// Category is the business theme the insight belongs to.
	Category Category `json:"category"`

	// Type is a machine-readable insight type, e.g. "analytics_id",
	// "payment_provider", "social_profile".
	Type string `json:"type"`

	// Title is a short human-readable headline.
	Title string `json:"title"`

	// Detail explains what was found and why it matters.
	Detail string `json:"detail"`

	// Value is the concrete detected value (an ID, a domain, an email).
	Value string `json:"value"`

	// Location is where the insight was found, usually a page URL.
	Location string `json:"location"`
}

// Key returns the deduplication key for the insight.
// Two insights with the same title and value describe the same fact even
// when found on different pages, so only the first is kept.
func (i Insight) Key() string {
	return i.Title + "|" + i.Value
}
