// Package summarize turns fetched pages into executive summaries and
// categorized key points using an LLM chat completions API.
//
// # Pipeline
//
// Page HTML is reduced to clean markdown text, truncated to a fixed input
// budget, and sent to the model twice: once for a prose summary and once
// for key points in a strict JSON schema. Responses that are not valid
// JSON get one repair pass before parsing; anything still unusable
// surfaces as a typed error instead of a silently empty result.
//
// # Failure handling
//
// Summarization failures never abort a crawl. Summarize always returns a
// usable Result, placeholder summary included, so callers can record the
// outcome alongside the error and move on to the next page.
package summarize
