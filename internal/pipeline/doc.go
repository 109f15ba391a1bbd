// Package pipeline provides a framework for executing scrape steps in
// sequence.
//
// The pipeline pattern is used to process websites through multiple
// stages: robots.txt checks, sitemap discovery, URL prioritization,
// crawling, recursive link discovery, and insight classification. Each
// stage is implemented as a Step that receives the accumulated report
// and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running scrapes
// 4. It lets the CLI compose reduced pipelines (e.g. without insights)
//
// The pipeline supports both individual scrapes and batch processing
// with concurrency control using errgroup.
package pipeline
