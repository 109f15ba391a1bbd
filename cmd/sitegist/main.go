// Package main provides the entry point for the sitegist CLI.
//
// Sitegist is an AI-assisted website scraping and analysis tool.
// It discovers a site's pages through robots.txt and sitemaps, scrapes
// the most content-rich ones, and produces summaries, content scores,
// and business insights.
//
// Usage:
//
//	sitegist scrape <url>
//	sitegist scrape --list <file>
//
// See --help for all available options.
package main

// main is the entry point for sitegist.
func main() {
	Execute()
}
