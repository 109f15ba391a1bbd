// Package sitemap discovers and parses XML sitemaps for a target site.
// It probes the conventional sitemap locations, follows Sitemap directives
// from robots.txt, recurses through sitemap index files, and falls back to
// the site's base URL when no sitemap yields any entries.
package sitemap
