// Package robots provides robots.txt compliance checking with per-host
// caching. Lookups fail open: when robots.txt cannot be fetched or parsed,
// crawling proceeds rather than silently stalling on network hiccups.
package robots
