// Package fetch provides the HTTP layer for retrieving pages from target
// websites. It builds tuned HTTP clients, applies per-site profiles
// (cookies, headers, user agent), decodes non-UTF-8 responses, and
// consults the page cache before touching the network.
package fetch
