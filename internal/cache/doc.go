// Package cache provides the SQLite-backed page cache for sitegist.
//
// The cache stores raw fetch results keyed by URL so repeated scrapes of
// the same site within the configured cache duration skip the network
// entirely. Only the fetch artifact is cached (status, headers, body,
// snapshot, hash); scores, summaries, and insights are always recomputed,
// so cached runs still reflect the current scoring and prompt logic.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// stores because:
// 1. No external dependencies - the cache is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Entries expire by TTL rather than eviction: Get ignores rows older than
// the cache duration and Prune deletes them.
package cache
