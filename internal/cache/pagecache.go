package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitegist/sitegist/internal/model"
)

// dbFileName is the cache database file created inside the cache directory.
const dbFileName = "pages.db"

// sqliteTimeFormat is how fetch timestamps are stored. SQLite's datetime()
// produces the same format in UTC, so TTL comparisons work lexically.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// DB is the SQLite-backed page cache. It satisfies the fetch layer's
// PageCache interface: Get returns only entries younger than the TTL and
// Put upserts the latest fetch for a URL.
//
// Design decision: One database file per user (in the XDG cache dir)
// rather than per target site. Scrapes of many small sites share one
// connection and one file, and pruning covers everything at once.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// ttl is how long a cached fetch stays valid.
	ttl time.Duration
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the page cache in the specified directory.
// The ttl controls how long Get considers an entry fresh; a zero ttl
// effectively disables cache hits while still recording fetches.
func Open(dbDir string, ttl time.Duration, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("page cache not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open page cache: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &DB{
		db:     db,
		dbPath: dbPath,
		ttl:    ttl,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *DB) Close() error {
	return c.db.Close()
}

// Path returns the location of the cache database file.
func (c *DB) Path() string {
	return c.dbPath
}

// createTables creates the cache schema if it doesn't exist.
func (c *DB) createTables() error {
	schema := `
	-- Pages store one row per fetched URL, replaced on refetch
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		fetched_at DATETIME NOT NULL,
		status_code INTEGER NOT NULL,
		content_type TEXT,
		headers TEXT,
		snapshot TEXT,
		raw BLOB,
		raw_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);
	`

	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the cached page for a URL when a fresh entry exists.
// Expired entries, unknown URLs, and read errors all report a miss; a
// corrupt row is simply refetched rather than surfaced as an error.
func (c *DB) Get(ctx context.Context, rawURL string) (*model.Page, bool) {
	query := `
	SELECT url, fetched_at, status_code, content_type, headers, snapshot, raw, raw_hash
	FROM pages
	WHERE url = ? AND fetched_at > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(c.ttl.Seconds()))

	var (
		page        model.Page
		fetchedAt   string
		headersJSON string
	)

	err := c.db.QueryRowContext(ctx, query, rawURL, modifier).Scan(
		&page.URL,
		&fetchedAt,
		&page.StatusCode,
		&page.ContentType,
		&headersJSON,
		&page.Snapshot,
		&page.Raw,
		&page.Hash,
	)
	if err != nil {
		return nil, false
	}

	page.FetchedAt = parseTimestamp(fetchedAt)

	if headersJSON != "" {
		if err := json.Unmarshal([]byte(headersJSON), &page.Headers); err != nil {
			return nil, false
		}
	}

	return &page, true
}

// Put inserts or replaces the cached entry for the page's URL.
// A zero FetchedAt is stamped with the current time.
func (c *DB) Put(ctx context.Context, page *model.Page) error {
	headersJSON, err := json.Marshal(page.Headers)
	if err != nil {
		return fmt.Errorf("failed to serialize headers: %w", err)
	}

	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	query := `
	INSERT INTO pages (url, fetched_at, status_code, content_type, headers, snapshot, raw, raw_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		fetched_at = excluded.fetched_at,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		headers = excluded.headers,
		snapshot = excluded.snapshot,
		raw = excluded.raw,
		raw_hash = excluded.raw_hash
	`

	_, err = c.db.ExecContext(ctx, query,
		page.URL,
		fetchedAt.UTC().Format(sqliteTimeFormat),
		page.StatusCode,
		page.ContentType,
		string(headersJSON),
		page.Snapshot,
		page.Raw,
		page.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to store page: %w", err)
	}

	return nil
}

// Prune deletes all expired entries and returns how many were removed.
func (c *DB) Prune(ctx context.Context) (int64, error) {
	query := `DELETE FROM pages WHERE fetched_at <= datetime('now', ?)`
	modifier := fmt.Sprintf("-%d seconds", int(c.ttl.Seconds()))

	result, err := c.db.ExecContext(ctx, query, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}

	return result.RowsAffected()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	sqliteTimeFormat,          // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. Returns zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
