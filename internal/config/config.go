package config

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sitegist/sitegist/internal/model"
)

// Default configuration values.
// These values are chosen to be polite to target websites while still
// completing a typical scrape in a reasonable amount of time.
const (
	// DefaultTimeout is the per-request HTTP timeout. 30 seconds is generous
	// enough for slow origins and large pages without letting a single hung
	// connection stall the whole crawl.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth is the maximum recursion depth for link discovery.
	// Depth 0 is the initial prioritized set; each recursive wave adds one.
	// 10 levels is far deeper than most sites' navigation actually goes.
	DefaultMaxDepth = 10

	// DefaultMaxPages is the maximum number of pages to scrape per site.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultDelay is the stagger delay between request launches within a
	// crawl batch. This is a politeness setting to avoid hammering origins.
	// 1 second is conservative and respectful of server resources.
	DefaultDelay = 1 * time.Second

	// DefaultConcurrentRequests is the number of pages fetched in parallel.
	// Higher values increase throughput but risk rate limiting; five
	// concurrent requests is a safe ceiling for most sites.
	DefaultConcurrentRequests = 5

	// DefaultContentThreshold is the minimum URL score a discovered page must
	// reach to be scraped. 0.4 admits anything not explicitly penalized
	// (base score is 0.5) while dropping utility pages like /login or /cart.
	DefaultContentThreshold = 0.4

	// DefaultCacheDuration is how long fetched pages stay valid in the local
	// page cache. One hour keeps repeated runs against the same site cheap
	// without serving stale content across editing sessions.
	DefaultCacheDuration = 1 * time.Hour

	// DefaultModel is the LLM used for summarization.
	DefaultModel = "Llama-4-Maverick-17B-128E-Instruct-FP8"

	// DefaultAPIBaseURL is the chat completions endpoint for the Llama API.
	DefaultAPIBaseURL = "https://api.llama.com/v1/chat/completions"

	// APIKeyEnv is the environment variable holding the Llama API key.
	// The key is read from the environment (or a .env file) rather than a
	// CLI flag so it never appears in shell history or process listings.
	APIKeyEnv = "LLAMA_API_KEY" //nolint:gosec // Environment variable name, not a credential

	// DefaultUserAgent identifies sitegist in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scraper traffic in their logs.
	DefaultUserAgent = "sitegist-scraper/1.0"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegist"
)

// Config holds all configuration options for sitegist.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, SummarizeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Targets is the list of website URLs to scrape.
	// Must contain at least one entry. Populated from the positional CLI
	// argument or from the --list file.
	Targets []string

	// MaxDepth is the maximum recursion depth for link discovery.
	// Pages found in sitemaps start at depth 0; links discovered on a page
	// at depth N are queued at depth N+1 and never beyond MaxDepth.
	MaxDepth int

	// MaxPages is the maximum number of pages to scrape per site.
	// Prioritization truncates the candidate list to this many entries, and
	// recursive discovery stops once the total reaches it.
	MaxPages int

	// Delay is the stagger delay between request launches within a batch.
	// Lower values may cause rate limiting or service disruption.
	// Zero disables staggering entirely.
	Delay time.Duration

	// ConcurrentRequests is the number of pages processed in parallel.
	ConcurrentRequests int

	// ContentThreshold is the minimum URL score for a page to be scraped.
	// Must be within [0, 1].
	ContentThreshold float64

	// CacheDuration is how long cached pages remain valid.
	// Zero disables the cache entirely.
	CacheDuration time.Duration

	// Model is the LLM model identifier sent with summarization requests.
	Model string

	// APIBaseURL is the chat completions endpoint.
	// Overridable for testing and for self-hosted compatible endpoints.
	APIBaseURL string

	// APIKey is the bearer token for the LLM API.
	// Loaded from the LLAMA_API_KEY environment variable, never from a flag.
	// When empty, summarization is skipped rather than failing the scrape.
	APIKey string

	// Timeout is the HTTP timeout for each request.
	// This applies to individual requests, not the overall scrape duration.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// Also used when evaluating robots.txt rules.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// OutputPath is the output file path for the JSON results.
	// When empty, a name is derived from the target host
	// (e.g., "example_com_scraping_results.json").
	OutputPath string

	// MarkdownPath is an optional output path for a Markdown report.
	// When empty, no Markdown report is written.
	MarkdownPath string

	// ListFile is a path to a file with one target URL per line.
	// Used for batch mode; blank lines and lines starting with '#' are skipped.
	ListFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitegist.yaml in the current
	// directory, the XDG config directory, and the user's home directory.
	ConfigFilePath string

	// SiteProfiles holds per-host profiles loaded from the config file.
	// This is populated by LoadConfigFile and consulted during fetching.
	SiteProfiles *File

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// Quiet suppresses everything below slog.LevelError.
	// Mutually exclusive with Verbose.
	Quiet bool

	// DryRun previews the configuration and prioritized URL list without
	// fetching page content or calling the LLM.
	DryRun bool

	// NoInsights disables the deterministic insight classifiers.
	NoInsights bool

	// SkipSummaries disables LLM summarization even when an API key is set.
	// Summaries are also skipped automatically when APIKey is empty.
	SkipSummaries bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, page limits).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:            DefaultTimeout,
		MaxDepth:           DefaultMaxDepth,
		MaxPages:           DefaultMaxPages,
		Delay:              DefaultDelay,
		ConcurrentRequests: DefaultConcurrentRequests,
		ContentThreshold:   DefaultContentThreshold,
		CacheDuration:      DefaultCacheDuration,
		Model:              DefaultModel,
		APIBaseURL:         DefaultAPIBaseURL,
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for sitegist.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sitegist
// On macOS: ~/Library/Application Support/sitegist
// On Windows: %LOCALAPPDATA%\sitegist
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitegist.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/sitegist
// On macOS: ~/Library/Application Support/sitegist
// On Windows: %APPDATA%\sitegist
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sitegist.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/sitegist
// On macOS: ~/Library/Caches/sitegist
// On Windows: %LOCALAPPDATA%\sitegist\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scraping begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to scrape
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Depth and page limits must be positive; zero would mean no scraping
	if c.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// Delay must be non-negative; zero means no stagger
	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	// Concurrency must be positive
	if c.ConcurrentRequests <= 0 {
		return ErrInvalidConcurrency
	}

	// Threshold is compared against scores clamped to [0,1]
	if c.ContentThreshold < 0 || c.ContentThreshold > 1 {
		return ErrInvalidThreshold
	}

	// CacheDuration must be non-negative; zero disables the cache
	if c.CacheDuration < 0 {
		return ErrInvalidCacheDuration
	}

	// MaxBodySize must be non-negative if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// Verbose and Quiet are mutually exclusive
	if c.Verbose && c.Quiet {
		return ErrConflictingVerbosity
	}

	return nil
}

// LogLevel maps the verbosity flags to an slog level.
// Verbose wins over the default, Quiet suppresses everything below errors.
func (c *Config) LogLevel() slog.Level {
	switch {
	case c.Verbose:
		return slog.LevelDebug
	case c.Quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Snapshot returns the subset of the configuration that is recorded in
// scrape reports, so saved results document the settings that produced them.
func (c *Config) Snapshot() model.ConfigSnapshot {
	return model.ConfigSnapshot{
		MaxDepth:           c.MaxDepth,
		MaxPages:           c.MaxPages,
		Delay:              c.Delay.Seconds(),
		ConcurrentRequests: c.ConcurrentRequests,
		ContentThreshold:   c.ContentThreshold,
	}
}
