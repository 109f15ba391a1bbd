package config

// SiteProfile holds site-specific configuration for a single host.
// This allows customizing fetch behavior per website, e.g. sending an
// authentication cookie to scrape content behind a login.
type SiteProfile struct {
	// Cookie is an HTTP cookie to send when fetching this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	// If empty, the global UserAgent is used.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Delay overrides the global request delay for this site, in seconds.
	// If zero, the global Delay is used. Some sites need slower pacing.
	Delay float64 `yaml:"delay,omitempty"`

	// SkipPatterns are extra URL path patterns to skip during crawling,
	// in addition to the built-in skip list. Patterns are regular expressions
	// matched against the URL path.
	SkipPatterns []string `yaml:"skipPatterns,omitempty"`
}

// File represents the structure of the .sitegist.yaml configuration file.
type File struct {
	// Sites maps hostnames to their site-specific profiles.
	// Keys should be the bare hostname (e.g., "example.com").
	Sites map[string]SiteProfile `yaml:"sites,omitempty"`

	// Defaults contains a default profile applied to all sites
	// unless overridden in the site-specific profile.
	Defaults SiteProfile `yaml:"defaults,omitempty"`
}

// GetProfile returns the profile for a specific host.
// It merges the site-specific profile with defaults.
func (cf *File) GetProfile(host string) SiteProfile {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific profile if present
	if profile, ok := cf.Sites[host]; ok {
		if profile.Cookie != "" {
			result.Cookie = profile.Cookie
		}
		if profile.UserAgent != "" {
			result.UserAgent = profile.UserAgent
		}
		if profile.Delay != 0 {
			result.Delay = profile.Delay
		}
		if len(profile.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range profile.Headers {
				result.Headers[k] = v
			}
		}
		if len(profile.SkipPatterns) > 0 {
			result.SkipPatterns = profile.SkipPatterns
		}
	}

	return result
}

// IsZero reports whether the profile carries no overrides at all.
// Fetchers use this to skip profile plumbing for unconfigured hosts.
func (p SiteProfile) IsZero() bool {
	return p.Cookie == "" && p.UserAgent == "" && p.Delay == 0 &&
		len(p.Headers) == 0 && len(p.SkipPatterns) == 0
}
