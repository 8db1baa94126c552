// Package boe downloads consolidated legislation pages from the Spanish
// Official State Gazette (BOE).
package boe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the public BOE site.
const DefaultBaseURL = "https://www.boe.es"

// DefaultUserAgent identifies the fetcher to the gazette servers.
const DefaultUserAgent = "boelex/1.0 (+https://github.com/coolbeans/boelex)"

// DefaultRateLimit is the minimum interval between requests to one host.
const DefaultRateLimit = 1 * time.Second

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultCacheTTL is the time-to-live for cached pages.
const DefaultCacheTTL = 24 * time.Hour

// DefaultMaxBodyBytes bounds the size of a downloaded page. Large codes such
// as the Civil Code run to a few megabytes.
const DefaultMaxBodyBytes = 32 * 1024 * 1024

var (
	// ErrInvalidLawID is returned for identifiers that are not BOE-X-YYYY-N.
	ErrInvalidLawID = errors.New("invalid BOE law identifier")

	// ErrNotFound is returned when the gazette answers 404.
	ErrNotFound = errors.New("document not found")
)

var lawIDPattern = regexp.MustCompile(`^BOE-[A-Z]-\d{4}-\d+$`)

// Config holds fetcher settings.
type Config struct {
	// BaseURL is the gazette root, without trailing slash.
	BaseURL string `yaml:"base_url"`

	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`

	// RateLimit is the minimum interval between requests to the same host.
	RateLimit time.Duration `yaml:"rate_limit"`

	// MaxRetries is the number of extra attempts after a retryable failure
	// (network errors, 429 and 5xx). Attempt n waits n*RetryBackoff.
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// CacheDir enables the on-disk page cache when non-empty.
	CacheDir string        `yaml:"cache_dir"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DefaultConfig returns a Config with sensible defaults and caching disabled.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		UserAgent:    DefaultUserAgent,
		Timeout:      DefaultTimeout,
		RateLimit:    DefaultRateLimit,
		MaxRetries:   2,
		RetryBackoff: 2 * time.Second,
		CacheTTL:     DefaultCacheTTL,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaults.CacheTTL
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// ValidateLawID checks that id looks like a BOE identifier, e.g. BOE-A-1985-5392.
func ValidateLawID(id string) error {
	if !lawIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidLawID, id)
	}
	return nil
}

// LawURL returns the consolidated-text page of a law.
func LawURL(baseURL, lawID string) string {
	return strings.TrimRight(baseURL, "/") + "/buscar/act.php?id=" + lawID
}
