package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Audit     AuditConfig
	Fetch     FetchConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// CacheConfig controls the analyze response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached audits.
	MaxEntries int // default: 500
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages caps concurrently open browser contexts.
	MaxPages int // default: 4

	// DefaultProxy is the proxy URL for all browser and fetch traffic.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// AuditConfig controls the browser passes.
type AuditConfig struct {
	// DefaultTimeout bounds each pass when the caller does not set one.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum timeout accepted from a client.
	MaxTimeout time.Duration // default: 120s

	// ScreenshotSettle is the extra wait after network idle before capture.
	ScreenshotSettle time.Duration // default: 1s
}

// FetchConfig controls the plain HTTP fetcher.
type FetchConfig struct {
	Timeout      time.Duration // default: 30s
	MaxRedirects int           // default: 5
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client IP.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("LPAUDIT_HOST", "0.0.0.0"),
			Port: envIntOr("LPAUDIT_PORT", 8080),
			Mode: envOr("LPAUDIT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("LPAUDIT_HEADLESS", true),
			MaxPages:     envIntOr("LPAUDIT_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("LPAUDIT_PROXY"),
			NoSandbox:    envBoolOr("LPAUDIT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("LPAUDIT_BROWSER_BIN"),
		},
		Audit: AuditConfig{
			DefaultTimeout:   envDurationOr("LPAUDIT_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:       envDurationOr("LPAUDIT_MAX_TIMEOUT", 120*time.Second),
			ScreenshotSettle: envDurationOr("LPAUDIT_SCREENSHOT_SETTLE", time.Second),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("LPAUDIT_FETCH_TIMEOUT", 30*time.Second),
			MaxRedirects: envIntOr("LPAUDIT_MAX_REDIRECTS", 5),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LPAUDIT_RATE_RPS", 2.0),
			Burst:             envIntOr("LPAUDIT_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LPAUDIT_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("LPAUDIT_LOG_LEVEL", "info"),
			Format: envOr("LPAUDIT_LOG_FORMAT", "text"),
		},
	}
}

// Validate checks the configuration for values that would make the
// browser or server misbehave.
func (c *Config) Validate() error {
	if c.Audit.DefaultTimeout <= 0 || c.Audit.MaxTimeout <= 0 || c.Fetch.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Browser.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Fetch.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	return nil
}

// ClampTimeout returns d bounded by MaxTimeout, or DefaultTimeout when d is zero.
func (a AuditConfig) ClampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return a.DefaultTimeout
	}
	if a.MaxTimeout > 0 && d > a.MaxTimeout {
		return a.MaxTimeout
	}
	return d
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
