package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Crawl     CrawlConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Sink      SinkConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls page fetching.
type FetchConfig struct {
	// DefaultTimeout is the per-request fetch timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s
}

// CrawlConfig controls the crawl driver defaults and the optional
// autostart crawl launched at boot.
type CrawlConfig struct {
	// StartURLs seeds an autostart crawl when non-empty.
	StartURLs []string

	// MaxRequests is the page fetch cap per crawl.
	MaxRequests int // default: 50

	// MaxDepth is the link-following depth from the start URLs.
	MaxDepth int // default: 3

	// FollowInternalOnly restricts link following to the start hosts.
	FollowInternalOnly bool // default: true

	// RedactPII toggles the PII redaction pass on emitted records.
	RedactPII bool // default: true

	// RequestsPerSecond is the sustained fetch rate per crawl.
	RequestsPerSecond float64 // default: 2

	// Concurrency is the number of parallel fetch workers per crawl.
	Concurrency int // default: 4

	// StoreSnapshots toggles Markdown page snapshots alongside records.
	StoreSnapshots bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the extract response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// SinkConfig controls record persistence.
type SinkConfig struct {
	// Driver selects the sink backend: "jsonl" or "sqlite".
	Driver string // default: "jsonl"

	// Path is the output file for the selected driver.
	Path string // default: "data/records.jsonl"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FINSIFT_HOST", "0.0.0.0"),
			Port: envIntOr("FINSIFT_PORT", 8080),
			Mode: envOr("FINSIFT_MODE", "release"),
		},
		Fetch: FetchConfig{
			DefaultTimeout: envDurationOr("FINSIFT_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:     envDurationOr("FINSIFT_MAX_TIMEOUT", 120*time.Second),
		},
		Crawl: CrawlConfig{
			StartURLs:          envSliceOr("FINSIFT_START_URLS", nil),
			MaxRequests:        envIntOr("FINSIFT_MAX_REQUESTS", 50),
			MaxDepth:           envIntOr("FINSIFT_MAX_DEPTH", 3),
			FollowInternalOnly: envBoolOr("FINSIFT_FOLLOW_INTERNAL_ONLY", true),
			RedactPII:          envBoolOr("FINSIFT_REDACT_PII", true),
			RequestsPerSecond:  envFloatOr("FINSIFT_CRAWL_RPS", 2.0),
			Concurrency:        envIntOr("FINSIFT_CRAWL_CONCURRENCY", 4),
			StoreSnapshots:     envBoolOr("FINSIFT_STORE_SNAPSHOTS", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FINSIFT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("FINSIFT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FINSIFT_RATE_RPS", 5.0),
			Burst:             envIntOr("FINSIFT_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("FINSIFT_CACHE_MAX_ENTRIES", 1000),
		},
		Sink: SinkConfig{
			Driver: envOr("FINSIFT_SINK_DRIVER", "jsonl"),
			Path:   envOr("FINSIFT_SINK_PATH", "data/records.jsonl"),
		},
		Log: LogConfig{
			Level:  envOr("FINSIFT_LOG_LEVEL", "info"),
			Format: envOr("FINSIFT_LOG_FORMAT", "json"),
		},
	}
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

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
