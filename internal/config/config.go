// Package config provides environment-driven configuration for degrees.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// ProviderKind names an association provider adapter.
type ProviderKind string

// Supported provider adapters.
const (
	ProviderStatic   ProviderKind = "static"
	ProviderHTTP     ProviderKind = "http"
	ProviderScrape   ProviderKind = "scrape"
	ProviderPostgres ProviderKind = "postgres"
)

// ParseProviderKind validates an adapter name.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch k := ProviderKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ProviderStatic, ProviderHTTP, ProviderScrape, ProviderPostgres:
		return k, nil
	default:
		return "", fmt.Errorf("provider must be one of static, http, scrape, postgres, got %q", s)
	}
}

// Config holds all application configuration values.
type Config struct {
	Provider        ProviderKind
	ProviderURL     string
	APIKey          Secret
	FixturePath     string
	DatabaseURL     Secret
	TenantID        string
	ScrapeItemClass string
	RateLimit       float64
	Retries         int
	RetryBackoff    time.Duration
	RequestTimeout  time.Duration
	CacheSize       int
	Port            string
	ListenHost      string
	CORSOrigins     []string
	ServerAPIKey    Secret
	LogLevel        string
	MaxDegreeLimit  int
}

// Load reads configuration from environment variables with sensible defaults
// and validates it.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating
// it, so callers can apply overrides first.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Provider:        ProviderKind(envOrDefault("DEGREES_PROVIDER", string(ProviderStatic))),
		ProviderURL:     envOrDefault("DEGREES_PROVIDER_URL", ""),
		APIKey:          Secret(envOrDefault("DEGREES_API_KEY", "")),
		FixturePath:     envOrDefault("DEGREES_FIXTURE", ""),
		DatabaseURL:     Secret(envOrDefault("DEGREES_DATABASE_URL", "")),
		TenantID:        envOrDefault("DEGREES_TENANT_ID", ""),
		ScrapeItemClass: envOrDefault("DEGREES_SCRAPE_ITEM_CLASS", "related-entity"),
		Port:            envOrDefault("PORT", "3040"),
		ListenHost:      envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		ServerAPIKey:    Secret(envOrDefault("DEGREES_SERVER_API_KEY", "")),
	}

	var err error

	if cfg.RateLimit, err = strconv.ParseFloat(envOrDefault("DEGREES_RATE_LIMIT", "5"), 64); err != nil {
		return nil, fmt.Errorf("DEGREES_RATE_LIMIT must be a number: %w", err)
	}

	if cfg.Retries, err = strconv.Atoi(envOrDefault("DEGREES_RETRIES", "3")); err != nil {
		return nil, fmt.Errorf("DEGREES_RETRIES must be an integer: %w", err)
	}

	if cfg.RetryBackoff, err = time.ParseDuration(envOrDefault("DEGREES_RETRY_BACKOFF", "200ms")); err != nil {
		return nil, fmt.Errorf("DEGREES_RETRY_BACKOFF must be a duration: %w", err)
	}

	if cfg.RequestTimeout, err = time.ParseDuration(envOrDefault("DEGREES_REQUEST_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("DEGREES_REQUEST_TIMEOUT must be a duration: %w", err)
	}

	if cfg.CacheSize, err = strconv.Atoi(envOrDefault("DEGREES_CACHE_SIZE", "4096")); err != nil {
		return nil, fmt.Errorf("DEGREES_CACHE_SIZE must be an integer: %w", err)
	}

	if cfg.MaxDegreeLimit, err = strconv.Atoi(envOrDefault("DEGREES_MAX_DEGREE_LIMIT", "6")); err != nil {
		return nil, fmt.Errorf("DEGREES_MAX_DEGREE_LIMIT must be an integer: %w", err)
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
