package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validate checks the configuration. Load calls it; callers that adjust a
// loaded Config (CLI flag overrides) call it again.
func (c *Config) Validate() error {
	if err := c.validateProvider(); err != nil {
		return err
	}

	if err := c.validateLimits(); err != nil {
		return err
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateProvider() error {
	kind, err := ParseProviderKind(string(c.Provider))
	if err != nil {
		return fmt.Errorf("DEGREES_PROVIDER: %w", err)
	}

	c.Provider = kind

	switch kind {
	case ProviderStatic:
		if c.FixturePath == "" {
			return fmt.Errorf("DEGREES_FIXTURE is required when DEGREES_PROVIDER is static")
		}
	case ProviderHTTP, ProviderScrape:
		if err := validateRemoteURL("DEGREES_PROVIDER_URL", c.ProviderURL); err != nil {
			return err
		}

		if kind == ProviderScrape && strings.TrimSpace(c.ScrapeItemClass) == "" {
			return fmt.Errorf("DEGREES_SCRAPE_ITEM_CLASS is required when DEGREES_PROVIDER is scrape")
		}
	case ProviderPostgres:
		if err := c.validateDatabase(); err != nil {
			return err
		}
	}

	return nil
}

func validateRemoteURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http:// or https://", name)
	}

	if u.Scheme == "http" && !isLocalhost(raw) {
		return fmt.Errorf("%s must use HTTPS for non-localhost connections", name)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DEGREES_DATABASE_URL is required when DEGREES_PROVIDER is postgres")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DEGREES_DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DEGREES_DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DEGREES_DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		if dbURL.Query().Get("sslmode") == "disable" {
			return fmt.Errorf("DEGREES_DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	if c.TenantID == "" {
		return fmt.Errorf("DEGREES_TENANT_ID is required when DEGREES_PROVIDER is postgres")
	}

	return nil
}

func (c *Config) validateLimits() error {
	if c.RateLimit <= 0 || c.RateLimit > 1000 {
		return fmt.Errorf("DEGREES_RATE_LIMIT must be between 0 and 1000 requests per second")
	}

	if c.Retries < 0 || c.Retries > 10 {
		return fmt.Errorf("DEGREES_RETRIES must be between 0 and 10")
	}

	if c.RetryBackoff <= 0 {
		return fmt.Errorf("DEGREES_RETRY_BACKOFF must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("DEGREES_REQUEST_TIMEOUT must be positive")
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("DEGREES_CACHE_SIZE must not be negative")
	}

	if c.MaxDegreeLimit < 1 || c.MaxDegreeLimit > 32 {
		return fmt.Errorf("DEGREES_MAX_DEGREE_LIMIT must be between 1 and 32")
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	validHosts := map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
		"localhost": true,
		"0.0.0.0":   true,
		"::":        true,
	}
	if !validHosts[c.ListenHost] {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	if (c.ListenHost == "0.0.0.0" || c.ListenHost == "::") && c.ServerAPIKey.Value() == "" {
		return fmt.Errorf("DEGREES_SERVER_API_KEY is required when LISTEN_HOST is %s", c.ListenHost)
	}

	if key := c.ServerAPIKey.Value(); key != "" && len(key) < 16 {
		return fmt.Errorf("DEGREES_SERVER_API_KEY must be at least 16 characters")
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

// isLocalhost returns true if the given address points to a loopback address.
func isLocalhost(addr string) bool {
	u, err := url.Parse(addr)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
