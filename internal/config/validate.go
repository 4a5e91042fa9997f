package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// Validate checks the configuration and reports every failure at once.
func (c *Config) Validate() error {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		fail("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		fail("SERVER_READ_TIMEOUT and SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		fail("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	switch strings.ToLower(c.Backend.Source) {
	case SourceHTTP:
		if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
			fail("BACKEND_URL (%q) must be an absolute http(s) URL", c.Backend.URL)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			fail("DATABASE_URL is required when SOURCE=postgres")
		}
		if c.Database.MaxConns <= 0 {
			fail("DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			fail("DB_MIN_CONNS (%d) must be between 0 and DB_MAX_CONNS (%d)",
				c.Database.MinConns, c.Database.MaxConns)
		}
		if c.Database.MaxRows <= 0 {
			fail("DB_MAX_ROWS must be positive")
		}
	default:
		fail("SOURCE (%q) must be one of: http, postgres", c.Backend.Source)
	}
	if c.Backend.Timeout <= 0 {
		fail("BACKEND_TIMEOUT must be positive")
	}

	if c.Grid.MaxBulkRows <= 0 {
		fail("GRID_MAX_BULK_ROWS must be positive")
	}
	if c.Grid.MaxRows <= 0 {
		fail("GRID_MAX_ROWS must be positive")
	} else if c.Grid.MaxRows < c.Grid.MaxBulkRows {
		fail("GRID_MAX_ROWS (%d) must be at least GRID_MAX_BULK_ROWS (%d)", c.Grid.MaxRows, c.Grid.MaxBulkRows)
	}
	if c.Grid.MaxPasteBytes <= 0 {
		fail("GRID_MAX_PASTE_BYTES must be positive")
	}
	if c.Grid.SaveDelay < 0 {
		fail("SAVE_DELAY must be non-negative")
	}
	if c.Grid.SaveMaxConcurrent <= 0 {
		fail("SAVE_MAX_CONCURRENT must be positive")
	}
	if c.Grid.SaveMaxWait <= 0 {
		fail("SAVE_MAX_WAIT must be positive")
	}
	if c.Grid.SessionIdleTimeout <= 0 || c.Grid.SessionSweep <= 0 {
		fail("SESSION_IDLE_TIMEOUT and SESSION_SWEEP_INTERVAL must be positive")
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		fail("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.SaveLimit <= 0 {
		fail("RATE_LIMIT_SAVE must be positive when rate limiting is enabled")
	}

	for _, cidr := range c.Security.TrustedProxies {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			if _, err := netip.ParseAddr(cidr); err != nil {
				fail("TRUSTED_PROXIES entry %q is not an IP or CIDR", cidr)
			}
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		fail("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		fail("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String renders the config for logging with the database URL masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Backend: {Source: %q, URL: %q, Timeout: %s}, ",
		c.Backend.Source, c.Backend.URL, c.Backend.Timeout)
	db := "[UNSET]"
	if c.Database.URL != "" {
		db = "[MASKED]"
	}
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d}, ", db, c.Database.MaxConns)
	fmt.Fprintf(&b, "Grid: {MaxBulkRows: %d, SaveDelay: %s, SaveMaxConcurrent: %d}, ",
		c.Grid.MaxBulkRows, c.Grid.SaveDelay, c.Grid.SaveMaxConcurrent)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
