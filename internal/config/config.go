// Package config loads gridadmin settings from environment variables.
//
// Every field is tagged with the variable it reads and an optional default;
// Load fills the struct, then Validate reports all problems at once so a
// misconfigured deployment fails on startup rather than on first use.
package config

import (
	"net"
	"strconv"
	"time"
)

// Source kinds for Backend.Source.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Grid     GridConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight saves.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied per request by the timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// BackendConfig selects where tables come from.
type BackendConfig struct {
	// Source is "http" for the JSON backend or "postgres" to read tables
	// straight from a database.
	Source string `env:"SOURCE" default:"http"`

	// URL is the base of the JSON backend serving /api/databases and
	// /api/data/{id}.
	URL string `env:"BACKEND_URL" envAlt:"API_URL" default:"http://localhost:5000"`

	Timeout time.Duration `env:"BACKEND_TIMEOUT" default:"10s"`

	// FallbackTables is shown when listing fails. Empty means the built-in
	// demo tables.
	FallbackTables []string `env:"FALLBACK_TABLES"`
}

// DatabaseConfig holds settings for the postgres source.
type DatabaseConfig struct {
	// URL is required only when Backend.Source is "postgres".
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int32 `env:"DB_MAX_CONNS" default:"10"`
	MinConns int32 `env:"DB_MIN_CONNS" default:"1"`

	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Schema and Prefix shape the table ids the postgres source reports.
	Schema string `env:"DB_SCHEMA" default:"public"`
	Prefix string `env:"DB_TABLE_PREFIX" default:"admin_panel_db/"`

	// MaxRows caps how many rows one fetch loads.
	MaxRows int `env:"DB_MAX_ROWS" default:"10000"`
}

// GridConfig holds editing limits.
type GridConfig struct {
	// MaxBulkRows is the most lines one bulk add may submit.
	MaxBulkRows int `env:"GRID_MAX_BULK_ROWS" default:"500"`

	// MaxRows is how many rows paste and row appends may grow a table to.
	MaxRows int `env:"GRID_MAX_ROWS" default:"100000"`

	// MaxPasteBytes caps request bodies for paste and bulk add.
	MaxPasteBytes int64 `env:"GRID_MAX_PASTE_BYTES" default:"1048576"`

	SaveDelay         time.Duration `env:"SAVE_DELAY" default:"1500ms"`
	SaveMaxConcurrent int           `env:"SAVE_MAX_CONCURRENT" default:"4"`
	SaveMaxWait       time.Duration `env:"SAVE_MAX_WAIT" default:"10s"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"2h"`
	SessionSweep       time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// SaveLimit is requests per minute for the save endpoint.
	SaveLimit int `env:"RATE_LIMIT_SAVE" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
