// Package config loads application settings from environment variables with
// defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Generate  GenerateConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Reconcile ReconcileConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxUploadSize caps uploaded workbooks in bytes (default: 50MB)
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"50MB"`

	// MaxConcurrent is the number of workbooks parsed at once (default: 4)
	MaxConcurrent int `env:"SERVER_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a generation slot (default: 30s)
	MaxWaitTime time.Duration `env:"SERVER_MAX_WAIT_TIME" default:"30s"`

	// RequestsPerMinute is the per-IP rate limit; 0 disables it (default: 60)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
}

// DatabaseConfig holds settings for applying batches directly.
type DatabaseConfig struct {
	// URL is the target connection string. Only the apply command needs it.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`

	// ApplyTimeout bounds a whole batch transaction (default: 5m)
	ApplyTimeout time.Duration `env:"DB_APPLY_TIMEOUT" default:"5m"`
}

// GenerateConfig holds script generation settings.
type GenerateConfig struct {
	// Dialect is postgres or sqlite (default: postgres)
	Dialect string `env:"GENERATE_DIALECT" default:"postgres"`

	// OutputPath is where the generate command writes the script.
	OutputPath string `env:"GENERATE_OUTPUT" default:"import-data-from-excel-with-vendors.sql"`

	// LayoutFile optionally overrides sheet and column names (YAML).
	LayoutFile string `env:"GENERATE_LAYOUT_FILE"`

	// SourceTimeout bounds fetching a remote workbook (default: 60s)
	SourceTimeout time.Duration `env:"GENERATE_SOURCE_TIMEOUT" default:"60s"`

	// MaxSourceSize caps remote workbook downloads in bytes (default: 50MB)
	MaxSourceSize int64 `env:"GENERATE_MAX_SOURCE_SIZE" default:"50MB"`

	// S3Region is used for s3:// workbook sources when set.
	S3Region string `env:"GENERATE_S3_REGION" envAlt:"AWS_REGION"`

	// S3Endpoint overrides the S3 endpoint, for MinIO and similar stores.
	S3Endpoint string `env:"GENERATE_S3_ENDPOINT"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables API key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds settings for exporting run metrics from the CLI.
type MetricsConfig struct {
	// TextfilePath writes metrics for the node_exporter textfile collector.
	TextfilePath string `env:"METRICS_TEXTFILE"`

	// PushgatewayURL pushes metrics to a Prometheus Pushgateway.
	PushgatewayURL string `env:"METRICS_PUSHGATEWAY_URL"`

	// Job is the Pushgateway job label (default: stockimport)
	Job string `env:"METRICS_JOB" default:"stockimport"`
}

// ReconcileConfig holds settings for the stock reconciliation check.
type ReconcileConfig struct {
	// BaseURL is the inventory API root (default: http://127.0.0.1:4000/api/v1)
	BaseURL string `env:"RECONCILE_BASE_URL" default:"http://127.0.0.1:4000/api/v1"`

	// Codes is a comma-separated list of item codes to check.
	Codes []string `env:"RECONCILE_CODES"`

	// Token is sent as a bearer token when set.
	Token string `env:"RECONCILE_TOKEN"`

	Timeout time.Duration `env:"RECONCILE_TIMEOUT" default:"15s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
