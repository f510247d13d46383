// Package config provides centralized configuration management for the application.
// Values are layered: struct defaults, then an optional TOML file, then environment
// variables. The result is validated on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Upload   UploadConfig    `toml:"upload"`
	Analysis AnalysisConfig  `toml:"analysis"`
	Rate     RateLimitConfig `toml:"rate"`
	Security SecurityConfig  `toml:"security"`
	Logging  LoggingConfig   `toml:"logging"`
	Janitor  JanitorConfig   `toml:"janitor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `toml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8001)
	Port int `toml:"port" env:"SERVER_PORT" envAlt:"PORT" default:"8001" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading the request body (default: 30s)
	ReadTimeout time.Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"30s" validate:"gte=0"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, websocket friendly)
	WriteTimeout time.Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"0s" validate:"gte=0"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `toml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s" validate:"gte=0"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight jobs (default: 30s)
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`

	// RequestTimeout is the middleware timeout for API requests (default: 60s)
	RequestTimeout time.Duration `toml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`
}

// UploadConfig holds submission and job execution settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 5MB)
	MaxFileSize int64 `toml:"max_file_size" env:"UPLOAD_MAX_FILE_SIZE" default:"5242880" validate:"gt=0"`

	// SupportedTypes lists the enabled file types (default: sql,json,txt,csv)
	SupportedTypes []string `toml:"supported_types" env:"UPLOAD_SUPPORTED_TYPES" default:"sql,json,txt,csv" validate:"min=1,dive,oneof=sql json txt csv"`

	// MaxConcurrent is the number of analyses allowed to run at once (default: 4)
	MaxConcurrent int `toml:"max_concurrent" env:"UPLOAD_MAX_CONCURRENT" default:"4" validate:"gt=0"`

	// SpoolDir holds per-job upload copies; empty means <os temp dir>/fileparser
	SpoolDir string `toml:"spool_dir" env:"UPLOAD_SPOOL_DIR"`
}

// AnalysisConfig holds analyzer tunables.
type AnalysisConfig struct {
	CSVSampleRows     int `toml:"csv_sample_rows" env:"ANALYSIS_CSV_SAMPLE_ROWS" default:"1000" validate:"gt=0"`
	CSVPreviewRows    int `toml:"csv_preview_rows" env:"ANALYSIS_CSV_PREVIEW_ROWS" default:"3" validate:"gte=0"`
	MainColumns       int `toml:"main_columns" env:"ANALYSIS_MAIN_COLUMNS" default:"5" validate:"gt=0"`
	KeyFieldSample    int `toml:"key_field_sample" env:"ANALYSIS_KEY_FIELD_SAMPLE" default:"10" validate:"gt=0"`
	MaxKeyFields      int `toml:"max_key_fields" env:"ANALYSIS_MAX_KEY_FIELDS" default:"10" validate:"gt=0"`
	MaxImportantLines int `toml:"max_important_lines" env:"ANALYSIS_MAX_IMPORTANT_LINES" default:"10" validate:"gte=0"`
	LineSnippetChars  int `toml:"line_snippet_chars" env:"ANALYSIS_LINE_SNIPPET_CHARS" default:"100" validate:"gt=0"`
	SummaryMaxChars   int `toml:"summary_max_chars" env:"ANALYSIS_SUMMARY_MAX_CHARS" default:"500" validate:"gt=0"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `toml:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `toml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100" validate:"required_if=Enabled true,gte=0"`

	// UploadLimit is submissions per minute per IP on /parse-file (default: 10)
	UploadLimit int `toml:"upload_limit" env:"RATE_LIMIT_UPLOAD" default:"10" validate:"required_if=Enabled true,gte=0"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `toml:"trusted_proxies" env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `toml:"enable_csp" env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `toml:"level" env:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Format is the log format: text or json (default: text)
	Format string `toml:"format" env:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// JanitorConfig holds settings for the stale spool sweeper.
type JanitorConfig struct {
	// Enabled controls whether the sweeper runs (default: true)
	Enabled bool `toml:"enabled" env:"JANITOR_ENABLED" default:"true"`

	// Schedule is a cron expression or descriptor (default: @every 15m)
	Schedule string `toml:"schedule" env:"JANITOR_SCHEDULE" default:"@every 15m" validate:"required_if=Enabled true"`

	// MaxAge is how old a spool directory must be before it is swept (default: 1h)
	MaxAge time.Duration `toml:"max_age" env:"JANITOR_MAX_AGE" default:"1h" validate:"gt=0"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Upload: {MaxFileSize: %d, SupportedTypes: %v, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.SupportedTypes, c.Upload.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Analysis: {CSVSampleRows: %d, SummaryMaxChars: %d}, ",
		c.Analysis.CSVSampleRows, c.Analysis.SummaryMaxChars))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d, UploadLimit: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.UploadLimit))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
