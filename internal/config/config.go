// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Store backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
// /var/task is the Lambda bundle root; Lambda@Edge has no environment variables,
// so the edge binary ships its config next to the executable.
var configSearchPaths = []string{
	"/etc/redirect-lookup/config.toml",
	"configs/config.toml",
	"/var/task/config.toml",
}

// ReservedPrefix holds the service routes. A redirect's canonical URI is
// "/" followed by an alphanumeric path, so it never falls under this prefix.
const ReservedPrefix = "/_/"

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config       string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host         string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port         int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	StoreBackend string `kong:"help='Store backend: dynamodb|sqlite|file (overrides config).',env='STORE_BACKEND'"`
	Table        string `kong:"help='DynamoDB table name (overrides config).',env='STORE_TABLE'"`
	LogLevel     string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Tracing TracingConfig `toml:"tracing"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                  string          `toml:"host"`
	Port                  int             `toml:"port"` // 0 means "use default" (8000); TOML cannot distinguish 0 from unset
	RequestTimeoutSeconds int             `toml:"request_timeout_seconds"`
	RateLimit             RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// StoreConfig selects and configures the redirect store.
type StoreConfig struct {
	Backend  string         `toml:"backend"`
	DynamoDB DynamoDBConfig `toml:"dynamodb"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	File     FileConfig     `toml:"file"`
}

// DynamoDBConfig holds the lookup table settings.
type DynamoDBConfig struct {
	Table          string `toml:"table"`
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"` // optional, e.g. DynamoDB Local
	ConsistentRead bool   `toml:"consistent_read"`
}

// SQLiteConfig points at a read-only SQLite database.
type SQLiteConfig struct {
	Path  string `toml:"path"`
	Table string `toml:"table"`
}

// FileConfig points at a YAML redirect table.
type FileConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
	Environment string `toml:"environment"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/redirect-lookup/config.toml, configs/config.toml, then /var/task/config.toml.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file found (searched %v)", configSearchPaths)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.filePath = path
	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.StoreBackend != "" {
		c.Store.Backend = cli.StoreBackend
	}
	if cli.Table != "" {
		c.Store.DynamoDB.Table = cli.Table
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	// Store backend and its required settings.
	switch strings.ToLower(c.Store.Backend) {
	case BackendDynamoDB, "":
		if c.Store.DynamoDB.Table == "" {
			return fmt.Errorf("store.dynamodb.table is required for the dynamodb backend")
		}
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
		if t := c.Store.SQLite.Table; t != "" && !isIdentifier(t) {
			return fmt.Errorf("store.sqlite.table must be a plain identifier; got %q", t)
		}
	case BackendFile:
		if c.Store.File.Path == "" {
			return fmt.Errorf("store.file.path is required for the file backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of: dynamodb, sqlite, file; got %q", c.Store.Backend)
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("server.request_timeout_seconds must be non-negative; got %d", c.Server.RequestTimeoutSeconds)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Log fields.
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled). Any path outside
	// the reserved prefix would shadow a redirect.
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if !strings.HasPrefix(p, ReservedPrefix) || p == ReservedPrefix {
			return fmt.Errorf("metrics.path must live under %q; got %q", ReservedPrefix, p)
		}
		for _, reserved := range []string{"/_/healthz", "/_/status"} {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, RequestTimeoutSeconds), zero means "unset" because
// TOML cannot distinguish between an explicit 0 and an omitted key.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.RequestTimeoutSeconds == 0 {
		c.Server.RequestTimeoutSeconds = 5
	}
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	if c.Store.Backend == "" {
		c.Store.Backend = BackendDynamoDB
	}
	if c.Store.SQLite.Table == "" {
		c.Store.SQLite.Table = "redirects"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/_/metrics"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "redirect-lookup"
	}
}

// isIdentifier reports whether s is safe to splice into SQL as a table name.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
