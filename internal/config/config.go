package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
	DefaultMeasurement = "bloodwork"
	DefaultDBMaxConns  = 10
	DefaultDBMinConns  = 1
	DefaultIngestBurst = 4

	// EnvPrefix prefixes every environment variable, e.g. BLOODWORK_DATABASE_URL.
	EnvPrefix = "BLOODWORK"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Flag names, also the viper keys.
const (
	FlagMode        = "mode"
	FlagHost        = "host"
	FlagPort        = "port"
	FlagDir         = "dir"
	FlagLogLevel    = "log-level"
	FlagMaxFileSize = "max-file-size"
	FlagDatabaseURL = "database-url"
	FlagDBMaxConns  = "db-max-conns"
	FlagDBMinConns  = "db-min-conns"
	FlagMeasurement = "measurement"
	FlagMetricsAddr = "metrics-addr"
	FlagIngestRate  = "ingest-rate"
	FlagIngestBurst = "ingest-burst"
)

// Config holds all configuration for the bloodwork MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Uploads
	PDFDirectory string // root that ingest paths are resolved against
	MaxFileSize  int64  // Maximum PDF file size in bytes
	IngestRate   float64
	IngestBurst  int

	// Storage; an empty DatabaseURL keeps results in memory
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	Measurement string

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090"
	MetricsAddr string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		IngestBurst:  DefaultIngestBurst,
		DBMaxConns:   DefaultDBMaxConns,
		DBMinConns:   DefaultDBMinConns,
		Measurement:  DefaultMeasurement,
		Version:      "1.0.0",
		ServerName:   "mcp-bloodwork",
		LogLevel:     DefaultLogLevel,
	}
}

// RegisterFlags defines every configuration flag on flags with the values
// of cfg as defaults.
func RegisterFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String(FlagMode, cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP (SSE) server")
	flags.String(FlagHost, cfg.Host, "Server host address (server mode only)")
	flags.Int(FlagPort, cfg.Port, "Server port (server mode only)")
	flags.String(FlagDir, cfg.PDFDirectory, "Directory lab report PDFs are read from")
	flags.String(FlagLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64(FlagMaxFileSize, cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.String(FlagDatabaseURL, cfg.DatabaseURL, "PostgreSQL URL of the time-series store (empty keeps results in memory)")
	flags.Int32(FlagDBMaxConns, cfg.DBMaxConns, "Maximum database connections")
	flags.Int32(FlagDBMinConns, cfg.DBMinConns, "Minimum idle database connections")
	flags.String(FlagMeasurement, cfg.Measurement, "Measurement (table) results are stored under")
	flags.String(FlagMetricsAddr, cfg.MetricsAddr, "Address to serve Prometheus metrics on (empty disables)")
	flags.Float64(FlagIngestRate, cfg.IngestRate, "Maximum uploads per second (0 disables limiting)")
	flags.Int(FlagIngestBurst, cfg.IngestBurst, "Upload burst allowed above the rate")
}

// Load reads configuration from flags (already parsed) and BLOODWORK_*
// environment variables. Flags set on the command line win over the
// environment, which wins over defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	populateConfigFromViper(v, cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newViper configures a viper instance with environment variables and defaults
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(FlagMode, cfg.Mode)
	v.SetDefault(FlagHost, cfg.Host)
	v.SetDefault(FlagPort, cfg.Port)
	v.SetDefault(FlagDir, cfg.PDFDirectory)
	v.SetDefault(FlagLogLevel, cfg.LogLevel)
	v.SetDefault(FlagMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(FlagDatabaseURL, cfg.DatabaseURL)
	v.SetDefault(FlagDBMaxConns, cfg.DBMaxConns)
	v.SetDefault(FlagDBMinConns, cfg.DBMinConns)
	v.SetDefault(FlagMeasurement, cfg.Measurement)
	v.SetDefault(FlagMetricsAddr, cfg.MetricsAddr)
	v.SetDefault(FlagIngestRate, cfg.IngestRate)
	v.SetDefault(FlagIngestBurst, cfg.IngestBurst)
	return v
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString(FlagMode)
	cfg.Host = v.GetString(FlagHost)
	cfg.Port = v.GetInt(FlagPort)
	cfg.PDFDirectory = v.GetString(FlagDir)
	cfg.LogLevel = strings.ToLower(v.GetString(FlagLogLevel))
	cfg.MaxFileSize = v.GetInt64(FlagMaxFileSize)
	cfg.DatabaseURL = v.GetString(FlagDatabaseURL)
	cfg.DBMaxConns = v.GetInt32(FlagDBMaxConns)
	cfg.DBMinConns = v.GetInt32(FlagDBMinConns)
	cfg.Measurement = v.GetString(FlagMeasurement)
	cfg.MetricsAddr = v.GetString(FlagMetricsAddr)
	cfg.IngestRate = v.GetFloat64(FlagIngestRate)
	cfg.IngestBurst = v.GetInt(FlagIngestBurst)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Measurement == "" {
		return errors.New("measurement cannot be empty")
	}

	if c.DatabaseURL != "" {
		if _, err := url.Parse(c.DatabaseURL); err != nil {
			return fmt.Errorf("invalid database URL: %w", err)
		}
		if c.DBMaxConns < 1 {
			return errors.New("database max connections must be positive")
		}
		if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("database min connections must be between 0 and %d", c.DBMaxConns)
		}
	}

	if c.IngestRate < 0 {
		return errors.New("ingest rate cannot be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// HasDatabase reports whether results go to PostgreSQL rather than memory.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// String returns a string representation of the configuration with the
// database password redacted
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"Database: %s, Measurement: %s, MetricsAddr: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		redactURL(c.DatabaseURL), c.Measurement, c.MetricsAddr)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

func redactURL(raw string) string {
	if raw == "" {
		return "memory"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
