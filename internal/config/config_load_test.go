package config

import (
	"testing"

	"github.com/spf13/pflag"
)

// parseFlags registers the configuration flags on a fresh set and parses args.
func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("mcp-bloodwork", pflag.ContinueOnError)
	RegisterFlags(flags, DefaultConfig())
	if err := flags.Parse(args); err != nil {
		t.Fatalf("flags.Parse(%v) unexpected error: %v", args, err)
	}
	return flags
}

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load(parseFlags(t))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	// Verify default values
	if cfg.Mode != "stdio" {
		t.Errorf("Load() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Port != 8080 {
		t.Errorf("Load() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Load() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("Load() MaxFileSize = %v, want %v", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.DBMaxConns != DefaultDBMaxConns {
		t.Errorf("Load() DBMaxConns = %v, want %v", cfg.DBMaxConns, DefaultDBMaxConns)
	}
	if cfg.PDFDirectory == "" {
		t.Error("Load() PDFDirectory should not be empty")
	}
}

func TestLoad_NilFlags(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) unexpected error: %v", err)
	}
	if cfg.Measurement != DefaultMeasurement {
		t.Errorf("Load(nil) Measurement = %v, want %v", cfg.Measurement, DefaultMeasurement)
	}
}

func TestLoad_ValidFlags(t *testing.T) {
	dir := t.TempDir()

	flags := parseFlags(t,
		"--mode=server",
		"--host=0.0.0.0",
		"--port=9090",
		"--dir="+dir,
		"--log-level=debug",
		"--max-file-size=2048",
		"--database-url=postgres://lab@localhost/lab",
		"--db-max-conns=4",
		"--db-min-conns=2",
		"--measurement=labs",
		"--metrics-addr=:9100",
		"--ingest-rate=2.5",
		"--ingest-burst=8",
	)

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Mode", cfg.Mode, "server"},
		{"Host", cfg.Host, "0.0.0.0"},
		{"Port", cfg.Port, 9090},
		{"PDFDirectory", cfg.PDFDirectory, dir},
		{"LogLevel", cfg.LogLevel, "debug"},
		{"MaxFileSize", cfg.MaxFileSize, int64(2048)},
		{"DatabaseURL", cfg.DatabaseURL, "postgres://lab@localhost/lab"},
		{"DBMaxConns", cfg.DBMaxConns, int32(4)},
		{"DBMinConns", cfg.DBMinConns, int32(2)},
		{"Measurement", cfg.Measurement, "labs"},
		{"MetricsAddr", cfg.MetricsAddr, ":9100"},
		{"IngestRate", cfg.IngestRate, 2.5},
		{"IngestBurst", cfg.IngestBurst, 8},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("Load() %s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BLOODWORK_MODE", "server")
	t.Setenv("BLOODWORK_PORT", "7070")
	t.Setenv("BLOODWORK_DIR", dir)
	t.Setenv("BLOODWORK_LOG_LEVEL", "WARN")
	t.Setenv("BLOODWORK_DATABASE_URL", "postgres://env@localhost/lab")
	t.Setenv("BLOODWORK_MAX_FILE_SIZE", "4096")

	cfg, err := Load(parseFlags(t))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("Load() Mode = %v, want server", cfg.Mode)
	}
	if cfg.Port != 7070 {
		t.Errorf("Load() Port = %v, want 7070", cfg.Port)
	}
	if cfg.PDFDirectory != dir {
		t.Errorf("Load() PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Load() LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.DatabaseURL != "postgres://env@localhost/lab" {
		t.Errorf("Load() DatabaseURL = %v", cfg.DatabaseURL)
	}
	if cfg.MaxFileSize != 4096 {
		t.Errorf("Load() MaxFileSize = %v, want 4096", cfg.MaxFileSize)
	}
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("BLOODWORK_PORT", "7070")
	t.Setenv("BLOODWORK_MEASUREMENT", "from_env")

	cfg, err := Load(parseFlags(t, "--port=6060"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Port != 6060 {
		t.Errorf("Load() Port = %v, want 6060 (flag should win)", cfg.Port)
	}
	if cfg.Measurement != "from_env" {
		t.Errorf("Load() Measurement = %v, want from_env", cfg.Measurement)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "mode", args: []string{"--mode=invalid"}},
		{name: "port", args: []string{"--mode=server", "--port=70000"}},
		{name: "log level", args: []string{"--log-level=trace"}},
		{name: "max file size", args: []string{"--max-file-size=0"}},
		{name: "pool bounds", args: []string{"--database-url=postgres://localhost/lab", "--db-min-conns=20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(parseFlags(t, tt.args...)); err == nil {
				t.Errorf("Load(%v) expected error, got nil", tt.args)
			}
		})
	}
}
