package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Driver != "mysql" {
		t.Errorf("Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.Port != 33060 {
		t.Errorf("Host/Port = %s:%d, want 127.0.0.1:33060", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Table != "movielens_tmdb_imdb" {
		t.Errorf("Table = %q, want movielens_tmdb_imdb", cfg.Database.Table)
	}
	if cfg.Source.Path != "data/links.csv" {
		t.Errorf("Source.Path = %q, want data/links.csv", cfg.Source.Path)
	}
	if cfg.Import.BatchSize != 1 {
		t.Errorf("BatchSize = %d, want 1", cfg.Import.BatchSize)
	}
	if cfg.Import.Mode != "insert" {
		t.Errorf("Mode = %q, want insert", cfg.Import.Mode)
	}
	if cfg.Ledger.Provider != "none" {
		t.Errorf("Ledger.Provider = %q, want none", cfg.Ledger.Provider)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want default", cfg.UserAgent)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("APP_DATABASE_DRIVER", "postgres")
	t.Setenv("APP_DATABASE_PORT", "5432")
	t.Setenv("APP_IMPORT_BATCH_SIZE", "500")
	t.Setenv("APP_LEDGER_REDIS_ADDRESS", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Import.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", cfg.Import.BatchSize)
	}
	if cfg.Ledger.Redis.Address != "localhost:6379" {
		t.Errorf("Ledger.Redis.Address = %q, want localhost:6379", cfg.Ledger.Redis.Address)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestInit_ExplicitConfigFile(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "loader.yaml")
	content := []byte(`
database:
  driver: sqlite
  name: /tmp/links.db
  table: links
import:
  mode: upsert
  max_error_ratio: 0.25
log_level: warn
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Init(path)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { globalConfig = nil })

	if cfg.Database.Driver != "sqlite" || cfg.Database.Name != "/tmp/links.db" || cfg.Database.Table != "links" {
		t.Errorf("unexpected database section: %+v", cfg.Database)
	}
	if cfg.Import.Mode != "upsert" || cfg.Import.MaxErrorRatio != 0.25 {
		t.Errorf("unexpected import section: %+v", cfg.Import)
	}
	if GetUserAgent() != DefaultUserAgent {
		t.Errorf("GetUserAgent() = %q, want default", GetUserAgent())
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	resetViper(t)

	if _, err := Init(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for a missing explicit config file")
	}
}

func TestInit_ExplicitFileOverridesSearchPath(t *testing.T) {
	resetViper(t)
	t.Cleanup(func() { globalConfig = nil })

	path := filepath.Join(t.TempDir(), "custom.yml")
	if err := os.WriteFile(path, []byte("database:\n  table: custom_links\nuser_agent: custom-agent\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Init(path)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if cfg.Database.Table != "custom_links" {
		t.Errorf("Table = %q, want custom_links", cfg.Database.Table)
	}
	if got := GetUserAgent(); got != "custom-agent" {
		t.Errorf("GetUserAgent() = %q, want custom-agent", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback time.Duration
		expected time.Duration
	}{
		{name: "empty", value: "", fallback: time.Second, expected: time.Second},
		{name: "valid", value: "250ms", fallback: time.Second, expected: 250 * time.Millisecond},
		{name: "invalid", value: "soon", fallback: 2 * time.Second, expected: 2 * time.Second},
		{name: "negative", value: "-5s", fallback: time.Minute, expected: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDuration("test", tt.value, tt.fallback); got != tt.expected {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestGetUserAgent_Default(t *testing.T) {
	saved := globalConfig
	globalConfig = nil
	t.Cleanup(func() { globalConfig = saved })

	if got := GetUserAgent(); got != DefaultUserAgent {
		t.Errorf("GetUserAgent() = %q, want default", got)
	}
}
