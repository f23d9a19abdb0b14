package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
)

func TestLoad_WithDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MEDIADESK_STORE_PATH", filepath.Join(t.TempDir(), "prefs.db"))

	cfg = nil

	err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	config := Get()
	if config.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("expected default base url, got %s", config.Server.BaseURL)
	}
	if config.Server.PathPrefix != "/mediaserver" {
		t.Errorf("expected default prefix '/mediaserver', got %s", config.Server.PathPrefix)
	}
	if config.Table.PageFloor != 50 {
		t.Errorf("expected page floor 50, got %d", config.Table.PageFloor)
	}
	if config.Table.FilePageFloor != 100 {
		t.Errorf("expected file page floor 100, got %d", config.Table.FilePageFloor)
	}
	if config.Table.ScrollThreshold != 20 {
		t.Errorf("expected scroll threshold 20, got %d", config.Table.ScrollThreshold)
	}
	if config.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", config.Store.Driver)
	}
	if config.View.Port != 8090 {
		t.Errorf("expected view port 8090, got %d", config.View.Port)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MEDIASERVER_URL", "https://media.example.org")
	t.Setenv("MEDIADESK_BULK_CONCURRENCY", "4")
	t.Setenv("MEDIADESK_STORE_PATH", filepath.Join(t.TempDir(), "prefs.db"))

	cfg = nil
	if err := Load(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if Get().Server.BaseURL != "https://media.example.org" {
		t.Errorf("expected alternative env var to win, got %s", Get().Server.BaseURL)
	}
	if Get().Bulk.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", Get().Bulk.Concurrency)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "mediadesk.yml")
	content := `
server:
  base_url: http://nas.local:9000
  path_prefix: /MediaServer/
store:
  driver: sqlite
  path: ` + filepath.Join(dir, "p.db") + `
table:
  page_increment: 25
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg = nil
	if err := LoadFile(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	c := Get()
	if c.Table.PageIncrement != 25 {
		t.Errorf("expected page increment 25, got %d", c.Table.PageIncrement)
	}
	if c.APIRoot() != "http://nas.local:9000/MediaServer" {
		t.Errorf("unexpected api root %s", c.APIRoot())
	}
	if c.GetAppLogLevel() != "debug" {
		t.Errorf("expected debug level, got %s", c.GetAppLogLevel())
	}
}

func TestValidate_ErrorCodes(t *testing.T) {
	c := &Config{Store: StoreConfig{Driver: "sqlite", Path: "prefs.db"}}
	if code := apperrors.GetErrorCode(c.Validate()); code != apperrors.CodeMissingConfig {
		t.Errorf("expected %s, got %s", apperrors.CodeMissingConfig, code)
	}

	c.Server.BaseURL = "http://localhost:8080"
	c.Store.Driver = "redis"
	if code := apperrors.GetErrorCode(c.Validate()); code != apperrors.CodeInvalidConfig {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidConfig, code)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{BaseURL: "http://localhost:8080"},
			Store:   StoreConfig{Driver: "sqlite", Path: "prefs.db"},
			Table:   TableConfig{PageFloor: 50, FilePageFloor: 100, PageIncrement: 50, ScrollThreshold: 20},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url is required"},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/api" }, "absolute URL"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }, "store.driver must be one of"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres" }, "store.dsn is required"},
		{"zero page floor", func(c *Config) { c.Table.PageFloor = 0 }, "page sizes must be positive"},
		{"negative concurrency", func(c *Config) { c.Bulk.Concurrency = -1 }, "bulk.concurrency"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level must be one of"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format must be one of"},
		{"bad store level", func(c *Config) { c.Logging.Store.Level = "loud" }, "logging.store.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAPIRoot(t *testing.T) {
	tests := []struct {
		base, prefix, want string
	}{
		{"http://h:1", "/mediaserver", "http://h:1/mediaserver"},
		{"http://h:1/", "mediaserver/", "http://h:1/mediaserver"},
		{"http://h:1", "", "http://h:1"},
	}
	for _, tt := range tests {
		c := &Config{Server: ServerConfig{BaseURL: tt.base, PathPrefix: tt.prefix}}
		if got := c.APIRoot(); got != tt.want {
			t.Errorf("APIRoot(%q, %q) = %q, want %q", tt.base, tt.prefix, got, tt.want)
		}
	}
}

func TestGetStoreLogLevel(t *testing.T) {
	c := &Config{Logging: LoggingConfig{Level: "warn"}}
	if c.GetStoreLogLevel() != "warn" {
		t.Errorf("expected legacy fallback 'warn', got %s", c.GetStoreLogLevel())
	}
	c.Logging.Store.Level = "error"
	if c.GetStoreLogLevel() != "error" {
		t.Errorf("expected store level 'error', got %s", c.GetStoreLogLevel())
	}
	if (&Config{}).GetStoreLogLevel() != "info" {
		t.Error("expected default 'info'")
	}
}
