package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Table   TableConfig   `mapstructure:"table"`
	Bulk    BulkConfig    `mapstructure:"bulk"`
	Search  SearchConfig  `mapstructure:"search"`
	View    ViewConfig    `mapstructure:"view"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig describes the media server backend
type ServerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	PathPrefix     string `mapstructure:"path_prefix"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryAttempts  int    `mapstructure:"retry_attempts"`
}

// StoreConfig holds the client-side preference store settings
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	Path   string `mapstructure:"path"`   // sqlite file
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

// TableConfig holds paging settings shared by the table controllers
type TableConfig struct {
	PageFloor       int `mapstructure:"page_floor"`
	FilePageFloor   int `mapstructure:"file_page_floor"`
	PageIncrement   int `mapstructure:"page_increment"`
	ScrollThreshold int `mapstructure:"scroll_threshold"`
}

// BulkConfig controls batch mutations
type BulkConfig struct {
	// Concurrency caps in-flight requests; 0 means unlimited
	Concurrency int `mapstructure:"concurrency"`
}

// SearchConfig controls the search-and-select workflow
type SearchConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// ViewConfig holds view server settings
type ViewConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Legacy field (deprecated but supported)
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	App   LogLevelConfig `mapstructure:"app"`
	Store LogLevelConfig `mapstructure:"store"`
}

// LogLevelConfig represents log level configuration for a specific component
type LogLevelConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

var cfg *Config

// bindEnvWithAlternatives binds a viper key to environment variables with alternative names
// This allows supporting both MEDIADESK_SERVER_BASE_URL and MEDIASERVER_URL for the same key
func bindEnvWithAlternatives(key string, alternatives ...string) {
	viper.BindEnv(key)
	for _, alt := range alternatives {
		if value := os.Getenv(alt); value != "" {
			viper.Set(key, value)
			break
		}
	}
}

// Load reads configuration from .env, the config file and environment variables
func Load() error {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string) error {
	// A missing .env is the normal case
	_ = godotenv.Load()

	viper.Reset()
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mediadesk"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("MEDIADESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvWithAlternatives("server.base_url", "MEDIASERVER_URL")
	viper.BindEnv("server.path_prefix")
	viper.BindEnv("server.timeout_seconds")
	viper.BindEnv("server.retry_attempts")

	viper.BindEnv("store.driver")
	viper.BindEnv("store.path")
	bindEnvWithAlternatives("store.dsn", "DATABASE_URL")

	viper.BindEnv("table.page_floor")
	viper.BindEnv("table.file_page_floor")
	viper.BindEnv("table.page_increment")
	viper.BindEnv("table.scroll_threshold")

	viper.BindEnv("bulk.concurrency")
	viper.BindEnv("search.cache_ttl_seconds")

	bindEnvWithAlternatives("view.port", "PORT")

	bindEnvWithAlternatives("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format")
	viper.BindEnv("logging.app.level")
	viper.BindEnv("logging.store.level")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return apperrors.ConfigError("failed to read config file", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return apperrors.ConfigError("failed to unmarshal config", err)
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg = loaded
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &Config{}
	}
	return cfg
}

// Set replaces the current configuration (primarily for testing)
func Set(c *Config) {
	cfg = c
}

func setDefaults() {
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.path_prefix", "/mediaserver")
	viper.SetDefault("server.timeout_seconds", 15)
	viper.SetDefault("server.retry_attempts", 3)

	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.path", defaultStorePath())

	viper.SetDefault("table.page_floor", 50)
	viper.SetDefault("table.file_page_floor", 100)
	viper.SetDefault("table.page_increment", 50)
	viper.SetDefault("table.scroll_threshold", 20)

	viper.SetDefault("bulk.concurrency", 0)
	viper.SetDefault("search.cache_ttl_seconds", 300)

	viper.SetDefault("view.port", 8090)
	viper.SetDefault("view.allowed_origins", []string{"*"})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mediadesk", "prefs.db")
	}
	return "mediadesk-prefs.db"
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return apperrors.New(apperrors.CodeMissingConfig, "server.base_url is required")
	}
	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.New(apperrors.CodeInvalidConfig, "server.base_url must be an absolute URL")
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return apperrors.New(apperrors.CodeMissingConfig, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return apperrors.New(apperrors.CodeMissingConfig, "store.dsn is required for the postgres driver")
		}
	default:
		return apperrors.New(apperrors.CodeInvalidConfig, "store.driver must be one of: sqlite, postgres")
	}

	if c.Table.PageFloor <= 0 || c.Table.FilePageFloor <= 0 || c.Table.PageIncrement <= 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "table page sizes must be positive")
	}
	if c.Table.ScrollThreshold < 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "table.scroll_threshold must not be negative")
	}
	if c.Bulk.Concurrency < 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "bulk.concurrency must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats := map[string]bool{"json": true, "text": true}

	if c.Logging.Format != "" && !validFormats[c.Logging.Format] {
		return apperrors.New(apperrors.CodeInvalidConfig, "logging.format must be one of: json, text")
	}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return apperrors.New(apperrors.CodeInvalidConfig, "logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.App.Level != "" && !validLevels[c.Logging.App.Level] {
		return apperrors.New(apperrors.CodeInvalidConfig, "logging.app.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Store.Level != "" && !validLevels[c.Logging.Store.Level] {
		return apperrors.New(apperrors.CodeInvalidConfig, "logging.store.level must be one of: debug, info, warn, error")
	}

	return nil
}

// APIRoot returns the base URL joined with the canonical path prefix, without
// a trailing slash.
func (c *Config) APIRoot() string {
	base := strings.TrimRight(c.Server.BaseURL, "/")
	prefix := strings.Trim(c.Server.PathPrefix, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// GetAppLogLevel returns the log level for application logging
// Priority: logging.app.level → logging.level → "info"
func (c *Config) GetAppLogLevel() string {
	if c.Logging.App.Level != "" {
		return c.Logging.App.Level
	}
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	return "info"
}

// GetStoreLogLevel returns the log level for preference store logging
// Priority: logging.store.level → logging.level → "info"
func (c *Config) GetStoreLogLevel() string {
	if c.Logging.Store.Level != "" {
		return c.Logging.Store.Level
	}
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	return "info"
}
