package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Logging LoggingConfig `mapstructure:"logging"`
	History HistoryConfig `mapstructure:"history"`
}

// SourceConfig describes where datasets are retrieved from
type SourceConfig struct {
	ID       string `mapstructure:"id"`
	BaseURL  string `mapstructure:"base_url"`
	Timeout  string `mapstructure:"timeout"`
	CacheDir string `mapstructure:"cache_dir"`
}

// FetchConfig contains fetch pipeline settings
type FetchConfig struct {
	DestBaseDir string `mapstructure:"dest_base_dir"`
	KeepCache   bool   `mapstructure:"keep_cache"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	File    string `mapstructure:"file"`
}

// HistoryConfig contains fetch history settings
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from the specified file path. A missing file
// is not an error: the CLI can run from flags and defaults alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("source.id", "")
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.timeout", "5m")
	v.SetDefault("source.cache_dir", filepath.Join(os.TempDir(), "datafetch"))
	v.SetDefault("fetch.dest_base_dir", "")
	v.SetDefault("fetch.keep_cache", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.enabled", false)
	v.SetDefault("logging.dir", "logs")
	v.SetDefault("logging.file", "datafetch.log")
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "")

	// Read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Source.Timeout); err != nil {
		return fmt.Errorf("invalid source.timeout: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	if c.Logging.Enabled && c.Logging.File == "" {
		return fmt.Errorf("logging.file is required when logging.enabled is set")
	}

	return nil
}

// GetTimeout returns the retriever timeout as time.Duration
func (c *SourceConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d == 0 {
		return 5 * time.Minute
	}
	return d
}

// HistoryPath returns the configured history database path, defaulting
// to a file inside the cache directory.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.Source.CacheDir, "history.db")
}
