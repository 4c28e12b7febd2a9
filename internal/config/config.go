package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Table   TableConfig   `mapstructure:"table"`
	Serve   ServeConfig   `mapstructure:"serve"`
	Pages   []PageConfig  `mapstructure:"pages"`
}

// HTTPConfig holds the data endpoint settings
type HTTPConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds the local snapshot cache settings
type CacheConfig struct {
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
	Version string        `mapstructure:"version"`
	Enabled bool          `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TableConfig holds the virtual scroll parameters
type TableConfig struct {
	RowHeight  int `mapstructure:"row_height"`
	Buffer     int `mapstructure:"buffer"`
	Threshold  int `mapstructure:"threshold"`
	Hysteresis int `mapstructure:"hysteresis"`
	Viewport   int `mapstructure:"viewport"`
}

// ServeConfig holds the HTTP server settings
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// SourceConfig describes one record family of a page
type SourceConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Wrapper  string            `mapstructure:"wrapper"`
	Fields   map[string]string `mapstructure:"fields"`
}

// Enabled reports whether the family has an endpoint.
func (s SourceConfig) Enabled() bool { return s.Endpoint != "" }

// PageConfig describes one dashboard page
type PageConfig struct {
	Name    string            `mapstructure:"name"`
	Title   string            `mapstructure:"title"`
	Team    string            `mapstructure:"team"`
	Matches SourceConfig      `mapstructure:"matches"`
	Details SourceConfig      `mapstructure:"details"`
	Lineups SourceConfig      `mapstructure:"lineups"`
	Filters map[string]string `mapstructure:"filters"`
}

// DefaultPage is used when no page is configured.
func DefaultPage() PageConfig {
	return PageConfig{
		Name:    "default",
		Title:   "Matches",
		Matches: SourceConfig{Endpoint: "/matches", Wrapper: "matches"},
		Details: SourceConfig{Endpoint: "/details", Wrapper: "details"},
		Lineups: SourceConfig{Endpoint: "/lineups", Wrapper: "lineups"},
	}
}

// Load reads configuration from file and environment variables. An empty path
// looks for matchstats.yaml in the working directory; a missing file there is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("matchstats")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("MATCHSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Pages) == 0 {
		cfg.Pages = []PageConfig{DefaultPage()}
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.base_url", "http://localhost:8080/api")
	v.SetDefault("http.timeout", "30s")

	v.SetDefault("cache.path", "./matchstats.db")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.version", "1")
	v.SetDefault("cache.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("table.row_height", 32)
	v.SetDefault("table.buffer", 25)
	v.SetDefault("table.threshold", 1000)
	v.SetDefault("table.hysteresis", 5)
	v.SetDefault("table.viewport", 640)

	v.SetDefault("serve.addr", ":8090")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return fmt.Errorf("http.base_url is required")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}

	if c.Cache.Enabled {
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required when the cache is enabled")
		}
		if c.Cache.TTL < time.Minute {
			return fmt.Errorf("cache.ttl must be at least 1 minute")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Table.RowHeight < 1 {
		return fmt.Errorf("table.row_height must be at least 1")
	}
	if c.Table.Buffer < 0 || c.Table.Hysteresis < 0 {
		return fmt.Errorf("table.buffer and table.hysteresis must not be negative")
	}
	if c.Table.Threshold < 0 {
		return fmt.Errorf("table.threshold must not be negative")
	}

	seen := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("pages[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("pages[%d]: duplicate page name %q", i, p.Name)
		}
		seen[p.Name] = true
		if !p.Matches.Enabled() {
			return fmt.Errorf("pages[%d] (%s): matches.endpoint is required", i, p.Name)
		}
	}

	return nil
}

// Page returns the page named name. An empty name selects the first page.
func (c *Config) Page(name string) (PageConfig, error) {
	if name == "" && len(c.Pages) > 0 {
		return c.Pages[0], nil
	}
	for _, p := range c.Pages {
		if p.Name == name {
			return p, nil
		}
	}
	return PageConfig{}, fmt.Errorf("unknown page %q", name)
}
