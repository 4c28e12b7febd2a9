package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndValidate(t *testing.T) {
	content := `
http:
  base_url: "https://stats.example.org/api"
  timeout: 10s

cache:
  path: "./data/cache.db"
  ttl: 12h
  version: "3"

logging:
  level: "debug"
  format: "json"

pages:
  - name: ahly
    title: Al Ahly
    team: Ahly
    matches:
      endpoint: /ahly/matches
      wrapper: matches
      fields:
        referee: REFEREE
    details:
      endpoint: /ahly/details
    filters:
      championship: League
  - name: egypt
    matches:
      endpoint: /egypt/matches
`
	path := filepath.Join(t.TempDir(), "matchstats.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.BaseURL != "https://stats.example.org/api" {
		t.Errorf("Unexpected base URL: %s", cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("Unexpected timeout: %v", cfg.HTTP.Timeout)
	}
	if cfg.Cache.TTL != 12*time.Hour || cfg.Cache.Version != "3" {
		t.Errorf("Unexpected cache config: %+v", cfg.Cache)
	}
	if len(cfg.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(cfg.Pages))
	}
	ahly := cfg.Pages[0]
	if ahly.Matches.Fields["referee"] != "REFEREE" {
		t.Errorf("Unexpected field override: %v", ahly.Matches.Fields)
	}
	if ahly.Lineups.Enabled() {
		t.Error("lineups should be disabled without an endpoint")
	}
	if ahly.Filters["championship"] != "League" {
		t.Errorf("Unexpected preset filters: %v", ahly.Filters)
	}
	// Defaults survive a partial file.
	if cfg.Table.Threshold != 1000 || cfg.Table.RowHeight != 32 {
		t.Errorf("Unexpected table defaults: %+v", cfg.Table)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	p, err := cfg.Page("egypt")
	if err != nil || p.Matches.Endpoint != "/egypt/matches" {
		t.Errorf("Page(egypt) = %+v, %v", p, err)
	}
	if _, err := cfg.Page("nope"); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Pages) != 1 || cfg.Pages[0].Name != "default" {
		t.Errorf("expected the default page, got %+v", cfg.Pages)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestValidateErrors(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTP:    HTTPConfig{BaseURL: "http://x", Timeout: time.Second},
			Cache:   CacheConfig{Path: "c.db", TTL: time.Hour, Enabled: true},
			Logging: LoggingConfig{Level: "info", Format: "text"},
			Table:   TableConfig{RowHeight: 32, Buffer: 25, Threshold: 1000, Hysteresis: 5},
			Pages:   []PageConfig{DefaultPage()},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.HTTP.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"short ttl", func(c *Config) { c.Cache.TTL = time.Second }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero row height", func(c *Config) { c.Table.RowHeight = 0 }},
		{"unnamed page", func(c *Config) { c.Pages[0].Name = "" }},
		{"duplicate page", func(c *Config) { c.Pages = append(c.Pages, DefaultPage()) }},
		{"page without matches", func(c *Config) { c.Pages[0].Matches.Endpoint = "" }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := valid()
	cfg.Cache.Enabled = false
	cfg.Cache.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("a disabled cache needs no path: %v", err)
	}
}
