package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.TimeoutSeconds != 10 {
		t.Fatalf("expected default timeout 10s, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.HTTP.MaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.Scrape.DelayMs != 2000 {
		t.Fatalf("expected default scrape delay 2000ms, got %d", cfg.Scrape.DelayMs)
	}
	if cfg.AI.BatchSize != 5 {
		t.Fatalf("expected default batch size 5, got %d", cfg.AI.BatchSize)
	}
	if cfg.AI.Anthropic.APIKey != "" || cfg.AI.OpenAI.APIKey != "" {
		t.Fatalf("expected no provider keys by default")
	}
	if cfg.FetchTimeout() != 10*time.Second {
		t.Fatalf("unexpected fetch timeout %v", cfg.FetchTimeout())
	}
	if cfg.ScrapeDelay() != 2*time.Second {
		t.Fatalf("unexpected scrape delay %v", cfg.ScrapeDelay())
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
db:
  dsn: postgres://localhost/redline
  max_conns: 8
http:
  timeout_seconds: 20
  max_retries: 5
scrape:
  delay_ms: 500
  default_limit: 25
headless:
  enabled: true
  nav_timeout_seconds: 40
ai:
  anthropic:
    api_key: test-key
    model: claude-haiku-4-5
  batch_size: 3
  batch_delay_ms: 250
archive:
  backend: local
  local_dir: /tmp/redline
events:
  enabled: true
  project_id: proj
  topic: enrichment
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DB.DSN != "postgres://localhost/redline" || cfg.DB.MaxConns != 8 {
		t.Fatalf("expected db overrides to apply")
	}
	if cfg.HTTP.TimeoutSeconds != 20 || cfg.HTTP.MaxRetries != 5 {
		t.Fatalf("expected http overrides to apply")
	}
	if cfg.Scrape.DelayMs != 500 || cfg.Scrape.DefaultLimit != 25 {
		t.Fatalf("expected scrape overrides to apply")
	}
	if !cfg.Headless.Enabled || cfg.Headless.NavTimeoutSec != 40 {
		t.Fatalf("expected headless overrides to apply")
	}
	if cfg.AI.Anthropic.APIKey != "test-key" || cfg.AI.BatchSize != 3 {
		t.Fatalf("expected ai overrides to apply")
	}
	if cfg.Archive.Backend != "local" || cfg.Archive.LocalDir != "/tmp/redline" {
		t.Fatalf("expected archive overrides to apply")
	}
	if !cfg.Events.Enabled || cfg.Events.Topic != "enrichment" {
		t.Fatalf("expected events overrides to apply")
	}
	if cfg.Logging.Development {
		t.Fatalf("expected production logging")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{"zero retries", func(c *Config) { c.HTTP.MaxRetries = 0 }},
		{"negative delay", func(c *Config) { c.Scrape.DelayMs = -1 }},
		{"zero batch", func(c *Config) { c.AI.BatchSize = 0 }},
		{"unknown archive backend", func(c *Config) { c.Archive.Backend = "s3" }},
		{"local archive without dir", func(c *Config) { c.Archive.Backend = "local"; c.Archive.LocalDir = "" }},
		{"gcs archive without bucket", func(c *Config) { c.Archive.Backend = "gcs" }},
		{"events without topic", func(c *Config) { c.Events.Enabled = true; c.Events.ProjectID = "p" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
