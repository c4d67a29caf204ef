// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Headless HeadlessConfig `mapstructure:"headless"`
	AI       AIConfig       `mapstructure:"ai"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Events   EventsConfig   `mapstructure:"events"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// HTTPConfig configures the fetch client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	UserAgent      string `mapstructure:"user_agent"`
}

// ScrapeConfig governs orchestrator behavior.
type ScrapeConfig struct {
	DelayMs      int `mapstructure:"delay_ms"`
	DefaultLimit int `mapstructure:"default_limit"`
}

// HeadlessConfig configures the headless rendering fallback.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// AIConfig holds per-provider credentials and batch pacing knobs.
type AIConfig struct {
	Anthropic       ProviderConfig `mapstructure:"anthropic"`
	OpenAI          ProviderConfig `mapstructure:"openai"`
	BatchSize       int            `mapstructure:"batch_size"`
	BatchDelayMs    int            `mapstructure:"batch_delay_ms"`
	LocationDelayMs int            `mapstructure:"location_delay_ms"`
}

// ProviderConfig identifies one AI provider account.
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ArchiveConfig selects the raw HTML blob store backend.
type ArchiveConfig struct {
	Backend   string `mapstructure:"backend"` // "", "local", "gcs", "memory"
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// EventsConfig controls enrichment event publishing.
type EventsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ServerConfig controls the ops HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("scrape.delay_ms", 2000)
	v.SetDefault("scrape.default_limit", 10)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("ai.anthropic.model", "claude-haiku-4-5")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.batch_size", 5)
	v.SetDefault("ai.batch_delay_ms", 1000)
	v.SetDefault("ai.location_delay_ms", 2000)
	v.SetDefault("archive.prefix", "articles")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 1 {
		return fmt.Errorf("http.max_retries must be >= 1")
	}
	if c.Scrape.DelayMs < 0 {
		return fmt.Errorf("scrape.delay_ms must be >= 0")
	}
	if c.AI.BatchSize <= 0 {
		return fmt.Errorf("ai.batch_size must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch c.Archive.Backend {
	case "", "memory":
	case "local":
		if c.Archive.LocalDir == "" {
			return fmt.Errorf("archive.local_dir must be set for the local backend")
		}
	case "gcs":
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket must be set for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown archive.backend %q", c.Archive.Backend)
	}
	if c.Events.Enabled && (c.Events.ProjectID == "" || c.Events.Topic == "") {
		return fmt.Errorf("events.project_id and events.topic must be set when events are enabled")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ScrapeDelay converts the politeness delay into a duration.
func (c Config) ScrapeDelay() time.Duration {
	return time.Duration(c.Scrape.DelayMs) * time.Millisecond
}

// BatchDelay converts the inter-batch delay into a duration.
func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.AI.BatchDelayMs) * time.Millisecond
}

// LocationDelay converts the per-item location delay into a duration.
func (c Config) LocationDelay() time.Duration {
	return time.Duration(c.AI.LocationDelayMs) * time.Millisecond
}
