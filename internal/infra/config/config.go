// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/osa030/19player/internal/domain/song"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Player      PlayerConfig      `yaml:"player"`
	Session     SessionConfig     `yaml:"session"`
	Sources     []SourceConfig    `yaml:"sources" validate:"dive"`
	MockCatalog MockCatalogConfig `yaml:"mock_catalog"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr        string      `yaml:"addr" default:":8080"`
	APIToken    string      `yaml:"api_token"`
	CORSOrigins []string    `yaml:"cors_origins"`
	Hooks       HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// PlayerConfig represents player session configuration.
type PlayerConfig struct {
	TickIntervalMs     int `yaml:"tick_interval_ms" default:"1000" validate:"gte=10,lte=60000"`
	OperationTimeoutMs int `yaml:"operation_timeout_ms" default:"10000" validate:"gte=100,lte=120000"`
	EventBuffer        int `yaml:"event_buffer" default:"16" validate:"gte=1,lte=1024"`
}

// SessionConfig represents session startup configuration.
type SessionConfig struct {
	InitialSource string `yaml:"initial_source" default:"local"`
	Autoplay      bool   `yaml:"autoplay"`
}

// SourceConfig represents the settings of one source kind.
type SourceConfig struct {
	Kind        string         `yaml:"kind" validate:"required,oneof=local spotify apple_music youtube_music"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings"`
}

// MockCatalogConfig controls the built-in catalog endpoint.
type MockCatalogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PLAYER_API_TOKEN"); v != "" {
		c.Server.APIToken = v
	}
	if v := os.Getenv("PLAYER_INITIAL_SOURCE"); v != "" {
		c.Session.InitialSource = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if !song.Kind(c.Session.InitialSource).Valid() {
		return errors.Newf("unknown initial_source: %q", c.Session.InitialSource)
	}

	kinds := lo.Map(c.Sources, func(s SourceConfig, _ int) string { return s.Kind })
	if dups := lo.FindDuplicates(kinds); len(dups) > 0 {
		return errors.Newf("duplicate source kinds: %v", dups)
	}

	return nil
}

// SourceSettings returns the configuration of kind, if any.
func (c *Config) SourceSettings(kind song.Kind) (SourceConfig, bool) {
	return lo.Find(c.Sources, func(s SourceConfig) bool { return s.Kind == kind.String() })
}

// TickInterval returns the progress tick interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Player.TickIntervalMs) * time.Millisecond
}

// OperationTimeout returns the timeout for source calls.
func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.Player.OperationTimeoutMs) * time.Millisecond
}
