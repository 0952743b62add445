// Package config provides configuration loading: defaults, an optional yaml
// file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds static service configuration (read-only after init).
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Wikidata WikidataConfig `yaml:"wikidata,omitempty"`
	Game     GameConfig     `yaml:"game,omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
	// MaxBatch caps the num parameter of a tiles request.
	MaxBatch int `yaml:"max_batch,omitempty"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url,omitempty"`
	// TablePrefix names the candidate table family; candidates_<epoch> holds
	// the snapshot rows and candidates_<epoch>_logging the decisions.
	TablePrefix string `yaml:"table_prefix,omitempty"`
}

// WikidataConfig holds the claim-verification client settings.
type WikidataConfig struct {
	Endpoint          string  `yaml:"endpoint,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	MaxRetries        int     `yaml:"max_retries,omitempty"`
}

// Timeout returns the per-call verification timeout.
func (w WikidataConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// GameConfig selects the game this process serves and tunes the pipeline.
type GameConfig struct {
	Key       string `yaml:"key,omitempty"`
	Overfetch int    `yaml:"overfetch,omitempty"`
	MaxPasses int    `yaml:"max_passes,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":8080",
			MaxBatch: 50,
		},
		Database: DatabaseConfig{
			TablePrefix: "candidates",
		},
		Wikidata: WikidataConfig{
			TimeoutSeconds:    10,
			RequestsPerSecond: 10,
			MaxRetries:        2,
		},
		Game: GameConfig{
			Key: "missing_date_of_death",
		},
	}
}

// Load reads configuration from path (optional, "" skips the file), layered
// over defaults, with environment overrides applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if game := os.Getenv("FACTLOOP_GAME"); game != "" {
		c.Game.Key = game
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required (set database.url or DATABASE_URL)")
	}
	if c.Game.Key == "" {
		return fmt.Errorf("game key is required")
	}
	return nil
}
