package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Pipeline PipelineConfig
	Logging  LogConfig
}

// PipelineConfig holds queue and store sizing.
type PipelineConfig struct {
	QueueCapacity int    `envconfig:"SIEVE_QUEUE_CAPACITY" default:"10"`
	QueueBackend  string `envconfig:"SIEVE_QUEUE_BACKEND" default:"ring"`
	StoreGrowth   bool   `envconfig:"SIEVE_STORE_GROWTH" default:"false"`
	Estimator     string `envconfig:"SIEVE_ESTIMATOR" default:"tight"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			QueueCapacity: 10,
			QueueBackend:  "ring",
			StoreGrowth:   false,
			Estimator:     "tight",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.QueueCapacity < 1 {
		return fmt.Errorf("invalid queue capacity %d", c.Pipeline.QueueCapacity)
	}
	switch c.Pipeline.QueueBackend {
	case "ring", "chan":
	default:
		return fmt.Errorf("invalid queue backend %q", c.Pipeline.QueueBackend)
	}
	switch c.Pipeline.Estimator {
	case "tight", "loose":
	default:
		return fmt.Errorf("invalid estimator %q", c.Pipeline.Estimator)
	}
	return nil
}
