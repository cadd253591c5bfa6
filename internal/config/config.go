// Package config loads runtime settings for the walkthrough from the
// environment. Command-line flags layered on top live in cmd/clara.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/clara-labs/walkthrough/internal/session"
)

// Config is the process-level configuration.
type Config struct {
	CompressionRatio int     `env:"CLARA_COMPRESSION_RATIO" envDefault:"16"`
	TopK             int     `env:"CLARA_TOP_K" envDefault:"4"`
	Mute             bool    `env:"CLARA_MUTE"`
	Pace             float64 `env:"CLARA_PACE" envDefault:"1"`
	DocumentPath     string  `env:"CLARA_DOCUMENT"`
	LogFile          string  `env:"CLARA_LOG_FILE"`
	LogLevel         string  `env:"CLARA_LOG_LEVEL" envDefault:"info"`
	NoAltScreen      bool    `env:"CLARA_NO_ALT_SCREEN"`
}

// FromEnv parses Config from the environment and normalizes it.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps the tunables into their allowed ranges.
func (c *Config) Normalize() {
	c.CompressionRatio = session.CompressionRange.Clamp(c.CompressionRatio)
	c.TopK = session.TopKRange.Clamp(c.TopK)
	if c.Pace < 0 {
		c.Pace = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
