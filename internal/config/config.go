// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration.
type Config struct {
	Env               string        `env:"ENV" envDefault:"development"`
	Debug             bool          `env:"DEBUG" envDefault:"false"`
	Port              string        `env:"PORT" envDefault:"8080"`
	DatabasePath      string        `env:"DATABASE_PATH" envDefault:"actus.db"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"actus-secret-key"`
	ProcessorInterval time.Duration `env:"PROCESSOR_INTERVAL" envDefault:"5m"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "production"
}
