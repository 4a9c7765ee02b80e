package config

import (
	"strings"

	"github.com/kbukum/reactive/errors"
	"github.com/kbukum/reactive/logger"
	"github.com/kbukum/reactive/validation"
)

// DefaultName is the configuration name used by Load: it selects
// reactive.yml, .env.reactive and the REACTIVE_ environment prefix.
const DefaultName = "reactive"

var environments = []string{"development", "staging", "production"}

// Config is the process-wide configuration of the reactive library.
//
// Example reactive.yml:
//
//	environment: production
//	engine:
//	  name: inproc
//	  options:
//	    prefetch: 64
//	logging:
//	  level: info
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Engine      EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// EngineConfig selects the default stream engine and carries the options
// handed to its factory.
type EngineConfig struct {
	// Name of a registered engine. Empty means the only, or the
	// alphabetically first, registered engine.
	Name    string         `yaml:"name" mapstructure:"name"`
	Options map[string]any `yaml:"options" mapstructure:"options"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	err := validation.New().
		Required("name", c.Name).
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, environments).
		Custom(c.Engine.Name == strings.TrimSpace(c.Engine.Name), "engine.name", "must not have surrounding whitespace").
		Validate()
	if err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig("logging: " + err.Error()).WithCause(err)
	}
	return nil
}

// Load reads the reactive configuration from reactive.yml, .env files and
// REACTIVE_ environment variables, then applies defaults and validates it.
// A missing file is not an error.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(DefaultName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
