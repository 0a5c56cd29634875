// Package config loads the torus settings from TORUS_* environment
// variables.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/torus/internal/errors"
	"github.com/copyleftdev/torus/internal/logging"
)

// Prefix is prepended to every variable name, e.g. TORUS_HTTP_PORT.
const Prefix = "TORUS_"

type Config struct {
	Environment string        `env:"ENV" envDefault:"development"`
	HTTP        HTTPConfig    `envPrefix:"HTTP_"`
	Logging     LoggingConfig `envPrefix:"LOG_"`
	Search      SearchConfig  `envPrefix:"SEARCH_"`
	Jobs        JobsConfig    `envPrefix:"JOB_"`
}

// HTTPConfig configures the search server listener.
type HTTPConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type LoggingConfig struct {
	Level  string `env:"LEVEL"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stderr"`
}

// SearchConfig holds defaults for reading point files.
type SearchConfig struct {
	// ParamIndex is the parameter column of point files; -1 means none.
	ParamIndex int  `env:"PARAM_INDEX" envDefault:"0"`
	ParamValue int  `env:"PARAM_VALUE" envDefault:"1"`
	History    bool `env:"HISTORY" envDefault:"false"`
}

type JobsConfig struct {
	// MaxRunning bounds the searches the server runs at once. Further
	// searches wait as pending.
	MaxRunning int `env:"MAX_RUNNING" envDefault:"4"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, errors.Wrap(err, "parsing environment").
			WithComponent("config").WithOperation("load").WithKind(errors.Invalid)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the search tools cannot run with.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Errorf(format, args...).
			WithComponent("config").WithOperation("validate").WithKind(errors.Invalid)
	}

	switch {
	case c.HTTP.Port < 0 || c.HTTP.Port > 65535:
		return invalid("%sHTTP_PORT out of range: %d", Prefix, c.HTTP.Port)
	case c.Search.ParamIndex < -1:
		return invalid("%sSEARCH_PARAM_INDEX must be -1 or a column index, got %d", Prefix, c.Search.ParamIndex)
	case c.Jobs.MaxRunning < 1:
		return invalid("%sJOB_MAX_RUNNING must be positive, got %d", Prefix, c.Jobs.MaxRunning)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "").WithComponent("config").WithOperation("validate").WithKind(errors.Invalid)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return errors.Wrap(err, "").WithComponent("config").WithOperation("validate").WithKind(errors.Invalid)
	}
	return nil
}
