// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package config loads the run configuration of the selvar tool from an
// optional YAML file with SELVAR_* environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the top-level run configuration.
type Config struct {
	Selvar     SelvarConfig     `yaml:"selvar"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Output     OutputConfig     `yaml:"output"`
}

// SelvarConfig holds the search parameters. Negative values of MaxLags,
// BatchSize and MaxIter mean adaptive, one batch and unbounded.
type SelvarConfig struct {
	MaxLags   int  `yaml:"maxlags"`
	BatchSize int  `yaml:"batchsize"`
	MaxIter   int  `yaml:"mxitr"`
	Trace     int  `yaml:"trace"`
	SelfLags  bool `yaml:"selfLags"`
	Workers   int  `yaml:"workers"`
}

// PreprocessConfig selects the conditioning applied before the search.
type PreprocessConfig struct {
	Detrend     bool `yaml:"detrend"`
	Standardise bool `yaml:"standardise"`
}

// LoggingConfig controls log level and output format (console, json, auto).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig names the textfile the metrics are written to; empty disables it.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// OutputConfig controls where result files go.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Selvar: SelvarConfig{
			MaxLags:   1,
			BatchSize: -1,
			MaxIter:   -1,
			Trace:     0,
			SelfLags:  true,
		},
		Preprocess: PreprocessConfig{
			Standardise: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}

// Validate checks the values no search could run with.
func (c *Config) Validate() error {
	if c.Selvar.BatchSize == 0 {
		return fmt.Errorf("%w: selvar.batchsize must be negative or at least 1", ErrInvalidConfig)
	}
	if c.Selvar.Trace < 0 {
		return fmt.Errorf("%w: selvar.trace must not be negative", ErrInvalidConfig)
	}
	if c.Selvar.Workers < 0 {
		return fmt.Errorf("%w: selvar.workers must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// applyEnvOverrides reads SELVAR_* environment variables and overrides the
// corresponding config fields. Malformed numbers are an error.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"SELVAR_MAXLAGS", &cfg.Selvar.MaxLags},
		{"SELVAR_BATCHSIZE", &cfg.Selvar.BatchSize},
		{"SELVAR_MXITR", &cfg.Selvar.MaxIter},
		{"SELVAR_TRACE", &cfg.Selvar.Trace},
		{"SELVAR_WORKERS", &cfg.Selvar.Workers},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, e.key, v)
			}
			*e.dst = n
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"SELVAR_SELF_LAGS", &cfg.Selvar.SelfLags},
		{"SELVAR_DETREND", &cfg.Preprocess.Detrend},
		{"SELVAR_STANDARDISE", &cfg.Preprocess.Standardise},
	}
	for _, e := range bools {
		if v := os.Getenv(e.key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, e.key, v)
			}
			*e.dst = b
		}
	}

	if v := os.Getenv("SELVAR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SELVAR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SELVAR_METRICS_FILE"); v != "" {
		cfg.Metrics.File = v
	}
	if v := os.Getenv("SELVAR_OUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	return nil
}
