// SPDX-License-Identifier: MIT

// Package config loads gramfit settings from YAML over built-in defaults,
// applies environment overrides and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file.
const (
	EnvLogLevel = "GRAMIAN_LOG_LEVEL"
	EnvWorkers  = "GRAMIAN_WORKERS"
)

// Config is the full gramfit configuration.
type Config struct {
	Model    ModelConfig    `json:"model" yaml:"model"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// ModelConfig controls the fitted model.
type ModelConfig struct {
	Intercept       bool    `json:"intercept" yaml:"intercept"`
	Standardize     bool    `json:"standardize" yaml:"standardize"`
	UseAllLevels    bool    `json:"use_all_levels" yaml:"use_all_levels"`
	Lambda          float64 `json:"lambda" yaml:"lambda" validate:"gte=0"`
	MaxRidgeRetries int     `json:"max_ridge_retries" yaml:"max_ridge_retries" validate:"gte=0,lte=50"`
	RidgeGrowth     float64 `json:"ridge_growth" yaml:"ridge_growth" validate:"gt=1"`
}

// PipelineConfig controls chunking and parallelism. Zero workers means
// GOMAXPROCS.
type PipelineConfig struct {
	Workers       int    `json:"workers" yaml:"workers" validate:"gte=0"`
	ChunkRows     int    `json:"chunk_rows" yaml:"chunk_rows" validate:"gte=1"`
	Topology      string `json:"topology" yaml:"topology" validate:"oneof=tree sequential"`
	FactorWorkers int    `json:"factor_workers" yaml:"factor_workers" validate:"gte=0"`
}

// LoggingConfig selects level and handler format.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Intercept:       true,
			MaxRidgeRetries: 5,
			RidgeGrowth:     10,
		},
		Pipeline: PipelineConfig{
			ChunkRows: 4096,
			Topology:  "tree",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Load reads path over the defaults, then environment overrides, then
// validates. An empty path yields the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err = Decode(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Decode strictly unmarshals YAML data over cfg. Empty input leaves cfg as is.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvWorkers, v, err)
		}
		cfg.Pipeline.Workers = n
	}

	return nil
}
