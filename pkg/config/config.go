// Package config provides configuration management for the sofa-bound CLI.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Solver    SolverConfig    `mapstructure:"solver"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SolverConfig holds branch-and-bound tuning knobs.
type SolverConfig struct {
	// Workers is the number of parallel workers per batch.
	Workers int `mapstructure:"workers"`
	// BatchIterations bounds the iterations one worker runs before
	// survivors are redistributed.
	BatchIterations int `mapstructure:"batch_iterations"`
	// ProgressInterval is the iteration period of worker progress logs.
	ProgressInterval int `mapstructure:"progress_interval"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// TelemetryConfig holds OpenTelemetry tracing configuration.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Protocol string `mapstructure:"protocol"`
	Insecure bool   `mapstructure:"insecure"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			Workers:          runtime.NumCPU(),
			BatchIterations:  10000,
			ProgressInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Protocol: "grpc",
		},
	}
}

// Load reads configuration from an optional YAML file and SOFA_-prefixed
// environment variables, over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("solver.workers", def.Solver.Workers)
	v.SetDefault("solver.batch_iterations", def.Solver.BatchIterations)
	v.SetDefault("solver.progress_interval", def.Solver.ProgressInterval)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("telemetry.protocol", def.Telemetry.Protocol)
	v.SetDefault("telemetry.insecure", def.Telemetry.Insecure)

	v.SetEnvPrefix("SOFA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sofa-bound")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sofa-bound")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the solver cannot run with.
func (c *Config) Validate() error {
	if c.Solver.Workers <= 0 {
		return fmt.Errorf("solver.workers must be positive, got %d", c.Solver.Workers)
	}
	if c.Solver.BatchIterations <= 0 {
		return fmt.Errorf("solver.batch_iterations must be positive, got %d", c.Solver.BatchIterations)
	}
	if c.Solver.ProgressInterval <= 0 {
		return fmt.Errorf("solver.progress_interval must be positive, got %d", c.Solver.ProgressInterval)
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http", "http/protobuf":
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", c.Telemetry.Protocol)
	}
	return nil
}
