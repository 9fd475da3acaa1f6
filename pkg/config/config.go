// Package config provides configuration loading and management for tvdenoise.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tvdenoise/pkg/denoise"
	"tvdenoise/pkg/imageio"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Solver parameters
	Solver struct {
		// TuneRounds is the number of lambda tuning rounds
		TuneRounds int `yaml:"tuneRounds"`

		// CoarseTol is the solver convergence tolerance during tuning
		CoarseTol float64 `yaml:"coarseTol"`

		// CoarseMaxIterations caps solver iterations during tuning
		CoarseMaxIterations int `yaml:"coarseMaxIterations"`

		// FinalTol is the solver convergence tolerance for the final solve
		FinalTol float64 `yaml:"finalTol"`

		// FinalMaxIterations caps solver iterations for the final solve
		FinalMaxIterations int `yaml:"finalMaxIterations"`
	} `yaml:"solver"`

	// Output parameters
	Output struct {
		// JpegQuality is the quality used when writing JPEG images (1 to 100)
		JpegQuality int `yaml:"jpegQuality"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default solver parameters
	cfg.Solver.TuneRounds = denoise.DefaultTuneRounds
	cfg.Solver.CoarseTol = denoise.DefaultCoarseTol
	cfg.Solver.CoarseMaxIterations = denoise.DefaultCoarseMaxIter
	cfg.Solver.FinalTol = denoise.DefaultFinalTol
	cfg.Solver.FinalMaxIterations = denoise.DefaultFinalMaxIter

	// Set default output parameters
	cfg.Output.JpegQuality = imageio.DefaultJpegQuality
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the configuration values are usable
func (cfg *Config) Validate() error {
	if cfg.Solver.TuneRounds <= 0 {
		return fmt.Errorf("solver.tuneRounds must be positive, got %d", cfg.Solver.TuneRounds)
	}
	if cfg.Solver.CoarseTol <= 0 || cfg.Solver.FinalTol <= 0 {
		return fmt.Errorf("solver tolerances must be positive")
	}
	if cfg.Solver.CoarseMaxIterations <= 0 || cfg.Solver.FinalMaxIterations <= 0 {
		return fmt.Errorf("solver iteration caps must be positive")
	}
	if cfg.Output.JpegQuality <= 0 || cfg.Output.JpegQuality > 100 {
		return fmt.Errorf("output.jpegQuality must be between 1 and 100, got %d", cfg.Output.JpegQuality)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
