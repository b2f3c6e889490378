// Package config provides configuration loading and management for variablemorph.
// It handles loading band layouts from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"variablemorph/internal/models"
)

// Config represents a morpher configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers bounds how many per-band morphology passes run at once
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"processing"`

	// Bands are listed top to bottom; each rowLimit is cumulative
	Bands []models.Band `yaml:"bands"`

	// Image fixes the image size. When both values are positive the morpher
	// is set up right after the bands are added.
	Image struct {
		Rows int `yaml:"rows"`
		Cols int `yaml:"cols"`
	} `yaml:"image"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumWorkers = runtime.NumCPU()
	cfg.Bands = []models.Band{}
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks the values that do not depend on the image being processed.
// Band ordering is checked when the bands are added to a morpher.
func (c *Config) Validate() error {
	if c.Processing.NumWorkers < 1 {
		return fmt.Errorf("numWorkers must be at least 1, got %d", c.Processing.NumWorkers)
	}
	if c.Image.Rows < 0 || c.Image.Cols < 0 {
		return fmt.Errorf("image dimensions must be non-negative, got %dx%d", c.Image.Rows, c.Image.Cols)
	}
	if (c.Image.Rows > 0) != (c.Image.Cols > 0) {
		return fmt.Errorf("image needs both rows and cols, got %dx%d", c.Image.Rows, c.Image.Cols)
	}
	if c.HasImage() && len(c.Bands) == 0 {
		return fmt.Errorf("image size given without any bands")
	}
	return nil
}

// HasImage reports whether the configuration fixes an image size
func (c *Config) HasImage() bool {
	return c.Image.Rows > 0 && c.Image.Cols > 0
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig validates cfg and writes it to a YAML file, creating the
// parent directory when needed
func SaveConfig(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile writes the default configuration for a rows x cols
// image, with a single radius-1 square band covering every row
func CreateDefaultConfigFile(configPath string, rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("image dimensions must be positive, got %dx%d", rows, cols)
	}

	cfg := DefaultConfig()
	cfg.Bands = []models.Band{{RowLimit: rows, Radius: 1, Shape: models.Square}}
	cfg.Image.Rows = rows
	cfg.Image.Cols = cols
	return SaveConfig(cfg, configPath)
}
