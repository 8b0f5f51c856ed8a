// Package config provides configuration loading and management for ctprep.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Normalization parameters
	Normalize struct {
		// Workers specifies how many studies to convert concurrently
		Workers int `yaml:"workers"`

		// FileColumn names the metadata column holding the file identifier
		FileColumn string `yaml:"fileColumn"`

		// WindowColumn names the metadata column holding the window bounds
		WindowColumn string `yaml:"windowColumn"`

		// DefaultWindow replaces window bounds that fail to parse
		DefaultWindow struct {
			Min float64 `yaml:"min"`
			Max float64 `yaml:"max"`
		} `yaml:"defaultWindow"`

		// Extensions lists which files in a study directory count as slices
		Extensions []string `yaml:"extensions"`

		// Progress controls the terminal progress bar
		Progress bool `yaml:"progress"`
	} `yaml:"normalize"`

	// Detection conversion parameters
	Detections struct {
		// SkipBad converts past prediction files that fail to parse
		// instead of aborting the pass
		SkipBad bool `yaml:"skipBad"`
	} `yaml:"detections"`

	// Curation scoring parameters
	Scoring struct {
		// Neighbors is how many nearest samples feed the uniqueness score
		Neighbors int `yaml:"neighbors"`

		// Alpha weights uniqueness against representativeness in the blend
		Alpha float64 `yaml:"alpha"`

		// Top caps how many ranked samples are written; 0 keeps all
		Top int `yaml:"top"`
	} `yaml:"scoring"`

	// Preview montage parameters
	Preview struct {
		// Columns is the number of tiles per montage row
		Columns int `yaml:"columns"`

		// TileSize is the edge length of each tile in pixels
		TileSize int `yaml:"tileSize"`

		// MaxTiles caps how many slices are sampled into the montage
		MaxTiles int `yaml:"maxTiles"`
	} `yaml:"preview"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default normalization parameters
	cfg.Normalize.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Normalize.FileColumn = "File_name"
	cfg.Normalize.WindowColumn = "DICOM_windows"
	cfg.Normalize.DefaultWindow.Min = -150
	cfg.Normalize.DefaultWindow.Max = 250
	cfg.Normalize.Extensions = []string{".png", ".tif", ".tiff"}
	cfg.Normalize.Progress = true

	// Set default detection parameters
	cfg.Detections.SkipBad = false

	// Set default scoring parameters
	cfg.Scoring.Neighbors = 3
	cfg.Scoring.Alpha = 0.7
	cfg.Scoring.Top = 0

	// Set default preview parameters
	cfg.Preview.Columns = 8
	cfg.Preview.TileSize = 128
	cfg.Preview.MaxTiles = 64

	return cfg
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
