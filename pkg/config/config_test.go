package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	dir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Normalize.FileColumn != "File_name" {
		t.Errorf("FileColumn = %q, want File_name", cfg.Normalize.FileColumn)
	}
	if cfg.Normalize.DefaultWindow.Min != -150 || cfg.Normalize.DefaultWindow.Max != 250 {
		t.Errorf("DefaultWindow = (%g, %g), want (-150, 250)",
			cfg.Normalize.DefaultWindow.Min, cfg.Normalize.DefaultWindow.Max)
	}
	if cfg.Scoring.Alpha != 0.7 {
		t.Errorf("Alpha = %g, want 0.7", cfg.Scoring.Alpha)
	}
	if cfg.Preview.Columns != 8 {
		t.Errorf("Preview columns = %d, want 8", cfg.Preview.Columns)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := DefaultConfig()
	cfg.Normalize.Workers = 2
	cfg.Normalize.WindowColumn = "windows"
	cfg.Scoring.Top = 100

	path := filepath.Join(dir, "nested", "ctprep.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Normalize.Workers != 2 {
		t.Errorf("Workers = %d, want 2", loaded.Normalize.Workers)
	}
	if loaded.Normalize.WindowColumn != "windows" {
		t.Errorf("WindowColumn = %q, want windows", loaded.Normalize.WindowColumn)
	}
	if loaded.Scoring.Top != 100 {
		t.Errorf("Top = %d, want 100", loaded.Scoring.Top)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "ctprep.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Normalize.WindowColumn != "DICOM_windows" {
		t.Errorf("WindowColumn = %q, want DICOM_windows", loaded.Normalize.WindowColumn)
	}
}
