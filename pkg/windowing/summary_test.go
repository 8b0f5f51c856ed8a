package windowing

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"ctprep/internal/models"
)

func TestSummarize(t *testing.T) {
	reports := []StudyReport{
		{
			FileID:        "000001_01_01_109.png",
			StudyID:       "000001_01_01",
			Window:        models.Window{Min: -100, Max: 200},
			SlicesWritten: 3,
			BytesWritten:  300,
			MeanIntensity: 100,
		},
		{
			FileID:         "000002_01_01_014.png",
			StudyID:        "000002_01_01",
			Window:         models.DefaultWindow(),
			UsedFallback:   true,
			FallbackReason: "bad bounds",
			SlicesWritten:  2,
			BytesWritten:   200,
			MeanIntensity:  50,
			Skipped:        []SliceSkip{{Study: "000002_01_01", File: "slice_001.png", Reason: "corrupt"}},
		},
		{
			FileID:   "noseparator.png",
			RowError: "cannot derive a study directory from the file identifier",
		},
	}

	s := summarize(reports, 1.5)
	if s.Rows != 3 {
		t.Errorf("Rows = %d, want 3", s.Rows)
	}
	if s.RowsSkipped != 1 {
		t.Errorf("RowsSkipped = %d, want 1", s.RowsSkipped)
	}
	if s.SlicesWritten != 5 {
		t.Errorf("SlicesWritten = %d, want 5", s.SlicesWritten)
	}
	if s.SlicesSkipped != 1 {
		t.Errorf("SlicesSkipped = %d, want 1", s.SlicesSkipped)
	}
	if s.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", s.Fallbacks)
	}
	if s.BytesWritten != 500 {
		t.Errorf("BytesWritten = %d, want 500", s.BytesWritten)
	}
	if s.MeanIntensity != 75 {
		t.Errorf("MeanIntensity = %f, want 75", s.MeanIntensity)
	}
	if len(s.SkippedRows) != 1 || s.SkippedRows[0].FileID != "noseparator.png" {
		t.Errorf("SkippedRows = %+v, want the unmappable row", s.SkippedRows)
	}
}

func TestWriteReport(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	s := summarize([]StudyReport{
		{FileID: "000001_01_01_109.png", StudyID: "000001_01_01", SlicesWritten: 4, BytesWritten: 1024},
	}, 0.25)

	path := filepath.Join(tempDir, "report.yaml")
	if err := s.WriteReport(path); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var loaded Summary
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Report is not valid YAML: %v", err)
	}
	if loaded.Rows != 1 || loaded.SlicesWritten != 4 || loaded.BytesWritten != 1024 {
		t.Errorf("Reloaded summary = %+v, want the written counts", loaded)
	}
}
