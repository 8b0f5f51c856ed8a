// Package metadata loads the per-study window table that drives a
// normalization run. The expected layout follows the DeepLesion key slice
// table: one row per study key slice, with a file identifier column and a
// display window column holding two comma-separated Hounsfield bounds.
package metadata

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"

	"ctprep/internal/models"
)

// ErrMalformedWindow reports a window-bounds field that does not parse as
// two comma-separated numbers. Callers are expected to recover from it by
// substituting a default window rather than aborting.
var ErrMalformedWindow = errors.New("malformed window bounds")

// Default column names match the DeepLesion metadata layout.
const (
	DefaultFileColumn   = "File_name"
	DefaultWindowColumn = "DICOM_windows"
)

// LoadTable reads the metadata CSV at path and returns one StudyWindow per
// row, preserving table order. fileCol and windowCol name the identifier and
// bounds columns; empty strings select the DeepLesion defaults. The bounds
// field is kept unparsed so that a malformed value surfaces per row during
// the run instead of failing the whole load.
func LoadTable(path, fileCol, windowCol string) ([]models.StudyWindow, error) {
	if fileCol == "" {
		fileCol = DefaultFileColumn
	}
	if windowCol == "" {
		windowCol = DefaultWindowColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open metadata table %s", path)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "failed to parse metadata table %s", path)
	}
	for _, col := range []string{fileCol, windowCol} {
		if !hasColumn(df, col) {
			return nil, errors.Errorf("metadata table %s has no %q column", path, col)
		}
	}

	ids := df.Col(fileCol).Records()
	bounds := df.Col(windowCol).Records()
	rows := make([]models.StudyWindow, 0, len(ids))
	for i, id := range ids {
		studyID, _ := StudyDirOf(id)
		rows = append(rows, models.StudyWindow{
			FileID:    id,
			StudyID:   studyID,
			RawBounds: bounds[i],
		})
	}
	return rows, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, col := range df.Names() {
		if col == name {
			return true
		}
	}
	return false
}

// ParseWindow parses a "min, max" bounds string into a Window. Any failure
// (wrong field count, non-numeric field) returns ErrMalformedWindow wrapped
// with the offending value.
func ParseWindow(s string) (models.Window, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Window{}, errors.Wrapf(ErrMalformedWindow, "want two comma-separated bounds, got %q", s)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Window{}, errors.Wrapf(ErrMalformedWindow, "bad lower bound in %q", s)
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Window{}, errors.Wrapf(ErrMalformedWindow, "bad upper bound in %q", s)
	}
	return models.Window{Min: min, Max: max}, nil
}

// StudyDirOf derives the study directory name from a file identifier by
// stripping the trailing slice-index segment: "004408_01_02_088.png" maps
// to "004408_01_02". The second return is false when the identifier has no
// separator to strip.
func StudyDirOf(fileID string) (string, bool) {
	idx := strings.LastIndex(fileID, "_")
	if idx <= 0 {
		return "", false
	}
	return fileID[:idx], true
}
