package windowing

import (
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"ctprep/internal/models"
)

// SliceSkip records one input file that could not be converted. The rest of
// the study keeps processing when a slice is skipped.
type SliceSkip struct {
	Study  string `yaml:"study"`
	File   string `yaml:"file"`
	Reason string `yaml:"reason"`
}

// RowSkip records one metadata row that could not be processed at all, for
// example because its identifier maps to no study directory.
type RowSkip struct {
	FileID string `yaml:"fileId"`
	Reason string `yaml:"reason"`
}

// StudyReport is the outcome of one metadata row. Every row produces exactly
// one report, failed rows included, so a run can always be audited against
// its input table.
type StudyReport struct {
	FileID         string        `yaml:"fileId"`
	StudyID        string        `yaml:"studyId"`
	Window         models.Window `yaml:"window"`
	UsedFallback   bool          `yaml:"usedFallback"`
	FallbackReason string        `yaml:"fallbackReason,omitempty"`
	SlicesWritten  int           `yaml:"slicesWritten"`
	BytesWritten   int64         `yaml:"bytesWritten"`
	MeanIntensity  float64       `yaml:"meanIntensity"`
	Skipped        []SliceSkip   `yaml:"skipped,omitempty"`
	RowError       string        `yaml:"rowError,omitempty"`
}

// Summary aggregates a whole normalization run.
type Summary struct {
	Rows           int           `yaml:"rows"`
	RowsSkipped    int           `yaml:"rowsSkipped"`
	SlicesWritten  int           `yaml:"slicesWritten"`
	SlicesSkipped  int           `yaml:"slicesSkipped"`
	Fallbacks      int           `yaml:"fallbacks"`
	BytesWritten   int64         `yaml:"bytesWritten"`
	MeanIntensity  float64       `yaml:"meanIntensity"`
	ElapsedSeconds float64       `yaml:"elapsedSeconds"`
	SkippedRows    []RowSkip     `yaml:"skippedRows,omitempty"`
	SkippedSlices  []SliceSkip   `yaml:"skippedSlices,omitempty"`
	Reports        []StudyReport `yaml:"-"`
}

// summarize folds per-row reports, in table order, into a run summary.
func summarize(reports []StudyReport, elapsedSeconds float64) *Summary {
	s := &Summary{
		Rows:           len(reports),
		ElapsedSeconds: elapsedSeconds,
		Reports:        reports,
	}
	var means []float64
	for _, rep := range reports {
		if rep.RowError != "" {
			s.RowsSkipped++
			s.SkippedRows = append(s.SkippedRows, RowSkip{FileID: rep.FileID, Reason: rep.RowError})
			continue
		}
		if rep.UsedFallback {
			s.Fallbacks++
		}
		s.SlicesWritten += rep.SlicesWritten
		s.BytesWritten += rep.BytesWritten
		s.SlicesSkipped += len(rep.Skipped)
		s.SkippedSlices = append(s.SkippedSlices, rep.Skipped...)
		if rep.SlicesWritten > 0 {
			means = append(means, rep.MeanIntensity)
		}
	}
	if len(means) > 0 {
		s.MeanIntensity = stat.Mean(means, nil)
	}
	return s
}

// WriteReport saves the summary as YAML so a run can be checked into the
// dataset alongside its output.
func (s *Summary) WriteReport(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to marshal run summary")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write run summary %s", path)
	}
	return nil
}
