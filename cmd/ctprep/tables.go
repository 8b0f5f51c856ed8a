package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"ctprep/pkg/curation"
	"ctprep/pkg/detection"
	"ctprep/pkg/windowing"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

// newPlainTable builds the shared table skeleton. Column alignments apply
// positionally; the last alignment extends to any remaining columns.
func newPlainTable(withHeader bool, alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row < 0 {
				s = headerRowStyle
				return
			}
			switch {
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			s = s.Align(alignment)
			return
		})
}

// printRunSummary renders the normalization result tables.
func printRunSummary(s *windowing.Summary) {
	fmt.Println(titleStyle.Render("Run Summary"))
	table := newPlainTable(false, lipgloss.Right, lipgloss.Left)
	table.Row("metadata rows", humanize.Comma(int64(s.Rows)))
	table.Row("rows skipped", humanize.Comma(int64(s.RowsSkipped)))
	table.Row("slices written", humanize.Comma(int64(s.SlicesWritten)))
	table.Row("slices skipped", humanize.Comma(int64(s.SlicesSkipped)))
	table.Row("fallback windows", humanize.Comma(int64(s.Fallbacks)))
	table.Row("bytes written", humanize.Bytes(uint64(s.BytesWritten)))
	table.Row("mean intensity", fmt.Sprintf("%.1f", s.MeanIntensity))
	table.Row("elapsed", fmt.Sprintf("%.2fs", s.ElapsedSeconds))
	fmt.Println(table.Render())

	if len(s.SkippedRows) > 0 {
		fmt.Println(titleStyle.Render("Skipped Rows"))
		table := newPlainTable(true, lipgloss.Left)
		table.Headers("File ID", "Reason")
		for _, skip := range s.SkippedRows {
			table.Row(skip.FileID, skip.Reason)
		}
		fmt.Println(table.Render())
	}
	if len(s.SkippedSlices) > 0 {
		fmt.Println(titleStyle.Render("Skipped Slices"))
		table := newPlainTable(true, lipgloss.Left)
		table.Headers("Study", "File", "Reason")
		for _, skip := range s.SkippedSlices {
			table.Row(skip.Study, skip.File, skip.Reason)
		}
		fmt.Println(table.Render())
	}
}

// printTopScores renders the best-ranked curation samples.
func printTopScores(scores []curation.Score, limit int) {
	if limit <= 0 || limit > len(scores) {
		limit = len(scores)
	}
	fmt.Println(titleStyle.Render("Top Samples"))
	table := newPlainTable(true, lipgloss.Right, lipgloss.Left, lipgloss.Right)
	table.Headers("Rank", "Sample", "Uniqueness", "Representativeness", "Score")
	for i, score := range scores[:limit] {
		table.Row(
			humanize.Comma(int64(i+1)),
			score.Sample,
			fmt.Sprintf("%.3f", score.Uniqueness),
			fmt.Sprintf("%.3f", score.Representativeness),
			fmt.Sprintf("%.3f", score.Blend),
		)
	}
	fmt.Println(table.Render())
}

// printFileErrors renders prediction files skipped during a tolerant pass.
func printFileErrors(failures []detection.FileError) {
	fmt.Println(titleStyle.Render("Skipped Prediction Files"))
	table := newPlainTable(true, lipgloss.Left)
	table.Headers("File", "Reason")
	for _, failure := range failures {
		table.Row(failure.File, failure.Reason)
	}
	fmt.Println(table.Render())
}
