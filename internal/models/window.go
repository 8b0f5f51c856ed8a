package models

// Window holds the Hounsfield-unit clip bounds applied to one imaging study.
// Values below Min render black, values above Max render white, and the
// range in between is rescaled linearly to the full 8-bit range.
type Window struct {
	// Min is the lower clip bound in Hounsfield units.
	Min float64 `yaml:"min"`

	// Max is the upper clip bound in Hounsfield units.
	Max float64 `yaml:"max"`
}

// DefaultWindow returns the fallback bounds used when a study's stored
// window cannot be parsed. (-150, 250) covers soft tissue with margin on
// both sides, which is a safe general-purpose display window for CT.
func DefaultWindow() Window {
	return Window{Min: -150, Max: 250}
}

// Degenerate reports whether the window cannot be used for rescaling.
// A window whose upper bound does not exceed its lower bound has zero or
// negative width and would divide by zero in the rescale step.
func (w Window) Degenerate() bool {
	return w.Max <= w.Min
}

// Width is the span of the window in Hounsfield units.
func (w Window) Width() float64 {
	return w.Max - w.Min
}

// StudyWindow is one row of per-study metadata as read from the metadata
// table. It is immutable after loading; a normalization run never writes
// back to the table.
type StudyWindow struct {
	// FileID is the file identifier exactly as it appears in the table,
	// e.g. "004408_01_02_088.png".
	FileID string

	// StudyID is the study directory name derived from FileID by stripping
	// the trailing slice-index segment. Empty when the identifier has no
	// segment separator and therefore maps to no study directory.
	StudyID string

	// RawBounds is the unparsed window-bounds field, expected to hold two
	// comma-separated values such as "-150, 250".
	RawBounds string
}
