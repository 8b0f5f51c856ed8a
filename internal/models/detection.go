package models

// Detection is one model prediction converted from YOLO center form into
// the corner-addressed form used by annotation tooling.
type Detection struct {
	// Label is the human-readable class name resolved from the ordered
	// class list.
	Label string `json:"label"`

	// BBox is the bounding box as [x_min, y_min, width, height] in the
	// same relative units as the prediction file (fractions of the image
	// size for standard YOLO output).
	BBox [4]float64 `json:"bounding_box"`

	// Confidence is the model score attached to the prediction.
	Confidence float64 `json:"confidence"`
}
