// Package detection decodes YOLO-format prediction files into labeled,
// corner-addressed detections ready for annotation tooling.
//
// One prediction file corresponds to one image and holds one detection per
// line: a class index, four center-form box values (cx, cy, w, h) and a
// confidence score, whitespace separated. Trailers beyond the fifth field
// are tolerated; the last field always carries the confidence.
package detection

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"ctprep/internal/models"
)

var (
	// ErrMalformedLine reports a prediction line that is not at least five
	// numeric fields. It aborts the file it appears in: silently dropping
	// a line would desynchronize detections from their source predictions.
	ErrMalformedLine = errors.New("malformed detection line")

	// ErrClassIndexOutOfRange reports a class index with no entry in the
	// class list. Clamping or dropping would silently mislabel, so this is
	// always fatal.
	ErrClassIndexOutOfRange = errors.New("class index out of range")
)

// ReadFile decodes the prediction file at path using the ordered class
// list. A missing file means the image has no detections and returns an
// empty result with no error; any malformed line fails the whole file.
// Detections are returned in line order.
func ReadFile(path string, classNames []string) ([]models.Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read predictions %s", path)
	}

	var detections []models.Detection
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		det, err := parseLine(line, classNames)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, i+1)
		}
		detections = append(detections, det)
	}
	return detections, nil
}

// parseLine converts one prediction line. The box arrives in center form
// and leaves in corner form: x_min = cx - w/2, y_min = cy - h/2, with width
// and height unchanged.
func parseLine(line string, classNames []string) (models.Detection, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return models.Detection{}, errors.Wrapf(ErrMalformedLine, "want at least 5 fields, got %d", len(fields))
	}
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return models.Detection{}, errors.Wrapf(ErrMalformedLine, "field %d %q is not numeric", i+1, field)
		}
		values[i] = v
	}

	classIdx := int(values[0])
	if classIdx < 0 || classIdx >= len(classNames) {
		return models.Detection{}, errors.Wrapf(ErrClassIndexOutOfRange, "index %d with %d classes", classIdx, len(classNames))
	}

	cx, cy, w, h := values[1], values[2], values[3], values[4]
	return models.Detection{
		Label:      classNames[classIdx],
		BBox:       [4]float64{cx - w/2, cy - h/2, w, h},
		Confidence: values[len(values)-1],
	}, nil
}
