package windowing

import (
	"image"
	"image/color"
	"math"

	"ctprep/internal/models"
	"ctprep/pkg/metadata"
)

// huOffset shifts the stored unsigned 16-bit sample back into signed
// Hounsfield units. DeepLesion-style exports store HU + 32768 so that the
// full CT range fits an unsigned image format.
const huOffset = 32768

// NormalizePixel maps one stored 16-bit sample to its windowed 8-bit value.
// The sample is shifted into Hounsfield units, clipped to the window, and
// rescaled linearly so that w.Min maps to 0 and w.Max maps to 255.
func NormalizePixel(raw uint16, w models.Window) uint8 {
	hu := float64(raw) - huOffset
	if hu < w.Min {
		hu = w.Min
	}
	if hu > w.Max {
		hu = w.Max
	}
	return uint8(math.Round((hu - w.Min) / w.Width() * 255))
}

// normalizeImage applies NormalizePixel to every sample of a decoded slice
// and returns the 8-bit grayscale result anchored at the origin.
func normalizeImage(img image.Image, w models.Window) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// For 16-bit grayscale input the red channel carries the full
			// sample; RGBA() scales lower-depth images up to 16 bits, so
			// every supported input arrives here in the same range.
			r, _, _, _ := img.At(x, y).RGBA()
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: NormalizePixel(uint16(r), w)})
		}
	}
	return out
}

// meanIntensity averages the 8-bit samples of a normalized slice. An empty
// image averages to zero.
func meanIntensity(img *image.Gray) float64 {
	if len(img.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, p := range img.Pix {
		sum += float64(p)
	}
	return sum / float64(len(img.Pix))
}

// resolveWindow picks the window for one metadata row. Rows whose bounds do
// not parse, or parse to a degenerate range that would divide by zero in the
// rescale step, fall back to the supplied default; the second return carries
// the reason so the caller can report it. A zero or degenerate fallback is
// replaced by the built-in default bounds.
func resolveWindow(row models.StudyWindow, fallback models.Window) (models.Window, string) {
	if fallback.Degenerate() {
		fallback = models.DefaultWindow()
	}
	w, err := metadata.ParseWindow(row.RawBounds)
	if err != nil {
		return fallback, err.Error()
	}
	if w.Degenerate() {
		return fallback, "degenerate bounds " + row.RawBounds
	}
	return w, ""
}
