package windowing

import (
	"image"
	"image/color"
	"testing"

	"ctprep/internal/models"
)

// rawHU converts a Hounsfield value into the stored unsigned 16-bit sample.
func rawHU(hu float64) uint16 {
	return uint16(hu + 32768)
}

func TestNormalizePixelBounds(t *testing.T) {
	tests := []struct {
		name   string
		window models.Window
	}{
		{"soft tissue", models.Window{Min: -150, Max: 250}},
		{"lung", models.Window{Min: -1350, Max: 150}},
		{"bone", models.Window{Min: -500, Max: 1300}},
		{"narrow", models.Window{Min: 0, Max: 80}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := NormalizePixel(rawHU(test.window.Min), test.window); got != 0 {
				t.Errorf("Lower bound mapped to %d, want 0", got)
			}
			if got := NormalizePixel(rawHU(test.window.Max), test.window); got != 255 {
				t.Errorf("Upper bound mapped to %d, want 255", got)
			}
			if got := NormalizePixel(rawHU(test.window.Min-500), test.window); got != 0 {
				t.Errorf("Value below window mapped to %d, want 0", got)
			}
			if got := NormalizePixel(rawHU(test.window.Max+500), test.window); got != 255 {
				t.Errorf("Value above window mapped to %d, want 255", got)
			}
		})
	}
}

func TestNormalizePixelMonotonic(t *testing.T) {
	windows := []models.Window{
		{Min: -150, Max: 250},
		{Min: 0, Max: 80},
	}

	for _, window := range windows {
		prev := uint8(0)
		for raw := 0; raw <= 65535; raw += 7 {
			got := NormalizePixel(uint16(raw), window)
			if got < prev {
				t.Fatalf("NormalizePixel(%d) = %d, below previous value %d", raw, got, prev)
			}
			prev = got
		}
	}
}

func TestNormalizePixelMidpoints(t *testing.T) {
	// 50 HU sits exactly halfway through the default window (-150, 250),
	// so the 8-bit value is round(0.5*255) = 128.
	w := models.Window{Min: -150, Max: 250}
	if got := NormalizePixel(rawHU(50), w); got != 128 {
		t.Errorf("Window midpoint mapped to %d, want 128", got)
	}

	w = models.Window{Min: -100, Max: 200}
	if got := NormalizePixel(rawHU(50), w); got != 128 {
		t.Errorf("Window midpoint mapped to %d, want 128", got)
	}
	if got := NormalizePixel(rawHU(-25), w); got != 64 {
		t.Errorf("Window quarter point mapped to %d, want 64", got)
	}
}

func TestNormalizeImage(t *testing.T) {
	w := models.Window{Min: -150, Max: 250}
	img := image.NewGray16(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray16(x, y, color.Gray16{Y: rawHU(float64(-150 + 100*x))})
		}
	}

	out := normalizeImage(img, w)
	want := []uint8{0, 64, 128, 191}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if got := out.GrayAt(x, y).Y; got != want[x] {
				t.Errorf("Pixel (%d,%d) = %d, want %d", x, y, got, want[x])
			}
		}
	}
}

func TestResolveWindow(t *testing.T) {
	tests := []struct {
		name     string
		bounds   string
		want     models.Window
		fellBack bool
	}{
		{"valid", "-100, 200", models.Window{Min: -100, Max: 200}, false},
		{"text", "abc", models.DefaultWindow(), true},
		{"single value", "1", models.DefaultWindow(), true},
		{"empty", "", models.DefaultWindow(), true},
		{"degenerate equal", "100, 100", models.DefaultWindow(), true},
		{"inverted", "250, -150", models.DefaultWindow(), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			row := models.StudyWindow{FileID: "000001_01_01_109.png", RawBounds: test.bounds}
			w, reason := resolveWindow(row, models.Window{})
			if w != test.want {
				t.Errorf("resolveWindow(%q) = %+v, want %+v", test.bounds, w, test.want)
			}
			if (reason != "") != test.fellBack {
				t.Errorf("resolveWindow(%q) fallback reason = %q, want fallback %v", test.bounds, reason, test.fellBack)
			}
		})
	}
}

func TestResolveWindowCustomFallback(t *testing.T) {
	row := models.StudyWindow{FileID: "000001_01_01_109.png", RawBounds: "garbage"}
	fallback := models.Window{Min: -1024, Max: 3071}

	w, reason := resolveWindow(row, fallback)
	if w != fallback {
		t.Errorf("resolveWindow with custom fallback = %+v, want %+v", w, fallback)
	}
	if reason == "" {
		t.Error("Expected a fallback reason for unparsable bounds")
	}

	// A degenerate fallback is itself unusable and yields the built-in
	// default instead.
	w, _ = resolveWindow(row, models.Window{Min: 5, Max: 5})
	if w != models.DefaultWindow() {
		t.Errorf("Degenerate fallback resolved to %+v, want default", w)
	}
}
