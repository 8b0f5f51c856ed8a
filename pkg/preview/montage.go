// Package preview renders the slices of a normalized study into a single
// contact sheet for quick visual inspection of the chosen window.
package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Options control the montage layout.
type Options struct {
	// Columns is the number of tiles per row.
	Columns int

	// TileSize is the edge length of each square tile in pixels.
	TileSize int

	// MaxTiles caps how many slices are sampled from the study. Larger
	// studies are sampled at an even stride so the sheet still spans the
	// whole scan.
	MaxTiles int
}

// DefaultOptions returns the layout used when a caller leaves Options
// fields at zero.
func DefaultOptions() Options {
	return Options{Columns: 8, TileSize: 128, MaxTiles: 64}
}

// BuildMontage loads up to MaxTiles slices from studyDir in lexicographic
// order and lays them out row-major on a black sheet. A study directory
// without any slice images is an error.
func BuildMontage(studyDir string, opts Options) (image.Image, error) {
	defaults := DefaultOptions()
	if opts.Columns <= 0 {
		opts.Columns = defaults.Columns
	}
	if opts.TileSize <= 0 {
		opts.TileSize = defaults.TileSize
	}
	if opts.MaxTiles <= 0 {
		opts.MaxTiles = defaults.MaxTiles
	}

	names, err := listImages(studyDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read study directory %s", studyDir)
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no slice images in %s", studyDir)
	}
	names = sampleStride(names, opts.MaxTiles)

	cols := opts.Columns
	if len(names) < cols {
		cols = len(names)
	}
	rows := (len(names) + cols - 1) / cols

	sheet := imaging.New(cols*opts.TileSize, rows*opts.TileSize, color.NRGBA{A: 255})
	for i, name := range names {
		img, err := imaging.Open(filepath.Join(studyDir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open slice %s", name)
		}
		tile := imaging.Resize(img, opts.TileSize, opts.TileSize, imaging.Lanczos)
		sheet = imaging.Paste(sheet, tile, image.Pt((i%cols)*opts.TileSize, (i/cols)*opts.TileSize))
	}
	return sheet, nil
}

// SaveMontage renders the sheet and writes it to outPath, creating parent
// directories as needed. The format follows the output extension.
func SaveMontage(studyDir, outPath string, opts Options) error {
	sheet, err := BuildMontage(studyDir, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}
	if err := imaging.Save(sheet, outPath); err != nil {
		return errors.Wrapf(err, "failed to save montage %s", outPath)
	}
	return nil
}

var previewExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range previewExtensions {
			if ext == want {
				names = append(names, entry.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// sampleStride picks max names at an even stride, always starting from the
// first slice.
func sampleStride(names []string, max int) []string {
	if len(names) <= max {
		return names
	}
	out := make([]string, 0, max)
	step := float64(len(names)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, names[int(float64(i)*step)])
	}
	return out
}
