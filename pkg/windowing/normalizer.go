// Package windowing converts studies of raw 16-bit CT slices into 8-bit
// viewable images using per-study intensity windows from a metadata table.
//
// A run mirrors the input tree: {in}/{study}/{slice} becomes
// {out}/{study}/{slice} with the same filename, so downstream tooling can
// swap roots without renaming anything. Failures are contained at the
// smallest possible scope: a malformed window falls back to the default
// bounds, an unreadable slice is skipped, an unmappable row is recorded,
// and only a missing or unparsable metadata table aborts the run.
package windowing

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"ctprep/internal/models"
	"ctprep/pkg/metadata"
)

// defaultExtensions are the slice formats converted when the caller does
// not narrow the set.
var defaultExtensions = []string{".png", ".tif", ".tiff"}

// Params holds the input parameters for a normalization run.
type Params struct {
	// MetadataPath is the CSV table mapping file identifiers to window
	// bounds.
	MetadataPath string

	// FileColumn and WindowColumn name the identifier and bounds columns
	// of the metadata table. Empty values select the DeepLesion defaults.
	FileColumn   string
	WindowColumn string

	// InputRoot holds one subdirectory of raw 16-bit slices per study.
	InputRoot string

	// OutputRoot receives the mirrored 8-bit study tree. It is created if
	// absent; rerunning into an existing tree overwrites in place.
	OutputRoot string

	// Workers bounds how many studies convert concurrently. Zero or less
	// selects one worker per CPU core. With 1 worker rows are processed
	// strictly in table order.
	Workers int

	// Extensions filters which files inside a study directory are treated
	// as slices. Empty selects .png, .tif and .tiff.
	Extensions []string

	// Fallback replaces windows that fail to parse. The zero value selects
	// the built-in default bounds.
	Fallback models.Window

	// Progress enables the terminal progress bar.
	Progress bool
}

// Normalizer runs the windowing pass over every row of a metadata table.
type Normalizer struct {
	params  *Params
	summary *Summary
}

// NewNormalizer creates a normalizer with the given parameters.
func NewNormalizer(params *Params) *Normalizer {
	return &Normalizer{params: params}
}

// Run executes the full pass: load the table, convert every study, fold the
// per-row reports into a run summary. Per-row and per-slice failures are
// recorded in the summary rather than returned; Run only fails when the
// table itself or the output root is unusable.
func (n *Normalizer) Run() error {
	start := time.Now()

	fmt.Println("Step 1: Loading metadata table...")
	rows, err := metadata.LoadTable(n.params.MetadataPath, n.params.FileColumn, n.params.WindowColumn)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.Errorf("metadata table %s has no rows", n.params.MetadataPath)
	}

	if err := os.MkdirAll(n.params.OutputRoot, 0755); err != nil {
		return errors.Wrapf(err, "failed to create output root %s", n.params.OutputRoot)
	}

	workers := n.params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	fmt.Printf("Step 2: Windowing %d studies with %d workers...\n", len(rows), workers)

	var bar *progressbar.ProgressBar
	if n.params.Progress {
		bar = progressbar.NewOptions(len(rows),
			progressbar.OptionSetDescription("windowing"),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("studies"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		)
	}

	// Each worker owns a disjoint set of report slots, so the slice needs
	// no locking; folding afterwards keeps the summary in table order no
	// matter how the work interleaved.
	jobs := make(chan int)
	reports := make([]StudyReport, len(rows))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				reports[idx] = n.processRow(rows[idx])
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	fmt.Println("Step 3: Collecting results...")
	n.summary = summarize(reports, time.Since(start).Seconds())
	return nil
}

// Summary returns the result of the last Run, or nil before the first run.
func (n *Normalizer) Summary() *Summary {
	return n.summary
}

// processRow converts every slice of one study. Failures are recorded on
// the report instead of returned: a bad row must never stop the rest of
// the table.
func (n *Normalizer) processRow(row models.StudyWindow) StudyReport {
	rep := StudyReport{FileID: row.FileID, StudyID: row.StudyID}
	if row.StudyID == "" {
		rep.RowError = "cannot derive a study directory from the file identifier"
		klog.Warningf("skipping row %s: %s", row.FileID, rep.RowError)
		return rep
	}

	w, reason := resolveWindow(row, n.params.Fallback)
	rep.Window = w
	if reason != "" {
		rep.UsedFallback = true
		rep.FallbackReason = reason
		klog.Warningf("using default window %g..%g for %s: %s", w.Min, w.Max, row.FileID, reason)
	}

	inDir := filepath.Join(n.params.InputRoot, row.StudyID)
	outDir := filepath.Join(n.params.OutputRoot, row.StudyID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		rep.RowError = fmt.Sprintf("failed to create output directory: %v", err)
		klog.Warningf("skipping row %s: %s", row.FileID, rep.RowError)
		return rep
	}

	exts := n.params.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	files, err := listSliceImages(inDir, exts)
	if err != nil {
		rep.RowError = fmt.Sprintf("failed to read study directory: %v", err)
		klog.Warningf("skipping row %s: %s", row.FileID, rep.RowError)
		return rep
	}

	var means []float64
	for _, name := range files {
		size, mean, err := n.processSlice(inDir, outDir, name, w)
		if err != nil {
			rep.Skipped = append(rep.Skipped, SliceSkip{Study: row.StudyID, File: name, Reason: err.Error()})
			klog.Warningf("skipping slice %s/%s: %v", row.StudyID, name, err)
			continue
		}
		rep.SlicesWritten++
		rep.BytesWritten += size
		means = append(means, mean)
	}
	if len(means) > 0 {
		rep.MeanIntensity = stat.Mean(means, nil)
	}
	klog.V(1).Infof("study %s: %d slices written, %d skipped (window %g..%g)",
		row.StudyID, rep.SlicesWritten, len(rep.Skipped), w.Min, w.Max)
	return rep
}

// processSlice converts a single slice file, returning the output size in
// bytes and the mean 8-bit intensity of the result.
func (n *Normalizer) processSlice(inDir, outDir, name string, w models.Window) (int64, float64, error) {
	img, err := readSlice(filepath.Join(inDir, name))
	if err != nil {
		return 0, 0, err
	}
	out := normalizeImage(img, w)
	size, err := writeSlice(filepath.Join(outDir, name), out)
	if err != nil {
		return 0, 0, err
	}
	return size, meanIntensity(out), nil
}

// listSliceImages returns the slice filenames in dir with one of the given
// extensions, sorted lexicographically. Processing order is part of the
// contract: reruns and different worker counts always visit files the same
// way.
func listSliceImages(dir string, exts []string) ([]string, error) {
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
		for _, want := range exts {
			if ext == want {
				names = append(names, entry.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// readSlice decodes one input image. PNG and TIFF decoders are registered
// by the imports above.
func readSlice(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return img, nil
}

// writeSlice encodes the normalized slice in the format implied by its
// extension and returns the written size. A failed encode removes the
// partial file so reruns never trip over truncated output.
func writeSlice(path string, img *image.Gray) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, errors.Wrapf(err, "failed to encode %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to stat %s", path)
	}
	return info.Size(), nil
}
