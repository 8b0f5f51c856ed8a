package detection

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"ctprep/internal/models"
)

// imageExtensions are the filename extensions treated as images when
// pairing predictions against an image directory.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// ImageDetections pairs an image stem with its converted detections.
type ImageDetections struct {
	Image      string             `json:"image"`
	Detections []models.Detection `json:"detections"`
}

// FileError records one prediction file that failed to convert during a
// skip-tolerant pass.
type FileError struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// ConvertDir converts every .txt prediction file directly under root, in
// lexicographic order. When skipBad is set, files that fail to convert are
// collected into the second return instead of aborting the pass; otherwise
// the first failure is returned as the error.
func ConvertDir(root string, classNames []string, skipBad bool) ([]ImageDetections, []FileError, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read predictions directory %s", root)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var converted []ImageDetections
	var failures []FileError
	for _, name := range names {
		detections, err := ReadFile(filepath.Join(root, name), classNames)
		if err != nil {
			if !skipBad {
				return nil, nil, err
			}
			failures = append(failures, FileError{File: name, Reason: err.Error()})
			klog.Warningf("skipping predictions %s: %v", name, err)
			continue
		}
		if detections == nil {
			// Keep "detections": [] in the manifest rather than null.
			detections = []models.Detection{}
		}
		converted = append(converted, ImageDetections{
			Image:      strings.TrimSuffix(name, filepath.Ext(name)),
			Detections: detections,
		})
	}
	return converted, failures, nil
}

// ConvertForImages converts one prediction file per image under imagesDir,
// in lexicographic image order. Images without a prediction file get an
// entry with no detections, so the manifest always covers the whole image
// set. skipBad behaves as in ConvertDir.
func ConvertForImages(imagesDir, predictionsRoot string, classNames []string, skipBad bool) ([]ImageDetections, []FileError, error) {
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read images directory %s", imagesDir)
	}
	var stems []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		stems = append(stems, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}
	sort.Strings(stems)

	var converted []ImageDetections
	var failures []FileError
	for _, stem := range stems {
		name := stem + ".txt"
		detections, err := ReadFile(filepath.Join(predictionsRoot, name), classNames)
		if err != nil {
			if !skipBad {
				return nil, nil, err
			}
			failures = append(failures, FileError{File: name, Reason: err.Error()})
			klog.Warningf("skipping predictions %s: %v", name, err)
			continue
		}
		if detections == nil {
			detections = []models.Detection{}
		}
		converted = append(converted, ImageDetections{Image: stem, Detections: detections})
	}
	return converted, failures, nil
}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range imageExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
