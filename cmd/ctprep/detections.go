package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"ctprep/pkg/config"
	"ctprep/pkg/detection"
)

// runDetections implements the "detections" command.
func runDetections(args []string) error {
	fs := flag.NewFlagSet("detections", flag.ExitOnError)
	predictionsRoot := fs.String("predictions", "", "Directory of YOLO .txt prediction files (required)")
	classesPath := fs.String("classes", "", "YAML class list, ordered by class index (required)")
	imagesDir := fs.String("images", "", "Optional image directory; every image gets a manifest entry even without predictions")
	outPath := fs.String("out", "detections.json", "Output JSON manifest")
	configPath := fs.String("config", "ctprep.yaml", "Path to optional YAML configuration file")
	skipBad := fs.Bool("skip-bad", false, "Skip prediction files that fail to convert instead of aborting")
	klog.InitFlags(fs)
	fs.Parse(args)

	if *predictionsRoot == "" || *classesPath == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	tolerant := cfg.Detections.SkipBad || *skipBad

	classNames, err := detection.LoadClassNames(*classesPath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d classes from %s\n", len(classNames), *classesPath)

	var converted []detection.ImageDetections
	var failures []detection.FileError
	if *imagesDir != "" {
		converted, failures, err = detection.ConvertForImages(*imagesDir, *predictionsRoot, classNames, tolerant)
	} else {
		converted, failures, err = detection.ConvertDir(*predictionsRoot, classNames, tolerant)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(converted, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write manifest %s", *outPath)
	}

	total := 0
	for _, entry := range converted {
		total += len(entry.Detections)
	}
	fmt.Printf("Converted %s images (%s detections) to %s\n",
		humanize.Comma(int64(len(converted))), humanize.Comma(int64(total)), *outPath)
	if len(failures) > 0 {
		printFileErrors(failures)
	}
	return nil
}
