package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"ctprep/internal/models"
	"ctprep/pkg/config"
	"ctprep/pkg/windowing"
)

// runNormalize implements the "normalize" command.
func runNormalize(args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	metadataPath := fs.String("metadata", "", "CSV table mapping file identifiers to window bounds (required)")
	inputRoot := fs.String("in", "", "Root directory holding one subdirectory of raw 16-bit slices per study (required)")
	outputRoot := fs.String("out", "", "Root directory for the normalized 8-bit output tree (required)")
	workers := fs.Int("workers", 0, "Concurrent studies; 0 uses the configured default")
	configPath := fs.String("config", "ctprep.yaml", "Path to optional YAML configuration file")
	reportPath := fs.String("report", "", "Write the run summary to this YAML file")
	noProgress := fs.Bool("no-progress", false, "Disable the progress bar")
	klog.InitFlags(fs)
	fs.Parse(args)

	if *metadataPath == "" || *inputRoot == "" || *outputRoot == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	fmt.Println("CT Windowing Normalizer")
	fmt.Println("=======================")
	fmt.Printf("Metadata: %s\n", *metadataPath)
	fmt.Printf("Input: %s\n", *inputRoot)
	fmt.Printf("Output: %s\n\n", *outputRoot)

	params := &windowing.Params{
		MetadataPath: *metadataPath,
		FileColumn:   cfg.Normalize.FileColumn,
		WindowColumn: cfg.Normalize.WindowColumn,
		InputRoot:    *inputRoot,
		OutputRoot:   *outputRoot,
		Workers:      cfg.Normalize.Workers,
		Extensions:   cfg.Normalize.Extensions,
		Fallback: models.Window{
			Min: cfg.Normalize.DefaultWindow.Min,
			Max: cfg.Normalize.DefaultWindow.Max,
		},
		Progress: cfg.Normalize.Progress && !*noProgress,
	}
	if *workers > 0 {
		params.Workers = *workers
	}

	normalizer := windowing.NewNormalizer(params)
	if err := normalizer.Run(); err != nil {
		return err
	}
	summary := normalizer.Summary()

	printRunSummary(summary)
	if *reportPath != "" {
		if err := summary.WriteReport(*reportPath); err != nil {
			return err
		}
		fmt.Printf("Report written to: %s\n", *reportPath)
	}
	return nil
}
