package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"ctprep/pkg/config"
	"ctprep/pkg/preview"
)

// runPreview implements the "preview" command.
func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	studyDir := fs.String("in", "", "Normalized study directory to render (required)")
	outPath := fs.String("out", "montage.png", "Output contact sheet image")
	columns := fs.Int("columns", 0, "Tiles per row; 0 uses the configured default")
	tileSize := fs.Int("tile", 0, "Tile edge length in pixels; 0 uses the configured default")
	maxTiles := fs.Int("max-tiles", 0, "Maximum sampled slices; 0 uses the configured default")
	configPath := fs.String("config", "ctprep.yaml", "Path to optional YAML configuration file")
	klog.InitFlags(fs)
	fs.Parse(args)

	if *studyDir == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	opts := preview.Options{
		Columns:  cfg.Preview.Columns,
		TileSize: cfg.Preview.TileSize,
		MaxTiles: cfg.Preview.MaxTiles,
	}
	if *columns > 0 {
		opts.Columns = *columns
	}
	if *tileSize > 0 {
		opts.TileSize = *tileSize
	}
	if *maxTiles > 0 {
		opts.MaxTiles = *maxTiles
	}

	if err := preview.SaveMontage(*studyDir, *outPath, opts); err != nil {
		return err
	}
	fmt.Printf("Montage written to: %s\n", *outPath)
	return nil
}
