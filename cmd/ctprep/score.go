package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"ctprep/pkg/config"
	"ctprep/pkg/curation"
)

// runScore implements the "score" command.
func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	embeddingsPath := fs.String("embeddings", "", "CSV of sample embeddings: id column first, one component per remaining column (required)")
	outPath := fs.String("out", "scores.csv", "Output CSV of ranked scores")
	alpha := fs.Float64("alpha", curation.DefaultAlpha, "Blend weight of uniqueness against representativeness, in [0, 1]")
	neighbors := fs.Int("neighbors", curation.DefaultNeighbors, "Nearest neighbors feeding the uniqueness score")
	top := fs.Int("top", 0, "Keep only the N best-ranked samples; 0 keeps all")
	configPath := fs.String("config", "ctprep.yaml", "Path to optional YAML configuration file")
	klog.InitFlags(fs)
	fs.Parse(args)

	if *embeddingsPath == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	// Configuration supplies the defaults; flags given explicitly win.
	params := curation.Params{Neighbors: cfg.Scoring.Neighbors, Alpha: cfg.Scoring.Alpha}
	limit := cfg.Scoring.Top
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "alpha":
			params.Alpha = *alpha
		case "neighbors":
			params.Neighbors = *neighbors
		case "top":
			limit = *top
		}
	})

	ids, vectors, err := curation.LoadEmbeddings(*embeddingsPath)
	if err != nil {
		return err
	}
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	fmt.Printf("Loaded %d embeddings (%d dimensions) from %s\n", len(ids), dims, *embeddingsPath)

	scorer, err := curation.NewScorer(ids, vectors, params)
	if err != nil {
		return err
	}
	scores := scorer.Rank()
	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}

	if err := curation.WriteScores(*outPath, scores); err != nil {
		return err
	}
	fmt.Printf("Wrote %d ranked samples to %s\n", len(scores), *outPath)
	printTopScores(scores, 10)
	return nil
}
