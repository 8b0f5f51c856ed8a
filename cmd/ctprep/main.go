package main

import (
	"fmt"
	"log"
	"os"
)

const usageText = `ctprep prepares CT-slice datasets for annotation and review.

Usage:
  ctprep <command> [flags]

Commands:
  normalize    window raw 16-bit studies into 8-bit images
  detections   convert YOLO prediction files into a labeled JSON manifest
  score        rank samples by blended uniqueness and representativeness
  preview      render a contact sheet for one normalized study
  init-config  write a default configuration file

Run "ctprep <command> -h" for the flags of one command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "normalize":
		err = runNormalize(os.Args[2:])
	case "detections":
		err = runDetections(os.Args[2:])
	case "score":
		err = runScore(os.Args[2:])
	case "preview":
		err = runPreview(os.Args[2:])
	case "init-config":
		err = runInitConfig(os.Args[2:])
	case "help", "-h", "-help", "--help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}
