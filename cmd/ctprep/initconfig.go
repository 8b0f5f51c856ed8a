package main

import (
	"flag"
	"fmt"

	"ctprep/pkg/config"
)

// runInitConfig implements the "init-config" command.
func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	outPath := fs.String("out", "ctprep.yaml", "Where to write the default configuration")
	fs.Parse(args)

	if err := config.CreateDefaultConfigFile(*outPath); err != nil {
		return err
	}
	fmt.Printf("Default configuration written to: %s\n", *outPath)
	return nil
}
