package main

import (
	"os"

	"github.com/mcncl/turbo-gherkin-ls/internal/cli"
)

var (
	// Version information - set during build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
