package main

import (
	"os"

	"github.com/mcncl/turbo-gherkin-ls/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
