// Package main provides the agtool command-line tool for genome-model
// predictions, variant effect analysis, and in-silico mutagenesis.
package main

import (
	"fmt"
	"os"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
