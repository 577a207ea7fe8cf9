// Package main is the entry point for dendo.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dendo/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Overridden via -ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
