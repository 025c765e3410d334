// Package main is the entry point for the walletbridge CLI.
package main

import (
	"os"

	"github.com/halcyonlabs/walletbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
