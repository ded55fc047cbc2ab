// Package main provides the CLI entry point for sqllineage.
package main

import (
	"os"

	"github.com/leapstack-labs/sqllineage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
