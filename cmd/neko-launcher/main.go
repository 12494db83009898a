// Package main is the entry point for the neko-launcher CLI.
//
// This binary wraps the port allocator and launcher core in an operator
// command surface (launch, stop, list, reap). It delegates all
// functionality to the internal/cli package, which defines cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during release builds. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/jebin2/neko-launcher/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
