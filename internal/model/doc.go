// Package model defines the domain types, error kinds, and exit codes shared
// across the neko-launcher core.
//
// It holds the Allocation / State data model that StateStore persists, the
// LaunchConfig inputs the Launcher consumes, and the CLIError type that
// carries both a programmatic ErrorKind and an OS exit code so the same
// error serves embedders (errors.As) and the CLI (os.Exit) alike.
package model
