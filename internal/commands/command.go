// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsService returns true if the command talks to the task API.
	// Commands like help and version return false and run with a nil app.
	NeedsService() bool

	// NeedsSession returns true if the command requires an active
	// session. login, register and logout return false.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, server URL).
	// a is nil if NeedsService() returns false.
	// args contains positional arguments after flag parsing.
	// in is the interactive input stream (confirmations, prompts).
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int
}
