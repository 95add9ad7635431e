package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskdeck help" }
func (c *HelpCmd) NeedsService() bool { return false }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                         List the first page of tasks
  taskdeck list [common flags] [--page <n>] [--status <s>] [--priority <p>] [--long]
  taskdeck add [common flags] [--desc <text>] [--status <s>] [--priority <p>] <title...>
  taskdeck edit [common flags] [--title <t>] [--desc <text>] [--status <s>] [--priority <p>] <num>
  taskdeck rm [common flags] [--yes] <num>
  taskdeck stats [common flags]
  taskdeck browse [common flags]
  taskdeck register [common flags] [--email <addr>] [--password <pw>]
  taskdeck login [common flags] [--email <addr>] [--password <pw>]
  taskdeck logout [common flags]
  taskdeck help
  taskdeck version

Common flags:
  --config <dir>   Override config directory
  --server <url>   Override API server URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
