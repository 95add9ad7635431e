package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string       { return "stats" }
func (c *StatsCmd) Aliases() []string  { return nil }
func (c *StatsCmd) Synopsis() string   { return "Show aggregate task counts" }
func (c *StatsCmd) Usage() string      { return "taskdeck stats [common flags]" }
func (c *StatsCmd) NeedsService() bool { return true }
func (c *StatsCmd) NeedsSession() bool { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	if err := a.Sync.Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}
	output.FormatStats(out, a.Sync.Stats())
	return exitcode.Success
}
