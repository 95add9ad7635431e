package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. Deletion is gated on an explicit
// confirmation: a y/N prompt, or the --yes flag.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskdeck rm [--yes] <num>" }
func (c *RmCmd) NeedsService() bool { return true }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid task number: %s\n", args[0])
		return exitcode.UserError
	}

	task, err := taskByNumber(ctx, a, num)
	if err != nil {
		return reportError(errOut, err)
	}

	confirm := confirmFn(c.yes, task, in, errOut)
	if err := a.Tasks.Delete(ctx, task.ID, confirm); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
