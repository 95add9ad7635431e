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
	"taskdeck/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. The draft is seeded from the task
// being edited; flags override individual fields.
type EditCmd struct {
	title       string
	description string
	status      string
	priority    string
	descSet     bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [--title <t>] [--desc <text>] [--status <s>] [--priority <p>] <num>"
}
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) NeedsSession() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.Func("desc", "", func(v string) error {
		c.description = v
		c.descSet = true
		return nil
	})
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
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

	modal := app.NewEditModal(task)
	if c.title != "" {
		modal.Draft.Title = c.title
	}
	if c.descSet {
		modal.Draft.Description = c.description
	}
	if c.status != "" {
		modal.Draft.Status = service.Status(c.status)
	}
	if c.priority != "" {
		modal.Draft.Priority = service.Priority(c.priority)
	}

	if err := modal.Submit(ctx, a.Tasks); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
