package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. Handles both `taskdeck` (no args)
// and `taskdeck list --page <n>`.
type ListCmd struct {
	page     int
	verbose  bool
	status   string
	priority string
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List one page of tasks" }
func (c *ListCmd) Usage() string {
	return "taskdeck list [--page <n>] [--status <s>] [--priority <p>] [--long]"
}
func (c *ListCmd) NeedsService() bool { return true }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.BoolVar(&c.verbose, "long", false, "")
	fs.BoolVar(&c.verbose, "l", false, "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}

	var filter service.Filter
	if c.status != "" {
		status, err := service.ParseStatus(c.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		filter.Status = status
	}
	if c.priority != "" {
		priority, err := service.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		filter.Priority = priority
	}
	a.Sync.SetFilter(filter)

	// First fetch establishes totalPages; a requested page past the end
	// is clamped by the synchronizer rather than rejected blind.
	if err := a.Sync.GoTo(ctx, c.page); err != nil {
		return reportError(errOut, err)
	}

	tasks := a.Sync.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatPage(out, tasks, a.Sync.Page(), a.Sync.TotalPages(), app.PageSize, c.verbose)
	return exitcode.Success
}
