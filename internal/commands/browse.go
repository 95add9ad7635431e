package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

func init() {
	Register(&BrowseCmd{})
}

// BrowseCmd implements the interactive workspace. It hosts both top-level
// views: the auth form when no session is active, the task workspace
// otherwise. The session store decides which one renders.
type BrowseCmd struct{}

func (c *BrowseCmd) Name() string       { return "browse" }
func (c *BrowseCmd) Aliases() []string  { return []string{"ui"} }
func (c *BrowseCmd) Synopsis() string   { return "Interactive task workspace" }
func (c *BrowseCmd) Usage() string      { return "taskdeck browse [common flags]" }
func (c *BrowseCmd) NeedsService() bool { return true }
func (c *BrowseCmd) NeedsSession() bool { return false }

func (c *BrowseCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BrowseCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	b := &browser{a: a, in: bufio.NewReader(in), out: out}
	for {
		var quit bool
		if a.View() == app.ViewAuth {
			quit = b.authView(ctx)
		} else {
			quit = b.workspaceView(ctx)
		}
		if quit {
			if !cfg.Quiet {
				fmt.Fprintln(out, "bye")
			}
			return exitcode.Success
		}
	}
}

// browser carries the interactive loop's plumbing.
type browser struct {
	a   *app.App
	in  *bufio.Reader
	out io.Writer
}

// prompt prints the prompt and reads one trimmed line. ok is false at EOF,
// which ends the session like "q" would.
func (b *browser) prompt(p string) (line string, ok bool) {
	fmt.Fprint(b.out, p)
	raw, err := b.in.ReadString('\n')
	if err != nil && raw == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// authView runs the login/registration form until a session becomes active
// or the user quits. Switching modes keeps the entered fields; only the
// error is reset.
func (b *browser) authView(ctx context.Context) (quit bool) {
	auth := b.a.Auth
	for b.a.View() == app.ViewAuth {
		if msg := auth.Notice(); msg != "" {
			fmt.Fprintln(b.out, msg)
		}
		if msg := auth.ErrMsg(); msg != "" {
			fmt.Fprintf(b.out, "error: %s\n", msg)
		}

		title := "Login"
		other := "register"
		if auth.Mode() == app.ModeRegister {
			title = "Register"
			other = "login"
		}
		fmt.Fprintf(b.out, "-- %s -- (enter submits, %q switches, 'q' quits)\n", title, other)

		line, ok := b.prompt(fmt.Sprintf("email [%s]: ", auth.Email))
		if !ok || line == "q" {
			return true
		}
		if line == "login" || line == "register" {
			mode := app.ModeLogin
			if line == "register" {
				mode = app.ModeRegister
			}
			auth.SwitchMode(mode)
			continue
		}
		if line != "" {
			auth.Email = line
		}

		line, ok = b.prompt("password: ")
		if !ok || line == "q" {
			return true
		}
		if line != "" {
			auth.Password = line
		}

		// Submit surfaces its own error through ErrMsg on the next render.
		_ = auth.Submit(ctx)
	}
	return false
}

// workspaceView renders the authenticated view and runs its command loop.
// Any authorization failure drops back to the auth view via the session
// store; everything else leaves the last-good page on screen.
func (b *browser) workspaceView(ctx context.Context) (quit bool) {
	if err := b.a.Sync.Refresh(ctx); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintln(b.out, "session expired, please log in again")
			return false
		}
		fmt.Fprintln(b.out, "could not reach the server, showing last known state")
	}

	for b.a.View() == app.ViewWorkspace {
		b.render()
		line, ok := b.prompt("> ")
		if !ok || line == "q" || line == "quit" {
			return true
		}
		if done := b.handle(ctx, line); done {
			return false
		}
	}
	return false
}

// render paints stats, the current task page and the pagination footer.
func (b *browser) render() {
	sync := b.a.Sync
	s := sync.Stats()
	fmt.Fprintf(b.out, "\ntotal %d | pending %d | completed %d\n", s.TotalTasks, s.PendingTasks, s.CompletedTasks)
	tasks := sync.Tasks()
	if len(tasks) == 0 {
		fmt.Fprintln(b.out, "your workspace is clean, create a task")
	} else {
		output.FormatPage(b.out, tasks, sync.Page(), sync.TotalPages(), app.PageSize, false)
	}
}

// handle runs one workspace command. It reports true when the view should
// re-evaluate (session lost).
func (b *browser) handle(ctx context.Context, line string) (done bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, rest := fields[0], fields[1:]

	var err error
	switch cmd {
	case "n", "next":
		err = b.a.Sync.Next(ctx)
	case "p", "prev":
		err = b.a.Sync.Prev(ctx)
	case "g", "goto":
		var page int
		if page, err = b.argNum(rest); err == nil {
			err = b.a.Sync.GoTo(ctx, page)
		}
	case "r", "refresh":
		err = b.a.Sync.Refresh(ctx)
	case "a", "add":
		err = b.addTask(ctx)
	case "e", "edit":
		var num int
		if num, err = b.argNum(rest); err == nil {
			err = b.editTask(ctx, num)
		}
	case "d", "rm":
		var num int
		if num, err = b.argNum(rest); err == nil {
			err = b.deleteTask(ctx, num)
		}
	case "logout":
		_ = b.a.Sessions.Clear()
		return true
	case "h", "help":
		fmt.Fprint(b.out, browseHelp)
	default:
		fmt.Fprintf(b.out, "unknown command: %s (h for help)\n", cmd)
	}

	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintln(b.out, "session expired, please log in again")
			return true
		}
		switch {
		case errors.Is(err, app.ErrAborted):
			fmt.Fprintln(b.out, "aborted")
		case errors.Is(err, app.ErrInvalidDraft), errors.Is(err, errTaskNumber), errors.Is(err, errArgNum):
			fmt.Fprintf(b.out, "%v\n", err)
		default:
			fmt.Fprintln(b.out, "action failed")
		}
	}
	return false
}

var errArgNum = errors.New("number required")

// argNum parses the single numeric argument browse commands take.
func (b *browser) argNum(rest []string) (int, error) {
	if len(rest) != 1 {
		return 0, errArgNum
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errArgNum, rest[0])
	}
	return n, nil
}

// addTask runs the create form. An empty title cancels, discarding the
// draft.
func (b *browser) addTask(ctx context.Context) error {
	modal := app.NewCreateModal()
	if !b.fillDraft(modal) {
		fmt.Fprintln(b.out, "cancelled")
		return nil
	}
	return modal.Submit(ctx, b.a.Tasks)
}

// editTask runs the edit form seeded from the numbered task. Enter keeps
// the current value of each field.
func (b *browser) editTask(ctx context.Context, num int) error {
	task, err := taskByNumber(ctx, b.a, num)
	if err != nil {
		return err
	}
	modal := app.NewEditModal(task)
	if !b.fillDraft(modal) {
		fmt.Fprintln(b.out, "cancelled")
		return nil
	}
	return modal.Submit(ctx, b.a.Tasks)
}

// deleteTask confirms and deletes the numbered task.
func (b *browser) deleteTask(ctx context.Context, num int) error {
	task, err := taskByNumber(ctx, b.a, num)
	if err != nil {
		return err
	}
	confirm := func() bool {
		line, ok := b.prompt(fmt.Sprintf("delete %q? [y/N] ", task.Title))
		return ok && (strings.EqualFold(line, "y") || strings.EqualFold(line, "yes"))
	}
	return b.a.Tasks.Delete(ctx, task.ID, confirm)
}

// fillDraft prompts for the draft fields. It reports false when the form
// was cancelled (empty title on create, EOF).
func (b *browser) fillDraft(modal *app.TaskModal) bool {
	line, ok := b.prompt(fmt.Sprintf("title [%s]: ", modal.Draft.Title))
	if !ok {
		return false
	}
	if line != "" {
		modal.Draft.Title = line
	}
	if strings.TrimSpace(modal.Draft.Title) == "" {
		return false
	}

	if line, ok = b.prompt(fmt.Sprintf("description [%s]: ", modal.Draft.Description)); !ok {
		return false
	}
	if line != "" {
		modal.Draft.Description = line
	}

	if line, ok = b.prompt(fmt.Sprintf("status [%s]: ", modal.Draft.Status)); !ok {
		return false
	}
	if line != "" {
		modal.Draft.Status = service.Status(line)
	}

	if line, ok = b.prompt(fmt.Sprintf("priority [%s]: ", modal.Draft.Priority)); !ok {
		return false
	}
	if line != "" {
		modal.Draft.Priority = service.Priority(line)
	}
	return true
}

const browseHelp = `commands:
  n / p        next / previous page
  g <n>        go to page n
  r            refresh
  a            add a task
  e <num>      edit task
  d <num>      delete task (asks for confirmation)
  logout       log out
  h            this help
  q            quit
`
