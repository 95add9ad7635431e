package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Log in and store the session credential" }
func (c *LoginCmd) Usage() string      { return "taskdeck login [--email <addr>] [--password <pw>]" }
func (c *LoginCmd) NeedsService() bool { return true }
func (c *LoginCmd) NeedsSession() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	if a.Sessions.Active() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	r := bufio.NewReader(in)
	a.Auth.SwitchMode(app.ModeLogin)
	a.Auth.Email = c.email
	a.Auth.Password = c.password
	if a.Auth.Email == "" {
		fmt.Fprint(errOut, "email: ")
		a.Auth.Email = readLine(r)
	}
	if a.Auth.Password == "" {
		fmt.Fprint(errOut, "password: ")
		a.Auth.Password = readLine(r)
	}

	if err := a.Auth.Submit(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", a.Auth.ErrMsg())
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
