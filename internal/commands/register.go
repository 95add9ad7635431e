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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command. A successful registration
// does not log the user in.
type RegisterCmd struct {
	email    string
	password string
}

func (c *RegisterCmd) Name() string       { return "register" }
func (c *RegisterCmd) Aliases() []string  { return nil }
func (c *RegisterCmd) Synopsis() string   { return "Create an account" }
func (c *RegisterCmd) Usage() string      { return "taskdeck register [--email <addr>] [--password <pw>]" }
func (c *RegisterCmd) NeedsService() bool { return true }
func (c *RegisterCmd) NeedsSession() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, in io.Reader, out, errOut io.Writer) int {
	r := bufio.NewReader(in)
	a.Auth.SwitchMode(app.ModeRegister)
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
		fmt.Fprintln(out, a.Auth.Notice())
	}
	return exitcode.Success
}
