package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"taskdeck/internal/app"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/session"
	"taskdeck/internal/testutil"
)

// newDispatcher builds a dispatcher over a fresh registry and a factory
// backed by the fake. Each call gets fresh command instances so flag state
// never bleeds between runs.
func newDispatcher(t *testing.T, f *testutil.FakeService, loggedIn bool) (*Dispatcher, *string) {
	t.Helper()

	reg := commands.NewRegistry()
	for _, c := range []commands.Command{
		&commands.ListCmd{},
		&commands.AddCmd{},
		&commands.RmCmd{},
		&commands.StatsCmd{},
		&commands.LoginCmd{},
		&commands.LogoutCmd{},
		&commands.HelpCmd{},
		&commands.VersionCmd{},
	} {
		if err := reg.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	tokenPath := filepath.Join(t.TempDir(), config.TokenFile)
	store := session.NewStore(tokenPath, nil)
	if loggedIn {
		if err := store.Save(testutil.FakeToken); err != nil {
			t.Fatal(err)
		}
	}

	var seenServer string
	factory := func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		seenServer = cfg.ServerURL
		log := logrus.New()
		log.SetOutput(io.Discard)
		return app.New(store, f, f, log), nil
	}
	return NewDispatcher(reg, factory), &seenServer
}

func TestUnknownCommand(t *testing.T) {
	d, _ := newDispatcher(t, testutil.NewFakeService(), true)
	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out, &errOut)
	if code != exitcode.UserError {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "unknown command: frobnicate") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestLeadingFlagIsRejected(t *testing.T) {
	d, _ := newDispatcher(t, testutil.NewFakeService(), true)
	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), []string{"--page", "2"}, strings.NewReader(""), &out, &errOut)
	if code != exitcode.UserError {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "unknown command: --page") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestNoArgsDispatchesList(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	d, _ := newDispatcher(t, testutil.NewFakeService(), true)

	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), nil, strings.NewReader(""), &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit = %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "no tasks found\n" {
		t.Errorf("out = %q", out.String())
	}
}

func TestSessionPreflight(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	f := testutil.NewFakeService()
	d, _ := newDispatcher(t, f, false)

	var out, errOut bytes.Buffer
	args := []string{"list", "--config", t.TempDir()}
	code := d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	if code != exitcode.AuthError {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "not logged in (run: taskdeck login)") {
		t.Errorf("stderr = %q", errOut.String())
	}
	// The preflight fires before any request.
	if len(f.Calls) != 0 {
		t.Errorf("calls = %v, want none", f.Calls)
	}
}

func TestUnknownFlag(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	d, _ := newDispatcher(t, testutil.NewFakeService(), true)

	var out, errOut bytes.Buffer
	args := []string{"list", "--config", t.TempDir(), "--bogus"}
	code := d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	if code != exitcode.UserError {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "unknown flag") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestFlagNeedsArgument(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	d, _ := newDispatcher(t, testutil.NewFakeService(), true)

	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), []string{"list", "--page"}, strings.NewReader(""), &out, &errOut)
	if code != exitcode.UserError {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut.String(), "flag needs an argument") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestServerFlagOverridesConfig(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	d, seenServer := newDispatcher(t, testutil.NewFakeService(), true)

	var out, errOut bytes.Buffer
	args := []string{"list", "--config", t.TempDir(), "--server", "https://override.example.com/"}
	code := d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit = %d, stderr: %s", code, errOut.String())
	}
	if *seenServer != "https://override.example.com" {
		t.Errorf("factory saw server %q", *seenServer)
	}
}

func TestVersionRunsWithoutService(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	reg := commands.NewRegistry()
	if err := reg.Register(&commands.VersionCmd{}); err != nil {
		t.Fatal(err)
	}
	factory := func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		t.Error("factory invoked for a service-free command")
		return nil, nil
	}
	d := NewDispatcher(reg, factory)

	var out, errOut bytes.Buffer
	args := []string{"version", "--config", t.TempDir()}
	code := d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit = %d, stderr: %s", code, errOut.String())
	}
	if !strings.HasPrefix(out.String(), "taskdeck ") {
		t.Errorf("out = %q", out.String())
	}
}

func TestAliasDispatch(t *testing.T) {
	t.Setenv(config.ServerEnv, "")
	d, _ := newDispatcher(t, testutil.NewFakeService(), true)

	var out, errOut bytes.Buffer
	args := []string{"ls", "--config", t.TempDir()}
	code := d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit = %d, stderr: %s", code, errOut.String())
	}
	if out.String() != "no tasks found\n" {
		t.Errorf("out = %q", out.String())
	}
}
