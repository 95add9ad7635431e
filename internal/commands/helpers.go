package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/app"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

// reportError prints a user-facing message for a failed operation and picks
// the exit code. Authorization failures have already cleared the session by
// the time they arrive here; everything else is a plain backend failure.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintln(errOut, "error: session expired (run: taskdeck login)")
		return exitcode.AuthError
	case errors.Is(err, app.ErrAborted):
		fmt.Fprintln(errOut, "aborted")
		return exitcode.UserError
	case errors.Is(err, app.ErrInvalidDraft):
		fmt.Fprintln(errOut, "error: invalid task fields")
		return exitcode.UserError
	case errors.Is(err, errTaskNumber):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: action failed\n")
		return exitcode.BackendError
	}
}

// errTaskNumber marks a task number that does not resolve to a task.
var errTaskNumber = errors.New("task number out of range")

// taskByNumber resolves a global task number (as printed by list) to the
// task itself, paging the synchronizer to the number's page first.
func taskByNumber(ctx context.Context, a *app.App, num int) (service.Task, error) {
	if num < 1 {
		return service.Task{}, fmt.Errorf("%w: %d", errTaskNumber, num)
	}
	page := (num-1)/app.PageSize + 1
	if err := a.Sync.GoTo(ctx, page); err != nil {
		return service.Task{}, err
	}
	// GoTo clamps, so verify we landed where the number lives.
	if a.Sync.Page() != page {
		return service.Task{}, fmt.Errorf("%w: %d", errTaskNumber, num)
	}
	tasks := a.Sync.Tasks()
	idx := (num - 1) % app.PageSize
	if idx >= len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", errTaskNumber, num)
	}
	return tasks[idx], nil
}

// confirmFn builds the destructive-action gate for a delete: answered by the
// --yes flag, or by a y/N prompt on the input stream.
func confirmFn(assumeYes bool, task service.Task, in io.Reader, out io.Writer) func() bool {
	if assumeYes {
		return nil
	}
	return func() bool {
		fmt.Fprintf(out, "delete %q? [y/N] ", task.Title)
		return readYes(in)
	}
}

// readYes reads one line and reports whether it is an explicit yes.
func readYes(in io.Reader) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// readLine reads one trimmed line from in, returning "" at EOF.
func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
