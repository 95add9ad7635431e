package output

import (
	"strings"
	"testing"
	"time"

	"taskdeck/internal/service"
)

func task(title string, status service.Status, priority service.Priority) service.Task {
	return service.Task{
		ID:        "task-x",
		Title:     title,
		Status:    status,
		Priority:  priority,
		CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task service.Task
		want string
	}{
		{
			"pending",
			1,
			task("buy milk", service.StatusPending, service.PriorityLow),
			"   1  [ ] buy milk (low)\n",
		},
		{
			"completed",
			12,
			task("ship release", service.StatusCompleted, service.PriorityHigh),
			"  12  [x] ship release (high)\n",
		},
		{
			"in progress",
			3,
			task("write docs", service.StatusInProgress, service.PriorityMedium),
			"   3  [~] write docs (medium)\n",
		},
		{
			"empty title",
			1,
			task("   ", service.StatusPending, service.PriorityMedium),
			"   1  [ ] (untitled) (medium)\n",
		},
		{
			"multiline title",
			1,
			task("line one\nline two", service.StatusPending, service.PriorityMedium),
			"   1  [ ] line one line two (medium)\n",
		},
		{
			"missing priority",
			1,
			task("t", service.StatusPending, ""),
			"   1  [ ] t (medium)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			FormatTask(&sb, tt.num, tt.task)
			if got := sb.String(); got != tt.want {
				t.Errorf("FormatTask = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	tk := task("title", service.StatusPending, service.PriorityLow)
	tk.Description = "  some context\nwith a newline  "

	var sb strings.Builder
	FormatTaskDetail(&sb, 2, tk)
	want := "   2  [ ] title (low)\n      some context with a newline\n"
	if got := sb.String(); got != want {
		t.Errorf("FormatTaskDetail = %q, want %q", got, want)
	}
}

func TestFormatPageNumbering(t *testing.T) {
	tasks := []service.Task{
		task("seventh", service.StatusPending, service.PriorityMedium),
		task("eighth", service.StatusPending, service.PriorityMedium),
	}

	var sb strings.Builder
	FormatPage(&sb, tasks, 2, 2, 6, false)
	got := sb.String()

	// Numbering is global: page 2 starts at 7.
	if !strings.Contains(got, "   7  [ ] seventh") {
		t.Errorf("missing global number 7:\n%s", got)
	}
	if !strings.Contains(got, "   8  [ ] eighth") {
		t.Errorf("missing global number 8:\n%s", got)
	}
	if !strings.Contains(got, "page 2 / 2\n") {
		t.Errorf("missing pagination footer:\n%s", got)
	}
}

func TestFormatPageSinglePageNoFooter(t *testing.T) {
	var sb strings.Builder
	FormatPage(&sb, []service.Task{task("only", service.StatusPending, service.PriorityMedium)}, 1, 1, 6, false)
	if strings.Contains(sb.String(), "page ") {
		t.Errorf("footer printed for a single page:\n%s", sb.String())
	}
}

func TestFormatStats(t *testing.T) {
	var sb strings.Builder
	FormatStats(&sb, service.Stats{TotalTasks: 9, PendingTasks: 4, CompletedTasks: 3})
	want := Separator + "\n" +
		"total      9\n" +
		"pending    4\n" +
		"completed  3\n" +
		Separator + "\n"
	if got := sb.String(); got != want {
		t.Errorf("FormatStats = %q, want %q", got, want)
	}
}
