// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/service"
)

// Separator is the section divider line.
const Separator = "------------"

// FormatTask formats one task line with its global number.
// Format: "{N:>4}  [{STATUS}] {TITLE} ({PRIORITY})".
func FormatTask(w io.Writer, num int, t service.Task) {
	fmt.Fprintf(w, "%4d  [%s] %s (%s)\n", num, statusLabel(t.Status), normalizeTitle(t.Title), priorityLabel(t.Priority))
}

// FormatTaskDetail prints a task with its description indented beneath it.
func FormatTaskDetail(w io.Writer, num int, t service.Task) {
	FormatTask(w, num, t)
	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintf(w, "      %s\n", normalizeTitle(desc))
	}
}

// FormatPage prints a page of tasks with global numbering derived from the
// page cursor, followed by the pagination footer.
func FormatPage(w io.Writer, tasks []service.Task, page, totalPages, pageSize int, verbose bool) {
	start := (page-1)*pageSize + 1
	for i, t := range tasks {
		if verbose {
			FormatTaskDetail(w, start+i, t)
		} else {
			FormatTask(w, start+i, t)
		}
	}
	if totalPages > 1 {
		fmt.Fprintf(w, "page %d / %d\n", page, totalPages)
	}
}

// FormatStats prints the aggregate stat cards.
func FormatStats(w io.Writer, s service.Stats) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "total      %d\n", s.TotalTasks)
	fmt.Fprintf(w, "pending    %d\n", s.PendingTasks)
	fmt.Fprintf(w, "completed  %d\n", s.CompletedTasks)
	fmt.Fprintln(w, Separator)
}

// statusLabel renders a status for a task line.
func statusLabel(s service.Status) string {
	switch s {
	case service.StatusCompleted:
		return "x"
	case service.StatusInProgress:
		return "~"
	default:
		return " "
	}
}

// priorityLabel renders a priority, defaulting to medium like the form does.
func priorityLabel(p service.Priority) string {
	if p == "" {
		return string(service.PriorityMedium)
	}
	return string(p)
}

// normalizeTitle normalizes a title for single-line display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
