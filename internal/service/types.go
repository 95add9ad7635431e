package service

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParseStatus validates a user-supplied status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q (pending, in_progress or completed)", s)
}

// ParsePriority validates a user-supplied priority value.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q (low, medium or high)", s)
}

// Filter narrows a task listing by status and/or priority. Zero fields match
// everything; the total reported alongside a filtered page counts only
// matching tasks.
type Filter struct {
	Status   Status
	Priority Priority
}

// IsZero reports whether the filter matches every task.
func (f Filter) IsZero() bool { return f.Status == "" && f.Priority == "" }

// Match reports whether the task passes the filter.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Task is a single task item as owned by the task service. The client keeps
// only a transient read-through copy, one page at a time.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft is the modal form buffer for creating or editing a task. It exists
// only while the form is open and is discarded on cancel or success.
type Draft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// DraftOf seeds a draft from an existing task for editing.
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
	}
}

// Stats is the aggregate snapshot reported by the stats endpoint.
type Stats struct {
	TotalTasks     int `json:"total_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}
