// Package service defines the backend-agnostic contract for task operations.
package service

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthorized is the universal session-invalid signal: any request
// rejected with a 401-class response matches it, regardless of endpoint.
var ErrUnauthorized = errors.New("session invalid")

// APIError is a structured API failure carrying the status code and the
// human-readable detail message the service returned. 401-class errors
// unwrap to ErrUnauthorized; the auth flow still reads their detail when
// surfacing a failed login inline.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return nil
}

// Authenticator exchanges user credentials for a session credential.
type Authenticator interface {
	// Login exchanges email/password for an opaque session credential.
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates an account. It does not log the user in.
	Register(ctx context.Context, email, password string) error
}

// Service is the task backend consumed by the client. All API calls go
// through this interface; nothing above it touches HTTP directly.
type Service interface {
	// ListTasks returns one page of tasks matching the filter plus the
	// total matching count. page is 1-based. A page past the end returns
	// an empty slice and the (still accurate) total.
	ListTasks(ctx context.Context, page, limit int, filter Filter) ([]Task, int, error)

	// CreateTask creates a task from the draft.
	CreateTask(ctx context.Context, draft Draft) (Task, error)

	// UpdateTask replaces the task's fields with the draft.
	UpdateTask(ctx context.Context, id string, draft Draft) (Task, error)

	// DeleteTask deletes a task by id.
	DeleteTask(ctx context.Context, id string) error

	// Stats returns the aggregate snapshot. A nil snapshot with a nil
	// error means the service answered but the payload was absent or
	// malformed; callers keep their previous value.
	Stats(ctx context.Context) (*Stats, error)
}
