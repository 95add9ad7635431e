// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskdeck/internal/service"
)

// FakeToken is the credential the fake authenticator issues.
const FakeToken = "fake-session-token"

// FakeService is an in-memory implementation of service.Service and
// service.Authenticator for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	users  map[string]string // email -> password
	nextID int

	// Error injection for testing.
	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	StatsErr    error

	// EmptyToken makes Login answer successfully with no credential,
	// simulating a malformed 2xx login response.
	EmptyToken bool

	// NilStats makes Stats answer (nil, nil), simulating a 2xx stats
	// response with an absent or malformed payload.
	NilStats bool

	// ListHook, when set, runs before ListTasks answers. Used to delay
	// or reorder responses in race tests.
	ListHook func(page int)

	// Calls records the order of service calls.
	Calls []string
}

// NewFakeService creates an empty fake with one registered user.
func NewFakeService() *FakeService {
	return &FakeService{
		users: map[string]string{"user@example.com": "secret"},
	}
}

// AddTask appends a task and returns it. IDs are deterministic: task-1,
// task-2, ...
func (f *FakeService) AddTask(title string, status service.Status, priority service.Priority) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := service.Task{
		ID:        fmt.Sprintf("task-%d", f.nextID),
		Title:     title,
		Status:    status,
		Priority:  priority,
		CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	f.tasks = append(f.tasks, t)
	return t
}

// TaskCount returns the number of stored tasks.
func (f *FakeService) TaskCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tasks)
}

// HasTask reports whether a task with the given id exists.
func (f *FakeService) HasTask(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (f *FakeService) record(call string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	f.mu.Unlock()
}

// Login implements service.Authenticator.
func (f *FakeService) Login(ctx context.Context, email, password string) (string, error) {
	f.record("login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	if f.EmptyToken {
		return "", nil
	}
	f.mu.RLock()
	stored, ok := f.users[email]
	f.mu.RUnlock()
	if !ok || stored != password {
		return "", &service.APIError{Status: 401, Detail: "Incorrect email or password"}
	}
	return FakeToken, nil
}

// Register implements service.Authenticator.
func (f *FakeService) Register(ctx context.Context, email, password string) error {
	f.record("register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[email]; exists {
		return &service.APIError{Status: 400, Detail: "Email already registered"}
	}
	f.users[email] = password
	return nil
}

// ListTasks implements service.Service. The filter is applied before
// pagination, so the reported total counts only matching tasks.
func (f *FakeService) ListTasks(ctx context.Context, page, limit int, filter service.Filter) ([]service.Task, int, error) {
	f.record(fmt.Sprintf("list:%d", page))
	if f.ListHook != nil {
		f.ListHook(page)
	}
	if f.ListErr != nil {
		return nil, 0, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var matched []service.Task
	for _, t := range f.tasks {
		if filter.Match(t) {
			matched = append(matched, t)
		}
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]service.Task, end-start)
	copy(out, matched[start:end])
	return out, total, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	f.record("create")
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	return f.AddTask(draft.Title, draft.Status, draft.Priority), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, draft service.Draft) (service.Task, error) {
	f.record("update")
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Title = draft.Title
			f.tasks[i].Description = draft.Description
			f.tasks[i].Status = draft.Status
			f.tasks[i].Priority = draft.Priority
			return f.tasks[i], nil
		}
	}
	return service.Task{}, &service.APIError{Status: 404, Detail: "Task not found"}
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.APIError{Status: 404, Detail: "Task not found"}
}

// Stats implements service.Service. The snapshot is derived from the stored
// tasks.
func (f *FakeService) Stats(ctx context.Context) (*service.Stats, error) {
	f.record("stats")
	if f.StatsErr != nil {
		return nil, f.StatsErr
	}
	if f.NilStats {
		return nil, nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	s := &service.Stats{TotalTasks: len(f.tasks)}
	for _, t := range f.tasks {
		switch t.Status {
		case service.StatusPending:
			s.PendingTasks++
		case service.StatusCompleted:
			s.CompletedTasks++
		}
	}
	return s, nil
}
