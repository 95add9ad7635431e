// Package server is the reference taskdeckd backend: a small HTTP API over
// sqlite that the terminal client talks to.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskdeck/internal/service"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when registering an email that already has an account.
var ErrEmailTaken = errors.New("email already registered")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	priority    TEXT NOT NULL DEFAULT 'medium',
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at DESC);
`

// User is a stored account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}

// Store persists users and tasks in sqlite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the sqlite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// CreateUser inserts a new account and returns its id.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists > 0 {
		return "", ErrEmailTaken
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, passwordHash, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// UserByEmail looks up an account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UserExists reports whether an account id is still valid.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTask inserts a task for the given user.
func (s *Store) CreateTask(ctx context.Context, userID string, d service.Draft) (*service.Task, error) {
	t := &service.Task{
		ID:          uuid.NewString(),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, userID, t.Title, t.Description, string(t.Status), string(t.Priority), t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns one page of the user's tasks matching the filter, newest
// first, plus the total matching count across all pages.
func (s *Store) ListTasks(ctx context.Context, userID string, page, limit int, filter service.Filter) ([]service.Task, int, error) {
	where := `WHERE user_id = ?`
	args := []any{userID}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		where += ` AND priority = ?`
		args = append(args, string(filter.Priority))
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM tasks `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, priority, created_at
		 FROM tasks `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []service.Task{}
	for rows.Next() {
		var t service.Task
		var status, priority string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.Status = service.Status(status)
		t.Priority = service.Priority(priority)
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// UpdateTask overwrites a task's editable fields. ErrNotFound when the id
// does not belong to the user.
func (s *Store) UpdateTask(ctx context.Context, userID, id string, d service.Draft) (*service.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?
		 WHERE id = ? AND user_id = ?`,
		d.Title, d.Description, string(d.Status), string(d.Priority), id, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	t := &service.Task{ID: id, Title: d.Title, Description: d.Description, Status: d.Status, Priority: d.Priority}
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM tasks WHERE id = ?`, id).Scan(&t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes a task. ErrNotFound when the id does not belong to the user.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the user's task counters.
func (s *Store) Stats(ctx context.Context, userID string) (*service.Stats, error) {
	st := &service.Stats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		 FROM tasks WHERE user_id = ?`, userID).
		Scan(&st.TotalTasks, &st.PendingTasks, &st.CompletedTasks)
	if err != nil {
		return nil, err
	}
	return st, nil
}
