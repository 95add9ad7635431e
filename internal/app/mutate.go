package app

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"taskdeck/internal/service"
)

// ErrAborted is returned when the user declines the delete confirmation.
// No request is issued.
var ErrAborted = errors.New("aborted")

// ErrInvalidDraft is returned when a draft fails form validation. Nothing
// reaches the network.
var ErrInvalidDraft = errors.New("invalid task fields")

// Mutator is the task mutation flow. It never writes list or stat state
// itself: every successful mutation delegates back to the synchronizer for a
// re-fetch, so the displayed page is always the server's answer rather than
// a local splice.
type Mutator struct {
	svc           service.Service
	sync          *Synchronizer
	validate      *validator.Validate
	onAuthFailure func()
}

// NewMutator creates a mutation flow bound to the synchronizer.
func NewMutator(svc service.Service, sync *Synchronizer, onAuthFailure func()) *Mutator {
	return &Mutator{
		svc:           svc,
		sync:          sync,
		validate:      validator.New(),
		onAuthFailure: onAuthFailure,
	}
}

// Create posts the draft and, on success, returns to page 1 with a full
// refresh: a creation may shift pagination, and page 1 is where the newest
// state is visible.
func (m *Mutator) Create(ctx context.Context, draft service.Draft) error {
	draft, err := m.prepare(draft)
	if err != nil {
		return err
	}
	if _, err := m.svc.CreateTask(ctx, draft); err != nil {
		return m.mutationError(err)
	}
	return m.sync.reset(ctx)
}

// Update puts the draft for the given task and refreshes the current page.
func (m *Mutator) Update(ctx context.Context, id string, draft service.Draft) error {
	draft, err := m.prepare(draft)
	if err != nil {
		return err
	}
	if _, err := m.svc.UpdateTask(ctx, id, draft); err != nil {
		return m.mutationError(err)
	}
	return m.sync.Refresh(ctx)
}

// Delete removes a task. confirm is the destructive-action gate: when it
// declines, ErrAborted is returned and no request is issued. On success the
// current page and stats are re-fetched; if the deletion emptied the page,
// the synchronizer's clamp steps the cursor back.
func (m *Mutator) Delete(ctx context.Context, id string, confirm func() bool) error {
	if id == "" {
		return errors.New("task id required")
	}
	if confirm != nil && !confirm() {
		return ErrAborted
	}
	if err := m.svc.DeleteTask(ctx, id); err != nil {
		return m.mutationError(err)
	}
	return m.sync.Refresh(ctx)
}

// prepare validates the draft and fills the form defaults the modal seeds
// with (pending status, medium priority).
func (m *Mutator) prepare(draft service.Draft) (service.Draft, error) {
	if draft.Status == "" {
		draft.Status = service.StatusPending
	}
	if draft.Priority == "" {
		draft.Priority = service.PriorityMedium
	}
	if err := m.validate.Struct(draft); err != nil {
		return service.Draft{}, ErrInvalidDraft
	}
	return draft, nil
}

// mutationError routes an authorization failure to the forced logout; any
// other failure propagates for the presentation layer to report as a plain
// "action failed" notice. State is unchanged either way.
func (m *Mutator) mutationError(err error) error {
	if errors.Is(err, service.ErrUnauthorized) {
		if m.onAuthFailure != nil {
			m.onAuthFailure()
		}
		return service.ErrUnauthorized
	}
	return err
}
