package app

import (
	"context"

	"taskdeck/internal/service"
)

// TaskModal is the create/edit form buffer. The two variants are tagged by
// whether an existing task seeded the draft, so a half-initialized "edit
// with no task" state cannot be expressed.
type TaskModal struct {
	editing *service.Task
	Draft   service.Draft
}

// NewCreateModal opens an empty form with the default status and priority.
func NewCreateModal() *TaskModal {
	return &TaskModal{
		Draft: service.Draft{
			Status:   service.StatusPending,
			Priority: service.PriorityMedium,
		},
	}
}

// NewEditModal opens a form seeded from the task being edited.
func NewEditModal(t service.Task) *TaskModal {
	return &TaskModal{
		editing: &t,
		Draft:   service.DraftOf(t),
	}
}

// Editing returns the task being edited, if this is the edit variant.
func (m *TaskModal) Editing() (service.Task, bool) {
	if m.editing == nil {
		return service.Task{}, false
	}
	return *m.editing, true
}

// Submit dispatches the draft to the mutation flow: create for the create
// variant, update for the edit variant. The buffer is not reused afterwards.
func (m *TaskModal) Submit(ctx context.Context, tasks *Mutator) error {
	if t, ok := m.Editing(); ok {
		return tasks.Update(ctx, t.ID, m.Draft)
	}
	return tasks.Create(ctx, m.Draft)
}
