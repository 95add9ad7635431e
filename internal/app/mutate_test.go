package app_test

import (
	"context"
	"errors"
	"testing"

	"taskdeck/internal/app"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

func TestCreateReturnsToFirstPage(t *testing.T) {
	f := testutil.NewFakeService()
	addTasks(f, 12) // 2 pages
	a := newTestApp(t, f)
	ctx := context.Background()

	if err := a.Sync.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := a.Sync.GoTo(ctx, 2); err != nil {
		t.Fatal(err)
	}

	if err := a.Tasks.Create(ctx, service.Draft{Title: "new task"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := a.Sync.Page(); got != 1 {
		t.Errorf("Page = %d after create, want 1", got)
	}
	if got := f.TaskCount(); got != 13 {
		t.Errorf("TaskCount = %d, want 13", got)
	}
	// The create must be followed by a page-1 re-fetch, never a local splice.
	var sawCreate, refetched bool
	for _, c := range f.Calls {
		if c == "create" {
			sawCreate = true
		}
		if sawCreate && c == "list:1" {
			refetched = true
		}
	}
	if !refetched {
		t.Errorf("calls = %v, want create followed by list:1", f.Calls)
	}
}

func TestCreateAppliesFormDefaults(t *testing.T) {
	f := testutil.NewFakeService()
	a := newTestApp(t, f)
	ctx := context.Background()

	if err := a.Tasks.Create(ctx, service.Draft{Title: "only a title"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tasks := a.Sync.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("page length = %d, want 1", len(tasks))
	}
	if tasks[0].Status != service.StatusPending {
		t.Errorf("Status = %q, want pending", tasks[0].Status)
	}
	if tasks[0].Priority != service.PriorityMedium {
		t.Errorf("Priority = %q, want medium", tasks[0].Priority)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft service.Draft
	}{
		{"empty title", service.Draft{}},
		{"bad status", service.Draft{Title: "t", Status: "done"}},
		{"bad priority", service.Draft{Title: "t", Priority: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFakeService()
			a := newTestApp(t, f)

			err := a.Tasks.Create(context.Background(), tt.draft)
			if !errors.Is(err, app.ErrInvalidDraft) {
				t.Fatalf("Create error = %v, want ErrInvalidDraft", err)
			}
			if len(f.Calls) != 0 {
				t.Errorf("calls = %v, want none for invalid draft", f.Calls)
			}
		})
	}
}

func TestUpdateRefreshesCurrentPage(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddTask("before", service.StatusPending, service.PriorityLow)
	a := newTestApp(t, f)
	ctx := context.Background()

	if err := a.Sync.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	draft := service.DraftOf(a.Sync.Tasks()[0])
	draft.Title = "after"
	draft.Status = service.StatusCompleted

	if err := a.Tasks.Update(ctx, "task-1", draft); err != nil {
		t.Fatalf("Update: %v", err)
	}
	tasks := a.Sync.Tasks()
	if tasks[0].Title != "after" || tasks[0].Status != service.StatusCompleted {
		t.Errorf("task after update = %+v", tasks[0])
	}
}

func TestDeleteDeclinedAborts(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddTask("keep me", service.StatusPending, service.PriorityMedium)
	a := newTestApp(t, f)

	err := a.Tasks.Delete(context.Background(), "task-1", func() bool { return false })
	if !errors.Is(err, app.ErrAborted) {
		t.Fatalf("Delete error = %v, want ErrAborted", err)
	}
	if !f.HasTask("task-1") {
		t.Error("task deleted despite declined confirmation")
	}
	for _, c := range f.Calls {
		if c == "delete" {
			t.Error("delete request issued despite declined confirmation")
		}
	}
}

func TestDeleteConfirmedRefreshes(t *testing.T) {
	f := testutil.NewFakeService()
	addTasks(f, 3)
	a := newTestApp(t, f)
	ctx := context.Background()

	if err := a.Sync.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := a.Tasks.Delete(ctx, "task-2", func() bool { return true }); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.HasTask("task-2") {
		t.Error("task still present after delete")
	}
	for _, task := range a.Sync.Tasks() {
		if task.ID == "task-2" {
			t.Error("deleted task still displayed")
		}
	}
	if got := a.Sync.Stats().TotalTasks; got != 2 {
		t.Errorf("Stats.TotalTasks = %d, want 2", got)
	}
}

func TestDeleteLastTaskOnPageStepsBack(t *testing.T) {
	f := testutil.NewFakeService()
	addTasks(f, 7) // 2 pages, page 2 has one task
	a := newTestApp(t, f)
	ctx := context.Background()

	if err := a.Sync.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := a.Sync.GoTo(ctx, 2); err != nil {
		t.Fatal(err)
	}

	if err := a.Tasks.Delete(ctx, "task-7", nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := a.Sync.Page(); got != 1 {
		t.Errorf("Page = %d after emptying page 2, want 1", got)
	}
	if got := len(a.Sync.Tasks()); got != 6 {
		t.Errorf("page length = %d, want 6", got)
	}
}

func TestMutationAuthFailureForcesLogout(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddTask("t", service.StatusPending, service.PriorityMedium)
	f.UpdateErr = &service.APIError{Status: 401, Detail: "Could not validate credentials"}
	a := newTestApp(t, f)

	err := a.Tasks.Update(context.Background(), "task-1", service.Draft{Title: "t"})
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("Update error = %v, want ErrUnauthorized", err)
	}
	if a.Sessions.Active() {
		t.Error("session still active after authorization failure")
	}
}

func TestMutationFailureLeavesStateUntouched(t *testing.T) {
	f := testutil.NewFakeService()
	addTasks(f, 2)
	a := newTestApp(t, f)
	ctx := context.Background()

	if err := a.Sync.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	f.DeleteErr = errors.New("boom")

	if err := a.Tasks.Delete(ctx, "task-1", nil); err == nil {
		t.Fatal("Delete succeeded, want error")
	}
	if got := len(a.Sync.Tasks()); got != 2 {
		t.Errorf("page length = %d, want unchanged 2", got)
	}
	if !f.HasTask("task-1") {
		t.Error("task removed despite failed delete")
	}
}

func TestModalDispatch(t *testing.T) {
	f := testutil.NewFakeService()
	existing := f.AddTask("existing", service.StatusPending, service.PriorityLow)
	a := newTestApp(t, f)
	ctx := context.Background()

	create := app.NewCreateModal()
	if _, ok := create.Editing(); ok {
		t.Error("create modal reports an editing target")
	}
	create.Draft.Title = "brand new"
	if err := create.Submit(ctx, a.Tasks); err != nil {
		t.Fatalf("create Submit: %v", err)
	}
	if got := f.TaskCount(); got != 2 {
		t.Errorf("TaskCount = %d, want 2", got)
	}

	edit := app.NewEditModal(existing)
	if got, ok := edit.Editing(); !ok || got.ID != existing.ID {
		t.Fatalf("Editing = %+v, %v", got, ok)
	}
	if edit.Draft.Title != "existing" {
		t.Errorf("edit draft not seeded: %+v", edit.Draft)
	}
	edit.Draft.Title = "renamed"
	if err := edit.Submit(ctx, a.Tasks); err != nil {
		t.Fatalf("edit Submit: %v", err)
	}
	if got := f.TaskCount(); got != 2 {
		t.Errorf("TaskCount = %d after edit, want 2", got)
	}
}
