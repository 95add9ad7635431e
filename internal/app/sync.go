package app

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"taskdeck/internal/service"
)

// PageSize is the fixed task page size.
const PageSize = 6

// Synchronizer owns the paginated list state: the current page of tasks, the
// aggregate stats, the page cursor and the derived total-page count. It is
// the sole writer of that state; mutations never touch it directly and
// instead trigger a refresh here, so displayed state always equals server
// state.
type Synchronizer struct {
	svc           service.Service
	log           *logrus.Entry
	onAuthFailure func()

	mu         sync.Mutex
	seq        uint64
	page       int
	filter     service.Filter
	tasks      []service.Task
	stats      service.Stats
	totalPages int
	loading    bool
	primed     bool
}

// NewSynchronizer creates a synchronizer positioned on page 1 with no data.
// onAuthFailure is invoked when a refresh is rejected with an authorization
// failure; it must clear the session.
func NewSynchronizer(svc service.Service, log *logrus.Logger, onAuthFailure func()) *Synchronizer {
	return &Synchronizer{
		svc:           svc,
		log:           log.WithField("component", "sync"),
		onAuthFailure: onAuthFailure,
		page:          1,
		totalPages:    1,
	}
}

// Page returns the current page cursor.
func (s *Synchronizer) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// TotalPages returns the derived total-page count (at least 1).
func (s *Synchronizer) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPages
}

// Tasks returns a copy of the current task page.
func (s *Synchronizer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Stats returns the latest aggregate snapshot.
func (s *Synchronizer) Stats() service.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Filter returns the active listing filter.
func (s *Synchronizer) Filter() service.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter installs a listing filter and returns the cursor to page 1. The
// previous total was derived under the old filter, so it no longer bounds
// navigation; the next fetch re-establishes it.
func (s *Synchronizer) SetFilter(filter service.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filter == s.filter {
		return
	}
	s.filter = filter
	s.page = 1
	s.primed = false
}

// Loading reports whether a refresh is in flight.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Refresh re-fetches the current page and stats.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.refresh(ctx, s.Page())
}

// GoTo moves to the given page and refreshes. Once a fetch has established
// the total, the target is clamped to [1, totalPages] before any request is
// issued; before that the server's answer decides, and an overshoot clamps
// on application.
func (s *Synchronizer) GoTo(ctx context.Context, page int) error {
	s.mu.Lock()
	if page < 1 {
		page = 1
	}
	if s.primed && page > s.totalPages {
		page = s.totalPages
	}
	s.mu.Unlock()
	return s.refresh(ctx, page)
}

// Next advances one page. At the last page it is a no-op.
func (s *Synchronizer) Next(ctx context.Context) error {
	s.mu.Lock()
	if s.page >= s.totalPages {
		s.mu.Unlock()
		return nil
	}
	page := s.page + 1
	s.mu.Unlock()
	return s.refresh(ctx, page)
}

// Prev steps back one page. At page 1 it is a no-op.
func (s *Synchronizer) Prev(ctx context.Context) error {
	s.mu.Lock()
	if s.page <= 1 {
		s.mu.Unlock()
		return nil
	}
	page := s.page - 1
	s.mu.Unlock()
	return s.refresh(ctx, page)
}

// reset returns the cursor to page 1 and refreshes. Used after a create,
// which may shift pagination arbitrarily.
func (s *Synchronizer) reset(ctx context.Context) error {
	return s.refresh(ctx, 1)
}

// refresh fetches the task page and the stats snapshot concurrently and
// applies the joined result. Each refresh carries a sequence number; a
// completion only applies while it is still the newest issued refresh,
// otherwise the result is discarded. Loading ends in every path.
func (s *Synchronizer) refresh(ctx context.Context, page int) error {
	id := s.begin()
	defer s.finish()

	var (
		wg       sync.WaitGroup
		tasks    []service.Task
		total    int
		stats    *service.Stats
		tasksErr error
		statsErr error
	)
	s.mu.Lock()
	filter := s.filter
	s.mu.Unlock()

	wg.Add(2)
	go func() {
		defer wg.Done()
		tasks, total, tasksErr = s.svc.ListTasks(ctx, page, PageSize, filter)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = s.svc.Stats(ctx)
	}()
	wg.Wait()

	if err := firstError(tasksErr, statsErr); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			if s.onAuthFailure != nil {
				s.onAuthFailure()
			}
			return service.ErrUnauthorized
		}
		// Leave the view in its last-good state.
		s.log.WithError(err).WithField("page", page).Warn("refresh failed")
		return err
	}

	clamped, ok := s.apply(id, page, tasks, total, stats)
	if !ok {
		// A newer refresh superseded this one; its result stands.
		s.log.WithField("page", page).Debug("stale refresh discarded")
		return nil
	}
	if clamped != page {
		// The count shrank underneath us and the cursor fell off the
		// end; re-fetch at the clamped page.
		return s.refresh(ctx, clamped)
	}
	return nil
}

// begin marks a refresh in flight and allocates its sequence number.
func (s *Synchronizer) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.loading = true
	return s.seq
}

// finish ends loading unconditionally.
func (s *Synchronizer) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// apply installs a refresh result. It reports false when the result is
// stale. On success it returns the page the cursor should be on: usually the
// requested page, or a smaller one when the total shrank past it.
func (s *Synchronizer) apply(id uint64, page int, tasks []service.Task, total int, stats *service.Stats) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.seq {
		return 0, false
	}

	if tasks == nil {
		tasks = []service.Task{}
	}
	s.tasks = tasks
	if stats != nil {
		s.stats = *stats
	}
	s.totalPages = totalPages(total)
	s.page = page
	s.primed = true

	if page > s.totalPages {
		s.page = s.totalPages
		return s.totalPages, true
	}
	return page, true
}

// totalPages derives ceil(total/PageSize), never below 1.
func totalPages(total int) int {
	n := (total + PageSize - 1) / PageSize
	if n < 1 {
		return 1
	}
	return n
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
