// Package scheduler runs delayed follow-up work keyed by an id, with
// cancellation per id, per owner and on shutdown.
package scheduler

import (
	"context"
	"sync"
	"time"

	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/metrics"

	"github.com/google/uuid"
)

type task struct {
	owner int64
	timer *time.Timer
}

type Scheduler struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*task
	stopped bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[uuid.UUID]*task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule runs fn after delay unless cancelled first. Scheduling an id that
// is already pending replaces it. Returns false after Stop.
func (s *Scheduler) Schedule(id uuid.UUID, owner int64, delay time.Duration, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.cancelLocked(id)

	t := &task{owner: owner}
	s.wg.Add(1)
	t.timer = time.AfterFunc(delay, func() { s.fire(id, t, fn) })
	s.tasks[id] = t
	metrics.ScheduledNotices.Set(float64(len(s.tasks)))
	return true
}

func (s *Scheduler) fire(id uuid.UUID, t *task, fn func(ctx context.Context)) {
	defer s.wg.Done()

	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok || current != t {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, id)
	metrics.ScheduledNotices.Set(float64(len(s.tasks)))
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled task panicked", "task_id", id, "panic", r)
		}
	}()
	fn(s.ctx)
}

// Cancel drops a pending task; false if it already ran or never existed
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(id)
}

// CancelOwner drops every pending task of owner
func (s *Scheduler) CancelOwner(owner int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, t := range s.tasks {
		if t.owner == owner && s.cancelLocked(id) {
			n++
		}
	}
	return n
}

func (s *Scheduler) cancelLocked(id uuid.UUID) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	metrics.ScheduledNotices.Set(float64(len(s.tasks)))
	if t.timer.Stop() {
		// the callback will never run, so release its slot here
		s.wg.Done()
	}
	return true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels everything pending and waits for running tasks, at most until
// ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	for id := range s.tasks {
		s.cancelLocked(id)
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("scheduler stop timed out")
	}
}
