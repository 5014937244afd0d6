package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// runsKept is how many runs are kept per task.
const runsKept = 50

// taskFunc runs one task and returns the categories it refreshed.
type taskFunc func(ctx context.Context) ([]domain.Category, error)

// Scheduler runs the background tasks of the daemon: keeping the games API
// token valid and prefetching every category. Timetables and runs live in
// the store so a restarted daemon picks up where it stopped.
type Scheduler struct {
	schedule domain.Schedule
	store    driven.SchedulerStore
	tasks    map[string]taskFunc

	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	// busy prevents a slow task from being started twice.
	busy map[string]bool
}

// NewScheduler creates a scheduler. auth or prefetch may be nil, which
// disables the matching task.
func NewScheduler(
	schedule domain.Schedule,
	store driven.SchedulerStore,
	auth driving.AuthService,
	prefetch driving.Prefetcher,
) *Scheduler {
	s := &Scheduler{
		schedule: schedule,
		store:    store,
		tasks:    make(map[string]taskFunc),
		tick:     time.Minute,
		now:      time.Now,
		busy:     make(map[string]bool),
	}
	if auth != nil {
		s.tasks[domain.TaskIDCredentialsRefresh] = func(ctx context.Context) ([]domain.Category, error) {
			return nil, auth.EnsureValid(ctx)
		}
	}
	if prefetch != nil {
		s.tasks[domain.TaskIDCatalogPrefetch] = prefetch.PrefetchAll
	}
	return s
}

// Start runs due tasks every tick until ctx is cancelled or Stop is called.
// Cancellation is a normal shutdown and returns nil.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.stopCh == stopCh {
			s.running = false
		}
		s.mu.Unlock()
	}()

	if err := s.syncTimetable(ctx); err != nil {
		logger.Warn("scheduler: loading timetable: %v", err)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		s.runDue(ctx)
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return nil
		case <-stopCh:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop shuts the scheduler down and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Status returns the timetable and latest run of every task this scheduler
// knows, ordered by task ID.
func (s *Scheduler) Status(ctx context.Context) ([]domain.TaskStatus, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tasks, func(a, b domain.Task) int { return strings.Compare(a.ID, b.ID) })

	out := make([]domain.TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := s.tasks[task.ID]; !ok {
			continue
		}
		last, err := s.store.LastRun(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TaskStatus{Task: task, LastRun: last})
	}
	return out, nil
}

// enabled reports the interval of a runnable task, 0 when it is off.
func (s *Scheduler) enabled(id string) time.Duration {
	if _, ok := s.tasks[id]; !ok {
		return 0
	}
	return max(s.schedule[id], 0)
}

// syncTimetable saves a timetable for every enabled task. A new task is due
// at once so a fresh daemon validates credentials and warms the cache. A
// changed interval is counted from the last run.
func (s *Scheduler) syncTimetable(ctx context.Context) error {
	now := s.now()
	for id := range s.tasks {
		interval := s.enabled(id)
		if interval == 0 {
			continue
		}
		task, err := s.store.GetTask(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case task == nil:
			task = &domain.Task{ID: id, Interval: interval, NextRun: now}
		case task.Interval != interval:
			task.Interval = interval
			task.NextRun = task.LastRun.Add(interval)
		default:
			continue
		}
		if err := s.store.SaveTask(ctx, *task); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) runDue(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: listing tasks: %v", err)
		return
	}

	now := s.now()
	for _, task := range tasks {
		if s.enabled(task.ID) == 0 || !task.DueAt(now) || !s.claim(task.ID) {
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(task.ID)
			s.execute(ctx, task)
		}()
	}
}

func (s *Scheduler) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		return false
	}
	s.busy[id] = true
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	delete(s.busy, id)
	s.mu.Unlock()
}

// execute runs task, then persists its next timetable and the run. Both are
// written even when ctx was cancelled mid-run.
func (s *Scheduler) execute(ctx context.Context, task domain.Task) domain.TaskRun {
	run := domain.TaskRun{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		StartedAt: s.now(),
	}

	logger.Debug("scheduler: running %s", task.ID)
	refreshed, err := s.tasks[task.ID](ctx)
	run.EndedAt = s.now()
	run.Refreshed = refreshed

	task.LastRun = run.StartedAt
	task.NextRun = run.EndedAt.Add(task.Interval)
	if err != nil {
		run.Err = err.Error()
		task.LastError = run.Err
		logger.Warn("scheduler: %s failed: %v", task.ID, err)
	} else {
		task.LastError = ""
		task.LastSuccess = run.EndedAt
		logger.Debug("scheduler: %s done in %s, refreshed %d categories", task.ID, run.Duration(), len(refreshed))
	}

	persist := context.WithoutCancel(ctx)
	if err := s.store.SaveTask(persist, task); err != nil {
		logger.Warn("scheduler: saving task %s: %v", task.ID, err)
	}
	if err := s.store.RecordRun(persist, run, runsKept); err != nil {
		logger.Warn("scheduler: recording run of %s: %v", task.ID, err)
	}
	return run
}
