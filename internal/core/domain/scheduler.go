package domain

import "time"

// Background task IDs.
const (
	TaskIDCredentialsRefresh = "credentials-refresh"
	TaskIDCatalogPrefetch    = "catalog-prefetch"
)

// Task is the persisted timetable of a background task.
type Task struct {
	ID       string
	Interval time.Duration
	// NextRun is zero for a task that is due straight away.
	NextRun     time.Time
	LastRun     time.Time
	LastSuccess time.Time
	// LastError is the failure of the latest run, empty after a success.
	LastError string
}

// DueAt reports whether the task should run at now.
func (t Task) DueAt(now time.Time) bool {
	return t.Interval > 0 && !t.NextRun.After(now)
}

// TaskRun is one execution of a background task.
type TaskRun struct {
	ID        string
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	// Err is empty on success.
	Err string
	// Refreshed lists the categories the run fetched and saved.
	Refreshed []Category
}

// Succeeded reports whether the run finished without error.
func (r TaskRun) Succeeded() bool {
	return r.Err == ""
}

// Duration returns how long the run took.
func (r TaskRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskStatus is a task's timetable with its latest run, nil before the first.
type TaskStatus struct {
	Task    Task
	LastRun *TaskRun
}

// Schedule maps task IDs to run intervals. A task that is missing or has a
// non-positive interval never runs.
type Schedule map[string]time.Duration

// DefaultSchedule refreshes the token every 6 hours and prefetches every 30 minutes.
func DefaultSchedule() Schedule {
	return Schedule{
		TaskIDCredentialsRefresh: 6 * time.Hour,
		TaskIDCatalogPrefetch:    30 * time.Minute,
	}
}
