package driven

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// SchedulerStore persists task timetables and runs so a restarted daemon
// resumes its timetable instead of running every task immediately.
type SchedulerStore interface {
	// GetTask returns nil and no error when the task was never saved.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// ListTasks returns every saved task ordered by ID.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	// SaveTask creates or replaces the task's timetable.
	SaveTask(ctx context.Context, task domain.Task) error

	// RecordRun stores a run and drops all but the newest keep runs of its task.
	RecordRun(ctx context.Context, run domain.TaskRun, keep int) error

	// LastRun returns the newest run of a task, nil when it never ran.
	LastRun(ctx context.Context, taskID string) (*domain.TaskRun, error)
}
