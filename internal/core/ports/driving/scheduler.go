package driving

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// Scheduler manages background tasks like credential refresh and catalogue prefetch.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Status returns each task's timetable and latest run.
	Status(ctx context.Context) ([]domain.TaskStatus, error)
}
