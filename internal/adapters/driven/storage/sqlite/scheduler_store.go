package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const (
	taskColumns = `id, interval_ms, next_run, last_run, last_success, last_error`
	runColumns  = `id, task_id, started_at, ended_at, error, refreshed`
)

// GetTask returns nil and no error when the task was never saved.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM task_state WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns every saved task ordered by ID.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM task_state ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask creates or replaces the task's timetable.
func (s *schedulerStore) SaveTask(ctx context.Context, task domain.Task) error {
	if task.ID == "" {
		return fmt.Errorf("%w: task without id", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO task_state (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interval_ms = excluded.interval_ms,
			next_run = excluded.next_run,
			last_run = excluded.last_run,
			last_success = excluded.last_success,
			last_error = excluded.last_error
	`, task.ID, task.Interval.Milliseconds(),
		unixMillis(task.NextRun), unixMillis(task.LastRun), unixMillis(task.LastSuccess),
		task.LastError)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// RecordRun inserts run and trims its task's history to keep runs, in one
// transaction. keep <= 0 keeps everything.
func (s *schedulerStore) RecordRun(ctx context.Context, run domain.TaskRun, keep int) error {
	if run.ID == "" || run.TaskID == "" {
		return fmt.Errorf("%w: run without id or task", domain.ErrInvalidInput)
	}
	refreshed, err := encodeCategories(run.Refreshed)
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `INSERT INTO task_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.TaskID, unixMillis(run.StartedAt), unixMillis(run.EndedAt), run.Err, refreshed,
	); err != nil {
		return fmt.Errorf("recording run of %s: %w", run.TaskID, err)
	}

	if keep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM task_runs WHERE task_id = ? AND id NOT IN (
				SELECT id FROM task_runs WHERE task_id = ?
				ORDER BY started_at DESC, rowid DESC LIMIT ?
			)
		`, run.TaskID, run.TaskID, keep); err != nil {
			return fmt.Errorf("trimming runs of %s: %w", run.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// LastRun returns the newest run of a task, nil when it never ran.
func (s *schedulerStore) LastRun(ctx context.Context, taskID string) (*domain.TaskRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM task_runs WHERE task_id = ?
		ORDER BY started_at DESC, rowid DESC LIMIT 1
	`, taskID)

	var run domain.TaskRun
	var started, ended int64
	var refreshed string
	err := row.Scan(&run.ID, &run.TaskID, &started, &ended, &run.Err, &refreshed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.StartedAt = fromUnixMillis(started)
	run.EndedAt = fromUnixMillis(ended)
	for _, c := range decodeList(refreshed) {
		run.Refreshed = append(run.Refreshed, domain.Category(c))
	}
	return &run, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var interval, next, last, success int64
	if err := row.Scan(&t.ID, &interval, &next, &last, &success, &t.LastError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.Interval = time.Duration(interval) * time.Millisecond
	t.NextRun = fromUnixMillis(next)
	t.LastRun = fromUnixMillis(last)
	t.LastSuccess = fromUnixMillis(success)
	return &t, nil
}

func encodeCategories(categories []domain.Category) (string, error) {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	lists, err := encodeLists(names)
	if err != nil {
		return "", err
	}
	return lists[0], nil
}

// unixMillis stores the zero time as 0.
func unixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
