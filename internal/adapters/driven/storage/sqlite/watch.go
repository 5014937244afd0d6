package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// WatchExternalChanges wakes every observer when another process writes the
// database, for example a daemon prefetching while a --watch command runs.
// It blocks until ctx is cancelled.
func (s *Store) WatchExternalChanges(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: the -wal file is created and removed as needed.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if s.isDatabaseWrite(event) {
				s.changes.publishAll()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("sqlite: watcher error: %v", err)
		}
	}
}

// isDatabaseWrite reports writes to the database file or its WAL.
func (s *Store) isDatabaseWrite(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), DBFileName)
}
