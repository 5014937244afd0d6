package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run background refreshes until interrupted",
	Long: `Runs the scheduler in the foreground: it keeps the access token valid and
prefetches every category on the configured intervals. Stop it with Ctrl+C.

Examples:
  gamefeed daemon
  gamefeed daemon status    # next and last run of each task`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timetable and last run of each background task",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

func init() {
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := requireService("scheduler", scheduler != nil); err != nil {
		return err
	}
	if cfg != nil && !cfg.Scheduler.Enabled {
		return errors.New("scheduler is disabled (scheduler.enabled = false)")
	}

	cmd.Println("gamefeed daemon running. Press Ctrl+C to stop.")
	if err := scheduler.Start(commandContext(cmd)); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	cmd.Println("gamefeed daemon stopped.")
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	if err := requireService("scheduler", scheduler != nil); err != nil {
		return err
	}

	statuses, err := scheduler.Status(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("reading task status: %w", err)
	}
	if len(statuses) == 0 {
		cmd.Println("No tasks scheduled yet. Start one with 'gamefeed daemon'.")
		return nil
	}

	for i, st := range statuses {
		if i > 0 {
			cmd.Println()
		}
		printTaskStatus(cmd, st)
	}
	return nil
}

func printTaskStatus(cmd *cobra.Command, st domain.TaskStatus) {
	cmd.Printf("%s (every %s)\n", st.Task.ID, st.Task.Interval)
	cmd.Printf("  Next run:  %s\n", formatTaskTime(st.Task.NextRun))

	run := st.LastRun
	if run == nil {
		cmd.Println("  Last run:  never")
		return
	}
	outcome := "ok"
	if !run.Succeeded() {
		outcome = "failed"
	}
	cmd.Printf("  Last run:  %s, %s in %s\n", formatTaskTime(run.StartedAt), outcome, run.Duration().Round(time.Millisecond))
	if len(run.Refreshed) > 0 {
		cmd.Printf("  Refreshed: %s\n", joinCategories(run.Refreshed))
	}
	if run.Err != "" {
		cmd.Printf("  Error:     %s\n", run.Err)
	}
}

func formatTaskTime(t time.Time) string {
	if t.IsZero() {
		return "now"
	}
	return t.Local().Format(time.RFC1123)
}
