package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopwork/actiond/scheduler"
)

// StatsCmd shows aggregate scheduler statistics
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scheduler statistics",
	Long: `Show aggregate statistics over the persisted job set: counts per
status, success rate, average execution time, and next/last execution.

Example:
  actiond stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats()
	},
}

func runStats() error {
	jobs, database, err := loadPersistedJobs()
	if err != nil {
		return err
	}
	defer database.Close()

	stats := scheduler.ComputeStats(jobs)

	fmt.Printf("Scheduled jobs: %d\n", stats.TotalScheduled)
	fmt.Printf("  Pending:      %d\n", stats.PendingJobs)
	fmt.Printf("  Running:      %d\n", stats.RunningJobs)
	fmt.Printf("  Completed:    %d\n", stats.CompletedJobs)
	fmt.Printf("  Failed:       %d\n", stats.FailedJobs)
	fmt.Printf("  Cancelled:    %d\n", stats.CancelledJobs)
	fmt.Printf("Success rate:   %.0f%%\n", stats.SuccessRate)
	fmt.Printf("Avg execution:  %dms\n", stats.AverageExecutionMs)
	if stats.NextExecution != nil {
		fmt.Printf("Next execution: %s\n", stats.NextExecution.Format("2006-01-02 15:04:05"))
	}
	if stats.LastExecution != nil {
		fmt.Printf("Last execution: %s\n", stats.LastExecution.Format("2006-01-02 15:04:05"))
	}
	return nil
}
