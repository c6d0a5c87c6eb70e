package commands

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopwork/actiond/config"
	"github.com/loopwork/actiond/db"
	"github.com/loopwork/actiond/docstore"
	"github.com/loopwork/actiond/errors"
	"github.com/loopwork/actiond/logger"
	"github.com/loopwork/actiond/scheduler"
)

// JobsCmd groups job inspection commands
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect scheduled jobs",
	Long: `Inspect the persisted job set.

Reads job state directly from the database; a running daemon is not
required. Job mutation (create, update, cancel, delete) goes through the
daemon's HTTP API.

Examples:
  actiond jobs ls                  # List all jobs
  actiond jobs ls --status failed  # List only failed jobs
  actiond jobs show <job-id>       # Show full job details`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// JobsLsCmd lists scheduled jobs
var JobsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List scheduled jobs",
	Long: `List scheduled jobs, optionally filtered by status or tag.

Status filters: pending, running, completed, failed, cancelled

Examples:
  actiond jobs ls
  actiond jobs ls --status pending
  actiond jobs ls --tag ops`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		tag, _ := cmd.Flags().GetString("tag")
		return runJobsLs(status, tag)
	},
}

// JobsShowCmd shows a single job in full
var JobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show full details for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobsShow(args[0])
	},
}

func init() {
	JobsLsCmd.Flags().String("status", "", "Filter by status (pending, running, completed, failed, cancelled)")
	JobsLsCmd.Flags().String("tag", "", "Filter by tag")

	JobsCmd.AddCommand(JobsLsCmd)
	JobsCmd.AddCommand(JobsShowCmd)
}

// loadPersistedJobs reads the job set straight from the document store
func loadPersistedJobs() ([]*scheduler.Job, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, nil, err
	}

	data, err := docstore.NewStore(database).Load("scheduled_jobs")
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	var jobs []*scheduler.Job
	if data != nil {
		if err := json.Unmarshal(data, &jobs); err != nil {
			database.Close()
			return nil, nil, errors.Wrap(err, "failed to decode job set")
		}
	}
	return jobs, database, nil
}

func runJobsLs(statusFilter, tagFilter string) error {
	jobs, database, err := loadPersistedJobs()
	if err != nil {
		return err
	}
	defer database.Close()

	filtered := jobs[:0]
	for _, job := range jobs {
		if statusFilter != "" && string(job.Status) != statusFilter {
			continue
		}
		if tagFilter != "" && !job.HasTag(tagFilter) {
			continue
		}
		filtered = append(filtered, job)
	}

	if len(filtered) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-42s %-10s %-20s %-9s %-5s %s\n", "JOB ID", "STATUS", "ACTION", "REPEAT", "RUNS", "SCHEDULED")
	fmt.Printf("%-42s %-10s %-20s %-9s %-5s %s\n", "------", "------", "------", "------", "----", "---------")
	for _, job := range filtered {
		fmt.Printf("%-42s %-10s %-20s %-9s %-5d %s\n",
			job.ID,
			job.Status,
			truncate(job.ActionType, 20),
			job.RepeatType,
			job.ExecutionCount,
			job.ScheduledTime.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nTotal: %d job(s)\n", len(filtered))
	return nil
}

func runJobsShow(jobID string) error {
	jobs, database, err := loadPersistedJobs()
	if err != nil {
		return err
	}
	defer database.Close()

	for _, job := range jobs {
		if job.ID != jobID {
			continue
		}
		out, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	return errors.NewNotFound("job %s", jobID)
}

// truncate shortens a string for table display
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
