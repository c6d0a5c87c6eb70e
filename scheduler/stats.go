package scheduler

import (
	"math"
	"time"
)

// Stats is derived on demand from the job set and never cached
type Stats struct {
	TotalScheduled int `json:"total_scheduled"`
	PendingJobs    int `json:"pending_jobs"`
	RunningJobs    int `json:"running_jobs"`
	CompletedJobs  int `json:"completed_jobs"`
	FailedJobs     int `json:"failed_jobs"`
	CancelledJobs  int `json:"cancelled_jobs"`

	// SuccessRate is the percentage of terminal outcomes that completed,
	// 0 when no job has reached a terminal outcome
	SuccessRate float64 `json:"success_rate"`

	// AverageExecutionMs is the mean of the last execution durations of
	// completed jobs
	AverageExecutionMs int64 `json:"average_execution_ms"`

	// NextExecution is the earliest scheduled time among enabled pending
	// jobs; LastExecution the latest recorded execution across all jobs
	NextExecution *time.Time `json:"next_execution,omitempty"`
	LastExecution *time.Time `json:"last_execution,omitempty"`
}

// ComputeStats derives aggregate counts and rates from a job snapshot
func ComputeStats(jobs []*Job) Stats {
	stats := Stats{TotalScheduled: len(jobs)}

	var durationSum int64
	var durationCount int64

	for _, job := range jobs {
		switch job.Status {
		case StatusPending:
			stats.PendingJobs++
		case StatusRunning:
			stats.RunningJobs++
		case StatusCompleted:
			stats.CompletedJobs++
		case StatusFailed:
			stats.FailedJobs++
		case StatusCancelled:
			stats.CancelledJobs++
		}

		if job.Status == StatusCompleted && job.LastDurationMs > 0 {
			durationSum += job.LastDurationMs
			durationCount++
		}

		if job.Status == StatusPending && job.Enabled {
			if stats.NextExecution == nil || job.ScheduledTime.Before(*stats.NextExecution) {
				t := job.ScheduledTime
				stats.NextExecution = &t
			}
		}

		if job.LastExecuted != nil {
			if stats.LastExecution == nil || job.LastExecuted.After(*stats.LastExecution) {
				t := *job.LastExecuted
				stats.LastExecution = &t
			}
		}
	}

	terminal := stats.CompletedJobs + stats.FailedJobs
	if terminal > 0 {
		stats.SuccessRate = math.Round(float64(stats.CompletedJobs) / float64(terminal) * 100)
	}
	if durationCount > 0 {
		stats.AverageExecutionMs = durationSum / durationCount
	}

	return stats
}
