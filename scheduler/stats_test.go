package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.TotalScheduled)
	assert.Zero(t, stats.SuccessRate)
	assert.Nil(t, stats.NextExecution)
	assert.Nil(t, stats.LastExecution)
}

func TestComputeStatsCounts(t *testing.T) {
	jobs := []*Job{
		{Status: StatusPending, Enabled: true},
		{Status: StatusPending, Enabled: true},
		{Status: StatusRunning},
		{Status: StatusCompleted},
		{Status: StatusFailed},
		{Status: StatusCancelled},
	}

	stats := ComputeStats(jobs)
	assert.Equal(t, 6, stats.TotalScheduled)
	assert.Equal(t, 2, stats.PendingJobs)
	assert.Equal(t, 1, stats.RunningJobs)
	assert.Equal(t, 1, stats.CompletedJobs)
	assert.Equal(t, 1, stats.FailedJobs)
	assert.Equal(t, 1, stats.CancelledJobs)
}

func TestComputeStatsSuccessRate(t *testing.T) {
	// 3 completed, 1 failed -> 75%
	jobs := []*Job{
		{Status: StatusCompleted},
		{Status: StatusCompleted},
		{Status: StatusCompleted},
		{Status: StatusFailed},
	}
	assert.Equal(t, float64(75), ComputeStats(jobs).SuccessRate)

	// No terminal outcomes -> 0
	jobs = []*Job{{Status: StatusPending, Enabled: true}, {Status: StatusRunning}}
	assert.Zero(t, ComputeStats(jobs).SuccessRate)
}

func TestComputeStatsNextAndLastExecution(t *testing.T) {
	early := date(2024, 1, 1, 9, 0)
	late := date(2024, 1, 2, 9, 0)
	ranAt := date(2024, 1, 1, 8, 0)
	ranLater := date(2024, 1, 1, 14, 0)

	jobs := []*Job{
		{Status: StatusPending, Enabled: true, ScheduledTime: late},
		{Status: StatusPending, Enabled: true, ScheduledTime: early},
		// Disabled pending jobs do not contribute to next execution
		{Status: StatusPending, Enabled: false, ScheduledTime: date(2023, 12, 1, 0, 0)},
		{Status: StatusCompleted, LastExecuted: &ranAt},
		{Status: StatusFailed, LastExecuted: &ranLater},
	}

	stats := ComputeStats(jobs)
	require.NotNil(t, stats.NextExecution)
	assert.Equal(t, early, *stats.NextExecution)
	require.NotNil(t, stats.LastExecution)
	assert.Equal(t, ranLater, *stats.LastExecution)
}

func TestComputeStatsAverageExecution(t *testing.T) {
	jobs := []*Job{
		{Status: StatusCompleted, LastDurationMs: 100},
		{Status: StatusCompleted, LastDurationMs: 300},
		// Failed jobs do not contribute to the average
		{Status: StatusFailed, LastDurationMs: 5000},
	}

	assert.Equal(t, int64(200), ComputeStats(jobs).AverageExecutionMs)
}

func TestComputeStatsNeverCached(t *testing.T) {
	jobs := []*Job{{Status: StatusPending, Enabled: true, ScheduledTime: time.Now()}}
	first := ComputeStats(jobs)

	jobs[0].Status = StatusCompleted
	second := ComputeStats(jobs)

	assert.Equal(t, 1, first.PendingJobs)
	assert.Equal(t, 1, second.CompletedJobs)
}
