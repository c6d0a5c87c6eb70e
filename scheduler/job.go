// Package scheduler implements the recurring action scheduler: one-off and
// recurring job definitions, per-job timers, a periodic sweep for lost
// timers, bounded retries, and running statistics over a persisted job set.
package scheduler

import (
	"strconv"
	"strings"
	"time"

	"github.com/loopwork/actiond/errors"
)

// Status is the lifecycle state of a scheduled job
type Status string

// Job status constants.
// pending -> running -> {completed, failed}; completed -> pending when the
// job repeats; failed -> pending when the retry policy allows; any -> cancelled.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// RepeatType names a recurrence kind
type RepeatType string

const (
	RepeatOnce     RepeatType = "once"
	RepeatDaily    RepeatType = "daily"
	RepeatWeekly   RepeatType = "weekly"
	RepeatMonthly  RepeatType = "monthly"
	RepeatInterval RepeatType = "interval"
)

// Priority is descriptive metadata only; it does not affect execution order
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Job is a scheduled unit of work with a recurrence policy and status.
//
// Status, ExecutionCount, LastExecuted, NextExecution, Result and Error are
// owned exclusively by the scheduler; everything else may be changed through
// UpdateJob, which the scheduler treats as an external write requiring the
// job's timer to be re-armed.
type Job struct {
	ID          string   `json:"id"`
	ActionType  string   `json:"action_type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    Priority `json:"priority"`

	ScheduledTime time.Time `json:"scheduled_time"`
	Status        Status    `json:"status"`

	RepeatType     RepeatType `json:"repeat_type"`
	RepeatInterval int        `json:"repeat_interval,omitempty"` // minutes, interval type only
	RepeatDays     []int      `json:"repeat_days,omitempty"`     // 0-6 weekday indices (0 = Sunday)
	RepeatTime     string     `json:"repeat_time,omitempty"`     // "HH:MM" for daily/weekly/monthly
	EndDate        *time.Time `json:"end_date,omitempty"`
	MaxExecutions  int        `json:"max_executions,omitempty"`

	ExecutionCount int        `json:"execution_count"`
	LastExecuted   *time.Time `json:"last_executed,omitempty"`
	NextExecution  *time.Time `json:"next_execution,omitempty"`
	LastDurationMs int64      `json:"last_duration_ms,omitempty"`

	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// Clone returns a deep copy safe to hand to callers
func (j *Job) Clone() *Job {
	c := *j
	if j.Tags != nil {
		c.Tags = append([]string(nil), j.Tags...)
	}
	if j.RepeatDays != nil {
		c.RepeatDays = append([]int(nil), j.RepeatDays...)
	}
	if j.EndDate != nil {
		t := *j.EndDate
		c.EndDate = &t
	}
	if j.LastExecuted != nil {
		t := *j.LastExecuted
		c.LastExecuted = &t
	}
	if j.NextExecution != nil {
		t := *j.NextExecution
		c.NextExecution = &t
	}
	return &c
}

// IsDue reports whether the job's scheduled time has elapsed
func (j *Job) IsDue(now time.Time) bool {
	return !j.ScheduledTime.After(now)
}

// IsTerminal reports whether no further automatic transition will occur
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case StatusCancelled:
		return true
	case StatusCompleted, StatusFailed:
		return j.RepeatType == RepeatOnce
	}
	return false
}

// HasTag reports whether the job carries the given tag
func (j *Job) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks that the recurrence parameters required by the job's
// repeat type are present and well-formed. Returns ErrInvalidSchedule
// otherwise.
func (j *Job) Validate() error {
	if j.ActionType == "" {
		return errors.NewInvalidSchedule("action_type is required")
	}

	switch j.RepeatType {
	case RepeatOnce:
		// No recurrence parameters needed
	case RepeatInterval:
		if j.RepeatInterval < 1 {
			return errors.NewInvalidSchedule("interval job requires repeat_interval >= 1 minute")
		}
	case RepeatDaily, RepeatMonthly:
		if _, _, err := ParseRepeatTime(j.RepeatTime); err != nil {
			return errors.NewInvalidSchedule("%s job requires repeat_time: %v", j.RepeatType, err)
		}
	case RepeatWeekly:
		if _, _, err := ParseRepeatTime(j.RepeatTime); err != nil {
			return errors.NewInvalidSchedule("weekly job requires repeat_time: %v", err)
		}
		if len(j.RepeatDays) == 0 {
			return errors.NewInvalidSchedule("weekly job requires at least one repeat_days entry")
		}
		for _, d := range j.RepeatDays {
			if d < 0 || d > 6 {
				return errors.NewInvalidSchedule("repeat_days entries must be weekday indices 0-6, got %d", d)
			}
		}
	default:
		return errors.NewInvalidSchedule("unknown repeat_type %q", j.RepeatType)
	}

	return nil
}

// ParseRepeatTime parses a wall-clock "HH:MM" string
func ParseRepeatTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, errors.Newf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.Newf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.Newf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
