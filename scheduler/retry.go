package scheduler

import "time"

// RetryDecision is the outcome of evaluating the retry policy for a
// failed job
type RetryDecision struct {
	Retry bool
	At    time.Time
}

// EvaluateRetry decides whether a failed job re-enters pending and when.
//
// Retry applies only while retries are enabled and the job's execution
// count is below max_retries. Retry attempts count toward the same
// execution_count used for telemetry, so the retry budget is consumed by
// every attempt over the job's lifetime, not per failure streak.
func EvaluateRetry(job *Job, settings Settings, now time.Time) RetryDecision {
	if !settings.RetryFailedJobs {
		return RetryDecision{}
	}
	if job.ExecutionCount >= settings.MaxRetries {
		return RetryDecision{}
	}
	return RetryDecision{
		Retry: true,
		At:    now.Add(time.Duration(settings.RetryDelayMinutes) * time.Minute),
	}
}
