package scheduler

import "context"

// ActionExecutor runs the external action named by a job's action type.
// The scheduler treats the result and error as opaque beyond
// success/failure.
type ActionExecutor interface {
	Execute(ctx context.Context, actionType string) (result string, err error)
}

// ActionExecutorFunc adapts a function to the ActionExecutor interface
type ActionExecutorFunc func(ctx context.Context, actionType string) (string, error)

// Execute implements ActionExecutor
func (f ActionExecutorFunc) Execute(ctx context.Context, actionType string) (string, error) {
	return f(ctx, actionType)
}

// Notifier receives fire-and-forget completion hooks. A panicking or
// failing notifier must not affect job state; the scheduler isolates
// hook invocations accordingly.
type Notifier interface {
	NotifySuccess(job *Job, message string)
	NotifyFailure(job *Job, message string)
}

// DocumentStore is the persistence collaborator: whole-collection
// read/write of JSON documents under well-known keys.
type DocumentStore interface {
	// Load returns the document under key, or (nil, nil) when absent
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// Document keys used by the scheduler
const (
	jobsDocumentKey     = "scheduled_jobs"
	settingsDocumentKey = "scheduler_settings"
)
