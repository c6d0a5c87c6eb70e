package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/loopwork/actiond/errors"
)

// Default cadences for the background loops
const (
	DefaultSweepInterval   = 60 * time.Second
	DefaultCleanupInterval = time.Hour
)

// Scheduler owns the job store, arms per-job timers, transitions job state,
// invokes the action executor and maintains the persisted settings.
// Construct one per process with New and inject it; there is no package
// level instance.
type Scheduler struct {
	store    *JobStore
	docs     DocumentStore
	executor ActionExecutor
	notifier Notifier
	log      *zap.SugaredLogger

	// mu guards settings, timers, sem and paused. Job state itself is
	// guarded by the store's lock; lock order is always mu before store.
	mu       sync.Mutex
	settings Settings
	timers   map[string]*time.Timer
	sem      *semaphore.Weighted
	paused   bool

	sweepInterval   time.Duration
	cleanupInterval time.Duration
	clock           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes scheduler construction
type Option func(*Scheduler)

// WithSweepInterval overrides the due-job sweep cadence
func WithSweepInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.sweepInterval = d }
}

// WithCleanupInterval overrides the automatic cleanup cadence
func WithCleanupInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.cleanupInterval = d }
}

// WithClock overrides the time source (tests)
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// New creates a scheduler. The notifier may be nil. Call Start to load the
// persisted job set and begin scheduling, Stop to shut down.
func New(ctx context.Context, docs DocumentStore, executor ActionExecutor, notifier Notifier, settings Settings, log *zap.SugaredLogger, opts ...Option) *Scheduler {
	schedCtx, cancel := context.WithCancel(ctx)

	s := &Scheduler{
		docs:            docs,
		executor:        executor,
		notifier:        notifier,
		log:             log,
		settings:        settings,
		timers:          make(map[string]*time.Timer),
		sweepInterval:   DefaultSweepInterval,
		cleanupInterval: DefaultCleanupInterval,
		clock:           time.Now,
		ctx:             schedCtx,
		cancel:          cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = NewJobStore(docs, log)
	s.sem = semaphore.NewWeighted(int64(concurrencyLimit(settings)))
	return s
}

// Start loads persisted state, arms timers for enabled pending jobs and
// launches the sweep and cleanup loops. Jobs already due execute
// immediately.
func (s *Scheduler) Start() error {
	if err := s.loadSettings(); err != nil {
		return err
	}
	if err := s.store.Load(); err != nil {
		return err
	}

	s.mu.Lock()
	armed := 0
	for _, job := range s.store.ListWhere(jobIsSchedulable) {
		s.armTimerLocked(job.ID, job.ScheduledTime)
		armed++
	}
	s.mu.Unlock()

	s.wg.Add(2)
	go s.sweepLoop()
	go s.cleanupLoop()

	s.log.Infow("Scheduler started",
		"jobs", s.store.Len(),
		"armed", armed,
		"sweep_interval", s.sweepInterval,
		"max_concurrent", s.GetSettings().MaxConcurrentJobs)
	return nil
}

// Stop cancels the background loops and in-flight executions, disarms all
// timers and waits for goroutines to exit.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Infow("Scheduler stopped")
}

// JobSpec describes a job to create
type JobSpec struct {
	ActionType  string   `json:"action_type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    Priority `json:"priority,omitempty"`

	ScheduledTime time.Time `json:"scheduled_time,omitempty"`

	RepeatType     RepeatType `json:"repeat_type,omitempty"`
	RepeatInterval int        `json:"repeat_interval,omitempty"`
	RepeatDays     []int      `json:"repeat_days,omitempty"`
	RepeatTime     string     `json:"repeat_time,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	MaxExecutions  int        `json:"max_executions,omitempty"`

	Enabled   *bool  `json:"enabled,omitempty"` // nil defaults to true
	CreatedBy string `json:"created_by,omitempty"`
}

// CreateJob validates the spec, assigns identity, persists the job and arms
// its timer. A job whose scheduled time is already due executes
// immediately.
func (s *Scheduler) CreateJob(spec JobSpec) (*Job, error) {
	now := s.clock()

	job := &Job{
		ID:             "job_" + uuid.NewString(),
		ActionType:     spec.ActionType,
		Name:           spec.Name,
		Description:    spec.Description,
		Tags:           append([]string(nil), spec.Tags...),
		Priority:       spec.Priority,
		ScheduledTime:  spec.ScheduledTime,
		Status:         StatusPending,
		RepeatType:     spec.RepeatType,
		RepeatInterval: spec.RepeatInterval,
		RepeatDays:     append([]int(nil), spec.RepeatDays...),
		RepeatTime:     spec.RepeatTime,
		EndDate:        spec.EndDate,
		MaxExecutions:  spec.MaxExecutions,
		Enabled:        true,
		CreatedAt:      now,
		CreatedBy:      spec.CreatedBy,
	}
	if spec.Enabled != nil {
		job.Enabled = *spec.Enabled
	}
	if job.Name == "" {
		job.Name = job.ActionType
	}
	if job.Priority == "" {
		job.Priority = PriorityMedium
	}
	if job.RepeatType == "" {
		job.RepeatType = RepeatOnce
	}
	if job.ScheduledTime.IsZero() {
		job.ScheduledTime = now
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	s.store.Put(job)

	s.mu.Lock()
	if !s.paused && job.Enabled {
		s.armTimerLocked(job.ID, job.ScheduledTime)
	}
	s.mu.Unlock()

	s.log.Infow("Scheduled job created",
		"job_id", job.ID,
		"action_type", job.ActionType,
		"repeat_type", job.RepeatType,
		"scheduled_time", job.ScheduledTime)

	return job.Clone(), nil
}

// GetJob returns a copy of the job or ErrNotFound
func (s *Scheduler) GetJob(id string) (*Job, error) {
	job, ok := s.store.Get(id)
	if !ok {
		return nil, errors.NewNotFound("job %s", id)
	}
	return job, nil
}

// ListJobs returns copies of all jobs, oldest first
func (s *Scheduler) ListJobs() []*Job {
	return s.store.List()
}

// ListByStatus returns all jobs in the given status
func (s *Scheduler) ListByStatus(status Status) []*Job {
	return s.store.ListWhere(func(j *Job) bool { return j.Status == status })
}

// ListByTag returns all jobs carrying the given tag
func (s *Scheduler) ListByTag(tag string) []*Job {
	return s.store.ListWhere(func(j *Job) bool { return j.HasTag(tag) })
}

// ListDueWithin returns enabled pending jobs scheduled within the window
func (s *Scheduler) ListDueWithin(window time.Duration) []*Job {
	cutoff := s.clock().Add(window)
	return s.store.ListWhere(func(j *Job) bool {
		return j.Status == StatusPending && j.Enabled && !j.ScheduledTime.After(cutoff)
	})
}

// JobPatch is a partial job update; nil fields are left unchanged.
// Scheduler-owned fields (status, counters, outcome) cannot be patched.
type JobPatch struct {
	ActionType  *string   `json:"action_type,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`

	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`

	RepeatType     *RepeatType `json:"repeat_type,omitempty"`
	RepeatInterval *int        `json:"repeat_interval,omitempty"`
	RepeatDays     *[]int      `json:"repeat_days,omitempty"`
	RepeatTime     *string     `json:"repeat_time,omitempty"`
	EndDate        *time.Time  `json:"end_date,omitempty"`
	MaxExecutions  *int        `json:"max_executions,omitempty"`

	Enabled *bool `json:"enabled,omitempty"`
}

func (p JobPatch) applyTo(j *Job) {
	if p.ActionType != nil {
		j.ActionType = *p.ActionType
	}
	if p.Name != nil {
		j.Name = *p.Name
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Tags != nil {
		j.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Priority != nil {
		j.Priority = *p.Priority
	}
	if p.ScheduledTime != nil {
		j.ScheduledTime = *p.ScheduledTime
	}
	if p.RepeatType != nil {
		j.RepeatType = *p.RepeatType
	}
	if p.RepeatInterval != nil {
		j.RepeatInterval = *p.RepeatInterval
	}
	if p.RepeatDays != nil {
		j.RepeatDays = append([]int(nil), (*p.RepeatDays)...)
	}
	if p.RepeatTime != nil {
		j.RepeatTime = *p.RepeatTime
	}
	if p.EndDate != nil {
		t := *p.EndDate
		j.EndDate = &t
	}
	if p.MaxExecutions != nil {
		j.MaxExecutions = *p.MaxExecutions
	}
	if p.Enabled != nil {
		j.Enabled = *p.Enabled
	}
}

// UpdateJob merges the patch into the job. If the scheduled time or enabled
// flag changed, any existing timer is disarmed and re-armed per the new
// state. Returns ErrNotFound for an unknown id and ErrInvalidSchedule when
// the merged job's recurrence parameters are inconsistent.
func (s *Scheduler) UpdateJob(id string, patch JobPatch) (*Job, error) {
	existing, ok := s.store.Get(id)
	if !ok {
		return nil, errors.NewNotFound("job %s", id)
	}

	// Validate against the merged result before committing
	merged := existing.Clone()
	patch.applyTo(merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	job, _, err := s.store.Mutate(id, func(j *Job) bool {
		patch.applyTo(j)
		return true
	})
	if err != nil {
		return nil, err
	}

	if patch.ScheduledTime != nil || patch.Enabled != nil {
		s.mu.Lock()
		s.disarmTimerLocked(id)
		if !s.paused && job.Enabled && job.Status == StatusPending {
			s.armTimerLocked(job.ID, job.ScheduledTime)
		}
		s.mu.Unlock()
	}

	s.log.Infow("Scheduled job updated", "job_id", id)
	return job, nil
}

// CancelJob disarms the job's timer and sets status cancelled. Idempotent:
// cancelling an already-cancelled job returns true without side effects.
// Returns false for an unknown id. A running execution is not preempted;
// cancellation only prevents the next occurrence from being armed.
func (s *Scheduler) CancelJob(id string) bool {
	s.mu.Lock()
	s.disarmTimerLocked(id)
	s.mu.Unlock()

	_, mutated, err := s.store.Mutate(id, func(j *Job) bool {
		if j.Status == StatusCancelled {
			return false
		}
		j.Status = StatusCancelled
		j.NextExecution = nil
		return true
	})
	if err != nil {
		return false
	}

	if mutated {
		s.log.Infow("Scheduled job cancelled", "job_id", id)
	}
	return true
}

// DeleteJob cancels the job and removes it from the store.
// Returns false for an unknown id.
func (s *Scheduler) DeleteJob(id string) bool {
	s.mu.Lock()
	s.disarmTimerLocked(id)
	s.mu.Unlock()

	if !s.store.Delete(id) {
		return false
	}
	s.log.Infow("Scheduled job deleted", "job_id", id)
	return true
}

// Pause disarms every timer without altering job status; jobs remain
// logically pending. The sweep is suspended while paused.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.log.Infow("Scheduler paused")
}

// Resume re-arms all enabled pending jobs; now-overdue jobs execute
// immediately.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused {
		return
	}
	s.paused = false
	for _, job := range s.store.ListWhere(jobIsSchedulable) {
		s.armTimerLocked(job.ID, job.ScheduledTime)
	}
	s.log.Infow("Scheduler resumed")
}

// IsRunning reports whether the scheduler is actively scheduling
// (i.e. not paused)
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.paused
}

// GetStats recomputes aggregate statistics from the current job set
func (s *Scheduler) GetStats() Stats {
	return ComputeStats(s.store.List())
}

// GetSettings returns a snapshot of the current settings
func (s *Scheduler) GetSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings applies the patch, persists the result and resizes the
// concurrency gate if max_concurrent_jobs changed. In-flight executions
// keep the slot they already hold.
func (s *Scheduler) UpdateSettings(patch SettingsPatch) Settings {
	s.mu.Lock()
	prev := s.settings.MaxConcurrentJobs
	s.settings = s.settings.Apply(patch)
	if s.settings.MaxConcurrentJobs != prev {
		s.sem = semaphore.NewWeighted(int64(concurrencyLimit(s.settings)))
	}
	snapshot := s.settings
	s.mu.Unlock()

	s.persistSettings(snapshot)
	s.log.Infow("Scheduler settings updated", "settings", snapshot)
	return snapshot
}

// CleanupOldJobs removes completed, non-repeating jobs whose last execution
// is older than cleanup_after_days. Pending, running, failed and cancelled
// jobs are never removed regardless of age. Returns the number removed.
func (s *Scheduler) CleanupOldJobs() int {
	settings := s.GetSettings()
	if !settings.CleanupCompletedJobs {
		return 0
	}

	cutoff := s.clock().AddDate(0, 0, -settings.CleanupAfterDays)
	removed := s.store.DeleteWhere(func(j *Job) bool {
		return j.Status == StatusCompleted &&
			j.RepeatType == RepeatOnce &&
			j.LastExecuted != nil &&
			j.LastExecuted.Before(cutoff)
	})

	if removed > 0 {
		s.log.Infow("Cleaned up old completed jobs", "removed", removed)
	}
	return removed
}

// --- execution path ---

// attemptExecution is the single entry point for both timer fires and the
// sweep. Whichever trigger observes pending first flips the job to running
// under the store lock; the loser's check-and-set fails and the duplicate
// trigger is absorbed.
func (s *Scheduler) attemptExecution(id string) {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return
	}
	s.disarmTimerLocked(id)
	sem := s.sem
	s.mu.Unlock()

	now := s.clock()
	job, started, err := s.store.Mutate(id, func(j *Job) bool {
		if j.Status != StatusPending || !j.Enabled {
			return false
		}
		j.Status = StatusRunning
		t := now
		j.LastExecuted = &t
		j.ExecutionCount++
		return true
	})
	if err != nil || !started {
		return
	}

	s.wg.Add(1)
	go s.runJob(job, sem)
}

// runJob executes one attempt: acquire a concurrency slot, invoke the
// executor, record the outcome. The job is already marked running and
// persisted, so a crash here is observable and reconciled at next startup.
func (s *Scheduler) runJob(job *Job, sem *semaphore.Weighted) {
	defer s.wg.Done()

	if err := sem.Acquire(s.ctx, 1); err != nil {
		// Shutdown while waiting for a slot; same reconciliation as a
		// crash mid-execution
		s.store.Mutate(job.ID, func(j *Job) bool {
			if j.Status != StatusRunning {
				return false
			}
			j.Status = StatusFailed
			j.Error = interruptedError
			return true
		})
		return
	}
	defer sem.Release(1)

	s.log.Infow("Executing scheduled job",
		"job_id", job.ID,
		"action_type", job.ActionType,
		"attempt", job.ExecutionCount)

	start := time.Now()
	result, execErr := s.executor.Execute(s.ctx, job.ActionType)
	durationMs := time.Since(start).Milliseconds()

	if execErr != nil {
		s.recordFailure(job.ID, execErr, durationMs)
	} else {
		s.recordSuccess(job.ID, result, durationMs)
	}
}

// recordSuccess stores the result, reschedules repeating jobs and fires the
// success hook. A job cancelled while running is left untouched.
func (s *Scheduler) recordSuccess(id string, result string, durationMs int64) {
	now := s.clock()

	var next *time.Time
	job, ok, err := s.store.Mutate(id, func(j *Job) bool {
		if j.Status != StatusRunning {
			return false
		}
		j.Status = StatusCompleted
		j.Result = result
		j.Error = ""
		j.LastDurationMs = durationMs

		next = NextOccurrence(j, now)
		if next != nil {
			j.ScheduledTime = *next
			j.NextExecution = next
			j.Status = StatusPending
		} else {
			j.NextExecution = nil
		}
		return true
	})
	if err != nil || !ok {
		return
	}

	s.log.Infow("Scheduled job completed",
		"job_id", id,
		"duration_ms", durationMs,
		"next_execution", next)

	settings := s.GetSettings()
	if s.notifier != nil && settings.NotifyOnSuccess {
		s.notify(func() {
			s.notifier.NotifySuccess(job, fmt.Sprintf("Scheduled job %q completed successfully", job.Name))
		})
	}

	if next != nil {
		s.mu.Lock()
		if !s.paused {
			s.armTimerLocked(id, *next)
		}
		s.mu.Unlock()
	}
}

// recordFailure stores the error, applies the retry policy and fires the
// failure hook. A repeating job whose retries are exhausted still awaits
// its next natural occurrence; the recurrence clock is independent of
// retry attempts.
func (s *Scheduler) recordFailure(id string, execErr error, durationMs int64) {
	now := s.clock()
	settings := s.GetSettings()

	var rearmAt *time.Time
	job, ok, err := s.store.Mutate(id, func(j *Job) bool {
		if j.Status != StatusRunning {
			return false
		}
		j.Status = StatusFailed
		j.Error = execErr.Error()
		j.Result = ""
		j.LastDurationMs = durationMs

		if decision := EvaluateRetry(j, settings, now); decision.Retry {
			j.Status = StatusPending
			j.ScheduledTime = decision.At
			at := decision.At
			j.NextExecution = &at
			rearmAt = &at
		} else if next := NextOccurrence(j, now); next != nil {
			j.Status = StatusPending
			j.ScheduledTime = *next
			j.NextExecution = next
			rearmAt = next
		} else {
			j.NextExecution = nil
		}
		return true
	})
	if err != nil || !ok {
		return
	}

	s.log.Errorw("Scheduled job failed",
		"job_id", id,
		"error", execErr,
		"attempt", job.ExecutionCount,
		"will_retry", rearmAt != nil)

	if s.notifier != nil && settings.NotifyOnFailure {
		s.notify(func() {
			s.notifier.NotifyFailure(job, fmt.Sprintf("Scheduled job %q failed: %v", job.Name, execErr))
		})
	}

	if rearmAt != nil {
		s.mu.Lock()
		if !s.paused {
			s.armTimerLocked(id, *rearmAt)
		}
		s.mu.Unlock()
	}
}

// --- background loops ---

func (s *Scheduler) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep executes any due, enabled, pending job whose timer may have been
// lost to process suspension or a settings change. The check-and-set in
// attemptExecution keeps it from double-executing against a live timer.
func (s *Scheduler) sweep() {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		return
	}

	now := s.clock()
	due := s.store.ListWhere(func(j *Job) bool {
		return j.Status == StatusPending && j.Enabled && j.IsDue(now)
	})
	for _, job := range due {
		s.attemptExecution(job.ID)
	}
}

func (s *Scheduler) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.CleanupOldJobs()
		}
	}
}

// --- internals ---

// armTimerLocked schedules an execution attempt at the given instant,
// replacing any existing timer. Already-due jobs execute immediately.
// Caller holds s.mu.
func (s *Scheduler) armTimerLocked(id string, at time.Time) {
	s.disarmTimerLocked(id)

	delay := at.Sub(s.clock())
	if delay <= 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.attemptExecution(id)
		}()
		return
	}

	s.timers[id] = time.AfterFunc(delay, func() {
		s.attemptExecution(id)
	})
}

// disarmTimerLocked stops and forgets the job's timer, if any.
// Caller holds s.mu.
func (s *Scheduler) disarmTimerLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// notify isolates a notification hook; hook panics must not affect job
// state.
func (s *Scheduler) notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warnw("Notification hook panicked", "panic", r)
		}
	}()
	fn()
}

// loadSettings overlays persisted settings onto the configured defaults and
// writes the result back so first startup persists the defaults.
func (s *Scheduler) loadSettings() error {
	data, err := s.docs.Load(settingsDocumentKey)
	if err != nil {
		return errors.Wrap(err, "failed to load scheduler settings")
	}

	s.mu.Lock()
	if data != nil {
		if err := json.Unmarshal(data, &s.settings); err != nil {
			s.mu.Unlock()
			return errors.Wrap(err, "failed to decode scheduler settings")
		}
	}
	s.sem = semaphore.NewWeighted(int64(concurrencyLimit(s.settings)))
	snapshot := s.settings
	s.mu.Unlock()

	s.persistSettings(snapshot)
	return nil
}

// persistSettings mirrors settings to the document store; persistence
// errors are logged, not propagated.
func (s *Scheduler) persistSettings(settings Settings) {
	data, err := json.Marshal(settings)
	if err != nil {
		s.log.Errorw("Failed to encode settings for persistence", "error", err)
		return
	}
	if err := s.docs.Save(settingsDocumentKey, data); err != nil {
		s.log.Errorw("Failed to persist settings", "error", err)
	}
}

func jobIsSchedulable(j *Job) bool {
	return j.Status == StatusPending && j.Enabled
}

func concurrencyLimit(settings Settings) int {
	if settings.MaxConcurrentJobs < 1 {
		return 1
	}
	return settings.MaxConcurrentJobs
}
