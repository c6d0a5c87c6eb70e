package scheduler

import (
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/loopwork/actiond/errors"
)

// interruptedError marks jobs found running at startup; the outcome of the
// interrupted execution is unknown, so they are reconciled to failed.
const interruptedError = "interrupted: process restarted during execution"

// JobStore is the in-memory job collection, mirrored to the document store
// on every mutation. Reads never touch persistence. It is the single shared
// mutable resource between timer callbacks, the sweep and the public API;
// all mutation goes through its lock.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	docs DocumentStore
	log  *zap.SugaredLogger
}

// NewJobStore creates an empty job store backed by the document store
func NewJobStore(docs DocumentStore, log *zap.SugaredLogger) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		docs: docs,
		log:  log,
	}
}

// Load performs the single bulk read from the document store. Any job found
// running is reconciled to failed with an interruption marker before
// scheduling resumes, so a crash mid-execution cannot leave a job stuck.
func (s *JobStore) Load() error {
	data, err := s.docs.Load(jobsDocumentKey)
	if err != nil {
		return errors.Wrap(err, "failed to load job set")
	}
	if data == nil {
		return nil
	}

	var jobs []*Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return errors.Wrap(err, "failed to decode job set")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reconciled := 0
	for _, job := range jobs {
		if job.Status == StatusRunning {
			job.Status = StatusFailed
			job.Error = interruptedError
			job.Result = ""
			reconciled++
		}
		s.jobs[job.ID] = job
	}

	if reconciled > 0 {
		s.log.Warnw("Reconciled interrupted jobs from previous run",
			"count", reconciled)
		s.persistLocked()
	}

	return nil
}

// Get returns a copy of the job, or false if it does not exist
func (s *JobStore) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// List returns copies of all jobs, oldest first
func (s *JobStore) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListWhere returns copies of all jobs matching the predicate, oldest first
func (s *JobStore) ListWhere(pred func(*Job) bool) []*Job {
	all := s.List()
	out := all[:0]
	for _, job := range all {
		if pred(job) {
			out = append(out, job)
		}
	}
	return out
}

// Put inserts or replaces a job and persists the collection
func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job.Clone()
	s.persistLocked()
}

// Mutate applies fn to the stored job under the store lock and persists the
// collection. fn returning false abandons the mutation without persisting;
// this is the check-and-set used to absorb duplicate execution triggers.
// Returns a copy of the job, whether fn committed, and ErrNotFound for an
// unknown id.
func (s *JobStore) Mutate(id string, fn func(*Job) bool) (*Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false, errors.NewNotFound("job %s", id)
	}

	if !fn(job) {
		return job.Clone(), false, nil
	}

	s.persistLocked()
	return job.Clone(), true, nil
}

// Delete removes a job and persists the collection.
// Returns false if the job did not exist.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	s.persistLocked()
	return true
}

// DeleteWhere removes all jobs matching the predicate, persisting once.
// Returns the number removed.
func (s *JobStore) DeleteWhere(pred func(*Job) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if pred(job) {
			delete(s.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		s.persistLocked()
	}
	return removed
}

// Len returns the number of stored jobs
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// persistLocked mirrors the collection to the document store. The in-memory
// store is the source of truth for the running process; persistence errors
// are logged, not propagated.
func (s *JobStore) persistLocked() {
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	data, err := json.Marshal(jobs)
	if err != nil {
		s.log.Errorw("Failed to encode job set for persistence", "error", err)
		return
	}

	if err := s.docs.Save(jobsDocumentKey, data); err != nil {
		s.log.Errorw("Failed to persist job set",
			"error", err,
			"jobs", len(jobs))
	}
}
