package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/loopwork/actiond/scheduler"
)

// ListJobsResponse is the envelope for job list endpoints
type ListJobsResponse struct {
	Jobs  []*scheduler.Job `json:"jobs"`
	Count int              `json:"count"`
}

// HandleJobs handles requests to /api/scheduler/jobs
// GET: List jobs, filterable by ?status=, ?tag= or ?due_within= (duration)
// POST: Create a job
func (s *Server) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListJobs(w, r)
	case http.MethodPost:
		s.handleCreateJob(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var jobs []*scheduler.Job
	switch {
	case q.Get("status") != "":
		jobs = s.sched.ListByStatus(scheduler.Status(q.Get("status")))
	case q.Get("tag") != "":
		jobs = s.sched.ListByTag(q.Get("tag"))
	case q.Get("due_within") != "":
		window, err := time.ParseDuration(q.Get("due_within"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "due_within must be a duration, e.g. 1h30m")
			return
		}
		jobs = s.sched.ListDueWithin(window)
	default:
		jobs = s.sched.ListJobs()
	}

	writeJSON(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var spec scheduler.JobSpec
	if err := readJSON(w, r, &spec); err != nil {
		return
	}

	if spec.ActionType == "" {
		writeError(w, http.StatusBadRequest, "action_type is required")
		return
	}

	job, err := s.sched.CreateJob(spec)
	if err != nil {
		handleError(w, s.log, err, "failed to create job")
		return
	}

	s.log.Infow("Job created via API",
		"job_id", job.ID,
		"action_type", job.ActionType,
		"remote", r.RemoteAddr)

	writeJSON(w, http.StatusCreated, job)
}

// HandleJob handles requests to /api/scheduler/jobs/{id}
// GET: Job details
// PATCH: Partial update
// DELETE: Remove the job
// POST {id}/cancel: Cancel the job
func (s *Server) HandleJob(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Missing job ID")
		return
	}
	jobID := parts[0]

	if jobID == "due" {
		s.handleListDue(w, r)
		return
	}

	if len(parts) > 1 && parts[1] == "cancel" {
		s.handleCancelJob(w, r, jobID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetJob(w, r, jobID)
	case http.MethodPatch:
		s.handleUpdateJob(w, r, jobID)
	case http.MethodDelete:
		s.handleDeleteJob(w, r, jobID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleListDue serves /api/scheduler/jobs/due?within=1h
func (s *Server) handleListDue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	within := r.URL.Query().Get("within")
	if within == "" {
		writeError(w, http.StatusBadRequest, "within is required, e.g. ?within=1h")
		return
	}
	window, err := time.ParseDuration(within)
	if err != nil {
		writeError(w, http.StatusBadRequest, "within must be a duration, e.g. 1h30m")
		return
	}

	jobs := s.sched.ListDueWithin(window)
	writeJSON(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.sched.GetJob(jobID)
	if err != nil {
		handleError(w, s.log, err, "failed to get job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request, jobID string) {
	var patch scheduler.JobPatch
	if err := readJSON(w, r, &patch); err != nil {
		return
	}

	job, err := s.sched.UpdateJob(jobID, patch)
	if err != nil {
		handleError(w, s.log, err, "failed to update job")
		return
	}

	s.log.Infow("Job updated via API", "job_id", jobID)
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if !s.sched.DeleteJob(jobID) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	s.log.Infow("Job deleted via API", "job_id", jobID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if !s.sched.CancelJob(jobID) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.sched.GetJob(jobID)
	if err != nil {
		handleError(w, s.log, err, "failed to get cancelled job")
		return
	}

	s.log.Infow("Job cancelled via API", "job_id", jobID)
	writeJSON(w, http.StatusOK, job)
}
