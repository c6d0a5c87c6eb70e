package server

import (
	"net/http"

	"github.com/loopwork/actiond/scheduler"
)

// HandleStats returns aggregate statistics over the current job set (GET)
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.sched.GetStats())
}

// HandleSettings handles requests to /api/scheduler/settings
// GET: Current settings
// PATCH: Partial settings update
func (s *Server) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.sched.GetSettings())
	case http.MethodPatch:
		var patch scheduler.SettingsPatch
		if err := readJSON(w, r, &patch); err != nil {
			return
		}
		settings := s.sched.UpdateSettings(patch)
		s.log.Infow("Settings updated via API")
		writeJSON(w, http.StatusOK, settings)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleStatus reports whether the scheduler is actively scheduling (GET)
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": s.sched.IsRunning()})
}

// HandlePause suspends scheduling without altering job state (POST)
func (s *Server) HandlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.sched.Pause()
	s.log.Infow("Scheduler paused via API", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]bool{"running": false})
}

// HandleResume resumes scheduling; overdue jobs execute immediately (POST)
func (s *Server) HandleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.sched.Resume()
	s.log.Infow("Scheduler resumed via API", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]bool{"running": true})
}

// HandleCleanup removes old completed one-shot jobs on demand (POST)
func (s *Server) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	removed := s.sched.CleanupOldJobs()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
