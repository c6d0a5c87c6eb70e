// Package server exposes the scheduler over HTTP: job CRUD, cancellation,
// statistics, settings and scheduler control under /api/scheduler.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/loopwork/actiond/errors"
	"github.com/loopwork/actiond/scheduler"
)

// ShutdownTimeout bounds graceful HTTP shutdown
const ShutdownTimeout = 10 * time.Second

// Server routes HTTP requests to a running scheduler
type Server struct {
	sched *scheduler.Scheduler
	log   *zap.SugaredLogger

	allowedOrigins []string
	httpServer     *http.Server
}

// New creates a server for the given scheduler. allowedOrigins configures
// CORS; empty means same-origin only.
func New(sched *scheduler.Scheduler, allowedOrigins []string, log *zap.SugaredLogger) *Server {
	return &Server{
		sched:          sched,
		log:            log,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the full route table wrapped in CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/api/scheduler/jobs", s.HandleJobs)      // List/create jobs (GET/POST)
	mux.HandleFunc("/api/scheduler/jobs/", s.HandleJob)      // Individual job (GET/PATCH/DELETE) and cancel (POST {id}/cancel)
	mux.HandleFunc("/api/scheduler/stats", s.HandleStats)    // Aggregate statistics (GET)
	mux.HandleFunc("/api/scheduler/settings", s.HandleSettings) // Settings (GET/PATCH)
	mux.HandleFunc("/api/scheduler/status", s.HandleStatus)  // Running state (GET)
	mux.HandleFunc("/api/scheduler/pause", s.HandlePause)    // Suspend scheduling (POST)
	mux.HandleFunc("/api/scheduler/resume", s.HandleResume)  // Resume scheduling (POST)
	mux.HandleFunc("/api/scheduler/cleanup", s.HandleCleanup) // Manual cleanup trigger (POST)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

// Start listens on the given port until the context is cancelled, then
// drains in-flight requests.
func (s *Server) Start(ctx context.Context, port int) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("HTTP server listening", "port", port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.log.Infow("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}
	return nil
}

// HandleHealth reports process liveness and scheduler state
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"scheduler_running": s.sched.IsRunning(),
	})
}
