package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/signalscan/internal/scheduler"
	"github.com/wonny/signalscan/pkg/logger"
)

// JobRunner is the scheduler surface exposed over HTTP
type JobRunner interface {
	Jobs() []scheduler.Status
	Trigger(name string) error
	History(name string, limit int) ([]scheduler.Run, error)
}

// SchedulerHandler handles scheduler API endpoints
type SchedulerHandler struct {
	runner JobRunner
	logger *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(runner JobRunner, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		runner: runner,
		logger: log,
	}
}

// ListJobs returns every scheduled job with its run summary
// GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.runner.Jobs()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// RunJob starts a job now without waiting for it
// POST /api/scheduler/jobs/{name}/run
func (h *SchedulerHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.runner.Trigger(name); err != nil {
		respondError(w, jobStatusFor(err), err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "started",
	})
}

// JobHistory returns recent runs of a job, newest first
// GET /api/scheduler/jobs/{name}/history?limit=20
func (h *SchedulerHandler) JobHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runner.History(name, limit)
	if err != nil {
		respondError(w, jobStatusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":  name,
		"runs": runs,
	})
}

func jobStatusFor(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrJobRunning):
		return http.StatusConflict
	case errors.Is(err, scheduler.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
