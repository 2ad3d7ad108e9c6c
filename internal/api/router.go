package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/signalscan/internal/api/handlers"
	"github.com/wonny/signalscan/pkg/logger"
)

// Handlers bundles the route handlers
// Scheduler is nil when no job is scheduled
type Handlers struct {
	Scan      *handlers.ScanHandler
	Markets   *handlers.MarketHandler
	Dashboard *handlers.DashboardHandler
	Scheduler *handlers.SchedulerHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/markets", h.Markets.GetMarkets).Methods("GET")
	api.HandleFunc("/scan", h.Scan.Scan).Methods("POST")
	api.HandleFunc("/results", h.Scan.ListResults).Methods("GET")
	api.HandleFunc("/results/{market}/{page:[0-9]+}", h.Scan.GetResult).Methods("GET")
	api.HandleFunc("/results/{market}/{page:[0-9]+}", h.Scan.DeleteResult).Methods("DELETE")

	if h.Scheduler != nil {
		api.HandleFunc("/scheduler/jobs", h.Scheduler.ListJobs).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/run", h.Scheduler.RunJob).Methods("POST")
		api.HandleFunc("/scheduler/jobs/{name}/history", h.Scheduler.JobHistory).Methods("GET")
	}

	// Dashboard
	r.HandleFunc("/", h.Dashboard.Index).Methods("GET")
	r.HandleFunc("/markets/{market}", h.Dashboard.Market).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "signalscan",
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
