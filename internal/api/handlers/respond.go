package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/internal/universe"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps selection/scan errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, universe.ErrUnknownMarket):
		return http.StatusNotFound
	case errors.Is(err, universe.ErrPageOutOfRange), errors.Is(err, scanner.ErrUnknownProfile):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
