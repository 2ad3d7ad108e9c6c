package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/resultcache"
	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/logger"
)

// Scanner is the scan surface used by the handlers
type Scanner interface {
	Scan(ctx context.Context, req scanner.Request) (*contracts.ScanReport, error)
	Select(ctx context.Context, market string, page int) (universe.List, universe.Page, error)
	Profiles() []string
	DefaultProfile() string
	PageSize() int
}

// ScanHandler handles scan API endpoints
// ⭐ SSOT: 스캔 실행/결과 조회 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	scanner Scanner
	store   resultcache.Store
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(s Scanner, store resultcache.Store, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: s,
		store:   store,
		logger:  log,
	}
}

// ScanRequest is the POST /api/scan body
type ScanRequest struct {
	Market  string `json:"market"`
	Page    int    `json:"page"`
	Profile string `json:"profile"`
}

// Scan runs a scan synchronously
// POST /api/scan {"market": "dax", "page": 1}
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Market == "" {
		respondError(w, http.StatusBadRequest, "market is required")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}

	report, err := h.scanner.Scan(r.Context(), scanner.Request{
		Market:  req.Market,
		Page:    req.Page,
		Profile: req.Profile,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"market": req.Market,
			"page":   req.Page,
		}).Warn("Scan request failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, NewReportResponse(report))
}

// resultKey reads {market}/{page}?profile= ; profile defaults to the scanner default
func (h *ScanHandler) resultKey(r *http.Request) (resultcache.Key, bool) {
	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		return resultcache.Key{}, false
	}
	profile := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("profile")))
	if profile == "" {
		profile = h.scanner.DefaultProfile()
	}
	return resultcache.Key{Market: vars["market"], Page: page, Profile: profile}, true
}

// GetResult returns the cached report of a market page
// GET /api/results/{market}/{page}?profile=classic
func (h *ScanHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	key, ok := h.resultKey(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	report, found, err := h.store.Get(r.Context(), key)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read result cache")
		respondError(w, http.StatusInternalServerError, "Failed to read cached result")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "no cached result for this page")
		return
	}

	respondJSON(w, http.StatusOK, NewReportResponse(report))
}

// DeleteResult drops a cached report
// DELETE /api/results/{market}/{page}?profile=classic
func (h *ScanHandler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	key, ok := h.resultKey(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	removed, err := h.store.Delete(r.Context(), key)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete cached result")
		respondError(w, http.StatusInternalServerError, "Failed to delete cached result")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "no cached result for this page")
		return
	}

	h.logger.WithField("key", key.String()).Info("Cached result deleted")
	w.WriteHeader(http.StatusNoContent)
}

// ListResults lists cached market pages
// GET /api/results
func (h *ScanHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.Keys(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list result cache")
		respondError(w, http.StatusInternalServerError, "Failed to list cached results")
		return
	}
	if keys == nil {
		keys = []resultcache.Key{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": keys,
		"count":   len(keys),
	})
}
