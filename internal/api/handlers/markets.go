package handlers

import (
	"net/http"

	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/logger"
)

// MarketHandler handles market listing endpoints
type MarketHandler struct {
	registry *universe.Registry
	scanner  Scanner
	logger   *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(registry *universe.Registry, s Scanner, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		registry: registry,
		scanner:  s,
		logger:   log,
	}
}

// MarketInfo is one entry of GET /api/markets
type MarketInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Source       string `json:"source"`
	Tickers      int    `json:"tickers"`
	TotalPages   int    `json:"total_pages"`
	FromFallback bool   `json:"from_fallback"`
}

// GetMarkets lists markets with ticker counts and page counts
// GET /api/markets
func (h *MarketHandler) GetMarkets(w http.ResponseWriter, r *http.Request) {
	markets := h.registry.All()
	out := make([]MarketInfo, 0, len(markets))

	for _, m := range markets {
		list, page, err := h.scanner.Select(r.Context(), m.ID, 1)
		if err != nil {
			h.logger.WithError(err).WithField("market", m.ID).Warn("Failed to resolve market")
			respondError(w, statusFor(err), err.Error())
			return
		}
		out = append(out, MarketInfo{
			ID:           m.ID,
			Name:         m.Name,
			Source:       string(m.Source),
			Tickers:      len(list.Tickers),
			TotalPages:   page.TotalPages,
			FromFallback: list.FromFallback,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"markets":   out,
		"page_size": h.scanner.PageSize(),
		"profiles":  h.scanner.Profiles(),
		"default":   h.scanner.DefaultProfile(),
	})
}
