package handlers

import (
	"strings"
	"time"

	"github.com/wonny/signalscan/internal/contracts"
)

// ResultRow is a result rounded to 2 decimals for responses
type ResultRow struct {
	Ticker       string   `json:"ticker"`
	ChangePct    float64  `json:"change_pct"`
	LastClose    float64  `json:"last_close"`
	MA20         float64  `json:"ma20"`
	DisparityPct float64  `json:"disparity_pct"`
	Disparity    string   `json:"disparity"`
	Status       string   `json:"status"`
	StatusLabel  string   `json:"status_label"`
	StatusClass  string   `json:"-"`
	Trend        string   `json:"trend"`
	VolumeRatio  *float64 `json:"volume_ratio,omitempty"`
	ChartURL     string   `json:"chart_url,omitempty"`
}

// ReportResponse is the API view of a scan report
type ReportResponse struct {
	Market       string           `json:"market"`
	MarketName   string           `json:"market_name"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	PageSize     int              `json:"page_size"`
	Profile      string           `json:"profile"`
	Tickers      []string         `json:"tickers"`
	FromFallback bool             `json:"from_fallback"`
	Outcome      string           `json:"outcome"`
	Results      []ResultRow      `json:"results"`
	Skipped      []contracts.Skip `json:"skipped"`
	StartedAt    time.Time        `json:"started_at"`
	DurationMS   int64            `json:"duration_ms"`
}

// NewReportResponse converts a report into its rounded view
func NewReportResponse(r *contracts.ScanReport) ReportResponse {
	rows := make([]ResultRow, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, newResultRow(res))
	}

	skipped := r.Skipped
	if skipped == nil {
		skipped = []contracts.Skip{}
	}

	return ReportResponse{
		Market:       r.Market,
		MarketName:   r.MarketName,
		Page:         r.Page,
		TotalPages:   r.TotalPages,
		PageSize:     r.PageSize,
		Profile:      r.Profile,
		Tickers:      r.Tickers,
		FromFallback: r.FromFallback,
		Outcome:      string(r.Outcome),
		Results:      rows,
		Skipped:      skipped,
		StartedAt:    r.StartedAt,
		DurationMS:   r.Duration.Milliseconds(),
	}
}

func newResultRow(res contracts.ClassificationResult) ResultRow {
	d := res.Rounded()
	row := ResultRow{
		Ticker:       d.Ticker,
		ChangePct:    d.ChangePct.InexactFloat64(),
		LastClose:    d.LastClose.InexactFloat64(),
		MA20:         d.MA20.InexactFloat64(),
		DisparityPct: d.DisparityPct.InexactFloat64(),
		Disparity:    d.Disparity,
		Status:       string(d.Status),
		StatusLabel:  d.StatusLabel,
		StatusClass:  statusClass(d.Status),
		Trend:        d.Trend,
		ChartURL:     d.ChartURL,
	}
	if d.VolumeRatio != nil {
		v := d.VolumeRatio.InexactFloat64()
		row.VolumeRatio = &v
	}
	return row
}

// statusClass returns the CSS class of a status ("status-strong-buy")
func statusClass(s contracts.Status) string {
	return "status-" + strings.ToLower(strings.ReplaceAll(string(s), "_", "-"))
}
