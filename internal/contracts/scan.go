package contracts

import "time"

// Outcome is the batch-level result of a scan
type Outcome string

const (
	OutcomeOK             Outcome = "OK"
	OutcomeNoResults      Outcome = "NO_RESULTS"      // 종목은 있었지만 전부 실패
	OutcomeEmptySelection Outcome = "EMPTY_SELECTION" // 분석 대상 종목 없음
)

// Skip records why a ticker was left out of the results
type Skip struct {
	Ticker  string `json:"ticker"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ScanReport is the result collection of one market page
// ⭐ SSOT: 스캐너 → 결과 캐시/표시 계층 전달 형식
type ScanReport struct {
	Market       string                 `json:"market"`
	MarketName   string                 `json:"market_name"`
	Page         int                    `json:"page"`
	TotalPages   int                    `json:"total_pages"`
	PageSize     int                    `json:"page_size"`
	Profile      string                 `json:"profile"`
	Tickers      []string               `json:"tickers"`
	FromFallback bool                   `json:"from_fallback"`
	Results      []ClassificationResult `json:"results"`
	Skipped      []Skip                 `json:"skipped"`
	Outcome      Outcome                `json:"outcome"`
	StartedAt    time.Time              `json:"started_at"`
	Duration     time.Duration          `json:"duration"`
}

// Attempted returns how many tickers were processed
func (r *ScanReport) Attempted() int {
	return len(r.Results) + len(r.Skipped)
}

// CountByStatus tallies results per status
func (r *ScanReport) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// SkipsByReason tallies skipped tickers per reason code
func (r *ScanReport) SkipsByReason() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// DecideOutcome derives the batch outcome from attempted/succeeded counts
func DecideOutcome(attempted, succeeded int) Outcome {
	switch {
	case attempted == 0:
		return OutcomeEmptySelection
	case succeeded == 0:
		return OutcomeNoResults
	default:
		return OutcomeOK
	}
}
