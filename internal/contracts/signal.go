package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the discrete trading state of a ticker (closed enumeration)
type Status string

const (
	StatusOverheated         Status = "OVERHEATED"           // 과열 주의
	StatusTrendBreak         Status = "TREND_BREAK"          // 추세 이탈
	StatusStrongBuy          Status = "STRONG_BUY"           // 강력 매수 (눌림목)
	StatusHold               Status = "HOLD"                 // 홀드
	StatusBuyInterest        Status = "BUY_INTEREST"         // 매수 관심
	StatusStrongBuyConfirmed Status = "STRONG_BUY_CONFIRMED" // 돌파 확정
	StatusSellWatch          Status = "SELL_WATCH"           // 매도 주의
	StatusNeutral            Status = "NEUTRAL"              // 관망
)

// AllStatuses lists every status in display order
var AllStatuses = []Status{
	StatusStrongBuyConfirmed,
	StatusStrongBuy,
	StatusBuyInterest,
	StatusHold,
	StatusNeutral,
	StatusTrendBreak,
	StatusSellWatch,
	StatusOverheated,
}

var statusLabels = map[Status]string{
	StatusOverheated:         "과열 주의",
	StatusTrendBreak:         "추세 이탈",
	StatusStrongBuy:          "강력 매수",
	StatusHold:               "홀드",
	StatusBuyInterest:        "매수 관심",
	StatusStrongBuyConfirmed: "돌파 확정",
	StatusSellWatch:          "매도 주의",
	StatusNeutral:            "관망",
}

// Valid reports whether s is a member of the enumeration
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the dashboard label
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsBuy reports whether the status is one of the buy-side states
func (s Status) IsBuy() bool {
	return s == StatusBuyInterest || s == StatusStrongBuy || s == StatusStrongBuyConfirmed
}

// Momentum is the MACD histogram direction tag
type Momentum string

const (
	MomentumNone         Momentum = ""
	MomentumAccelerating Momentum = "accelerating"
	MomentumDecelerating Momentum = "decelerating"
)

// ClassificationResult is the classifier output for one ticker
// ⭐ SSOT: 분류기 → 표시 계층 전달 형식
// 생성 후 변경하지 않음. 모든 수치는 반올림 전 원본 정밀도.
type ClassificationResult struct {
	Ticker       string    `json:"ticker"`
	AsOf         time.Time `json:"as_of"`
	ChangePct    float64   `json:"change_pct"`
	LastClose    float64   `json:"last_close"`
	PrevClose    float64   `json:"prev_close"`
	MA20         float64   `json:"ma20"`
	MA5          float64   `json:"ma5"`
	DisparityPct float64   `json:"disparity_pct"`
	Status       Status    `json:"status"`
	Trend        string    `json:"trend"`

	// Optional (enhanced rules only)
	MACDHist    *float64 `json:"macd_hist,omitempty"`
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`
	Momentum    Momentum `json:"momentum,omitempty"`

	ChartURL string `json:"chart_url,omitempty"`
}

// DisplayRow is the 2-decimal view of a result
type DisplayRow struct {
	Ticker       string           `json:"ticker"`
	ChangePct    decimal.Decimal  `json:"change_pct"`
	LastClose    decimal.Decimal  `json:"last_close"`
	MA20         decimal.Decimal  `json:"ma20"`
	DisparityPct decimal.Decimal  `json:"disparity_pct"`
	Disparity    string           `json:"disparity"` // "12.34%"
	Status       Status           `json:"status"`
	StatusLabel  string           `json:"status_label"`
	Trend        string           `json:"trend"`
	VolumeRatio  *decimal.Decimal `json:"volume_ratio,omitempty"`
	ChartURL     string           `json:"chart_url,omitempty"`
}

// Rounded returns the display view; comparisons never use it
func (r ClassificationResult) Rounded() DisplayRow {
	disparity := round2(r.DisparityPct)

	row := DisplayRow{
		Ticker:       r.Ticker,
		ChangePct:    round2(r.ChangePct),
		LastClose:    round2(r.LastClose),
		MA20:         round2(r.MA20),
		DisparityPct: disparity,
		Disparity:    disparity.StringFixed(2) + "%",
		Status:       r.Status,
		StatusLabel:  r.Status.Label(),
		Trend:        r.Trend,
		ChartURL:     r.ChartURL,
	}
	if r.VolumeRatio != nil {
		v := round2(*r.VolumeRatio)
		row.VolumeRatio = &v
	}
	return row
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
