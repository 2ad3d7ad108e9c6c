package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/signalscan/internal/contracts"
)

// Trend texts
const (
	TrendOverheated       = "disparity too wide"
	TrendBreakout         = "just broke above the 20-day average"
	TrendNeedsConfirm     = "just broke above the 20-day average (needs confirmation)"
	TrendConfirmed        = "breakout confirmed by volume + momentum"
	TrendBelowShort       = "fell below 5-day average"
	TrendNearAverage      = "near the moving average, low-risk entry"
	TrendUptrend          = "uptrend intact"
	TrendBrokeBelow       = "broke below the 20-day average"
	TrendNoClearDirection = "no clear direction"
)

// Classifier maps a price series onto a signal status
// ⭐ SSOT: 상태 판정은 여기서만
// 순수 함수: I/O, 로깅 없음
type Classifier struct {
	rules         Rules
	chartTemplate string
}

// NewClassifier creates a classifier; chartTemplate may contain {ticker}
func NewClassifier(rules Rules, chartTemplate string) (*Classifier, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules %q: %w", rules.Name, err)
	}
	return &Classifier{
		rules:         rules,
		chartTemplate: chartTemplate,
	}, nil
}

// Rules returns the active rule set
func (c *Classifier) Rules() Rules {
	return c.rules
}

// ChartURL renders the chart link for a ticker ("" without a template)
func (c *Classifier) ChartURL(ticker string) string {
	if c.chartTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(c.chartTemplate, "{ticker}", ticker)
}

// snapshot holds the full-precision inputs of the decision list
type snapshot struct {
	last, prev         float64
	ma20Last, ma20Prev float64
	ma5Last            float64
	disparity          float64

	hasHist            bool
	histLast, histPrev float64

	hasVolume   bool
	volumeRatio float64
}

// Classify classifies one series
func (c *Classifier) Classify(series contracts.PriceSeries) (*contracts.ClassificationResult, error) {
	n := series.Len()
	if n == 0 {
		return nil, fmt.Errorf("empty series: %w", contracts.ErrInsufficientData)
	}
	if n < c.rules.MinBars {
		return nil, fmt.Errorf("need %d bars, got %d: %w", c.rules.MinBars, n, contracts.ErrInsufficientData)
	}
	// 거래량 비율은 최근 VolumeLookback+1 봉만 사용
	if c.rules.VolumeConfirm && !series.HasVolume(c.rules.VolumeLookback+1) {
		return nil, fmt.Errorf("volume missing in last %d bars: %w", c.rules.VolumeLookback+1, contracts.ErrInsufficientData)
	}

	closes := series.Closes()
	for i, v := range closes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite close at bar %d: %w", i, contracts.ErrComputation)
		}
	}

	s, err := c.measure(closes, series.Volumes())
	if err != nil {
		return nil, err
	}

	status, trend := c.decide(s)

	result := &contracts.ClassificationResult{
		Ticker:       series.Ticker,
		ChangePct:    (s.last - s.prev) / s.prev * 100,
		LastClose:    s.last,
		PrevClose:    s.prev,
		MA20:         s.ma20Last,
		MA5:          s.ma5Last,
		DisparityPct: s.disparity,
		Status:       status,
		Trend:        trend,
		ChartURL:     c.ChartURL(series.Ticker),
	}
	if last, ok := series.Last(); ok {
		result.AsOf = last.Date
	}
	if s.hasHist {
		h := s.histLast
		result.MACDHist = &h
	}
	if s.hasVolume {
		v := s.volumeRatio
		result.VolumeRatio = &v
	}
	if c.rules.MomentumTag {
		result.Momentum = momentum(s)
		if result.Momentum != contracts.MomentumNone {
			result.Trend = result.Trend + " · " + string(result.Momentum)
		}
	}

	if !finite(result.ChangePct, result.MA20, result.MA5, result.DisparityPct) {
		return nil, fmt.Errorf("non-finite indicator: %w", contracts.ErrComputation)
	}
	return result, nil
}

func (c *Classifier) measure(closes, volumes []float64) (snapshot, error) {
	var s snapshot
	n := len(closes)
	s.last = closes[n-1]
	s.prev = closes[n-2]
	if s.prev <= 0 {
		return s, fmt.Errorf("previous close %v: %w", s.prev, contracts.ErrComputation)
	}

	long := SMA(closes, c.rules.LongWindow)
	short := SMA(closes, c.rules.ShortWindow)
	if len(long) < 2 || len(short) < 1 {
		return s, fmt.Errorf("moving average undefined: %w", contracts.ErrInsufficientData)
	}
	s.ma20Last = long[len(long)-1]
	s.ma20Prev = long[len(long)-2]
	s.ma5Last = short[len(short)-1]
	if s.ma20Last == 0 {
		return s, fmt.Errorf("20-day average is zero: %w", contracts.ErrComputation)
	}
	s.disparity = (s.last/s.ma20Last - 1) * 100

	if c.rules.NeedsMACD() {
		m := c.rules.MACD
		hist := MACDHistogram(closes, m.Fast, m.Slow, m.Signal)
		if len(hist) >= 2 {
			s.hasHist = true
			s.histLast = hist[len(hist)-1]
			s.histPrev = hist[len(hist)-2]
			if !finite(s.histLast, s.histPrev) {
				return s, fmt.Errorf("non-finite MACD histogram: %w", contracts.ErrComputation)
			}
		}
	}

	if c.rules.VolumeConfirm {
		ratio, ok := VolumeRatio(volumes, c.rules.VolumeLookback)
		if !ok {
			return s, fmt.Errorf("need %d volume bars: %w", c.rules.VolumeLookback+1, contracts.ErrInsufficientData)
		}
		if !finite(ratio) {
			return s, fmt.Errorf("non-finite volume ratio: %w", contracts.ErrComputation)
		}
		s.hasVolume = true
		s.volumeRatio = ratio
	}
	return s, nil
}

// decide runs the ordered decision list; first match wins
func (c *Classifier) decide(s snapshot) (contracts.Status, string) {
	r := c.rules

	if s.disparity >= r.OverheatPct {
		return contracts.StatusOverheated, TrendOverheated
	}

	// 골든 크로스 (엄격 비교: 전일 종가 == 전일 MA20 은 교차 아님)
	if s.prev < s.ma20Prev && s.last > s.ma20Last {
		if !r.VolumeConfirm {
			return contracts.StatusBuyInterest, TrendBreakout
		}
		if s.volumeRatio >= r.VolumeRatioMin && s.hasHist && s.histLast > s.histPrev {
			return contracts.StatusStrongBuyConfirmed, TrendConfirmed
		}
		return contracts.StatusBuyInterest, TrendNeedsConfirm
	}

	if s.last > s.ma20Last {
		if s.last < s.ma5Last {
			return contracts.StatusTrendBreak, TrendBelowShort
		}
		if r.HoldBand && s.disparity >= 0 && s.disparity <= r.HoldBandPct {
			return contracts.StatusStrongBuy, TrendNearAverage
		}
		return contracts.StatusHold, TrendUptrend
	}

	if r.SellWatch && s.prev > s.ma20Prev && s.last < s.ma20Last {
		return contracts.StatusSellWatch, TrendBrokeBelow
	}

	return contracts.StatusNeutral, TrendNoClearDirection
}

func momentum(s snapshot) contracts.Momentum {
	switch {
	case !s.hasHist:
		return contracts.MomentumNone
	case s.histLast > s.histPrev:
		return contracts.MomentumAccelerating
	case s.histLast < s.histPrev:
		return contracts.MomentumDecelerating
	default:
		return contracts.MomentumNone
	}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
