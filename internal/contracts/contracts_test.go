package contracts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriceSeries(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	s := PriceSeries{
		Ticker: "SAP.DE",
		Bars: []Bar{
			{Date: day, Close: 100, Volume: 10, HasVolume: true},
			{Date: day.AddDate(0, 0, 1), Close: 101, Volume: 12, HasVolume: true},
		},
	}

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{100, 101}, s.Closes())
	assert.Equal(t, []float64{10, 12}, s.Volumes())
	assert.True(t, s.HasVolume(0))

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, 101.0, last.Close)

	s.Bars[0].HasVolume = false
	assert.False(t, s.HasVolume(0))
	assert.False(t, s.HasVolume(5))
	assert.True(t, s.HasVolume(1), "only the latest bar is checked")

	_, ok = PriceSeries{}.Last()
	assert.False(t, ok)
	assert.False(t, PriceSeries{}.HasVolume(1))
}

func TestDedupeDays(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Date: day, Close: 100},
		{Date: day.AddDate(0, 0, 1), Close: 101},
		{Date: day.AddDate(0, 0, 1), Close: 102},
		{Date: day.AddDate(0, 0, 2), Close: 103},
		{Date: day.AddDate(0, 0, 2), Close: 104},
	}

	got := DedupeDays(bars)
	assert.Equal(t, []float64{100, 102, 104}, PriceSeries{Bars: got}.Closes())
	assert.Empty(t, DedupeDays(nil))
}

func TestStatusLabels(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), "status %s should be valid", s)
		assert.NotEqual(t, string(s), s.Label(), "status %s should have a label", s)
	}

	assert.Equal(t, "과열 주의", StatusOverheated.Label())
	assert.Equal(t, "관망", StatusNeutral.Label())
	assert.False(t, Status("MOON").Valid())
	assert.Equal(t, "MOON", Status("MOON").Label())

	assert.True(t, StatusStrongBuyConfirmed.IsBuy())
	assert.False(t, StatusHold.IsBuy())
}

func TestRounded(t *testing.T) {
	ratio := 1.23456
	r := ClassificationResult{
		Ticker:       "AAPL",
		ChangePct:    1.23456,
		LastClose:    187.005,
		MA20:         180.1234,
		DisparityPct: 11.999,
		Status:       StatusHold,
		Trend:        "uptrend intact",
		VolumeRatio:  &ratio,
	}

	row := r.Rounded()
	assert.Equal(t, "1.23", row.ChangePct.StringFixed(2))
	assert.Equal(t, "180.12", row.MA20.StringFixed(2))
	assert.Equal(t, "12.00%", row.Disparity)
	assert.Equal(t, "홀드", row.StatusLabel)
	assert.Equal(t, "1.23", row.VolumeRatio.StringFixed(2))

	// The rounded view never feeds back into the full-precision record
	assert.Equal(t, 11.999, r.DisparityPct)
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInsufficientData, ReasonInsufficientData},
		{fmt.Errorf("yahoo: %w", ErrNoData), ReasonNoData},
		{&TickerError{Ticker: "AAPL", Err: fmt.Errorf("status 503: %w", ErrTransport)}, ReasonTransport},
		{ErrComputation, ReasonComputation},
		{context.Canceled, ReasonCanceled},
		{errors.New("boom"), ReasonUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err))
	}
}

func TestTickerError(t *testing.T) {
	err := &TickerError{Ticker: "BMW.DE", Err: ErrNoData}
	assert.Equal(t, "BMW.DE: no data", err.Error())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDecideOutcome(t *testing.T) {
	assert.Equal(t, OutcomeEmptySelection, DecideOutcome(0, 0))
	assert.Equal(t, OutcomeNoResults, DecideOutcome(5, 0))
	assert.Equal(t, OutcomeOK, DecideOutcome(5, 1))
}

func TestScanReportCounts(t *testing.T) {
	r := &ScanReport{
		Results: []ClassificationResult{
			{Ticker: "A", Status: StatusHold},
			{Ticker: "B", Status: StatusHold},
			{Ticker: "C", Status: StatusNeutral},
		},
		Skipped: []Skip{
			{Ticker: "D", Reason: ReasonNoData},
		},
	}

	assert.Equal(t, 4, r.Attempted())
	assert.Equal(t, 2, r.CountByStatus()[StatusHold])
	assert.Equal(t, 1, r.SkipsByReason()[ReasonNoData])
}
