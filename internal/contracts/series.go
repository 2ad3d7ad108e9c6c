package contracts

import "time"

// Bar is a single daily observation
type Bar struct {
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
	HasVolume bool      `json:"has_volume"`
}

// PriceSeries is the daily history of one ticker
// ⭐ SSOT: 데이터 제공자 → 분류기 입력 형식
// Bars는 날짜 오름차순 (마지막 원소가 최신 봉)
type PriceSeries struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns closing prices in chronological order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns traded volumes in chronological order
func (s PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		volumes[i] = b.Volume
	}
	return volumes
}

// HasVolume reports whether the latest n bars carry a volume figure
// n <= 0 또는 n > Len() 이면 전체 봉 검사
func (s PriceSeries) HasVolume(n int) bool {
	if len(s.Bars) == 0 {
		return false
	}
	tail := s.Bars
	if n > 0 && n < len(tail) {
		tail = tail[len(tail)-n:]
	}
	for _, b := range tail {
		if !b.HasVolume {
			return false
		}
	}
	return true
}

// Last returns the most recent bar
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// DedupeDays keeps the last bar of each date; bars must be sorted by date
// 같은 날짜가 여러 번 오면 나중 값 우선 (장중 봉, CSV 중복 행)
func DedupeDays(bars []Bar) []Bar {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
