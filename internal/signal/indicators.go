package signal

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// SMA returns trailing simple moving averages aligned to the tail.
// out[len(out)-1] is the mean of the last period values; len(out) = len(values)-period+1.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	return helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
}

// EMA returns the exponential moving average of values.
// 첫 값으로 시드, alpha = 2/(span+1), warm-up 보정 없음 (len(out) == len(values))
func EMA(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// MACDHistogram returns MACD - signal for every bar
// MACD = EMA(fast) - EMA(slow), signal = EMA(MACD, signalSpan)
func MACDHistogram(closes []float64, fast, slow, signalSpan int) []float64 {
	if len(closes) == 0 {
		return nil
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	if emaFast == nil || emaSlow == nil {
		return nil
	}

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signalLine := EMA(macd, signalSpan)
	if signalLine == nil {
		return nil
	}

	hist := make([]float64, len(closes))
	for i := range macd {
		hist[i] = macd[i] - signalLine[i]
	}
	return hist
}

// VolumeRatio returns last volume / mean of the preceding lookback volumes.
// ok is false when there are not enough bars. A zero mean yields 0.
func VolumeRatio(volumes []float64, lookback int) (float64, bool) {
	n := len(volumes)
	if lookback <= 0 || n < lookback+1 {
		return 0, false
	}

	var sum float64
	for _, v := range volumes[n-1-lookback : n-1] {
		sum += v
	}
	mean := sum / float64(lookback)
	if mean <= 0 {
		return 0, true
	}
	return volumes[n-1] / mean, true
}
