package signal

import (
	"fmt"
	"sort"
	"strings"
)

// Profile names
const (
	ProfileClassic  = "classic"
	ProfileEnhanced = "enhanced"
)

// MACDParams holds the EMA spans of the MACD histogram
type MACDParams struct {
	Fast   int `yaml:"fast" json:"fast"`
	Slow   int `yaml:"slow" json:"slow"`
	Signal int `yaml:"signal" json:"signal"`
}

// Rules parameterizes the classifier
// ⭐ SSOT: 판정 임계값은 여기서만 정의
type Rules struct {
	Name string `yaml:"name" json:"name"`

	MinBars      int `yaml:"min_bars" json:"min_bars"`
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"` // 달력 기준 조회 기간
	ShortWindow  int `yaml:"ma_short" json:"ma_short"`
	LongWindow   int `yaml:"ma_long" json:"ma_long"`

	OverheatPct float64 `yaml:"overheat_pct" json:"overheat_pct"`

	HoldBand    bool    `yaml:"hold_band" json:"hold_band"`
	HoldBandPct float64 `yaml:"hold_band_pct" json:"hold_band_pct"`

	SellWatch bool `yaml:"sell_watch" json:"sell_watch"`

	VolumeConfirm  bool    `yaml:"volume_confirm" json:"volume_confirm"`
	VolumeRatioMin float64 `yaml:"volume_ratio_min" json:"volume_ratio_min"`
	VolumeLookback int     `yaml:"volume_lookback" json:"volume_lookback"`

	MomentumTag bool       `yaml:"momentum_tag" json:"momentum_tag"`
	MACD        MACDParams `yaml:"macd" json:"macd"`
}

// Classic returns the five-rule profile of the first scanner release
func Classic() Rules {
	return Rules{
		Name:         ProfileClassic,
		MinBars:      30,
		LookbackDays: 60,
		ShortWindow:  5,
		LongWindow:   20,
		OverheatPct:  12,
		MACD:         MACDParams{Fast: 12, Slow: 26, Signal: 9},
	}
}

// Enhanced returns the volume/momentum-aware profile
func Enhanced() Rules {
	return Rules{
		Name:           ProfileEnhanced,
		MinBars:        40,
		LookbackDays:   100,
		ShortWindow:    5,
		LongWindow:     20,
		OverheatPct:    15,
		HoldBand:       true,
		HoldBandPct:    3,
		SellWatch:      true,
		VolumeConfirm:  true,
		VolumeRatioMin: 1.5,
		VolumeLookback: 5,
		MomentumTag:    true,
		MACD:           MACDParams{Fast: 12, Slow: 26, Signal: 9},
	}
}

var builtinProfiles = map[string]func() Rules{
	ProfileClassic:  Classic,
	ProfileEnhanced: Enhanced,
}

// Profile returns a built-in profile by name
func Profile(name string) (Rules, error) {
	build, ok := builtinProfiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Rules{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return build(), nil
}

// ProfileNames lists built-in profile names
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NeedsMACD reports whether the histogram must be computed
func (r Rules) NeedsMACD() bool {
	return r.VolumeConfirm || r.MomentumTag
}

// Validate rejects nonsensical rule sets
func (r Rules) Validate() error {
	if r.ShortWindow <= 0 || r.LongWindow <= 0 {
		return fmt.Errorf("moving average windows must be positive (short=%d, long=%d)", r.ShortWindow, r.LongWindow)
	}
	if r.ShortWindow >= r.LongWindow {
		return fmt.Errorf("ma_short (%d) must be less than ma_long (%d)", r.ShortWindow, r.LongWindow)
	}
	// 교차 판정에 직전 장기 이동평균이 필요
	if r.MinBars < r.LongWindow+1 {
		return fmt.Errorf("min_bars (%d) must be at least ma_long+1 (%d)", r.MinBars, r.LongWindow+1)
	}
	if r.LookbackDays < r.MinBars {
		return fmt.Errorf("lookback_days (%d) must cover min_bars (%d)", r.LookbackDays, r.MinBars)
	}
	if r.OverheatPct <= 0 {
		return fmt.Errorf("overheat_pct must be positive, got %v", r.OverheatPct)
	}
	if r.HoldBand && (r.HoldBandPct < 0 || r.HoldBandPct >= r.OverheatPct) {
		return fmt.Errorf("hold_band_pct must be in [0, overheat_pct), got %v", r.HoldBandPct)
	}
	if r.VolumeConfirm {
		if r.VolumeRatioMin <= 0 {
			return fmt.Errorf("volume_ratio_min must be positive, got %v", r.VolumeRatioMin)
		}
		if r.VolumeLookback <= 0 {
			return fmt.Errorf("volume_lookback must be positive, got %d", r.VolumeLookback)
		}
		if r.MinBars < r.VolumeLookback+1 {
			return fmt.Errorf("min_bars (%d) must be at least volume_lookback+1 (%d)", r.MinBars, r.VolumeLookback+1)
		}
	}
	if r.NeedsMACD() {
		m := r.MACD
		if m.Fast <= 0 || m.Slow <= 0 || m.Signal <= 0 {
			return fmt.Errorf("macd spans must be positive (%d/%d/%d)", m.Fast, m.Slow, m.Signal)
		}
		if m.Fast >= m.Slow {
			return fmt.Errorf("macd fast (%d) must be less than slow (%d)", m.Fast, m.Slow)
		}
	}
	return nil
}
