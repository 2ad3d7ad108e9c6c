package scanconfig

import (
	"github.com/wonny/signalscan/internal/signal"
	"github.com/wonny/signalscan/internal/universe"
)

// Config는 스캔 실행 설정 (선택 YAML 파일)
// 비어 있는 값은 환경 변수 설정(pkg/config)을 따른다
type Config struct {
	Profile  string                 `yaml:"profile" json:"profile"`
	PageSize int                    `yaml:"page_size" json:"page_size"`
	ChartURL string                 `yaml:"chart_url" json:"chart_url"` // {ticker} 치환
	Profiles map[string]ProfileSpec `yaml:"profiles" json:"profiles"`
	Markets  []universe.Market      `yaml:"markets" json:"markets"`
	Refresh  Refresh                `yaml:"refresh" json:"refresh"`
}

// ProfileSpec is a custom rule set layered on a built-in base
// 0 인 수치 필드는 base 값을 사용, bool 필드는 적힌 그대로
type ProfileSpec struct {
	Base         string `yaml:"base" json:"base"` // classic | enhanced (기본 classic)
	signal.Rules `yaml:",inline"`
}

// Refresh 주기적 재스캔 대상
type Refresh struct {
	Schedule string        `yaml:"schedule" json:"schedule"` // cron (초 포함)
	Pages    []RefreshPage `yaml:"pages" json:"pages"`
}

// RefreshPage is one market page refreshed on schedule
type RefreshPage struct {
	Market string `yaml:"market" json:"market"`
	Page   int    `yaml:"page" json:"page"`
}

// Resolve builds the rule set of a custom profile
func (p ProfileSpec) Resolve(name string) (signal.Rules, error) {
	baseName := p.Base
	if baseName == "" {
		baseName = signal.ProfileClassic
	}
	base, err := signal.Profile(baseName)
	if err != nil {
		return signal.Rules{}, err
	}

	r := p.Rules
	r.Name = name
	fillInt(&r.MinBars, base.MinBars)
	fillInt(&r.LookbackDays, base.LookbackDays)
	fillInt(&r.ShortWindow, base.ShortWindow)
	fillInt(&r.LongWindow, base.LongWindow)
	fillFloat(&r.OverheatPct, base.OverheatPct)
	if r.HoldBand {
		fillFloat(&r.HoldBandPct, base.HoldBandPct)
	}
	if r.VolumeConfirm {
		fillFloat(&r.VolumeRatioMin, volumeDefaults.VolumeRatioMin)
		fillInt(&r.VolumeLookback, volumeDefaults.VolumeLookback)
	}
	fillInt(&r.MACD.Fast, base.MACD.Fast)
	fillInt(&r.MACD.Slow, base.MACD.Slow)
	fillInt(&r.MACD.Signal, base.MACD.Signal)
	return r, nil
}

// classic 기반 프로필에도 거래량 확인 기본값 제공
var volumeDefaults = signal.Enhanced()

// RuleSets returns built-in profiles plus resolved custom ones
func (c *Config) RuleSets() (map[string]signal.Rules, error) {
	out := make(map[string]signal.Rules)
	for _, name := range signal.ProfileNames() {
		r, err := signal.Profile(name)
		if err != nil {
			return nil, err
		}
		out[name] = r
	}
	for name, spec := range c.Profiles {
		r, err := spec.Resolve(name)
		if err != nil {
			return nil, err
		}
		out[name] = r
	}
	return out, nil
}

// MarketList overlays configured markets on the built-in set
func (c *Config) MarketList() []universe.Market {
	return universe.MergeMarkets(universe.DefaultMarkets(), c.Markets)
}

func fillInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func fillFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
