package universe

import (
	"errors"
	"fmt"
	"strings"
)

// Source tells where a market's ticker list comes from
type Source string

const (
	SourceStatic    Source = "static"          // 내장 목록
	SourceSP500Wiki Source = "wikipedia_sp500" // 원격 목록 + 내장 대체 목록
)

// Market IDs
const (
	MarketDAX   = "dax"
	MarketSP500 = "sp500"
)

// ErrUnknownMarket is returned for an unregistered market ID
var ErrUnknownMarket = errors.New("unknown market")

// Market describes one selectable market
// 원격 시장의 Tickers 는 원격 조회 실패 시 사용하는 대체 목록
type Market struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Source  Source   `yaml:"source" json:"source"`
	Tickers []string `yaml:"tickers" json:"tickers"`
}

// Remote reports whether the list is fetched at runtime
func (m Market) Remote() bool {
	return m.Source == SourceSP500Wiki
}

var daxTickers = []string{
	"ADS.DE", "AIR.DE", "ALV.DE", "BAS.DE", "BAYN.DE", "BEI.DE", "BMW.DE", "CON.DE",
	"1COV.DE", "DTG.DE", "DBK.DE", "DB1.DE", "LHA.DE", "DPW.DE", "DTE.DE", "EOAN.DE",
	"FRE.DE", "FME.DE", "HEI.DE", "HEN3.DE", "IFX.DE", "MBG.DE", "MRK.DE", "MTX.DE",
	"MUV2.DE", "PUM.DE", "RWE.DE", "SAP.DE", "SIE.DE", "SY1.DE", "VOW3.DE", "VNA.DE",
}

var sp500Fallback = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "META", "BRK-B", "UNH", "JNJ",
}

// DefaultMarkets returns the built-in market set
func DefaultMarkets() []Market {
	return []Market{
		{ID: MarketDAX, Name: "독일 (DAX)", Source: SourceStatic, Tickers: append([]string(nil), daxTickers...)},
		{ID: MarketSP500, Name: "미국 (S&P 500)", Source: SourceSP500Wiki, Tickers: append([]string(nil), sp500Fallback...)},
	}
}

// Registry is the ordered set of selectable markets
type Registry struct {
	markets []Market
	byID    map[string]int
}

// NewRegistry validates and indexes markets
func NewRegistry(markets []Market) (*Registry, error) {
	r := &Registry{byID: make(map[string]int, len(markets))}
	for _, m := range markets {
		m.ID = strings.ToLower(strings.TrimSpace(m.ID))
		if m.ID == "" {
			return nil, errors.New("market id is required")
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate market id %q", m.ID)
		}
		if m.Name == "" {
			m.Name = m.ID
		}
		switch m.Source {
		case "":
			m.Source = SourceStatic
		case SourceStatic, SourceSP500Wiki:
		default:
			return nil, fmt.Errorf("market %q: unknown source %q", m.ID, m.Source)
		}
		if m.Source == SourceStatic && len(m.Tickers) == 0 {
			return nil, fmt.Errorf("market %q: static market needs tickers", m.ID)
		}

		r.byID[m.ID] = len(r.markets)
		r.markets = append(r.markets, m)
	}
	if len(r.markets) == 0 {
		return nil, errors.New("no markets configured")
	}
	return r, nil
}

// Get looks up a market by ID (case-insensitive)
func (r *Registry) Get(id string) (Market, error) {
	i, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Market{}, fmt.Errorf("%w: %q", ErrUnknownMarket, id)
	}
	return r.markets[i], nil
}

// All returns markets in registration order
func (r *Registry) All() []Market {
	out := make([]Market, len(r.markets))
	copy(out, r.markets)
	return out
}

// MergeMarkets overlays overrides onto base; same ID replaces, new IDs are appended
func MergeMarkets(base, overrides []Market) []Market {
	out := append([]Market(nil), base...)
	index := make(map[string]int, len(out))
	for i, m := range out {
		index[strings.ToLower(m.ID)] = i
	}
	for _, m := range overrides {
		key := strings.ToLower(strings.TrimSpace(m.ID))
		if i, ok := index[key]; ok {
			out[i] = m
			continue
		}
		index[key] = len(out)
		out = append(out, m)
	}
	return out
}
