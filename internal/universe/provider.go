package universe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/signalscan/pkg/logger"
)

// ConstituentsSource fetches a remote constituents list
type ConstituentsSource interface {
	FetchSP500(ctx context.Context) ([]string, error)
}

// List is a resolved ticker list
type List struct {
	Market         Market    `json:"market"`
	Tickers        []string  `json:"tickers"`
	FromFallback   bool      `json:"from_fallback"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

type cachedList struct {
	tickers   []string
	fetchedAt time.Time
}

// Provider resolves a market into its ticker list
// ⭐ SSOT: 종목 목록 조회/정규화는 여기서만
// 원격 목록은 TTL 동안 프로세스 내 캐시; 대체 목록은 캐시하지 않는다
type Provider struct {
	registry *Registry
	remote   ConstituentsSource
	logger   *logger.Logger
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedList
}

// NewProvider creates a provider; remote may be nil (fallback lists only)
func NewProvider(registry *Registry, remote ConstituentsSource, ttl time.Duration, log *logger.Logger) *Provider {
	return &Provider{
		registry: registry,
		remote:   remote,
		logger:   log,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cachedList),
	}
}

// Registry returns the market registry
func (p *Provider) Registry() *Registry {
	return p.registry
}

// Tickers returns the normalized ticker list of a market
// 원격 조회 실패는 오류가 아니라 대체 목록 + 경고 로그
func (p *Provider) Tickers(ctx context.Context, marketID string) (List, error) {
	market, err := p.registry.Get(marketID)
	if err != nil {
		return List{}, err
	}

	if !market.Remote() {
		return List{
			Market:    market,
			Tickers:   normalizeAll(market.Tickers, false),
			FetchedAt: p.now(),
		}, nil
	}

	if cached, ok := p.cached(market.ID); ok {
		return List{Market: market, Tickers: cached.tickers, FetchedAt: cached.fetchedAt}, nil
	}

	tickers, reason, err := p.fetchRemote(ctx)
	if err != nil {
		return List{}, err
	}
	if reason != "" {
		p.logger.WithFields(map[string]interface{}{
			"market": market.ID,
			"reason": reason,
		}).Warn("Using fallback ticker list")

		return List{
			Market:         market,
			Tickers:        normalizeAll(market.Tickers, true),
			FromFallback:   true,
			FallbackReason: reason,
			FetchedAt:      p.now(),
		}, nil
	}

	entry := cachedList{tickers: tickers, fetchedAt: p.now()}
	p.mu.Lock()
	p.cache[market.ID] = entry
	p.mu.Unlock()

	p.logger.WithFields(map[string]interface{}{
		"market":  market.ID,
		"tickers": len(tickers),
	}).Info("Loaded remote ticker list")

	return List{Market: market, Tickers: tickers, FetchedAt: entry.fetchedAt}, nil
}

// fetchRemote returns tickers, or a fallback reason; err only on cancellation
func (p *Provider) fetchRemote(ctx context.Context) ([]string, string, error) {
	if p.remote == nil {
		return nil, "remote source not configured", nil
	}

	raw, err := p.remote.FetchSP500(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("fetch constituents: %w", ctx.Err())
		}
		return nil, err.Error(), nil
	}

	tickers := normalizeAll(raw, true)
	if len(tickers) == 0 {
		return nil, "remote list is empty", nil
	}
	return tickers, "", nil
}

func (p *Provider) cached(id string) (cachedList, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.cache[id]
	if !ok {
		return cachedList{}, false
	}
	if p.ttl > 0 && p.now().Sub(entry.fetchedAt) >= p.ttl {
		delete(p.cache, id)
		return cachedList{}, false
	}
	return entry, true
}

// Invalidate drops cached remote lists
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]cachedList)
}
