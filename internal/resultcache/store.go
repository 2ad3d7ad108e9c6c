package resultcache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wonny/signalscan/internal/contracts"
)

// Key identifies one scanned market page under one rule profile
// 프로필이 다르면 같은 페이지라도 별도 결과
type Key struct {
	Market  string `json:"market"`
	Page    int    `json:"page"`
	Profile string `json:"profile"`
}

// KeyOf returns the key of a report
func KeyOf(r *contracts.ScanReport) Key {
	return Key{Market: r.Market, Page: r.Page, Profile: r.Profile}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Market, k.Page, k.Profile)
}

// Store keeps the latest report per market page
// ⭐ SSOT: 스캔 결과 재사용은 이 저장소를 통해서만 (명시적 캐시)
type Store interface {
	Get(ctx context.Context, key Key) (*contracts.ScanReport, bool, error)
	Put(ctx context.Context, report *contracts.ScanReport) error
	Keys(ctx context.Context) ([]Key, error)
	Delete(ctx context.Context, key Key) (bool, error)
}

// Memory is an in-process store
type Memory struct {
	mu      sync.RWMutex
	reports map[Key]*contracts.ScanReport
}

// NewMemory creates an empty in-process store
func NewMemory() *Memory {
	return &Memory{reports: make(map[Key]*contracts.ScanReport)}
}

// Get returns the stored report for key
func (m *Memory) Get(_ context.Context, key Key) (*contracts.ScanReport, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[key]
	return r, ok, nil
}

// Put stores report, replacing any previous one for the same page and profile
func (m *Memory) Put(_ context.Context, report *contracts.ScanReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[KeyOf(report)] = report
	return nil
}

// Delete drops the report for key; false when nothing was stored
func (m *Memory) Delete(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.reports[key]
	delete(m.reports, key)
	return ok, nil
}

// Keys lists stored keys sorted by market, page, profile
func (m *Memory) Keys(_ context.Context) ([]Key, error) {
	m.mu.RLock()
	keys := make([]Key, 0, len(m.reports))
	for k := range m.reports {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sortKeys(keys)
	return keys, nil
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Market != keys[j].Market {
			return keys[i].Market < keys[j].Market
		}
		if keys[i].Page != keys[j].Page {
			return keys[i].Page < keys[j].Page
		}
		return keys[i].Profile < keys[j].Profile
	})
}

// parseKey reverses redis.ScanResultKey ("scan:market:page:profile")
func parseKey(raw string) (Key, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 || parts[0] != "scan" || parts[3] == "" {
		return Key{}, false
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, false
	}
	return Key{Market: parts[1], Page: page, Profile: parts[3]}, true
}
