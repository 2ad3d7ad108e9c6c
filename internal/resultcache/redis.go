package resultcache

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/pkg/redis"
)

// Redis stores reports as JSON through pkg/redis
type Redis struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewRedis creates a Redis-backed store; ttl <= 0 uses the daily TTL
func NewRedis(cache *redis.Cache, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &Redis{cache: cache, ttl: ttl}
}

// Get returns the stored report for key
func (r *Redis) Get(ctx context.Context, key Key) (*contracts.ScanReport, bool, error) {
	var report contracts.ScanReport
	found, err := r.cache.Get(ctx, redis.ScanResultKey(key.Market, key.Page, key.Profile), &report)
	if err != nil {
		return nil, false, fmt.Errorf("result cache get %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return &report, true, nil
}

// Put stores report with the store TTL
func (r *Redis) Put(ctx context.Context, report *contracts.ScanReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	key := KeyOf(report)
	if err := r.cache.Set(ctx, redis.ScanResultKey(key.Market, key.Page, key.Profile), report, r.ttl); err != nil {
		return fmt.Errorf("result cache put %s: %w", key, err)
	}
	return nil
}

// Delete drops the report for key
func (r *Redis) Delete(ctx context.Context, key Key) (bool, error) {
	removed, err := r.cache.Delete(ctx, redis.ScanResultKey(key.Market, key.Page, key.Profile))
	if err != nil {
		return false, fmt.Errorf("result cache delete %s: %w", key, err)
	}
	return removed, nil
}

// Keys lists stored keys sorted by market, page, profile
func (r *Redis) Keys(ctx context.Context) ([]Key, error) {
	raw, err := r.cache.Keys(ctx, "scan:*")
	if err != nil {
		return nil, fmt.Errorf("result cache keys: %w", err)
	}

	keys := make([]Key, 0, len(raw))
	for _, k := range raw {
		if key, ok := parseKey(k); ok {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys, nil
}
