package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Key not found is not an error
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value; false when the key did not exist
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	n, err := c.client.Redis().Del(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache delete failed: %w", err)
	}
	return n > 0, nil
}

// Keys lists cached keys (without prefix) matching pattern
func (c *Cache) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !c.client.Enabled() {
		return nil, nil
	}

	head := c.fullKey("")
	var keys []string
	iter := c.client.Redis().Scan(ctx, 0, head+pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), head))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache scan failed: %w", err)
	}

	return keys, nil
}

// TTLDaily is the default lifetime of a scan result (일봉 기준)
const TTLDaily = 24 * time.Hour

// ScanResultKey returns the cache key of a scanned market page under a profile
func ScanResultKey(market string, page int, profile string) string {
	return fmt.Sprintf("scan:%s:%d:%s", market, page, profile)
}
