package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/signalscan/pkg/config"
)

const connectTimeout = 5 * time.Second

// Client is the Redis connection shared by result caches
// ⭐ SSOT: Redis 연결은 여기서만 관리
// rdb 가 nil 이면 비활성 클라이언트 (캐시 연산은 모두 no-op)
type Client struct {
	rdb *redis.Client
}

// Connect dials and pings Redis; REDIS_ENABLED=false yields a disabled client
func Connect(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: connectTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: ping: %w", cfg.RedisAddr(), err)
	}
	return &Client{rdb: rdb}, nil
}

// Wrap adopts an existing go-redis client; nil gives a disabled client
func Wrap(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Enabled reports whether commands reach a server
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Redis returns the go-redis client (nil when disabled)
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
