package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "classic", cfg.Scan.Profile)
	assert.Equal(t, 40, cfg.Scan.PageSize)
	assert.Equal(t, []string{"dax"}, cfg.Scan.RefreshMarkets)
	assert.Empty(t, cfg.Scan.RefreshSchedule, "refresh is opt-in")
	assert.Equal(t, 24*time.Hour, cfg.Scan.UniverseCacheTTL)
	assert.Equal(t, "https://finance.yahoo.com/quote/{ticker}", cfg.Scan.ChartURLTemplate)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 4.0, cfg.HTTP.RateLimit)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 12*time.Hour, cfg.Redis.TTL)
}

func TestLoadScannerOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SCAN_PROFILE", "enhanced")
	t.Setenv("SCAN_PAGE_SIZE", "25")
	t.Setenv("REFRESH_SCHEDULE", "0 0 22 * * MON-FRI")
	t.Setenv("REFRESH_MARKETS", "dax, sp500:2,,")
	t.Setenv("HTTP_RATE_LIMIT", "0.5")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "enhanced", cfg.Scan.Profile)
	assert.Equal(t, 25, cfg.Scan.PageSize)
	assert.Equal(t, "0 0 22 * * MON-FRI", cfg.Scan.RefreshSchedule)
	assert.Equal(t, []string{"dax", "sp500:2"}, cfg.Scan.RefreshMarkets)
	assert.Equal(t, 0.5, cfg.HTTP.RateLimit)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Redis.TTL)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ENV", "qa"},
		{"SCAN_PAGE_SIZE", "0"},
		{"HTTP_RATE_LIMIT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

// 잘못된 값은 조용히 기본값으로
func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SCAN_PAGE_SIZE", "forty")
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("REDIS_ENABLED", "maybe")
	t.Setenv("HTTP_RATE_BURST", "x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Scan.PageSize)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.HTTP.RateBurst)
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Host: "cache", Port: "6380"}}
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}
