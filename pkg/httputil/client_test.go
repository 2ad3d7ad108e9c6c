package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/signalscan/pkg/config"
	"github.com/wonny/signalscan/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "development",
		LogLevel: "error", // Reduce log noise
		HTTP: config.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "signalscan-test",
		},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	client := New(cfg, logger.Nop())
	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.httpClient == nil {
		t.Error("Expected http.Client to be initialized")
	}

	if client.logger == nil {
		t.Error("Expected logger to be set")
	}

	if client.limiter != nil {
		t.Error("Expected no limiter when HTTP_RATE_LIMIT is 0")
	}
}

func TestNewWithRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = 5
	cfg.HTTP.RateBurst = 0

	client := New(cfg, logger.Nop())
	if client.limiter == nil {
		t.Fatal("Expected limiter to be configured")
	}
	if client.limiter.Burst() != 1 {
		t.Errorf("Expected burst=1, got %d", client.limiter.Burst())
	}
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != "signalscan-test" {
			t.Errorf("Expected User-Agent header, got %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GET request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestNoRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", got)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// 1 request per minute, first token consumed by the first call
	cfg := testConfig()
	cfg.HTTP.RateLimit = 1.0 / 60
	cfg.HTTP.RateBurst = 1
	client := New(cfg, logger.Nop())

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, server.URL); err == nil {
		t.Error("Expected rate limit wait to fail on short context")
	}
}
