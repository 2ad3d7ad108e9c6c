package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis (result cache backend, optional)
	Redis RedisConfig

	// External data sources
	Yahoo     YahooConfig
	Wikipedia WikipediaConfig

	// Outbound HTTP
	HTTP HTTPConfig

	// Scan
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL string
}

// WikipediaConfig holds the S&P 500 constituents page location
type WikipediaConfig struct {
	SP500URL string
}

// HTTPConfig holds outbound HTTP client configuration
type HTTPConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	RateBurst int
	UserAgent string
}

// ScanConfig holds scanner defaults
type ScanConfig struct {
	Profile          string // classic, enhanced, or a profile from ConfigFile
	PageSize         int
	ConfigFile       string // optional YAML (markets, profiles)
	ChartURLTemplate string // {ticker} is replaced with the symbol
	UniverseCacheTTL time.Duration
	RefreshSchedule  string   // cron expression with seconds, empty = disabled
	RefreshMarkets   []string // "dax" or "dax:2" entries scanned by the refresh job
	UniverseReload   string   // cron expression for remote list reload, empty = disabled
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			TTL:      getEnvAsDuration("REDIS_TTL", "12h"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		Wikipedia: WikipediaConfig{
			SP500URL: getEnv("WIKIPEDIA_SP500_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		},

		HTTP: HTTPConfig{
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			RateLimit: getEnvAsFloat("HTTP_RATE_LIMIT", 4),
			RateBurst: getEnvAsInt("HTTP_RATE_BURST", 2),
			UserAgent: getEnv("HTTP_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
		},

		Scan: ScanConfig{
			Profile:          getEnv("SCAN_PROFILE", "classic"),
			PageSize:         getEnvAsInt("SCAN_PAGE_SIZE", 40),
			ConfigFile:       getEnv("SCAN_CONFIG", ""),
			ChartURLTemplate: getEnv("CHART_URL_TEMPLATE", "https://finance.yahoo.com/quote/{ticker}"),
			UniverseCacheTTL: getEnvAsDuration("UNIVERSE_CACHE_TTL", "24h"),
			RefreshSchedule:  getEnv("REFRESH_SCHEDULE", ""),
			RefreshMarkets:   getEnvAsList("REFRESH_MARKETS", "dax"),
			UniverseReload:   getEnv("UNIVERSE_RELOAD_SCHEDULE", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.PageSize <= 0 {
		return fmt.Errorf("SCAN_PAGE_SIZE must be > 0")
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must be >= 0")
	}

	if c.Yahoo.BaseURL == "" {
		return fmt.Errorf("YAHOO_BASE_URL is required")
	}

	return nil
}

// RedisAddr returns host:port of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
