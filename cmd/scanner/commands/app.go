package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/signalscan/internal/external/wikipedia"
	"github.com/wonny/signalscan/internal/external/yahoo"
	"github.com/wonny/signalscan/internal/resultcache"
	"github.com/wonny/signalscan/internal/scanconfig"
	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/internal/signal"
	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/config"
	"github.com/wonny/signalscan/pkg/httputil"
	"github.com/wonny/signalscan/pkg/logger"
	"github.com/wonny/signalscan/pkg/redis"
)

// redisPrefix namespaces every key this service writes
const redisPrefix = "signalscan"

// app holds the wired components shared by commands
type app struct {
	cfg         *config.Config
	scanCfg     *scanconfig.Config
	log         *logger.Logger
	registry    *universe.Registry
	provider    *universe.Provider
	classifiers map[string]*signal.Classifier
	store       resultcache.Store
	scanner     *scanner.Scanner
	redis       *redis.Client
}

// loadSettings reads env config, logger and the optional YAML scan config
func loadSettings() (*config.Config, *scanconfig.Config, *logger.Logger, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger (stderr: stdout 은 표/JSON 출력 전용)
	log := logger.New(cfg)

	// 3. Scan config (YAML, optional)
	path := configFile
	if path == "" {
		path = cfg.Scan.ConfigFile
	}
	scanCfg := &scanconfig.Config{}
	if path != "" {
		scanCfg, _, err = scanconfig.Load(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load scan config %s: %w", path, err)
		}
		for _, w := range scanconfig.CheckWarnings(scanCfg) {
			log.WithField("code", w.Code).Warn(w.Message)
		}
		if hash, err := scanconfig.Hash(scanCfg); err == nil {
			log.WithFields(map[string]interface{}{
				"path": path,
				"hash": hash[:12],
			}).Info("Loaded scan config")
		}
	}

	// YAML 값이 있으면 환경 변수보다 우선
	if scanCfg.Profile != "" {
		cfg.Scan.Profile = scanCfg.Profile
	}
	if scanCfg.PageSize > 0 {
		cfg.Scan.PageSize = scanCfg.PageSize
	}
	if scanCfg.ChartURL != "" {
		cfg.Scan.ChartURLTemplate = scanCfg.ChartURL
	}
	cfg.Scan.Profile = strings.ToLower(strings.TrimSpace(cfg.Scan.Profile))

	return cfg, scanCfg, log, nil
}

// buildClassifiers creates one classifier per rule set
func buildClassifiers(scanCfg *scanconfig.Config, chartTemplate string) (map[string]*signal.Classifier, error) {
	ruleSets, err := scanCfg.RuleSets()
	if err != nil {
		return nil, fmt.Errorf("resolve profiles: %w", err)
	}

	classifiers := make(map[string]*signal.Classifier, len(ruleSets))
	for name, rules := range ruleSets {
		c, err := signal.NewClassifier(rules, chartTemplate)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		classifiers[name] = c
	}
	return classifiers, nil
}

// buildApp wires data sources, classifiers, result store and scanner
func buildApp() (*app, error) {
	cfg, scanCfg, log, err := loadSettings()
	if err != nil {
		return nil, err
	}

	// 4. Markets
	registry, err := universe.NewRegistry(scanCfg.MarketList())
	if err != nil {
		return nil, fmt.Errorf("markets: %w", err)
	}

	// 5. Create HTTP client (rate limited, single attempt)
	httpClient := httputil.New(cfg, log)

	// 6. Create external API clients
	yahooClient := yahoo.NewClient(httpClient, log, cfg.Yahoo.BaseURL)
	wikiClient := wikipedia.NewClient(httpClient, log, cfg.Wikipedia.SP500URL)

	// 7. Universe provider
	provider := universe.NewProvider(registry, wikiClient, cfg.Scan.UniverseCacheTTL, log)

	// 8. Classifiers
	classifiers, err := buildClassifiers(scanCfg, cfg.Scan.ChartURLTemplate)
	if err != nil {
		return nil, err
	}

	// 9. Result store (Redis when enabled, otherwise in-process)
	a := &app{
		cfg:         cfg,
		scanCfg:     scanCfg,
		log:         log,
		registry:    registry,
		provider:    provider,
		classifiers: classifiers,
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		a.store = resultcache.NewRedis(redis.NewCache(client, redisPrefix), cfg.Redis.TTL)
		log.WithField("addr", cfg.RedisAddr()).Info("Using Redis result cache")
	} else {
		a.store = resultcache.NewMemory()
	}

	// 10. Scanner
	a.scanner, err = scanner.New(provider, yahooClient, classifiers, a.store, scanner.Config{
		PageSize:       cfg.Scan.PageSize,
		DefaultProfile: cfg.Scan.Profile,
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases external connections
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
