package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/resultcache"
	"github.com/wonny/signalscan/internal/signal"
	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/logger"
)

// ErrUnknownProfile is returned for a profile without a classifier
var ErrUnknownProfile = errors.New("unknown profile")

// Fetcher loads daily history for one ticker
type Fetcher interface {
	FetchDailyBars(ctx context.Context, ticker string, days int) (contracts.PriceSeries, error)
}

// TickerSource resolves a market into tickers
type TickerSource interface {
	Tickers(ctx context.Context, marketID string) (universe.List, error)
}

// Progress is reported after each ticker
type Progress struct {
	Done   int
	Total  int
	Ticker string
	Err    error
}

// Request selects one market page
type Request struct {
	Market     string
	Page       int
	Profile    string // "" = default profile
	OnProgress func(Progress)
}

// Config holds scanner settings
type Config struct {
	PageSize       int
	DefaultProfile string
}

// Scanner runs the sequential per-ticker batch
// ⭐ SSOT: 종목 루프(조회 → 분류 → 수집)는 여기서만
// 종목 단위 실패는 Skip 으로 기록하고 계속 진행, 배치 자체는 실패하지 않는다
type Scanner struct {
	tickers     TickerSource
	fetcher     Fetcher
	classifiers map[string]*signal.Classifier
	store       resultcache.Store
	config      Config
	logger      *logger.Logger
	now         func() time.Time
}

// New creates a scanner; store may be nil
func New(tickers TickerSource, fetcher Fetcher, classifiers map[string]*signal.Classifier, store resultcache.Store, cfg Config, log *logger.Logger) (*Scanner, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = universe.DefaultPageSize
	}
	if len(classifiers) == 0 {
		return nil, errors.New("scanner: at least one classifier is required")
	}
	if _, ok := classifiers[cfg.DefaultProfile]; !ok {
		return nil, fmt.Errorf("scanner: default profile %q: %w", cfg.DefaultProfile, ErrUnknownProfile)
	}

	return &Scanner{
		tickers:     tickers,
		fetcher:     fetcher,
		classifiers: classifiers,
		store:       store,
		config:      cfg,
		logger:      log,
		now:         time.Now,
	}, nil
}

// PageSize returns the configured page size
func (s *Scanner) PageSize() int {
	return s.config.PageSize
}

// DefaultProfile returns the profile used when a request names none
func (s *Scanner) DefaultProfile() string {
	return s.config.DefaultProfile
}

// Profiles lists available profile names
func (s *Scanner) Profiles() []string {
	names := make([]string, 0, len(s.classifiers))
	for name := range s.classifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the ticker page of a request without scanning
func (s *Scanner) Select(ctx context.Context, market string, page int) (universe.List, universe.Page, error) {
	list, err := s.tickers.Tickers(ctx, market)
	if err != nil {
		return universe.List{}, universe.Page{}, err
	}

	p, err := universe.Paginate(list.Tickers, s.config.PageSize, page)
	if err != nil {
		return list, universe.Page{}, fmt.Errorf("market %s: %w", list.Market.ID, err)
	}
	return list, p, nil
}

// Scan runs one market page
// 취소 시 그때까지의 부분 결과와 ctx 오류를 함께 반환 (부분 결과는 저장하지 않음)
func (s *Scanner) Scan(ctx context.Context, req Request) (*contracts.ScanReport, error) {
	profile := strings.ToLower(strings.TrimSpace(req.Profile))
	if profile == "" {
		profile = s.config.DefaultProfile
	}
	classifier, ok := s.classifiers[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProfile, req.Profile, strings.Join(s.Profiles(), ", "))
	}

	list, page, err := s.Select(ctx, req.Market, req.Page)
	if err != nil {
		return nil, err
	}

	report := &contracts.ScanReport{
		Market:       list.Market.ID,
		MarketName:   list.Market.Name,
		Page:         page.Number,
		TotalPages:   page.TotalPages,
		PageSize:     page.Size,
		Profile:      profile,
		Tickers:      page.Tickers,
		FromFallback: list.FromFallback,
		Results:      []contracts.ClassificationResult{},
		Skipped:      []contracts.Skip{},
		StartedAt:    s.now(),
	}

	log := s.logger.WithFields(map[string]interface{}{
		"market":  report.Market,
		"page":    report.Page,
		"profile": profile,
	})
	log.WithField("tickers", len(page.Tickers)).Info("Scan started")

	lookback := classifier.Rules().LookbackDays
	total := len(page.Tickers)

	for i, ticker := range page.Tickers {
		if err := ctx.Err(); err != nil {
			return s.finish(report, log), fmt.Errorf("scan %s page %d canceled after %d/%d: %w", report.Market, report.Page, i, total, err)
		}

		result, err := s.scanTicker(ctx, classifier, ticker, lookback)
		if err != nil && ctx.Err() != nil {
			return s.finish(report, log), fmt.Errorf("scan %s page %d canceled after %d/%d: %w", report.Market, report.Page, i, total, ctx.Err())
		}

		if err != nil {
			skip := contracts.Skip{Ticker: ticker, Reason: contracts.Reason(err), Message: err.Error()}
			err = &contracts.TickerError{Ticker: ticker, Err: err}
			report.Skipped = append(report.Skipped, skip)
			log.WithTicker(ticker).WithFields(map[string]interface{}{
				"reason": skip.Reason,
				"error":  skip.Message,
			}).Warn("Ticker skipped")
		} else {
			report.Results = append(report.Results, *result)
		}

		if req.OnProgress != nil {
			req.OnProgress(Progress{Done: i + 1, Total: total, Ticker: ticker, Err: err})
		}
	}

	s.finish(report, log)

	if s.store != nil {
		if err := s.store.Put(ctx, report); err != nil {
			log.WithError(err).Warn("Failed to store scan report")
		}
	}

	return report, nil
}

func (s *Scanner) scanTicker(ctx context.Context, classifier *signal.Classifier, ticker string, lookback int) (*contracts.ClassificationResult, error) {
	series, err := s.fetcher.FetchDailyBars(ctx, ticker, lookback)
	if err != nil {
		return nil, err
	}
	if series.Ticker == "" {
		series.Ticker = ticker
	}
	return classifier.Classify(series)
}

func (s *Scanner) finish(report *contracts.ScanReport, log *logger.Logger) *contracts.ScanReport {
	report.Duration = s.now().Sub(report.StartedAt)
	report.Outcome = contracts.DecideOutcome(report.Attempted(), len(report.Results))

	log.WithFields(map[string]interface{}{
		"results":  len(report.Results),
		"skipped":  len(report.Skipped),
		"outcome":  report.Outcome,
		"duration": report.Duration,
	}).Info("Scan completed")

	return report
}
