package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/pkg/logger"
)

// Scanner runs one market page scan
type Scanner interface {
	Scan(ctx context.Context, req scanner.Request) (*contracts.ScanReport, error)
}

// Page is one market page refreshed by the job
type Page struct {
	Market string
	Page   int
}

func (p Page) String() string {
	return fmt.Sprintf("%s:%d", p.Market, p.Page)
}

// ParsePages parses "dax", "dax:2" entries (bare market = page 1)
func ParsePages(entries []string) ([]Page, error) {
	pages := make([]Page, 0, len(entries))
	seen := make(map[Page]bool)

	for _, raw := range entries {
		entry := strings.ToLower(strings.TrimSpace(raw))
		if entry == "" {
			continue
		}

		p := Page{Market: entry, Page: 1}
		if market, num, ok := strings.Cut(entry, ":"); ok {
			n, err := strconv.Atoi(num)
			if err != nil || n < 1 || market == "" {
				return nil, fmt.Errorf("invalid refresh page %q (want market or market:page)", raw)
			}
			p = Page{Market: market, Page: n}
		}

		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// RefreshJob rescans configured market pages into the result cache
// ⭐ SSOT: 주기적 재스캔은 이 Job에서만
// 저장은 Scanner 가 담당 (완료된 리포트만 캐시에 기록)
type RefreshJob struct {
	scanner  Scanner
	pages    []Page
	schedule string
	profile  string
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job; profile "" = scanner default
func NewRefreshJob(s Scanner, pages []Page, schedule, profile string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		scanner:  s,
		pages:    pages,
		schedule: schedule,
		profile:  profile,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "scan_refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run scans every page once; one failing page does not stop the others
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.WithField("pages", len(j.pages)).Info("Starting scheduled scan refresh")

	var errs []error
	for _, p := range j.pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("refresh canceled: %w", err)
		}

		report, err := j.scanner.Scan(ctx, scanner.Request{Market: p.Market, Page: p.Page, Profile: j.profile})
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("refresh canceled at %s: %w", p, err)
			}
			j.logger.WithError(err).WithField("page", p.String()).Warn("Refresh scan failed")
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"page":    p.String(),
			"results": len(report.Results),
			"skipped": len(report.Skipped),
			"outcome": report.Outcome,
		}).Info("Page refreshed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("refresh: %d/%d pages failed: %w", len(errs), len(j.pages), errors.Join(errs...))
	}

	j.logger.Info("Scheduled scan refresh completed successfully")
	return nil
}
