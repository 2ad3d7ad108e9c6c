package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/logger"
)

// UniverseSource is the cached ticker-list provider
type UniverseSource interface {
	Registry() *universe.Registry
	Tickers(ctx context.Context, marketID string) (universe.List, error)
	Invalidate()
}

// UniverseReloadJob drops cached remote lists and fetches them again
// ⭐ SSOT: 원격 종목 목록 갱신 스케줄은 이 Job에서만
type UniverseReloadJob struct {
	source   UniverseSource
	schedule string
	logger   *logger.Logger
}

// NewUniverseReloadJob creates a new universe reload job
func NewUniverseReloadJob(source UniverseSource, schedule string, log *logger.Logger) *UniverseReloadJob {
	return &UniverseReloadJob{
		source:   source,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseReloadJob) Name() string {
	return "universe_reload"
}

// Schedule returns the cron schedule
func (j *UniverseReloadJob) Schedule() string {
	return j.schedule
}

// Run reloads every remote market; a fallback list counts as a warning, not a failure
func (j *UniverseReloadJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe reload")
	j.source.Invalidate()

	for _, m := range j.source.Registry().All() {
		if !m.Remote() {
			continue
		}

		list, err := j.source.Tickers(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("reload %s: %w", m.ID, err)
		}

		log := j.logger.WithFields(map[string]interface{}{
			"market":  m.ID,
			"tickers": len(list.Tickers),
		})
		if list.FromFallback {
			log.WithField("reason", list.FallbackReason).Warn("Universe reload used fallback list")
			continue
		}
		log.Info("Universe reloaded")
	}

	return nil
}
