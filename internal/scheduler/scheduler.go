package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/signalscan/pkg/logger"
)

// Parser accepts the 6-field (with seconds) expressions the scheduler runs
var Parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobRunning  = errors.New("job already running")
	ErrStopped     = errors.New("scheduler stopped")
)

type entry struct {
	job     Job
	id      cron.EntryID
	log     runLog
	running bool
}

// Scheduler runs registered jobs on their cron schedule
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
// 작업은 1회만 실행 (재시도 없음), 같은 작업이 실행 중이면 다음 트리거는 건너뜀
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu   sync.Mutex
	jobs map[string]*entry

	// Stop 시 실행 중인 작업 취소
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler; jobs start firing after Start
func New(log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(Parser)),
		logger: log,
		jobs:   make(map[string]*entry),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job under its unique name
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		if e, err := s.begin(name, TriggerCron); err == nil {
			s.execute(e, TriggerCron)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q of job %s: %w", job.Schedule(), name, err)
	}
	s.jobs[name] = &entry{job: job, id: id}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job scheduled")
	return nil
}

// Start starts firing scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()

	s.logger.WithField("jobs", count).Info("Starting scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")

	// begin 은 같은 잠금 아래에서 ctx 를 확인하므로 이후 wg.Add 없음
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// Trigger starts a job now in the background
func (s *Scheduler) Trigger(name string) error {
	e, err := s.begin(name, TriggerManual)
	if err != nil {
		return err
	}
	go s.execute(e, TriggerManual)
	return nil
}

// begin marks a job running; refuses unknown, running, or stopped
func (s *Scheduler) begin(name string, trigger Trigger) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if s.ctx.Err() != nil {
		return nil, ErrStopped
	}
	if e.running {
		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"trigger": string(trigger),
		}).Warn("Job still running, trigger skipped")
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}

	e.running = true
	s.wg.Add(1)
	return e, nil
}

// execute runs a job once and records the outcome
func (s *Scheduler) execute(e *entry, trigger Trigger) {
	defer s.wg.Done()

	run := Run{Job: e.job.Name(), Trigger: trigger, Started: time.Now()}
	log := s.logger.WithFields(map[string]interface{}{
		"job":     run.Job,
		"trigger": string(trigger),
	})
	log.Info("Job started")

	err := e.job.Run(s.ctx)
	run.Duration = time.Since(run.Started)
	if err != nil {
		run.Err = err.Error()
	}

	s.mu.Lock()
	e.log.add(run)
	e.running = false
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).WithField("duration", run.Duration).Error("Job failed")
		return
	}
	log.WithField("duration", run.Duration).Info("Job completed")
}

// Jobs lists every job sorted by name; NextRun is nil before Start
func (s *Scheduler) Jobs() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.jobs))
	for name, e := range s.jobs {
		st := Status{Name: name, Schedule: e.job.Schedule(), Running: e.running}
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			st.NextRun = &next
		}
		e.log.summarize(&st)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// History returns up to limit runs of a job, newest first; limit <= 0 means all kept
func (s *Scheduler) History(name string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return e.log.newest(limit), nil
}
