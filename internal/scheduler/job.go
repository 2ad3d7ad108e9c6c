package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Schedule is a 6-field cron expression (seconds first) or a descriptor
	// 예: "0 0 22 * * MON-FRI" (평일 22시), "@every 6h"
	Schedule() string

	Run(ctx context.Context) error
}

// Trigger tells how a run was started
type Trigger string

const (
	TriggerCron   Trigger = "cron"
	TriggerManual Trigger = "manual"
)

// Run is one execution record
type Run struct {
	Job      string        `json:"job"`
	Trigger  Trigger       `json:"trigger"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// OK reports whether the run finished without error
func (r Run) OK() bool {
	return r.Err == ""
}

// HistorySize caps the runs kept per job
const HistorySize = 100

// runLog keeps the latest HistorySize runs of one job, oldest first
type runLog struct {
	runs []Run
}

func (l *runLog) add(r Run) {
	if len(l.runs) == HistorySize {
		copy(l.runs, l.runs[1:])
		l.runs = l.runs[:HistorySize-1]
	}
	l.runs = append(l.runs, r)
}

// newest returns a copy of the latest n runs, newest first; n <= 0 means all
func (l *runLog) newest(n int) []Run {
	if n <= 0 || n > len(l.runs) {
		n = len(l.runs)
	}
	out := make([]Run, 0, n)
	for i := len(l.runs) - 1; i >= len(l.runs)-n; i-- {
		out = append(out, l.runs[i])
	}
	return out
}

// Status summarizes one job for listing
type Status struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Running     bool       `json:"running"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	SuccessRate float64    `json:"success_rate"`
	LastRun     *Run       `json:"last_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

// summarize fills the run counters of st from the log
func (l *runLog) summarize(st *Status) {
	st.Runs = len(l.runs)
	for _, r := range l.runs {
		started := r.Started
		if r.OK() {
			st.LastSuccess = &started
		} else {
			st.Failures++
			st.LastFailure = &started
		}
	}
	if st.Runs == 0 {
		return
	}
	last := l.runs[st.Runs-1]
	st.LastRun = &last
	st.SuccessRate = float64(st.Runs-st.Failures) / float64(st.Runs)
}
