package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/signalscan/internal/api"
	"github.com/wonny/signalscan/internal/api/handlers"
	"github.com/wonny/signalscan/internal/scheduler"
	"github.com/wonny/signalscan/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "대시보드 서버 시작",
	Long: `HTML 대시보드와 JSON API 서버를 시작합니다.

REFRESH_SCHEDULE (또는 YAML refresh.schedule) 이 설정되어 있으면
지정한 시장 페이지를 주기적으로 재스캔해 결과 캐시에 저장합니다.

Endpoints:
  GET  /                              - 첫 번째 시장으로 이동
  GET  /markets/{market}?page=&run=1   - 대시보드
  GET  /health                        - Health check
  GET  /api/markets                   - 시장 목록
  POST /api/scan                      - 스캔 실행
  GET  /api/results                   - 캐시된 결과 목록
  GET  /api/results/{market}/{page}   - 캐시된 결과 (?profile=)
  DELETE /api/results/{market}/{page} - 캐시된 결과 삭제
  GET  /api/scheduler/jobs            - 스케줄 작업 목록 (스케줄 설정 시)
  POST /api/scheduler/jobs/{name}/run - 작업 즉시 실행
  GET  /api/scheduler/jobs/{name}/history - 실행 이력

Example:
  go run ./cmd/scanner serve
  go run ./cmd/scanner serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "서버 포트 (기본 PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Signalscan Dashboard ===")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if servePort != "" {
		a.cfg.Port = servePort
	}
	log := a.log

	// 1. Scheduler (optional)
	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}

	// 2. Create handlers and router
	h := api.Handlers{
		Scan:      handlers.NewScanHandler(a.scanner, a.store, log),
		Markets:   handlers.NewMarketHandler(a.registry, a.scanner, log),
		Dashboard: handlers.NewDashboardHandler(a.registry, a.scanner, a.store, log),
	}
	if sched != nil {
		h.Scheduler = handlers.NewSchedulerHandler(sched, log)
		sched.Start()
		defer sched.Stop()
	}
	router := api.NewRouter(h, log)

	// 3. Bind the port before announcing
	server := api.New(a.cfg, log, router)
	if err := server.Listen(); err != nil {
		return err
	}

	// 4. Serve with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// buildScheduler registers refresh/reload jobs; nil when nothing is scheduled
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	schedule := a.cfg.Scan.RefreshSchedule
	if a.scanCfg.Refresh.Schedule != "" {
		schedule = a.scanCfg.Refresh.Schedule
	}

	if schedule == "" && a.cfg.Scan.UniverseReload == "" {
		return nil, nil
	}

	sched := scheduler.New(a.log)

	if schedule != "" {
		pages, err := refreshPages(a)
		if err != nil {
			return nil, err
		}
		job := jobs.NewRefreshJob(a.scanner, pages, schedule, "", a.log)
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	if a.cfg.Scan.UniverseReload != "" {
		job := jobs.NewUniverseReloadJob(a.provider, a.cfg.Scan.UniverseReload, a.log)
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

// refreshPages uses YAML refresh.pages when present, else REFRESH_MARKETS
func refreshPages(a *app) ([]jobs.Page, error) {
	if len(a.scanCfg.Refresh.Pages) > 0 {
		pages := make([]jobs.Page, 0, len(a.scanCfg.Refresh.Pages))
		for _, p := range a.scanCfg.Refresh.Pages {
			pages = append(pages, jobs.Page{Market: p.Market, Page: p.Page})
		}
		return pages, nil
	}

	pages, err := jobs.ParsePages(a.cfg.Scan.RefreshMarkets)
	if err != nil {
		return nil, fmt.Errorf("REFRESH_MARKETS: %w", err)
	}
	return pages, nil
}
