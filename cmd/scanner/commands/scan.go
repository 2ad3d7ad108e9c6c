package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/signalscan/internal/api/handlers"
	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/render"
	"github.com/wonny/signalscan/internal/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "시장 페이지 스캔",
	Long: `선택한 시장의 한 페이지(기본 40종목)를 순차 조회해 상태를 분류합니다.

종목 단위 실패(데이터 없음, 기간 부족, 통신 오류)는 건너뛰고 요약에 표시합니다.
잘못된 시장/페이지/프로필만 오류로 종료합니다.

Example:
  go run ./cmd/scanner scan --market dax --page 1
  go run ./cmd/scanner scan --market sp500 --page 2 --profile enhanced
  go run ./cmd/scanner scan --market dax --json`,
	RunE: runScan,
}

var (
	scanMarket  string
	scanPage    int
	scanProfile string
	scanJSON    bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().StringVar(&scanMarket, "market", "dax", "시장 ID (dax, sp500, ...)")
	scanCmd.Flags().IntVar(&scanPage, "page", 1, "페이지 번호 (1부터)")
	scanCmd.Flags().StringVar(&scanProfile, "profile", "", "규칙 프로필 (기본 SCAN_PROFILE)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "JSON 출력")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JSON 모드에서는 진행 상황을 stderr 로
	progressOut := cmd.OutOrStdout()
	if scanJSON {
		progressOut = cmd.ErrOrStderr()
	}

	report, err := a.scanner.Scan(ctx, scanner.Request{
		Market:     scanMarket,
		Page:       scanPage,
		Profile:    scanProfile,
		OnProgress: progressPrinter(progressOut),
	})
	if report == nil {
		return err
	}

	if writeErr := writeReport(cmd.OutOrStdout(), report, scanJSON); writeErr != nil {
		return writeErr
	}

	if errors.Is(err, context.Canceled) {
		PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("스캔이 중단되었습니다 (%d/%d 종목 처리)", report.Attempted(), len(report.Tickers)))
	}
	return err
}

// progressPrinter prints "[Scan] AAPL [3/40]" per ticker
func progressPrinter(w io.Writer) func(scanner.Progress) {
	return func(p scanner.Progress) {
		msg := p.Ticker
		if p.Err != nil {
			msg = fmt.Sprintf("%s (건너뜀: %s)", p.Ticker, contracts.Reason(p.Err))
		}
		PrintProgress(w, "Scan", msg, p.Done, p.Total)
	}
}

func writeReport(w io.Writer, report *contracts.ScanReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(handlers.NewReportResponse(report))
	}

	fmt.Fprintln(w)
	return render.New(w).Report(w, report)
}
