package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/external/csvbars"
	"github.com/wonny/signalscan/internal/universe"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "로컬 CSV 분류",
	Long: `Date,Close[,Volume] CSV 파일 하나를 분류합니다 (네트워크 조회 없음).

결과는 결과 캐시에 저장하지 않습니다.

Example:
  go run ./cmd/scanner classify --file bars.csv
  go run ./cmd/scanner classify --file sap.csv --ticker SAP.DE --profile enhanced --json`,
	RunE: runClassify,
}

var (
	classifyFile    string
	classifyTicker  string
	classifyProfile string
	classifyJSON    bool
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	// Flags
	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "CSV 파일 경로")
	classifyCmd.Flags().StringVar(&classifyTicker, "ticker", "", "티커 (기본: 파일 이름)")
	classifyCmd.Flags().StringVar(&classifyProfile, "profile", "", "규칙 프로필 (기본 SCAN_PROFILE)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "JSON 출력")
	_ = classifyCmd.MarkFlagRequired("file")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, scanCfg, _, err := loadSettings()
	if err != nil {
		return err
	}

	classifiers, err := buildClassifiers(scanCfg, cfg.Scan.ChartURLTemplate)
	if err != nil {
		return err
	}

	profile := strings.ToLower(strings.TrimSpace(classifyProfile))
	if profile == "" {
		profile = cfg.Scan.Profile
	}
	classifier, ok := classifiers[profile]
	if !ok {
		return fmt.Errorf("unknown profile %q", classifyProfile)
	}

	ticker := classifyTicker
	if ticker == "" {
		ticker = strings.TrimSuffix(filepath.Base(classifyFile), filepath.Ext(classifyFile))
	}
	ticker = universe.NormalizeSymbol(ticker)

	f, err := os.Open(classifyFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", classifyFile, err)
	}
	defer f.Close()

	series, err := csvbars.Read(f, ticker)
	if err != nil {
		return err
	}

	// 단일 종목 리포트로 감싸서 scan 과 같은 출력 사용
	report := &contracts.ScanReport{
		Market:     "local",
		MarketName: filepath.Base(classifyFile),
		Page:       1,
		TotalPages: 1,
		PageSize:   1,
		Profile:    profile,
		Tickers:    []string{ticker},
		Results:    []contracts.ClassificationResult{},
		Skipped:    []contracts.Skip{},
		StartedAt:  time.Now(),
	}

	result, err := classifier.Classify(series)
	if err != nil {
		report.Skipped = append(report.Skipped, contracts.Skip{Ticker: ticker, Reason: contracts.Reason(err), Message: err.Error()})
	} else {
		report.Results = append(report.Results, *result)
	}
	report.Duration = time.Since(report.StartedAt)
	report.Outcome = contracts.DecideOutcome(report.Attempted(), len(report.Results))

	return writeReport(cmd.OutOrStdout(), report, classifyJSON)
}
