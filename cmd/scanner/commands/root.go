package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "글로벌 스마트 스캐너 - 이동평균 기반 매매 신호",
	Long: `Signalscan CLI

DAX / S&P 500 종목을 페이지 단위로 조회해
20일 이동평균 이격률과 교차로 매매 상태를 분류합니다.

Usage:
  go run ./cmd/scanner [command]

Examples:
  go run ./cmd/scanner scan --market dax --page 1
  go run ./cmd/scanner scan --market sp500 --page 3 --profile enhanced
  go run ./cmd/scanner markets
  go run ./cmd/scanner serve --port 8080
  go run ./cmd/scanner classify --file bars.csv`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scan config YAML (markets, profiles, refresh); default SCAN_CONFIG")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}
