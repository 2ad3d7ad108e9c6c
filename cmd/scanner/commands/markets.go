package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// marketsCmd represents the markets command
var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "시장 목록",
	Long: `설정된 시장과 종목 수, 페이지 수, 규칙 프로필을 보여줍니다.

원격 목록(S&P 500)은 이 명령에서 조회되며 실패 시 기본 목록으로 표시됩니다.

Example:
  go run ./cmd/scanner markets`,
	RunE: runMarkets,
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}

func runMarkets(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	PrintDoubleSeparator(out)
	fmt.Fprintf(out, "  %-10s %-20s %-16s %8s %6s\n", "ID", "NAME", "SOURCE", "TICKERS", "PAGES")
	PrintSeparator(out)

	for _, m := range a.registry.All() {
		list, page, err := a.scanner.Select(cmd.Context(), m.ID, 1)
		if err != nil {
			return fmt.Errorf("market %s: %w", m.ID, err)
		}

		note := ""
		if list.FromFallback {
			note = "  ⚠️ fallback"
		}
		fmt.Fprintf(out, "  %-10s %-20s %-16s %8d %6d%s\n",
			m.ID, m.Name, m.Source, len(list.Tickers), page.TotalPages, note)
	}

	PrintSeparator(out)
	fmt.Fprintf(out, "  page size : %d\n", a.scanner.PageSize())
	fmt.Fprintf(out, "  profiles  : %s (default %s)\n", strings.Join(a.scanner.Profiles(), ", "), a.scanner.DefaultProfile())
	PrintDoubleSeparator(out)
	return nil
}
