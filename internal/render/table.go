package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wonny/signalscan/internal/contracts"
)

// Outcome messages
const (
	MessageDone           = "분석이 완료되었습니다!"
	MessageNoResults      = "분석 결과가 없습니다. 티커를 확인해 주세요."
	MessageEmptySelection = "분석 대상 종목이 없습니다."
)

var statusColors = map[contracts.Status]lipgloss.Color{
	contracts.StatusOverheated:         lipgloss.Color("196"), // red
	contracts.StatusTrendBreak:         lipgloss.Color("208"), // orange
	contracts.StatusStrongBuy:          lipgloss.Color("46"),  // green
	contracts.StatusStrongBuyConfirmed: lipgloss.Color("46"),
	contracts.StatusHold:               lipgloss.Color("39"), // blue
	contracts.StatusBuyInterest:        lipgloss.Color("226"), // yellow
	contracts.StatusSellWatch:          lipgloss.Color("201"), // magenta
	contracts.StatusNeutral:            lipgloss.Color("245"), // grey
}

// Renderer draws scan reports for a terminal
// 색상은 출력 대상의 터미널 프로필을 따른다 (파이프/버퍼는 무색)
type Renderer struct {
	r *lipgloss.Renderer
}

// New creates a renderer bound to w
func New(w io.Writer) *Renderer {
	return &Renderer{r: lipgloss.NewRenderer(w)}
}

// Headers returns the result columns
func Headers(withVolume bool) []string {
	h := []string{"티커", "등락률", "현재가", "20MA", "이격률", "상태", "해석"}
	if withVolume {
		h = append(h, "거래량비")
	}
	return h
}

// Rows converts results into 2-decimal display rows
func Rows(results []contracts.ClassificationResult, withVolume bool) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		d := res.Rounded()
		row := []string{
			d.Ticker,
			d.ChangePct.StringFixed(2),
			d.LastClose.StringFixed(2),
			d.MA20.StringFixed(2),
			d.Disparity,
			d.StatusLabel,
			d.Trend,
		}
		if withVolume {
			ratio := "-"
			if d.VolumeRatio != nil {
				ratio = d.VolumeRatio.StringFixed(2)
			}
			row = append(row, ratio)
		}
		rows = append(rows, row)
	}
	return rows
}

// Table renders the results table
func (r *Renderer) Table(report *contracts.ScanReport) string {
	withVolume := false
	for _, res := range report.Results {
		if res.VolumeRatio != nil {
			withVolume = true
			break
		}
	}

	const statusCol = 5
	header := r.r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.r.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(Headers(withVolume)...).
		Rows(Rows(report.Results, withVolume)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == statusCol && row >= 0 && row < len(report.Results) {
				if color, ok := statusColors[report.Results[row].Status]; ok {
					return cell.Foreground(color).Bold(true)
				}
			}
			if col >= 1 && col <= 4 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})

	return t.String()
}

// Title renders the report heading
func (r *Renderer) Title(report *contracts.ScanReport) string {
	title := fmt.Sprintf("📊 %s - %d페이지 분석 결과 (전체 %d페이지, %s)",
		report.MarketName, report.Page, report.TotalPages, report.Profile)
	return r.r.NewStyle().Bold(true).Render(title)
}

// Summary renders counts, skips and the outcome message
func (r *Renderer) Summary(report *contracts.ScanReport) string {
	var b strings.Builder

	if report.FromFallback {
		warn := r.r.NewStyle().Foreground(lipgloss.Color("208"))
		b.WriteString(warn.Render("⚠ 원격 종목 목록을 불러오지 못해 기본 목록을 사용했습니다."))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "결과 %d / 스킵 %d / 대상 %d (%s)\n",
		len(report.Results), len(report.Skipped), len(report.Tickers), report.Duration.Round(time.Millisecond))

	if skips := report.SkipsByReason(); len(skips) > 0 {
		reasons := make([]string, 0, len(skips))
		for reason := range skips {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		parts := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, skips[reason]))
		}
		fmt.Fprintf(&b, "스킵 사유: %s\n", strings.Join(parts, ", "))
	}

	if counts := report.CountByStatus(); len(counts) > 0 {
		parts := []string{}
		for _, s := range contracts.AllStatuses {
			if n := counts[s]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", s.Label(), n))
			}
		}
		fmt.Fprintf(&b, "상태: %s\n", strings.Join(parts, " · "))
	}

	b.WriteString(r.outcome(report.Outcome))
	return b.String()
}

func (r *Renderer) outcome(o contracts.Outcome) string {
	switch o {
	case contracts.OutcomeNoResults:
		return r.r.NewStyle().Foreground(lipgloss.Color("208")).Render("⚠ " + MessageNoResults)
	case contracts.OutcomeEmptySelection:
		return r.r.NewStyle().Foreground(lipgloss.Color("245")).Render(MessageEmptySelection)
	default:
		return r.r.NewStyle().Foreground(lipgloss.Color("46")).Render("✔ " + MessageDone)
	}
}

// Report renders title, table and summary
func (r *Renderer) Report(w io.Writer, report *contracts.ScanReport) error {
	parts := []string{r.Title(report)}
	if len(report.Results) > 0 {
		parts = append(parts, r.Table(report))
	}
	parts = append(parts, r.Summary(report))

	_, err := fmt.Fprintln(w, strings.Join(parts, "\n"))
	return err
}
