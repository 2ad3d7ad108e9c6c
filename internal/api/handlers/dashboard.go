package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/resultcache"
	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/logger"
)

// DashboardHandler serves the HTML dashboard
// 시장/페이지 선택 → ?run=1 로 스캔 실행, 없으면 캐시된 결과 표시
type DashboardHandler struct {
	registry *universe.Registry
	scanner  Scanner
	store    resultcache.Store
	logger   *logger.Logger
	tmpl     *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(registry *universe.Registry, s Scanner, store resultcache.Store, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		registry: registry,
		scanner:  s,
		store:    store,
		logger:   log,
		tmpl:     template.Must(template.New("dashboard").Parse(dashboardHTML)),
	}
}

type marketLink struct {
	ID     string
	Name   string
	Active bool
}

type dashboardView struct {
	Markets      []marketLink
	Market       universe.Market
	Page         int
	TotalPages   int
	TickerCount  int
	FromFallback bool
	Profiles     []string
	Profile      string

	Report  *ReportResponse
	Message string
	Level   string // success | warning | info | error
}

// Index redirects to the first market
// GET /
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	markets := h.registry.All()
	http.Redirect(w, r, "/markets/"+markets[0].ID, http.StatusFound)
}

// Market renders one market page
// GET /markets/{market}?page=N&run=1&profile=enhanced
func (h *DashboardHandler) Market(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	marketID := mux.Vars(r)["market"]
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			h.renderError(w, http.StatusBadRequest, "page must be a number")
			return
		}
		page = n
	}

	list, sel, err := h.scanner.Select(ctx, marketID, page)
	if err != nil {
		h.renderError(w, statusFor(err), err.Error())
		return
	}

	view := dashboardView{
		Market:       list.Market,
		Page:         sel.Number,
		TotalPages:   sel.TotalPages,
		TickerCount:  len(sel.Tickers),
		FromFallback: list.FromFallback,
		Profiles:     h.scanner.Profiles(),
		Profile:      strings.ToLower(strings.TrimSpace(query.Get("profile"))),
	}
	if view.Profile == "" {
		view.Profile = h.scanner.DefaultProfile()
	}
	for _, m := range h.registry.All() {
		view.Markets = append(view.Markets, marketLink{ID: m.ID, Name: m.Name, Active: m.ID == list.Market.ID})
	}

	var report *contracts.ScanReport
	if query.Get("run") == "1" {
		report, err = h.scanner.Scan(ctx, scanner.Request{Market: list.Market.ID, Page: sel.Number, Profile: view.Profile})
		if err != nil {
			h.logger.WithError(err).WithField("market", list.Market.ID).Warn("Dashboard scan failed")
			view.Message, view.Level = err.Error(), "error"
			h.render(w, statusFor(err), view)
			return
		}
	} else {
		report, _, err = h.store.Get(ctx, resultcache.Key{Market: list.Market.ID, Page: sel.Number, Profile: view.Profile})
		if err != nil {
			h.logger.WithError(err).Warn("Failed to read result cache")
		}
	}

	if report != nil {
		resp := NewReportResponse(report)
		view.Report = &resp
		switch report.Outcome {
		case contracts.OutcomeNoResults:
			view.Message, view.Level = "분석 결과가 없습니다. 티커를 확인해 주세요.", "warning"
		case contracts.OutcomeEmptySelection:
			view.Message, view.Level = "분석 대상 종목이 없습니다.", "info"
		default:
			view.Message, view.Level = "분석이 완료되었습니다!", "success"
		}
	}

	h.render(w, http.StatusOK, view)
}

func (h *DashboardHandler) render(w http.ResponseWriter, status int, view dashboardView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.Execute(w, view); err != nil {
		h.logger.WithError(err).Error("Failed to render dashboard")
	}
}

func (h *DashboardHandler) renderError(w http.ResponseWriter, status int, message string) {
	view := dashboardView{Message: message, Level: "error"}
	for _, m := range h.registry.All() {
		view.Markets = append(view.Markets, marketLink{ID: m.ID, Name: m.Name})
	}
	h.render(w, status, view)
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>글로벌 스마트 스캐너</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
nav { width: 240px; padding: 16px; background: #f4f5f7; min-height: 100vh; }
nav a { display: block; padding: 6px 0; color: #333; text-decoration: none; }
nav a.active { font-weight: bold; color: #0b5; }
main { flex: 1; padding: 16px 24px; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: 6px 8px; text-align: left; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.msg { padding: 8px 12px; margin: 12px 0; border-radius: 4px; }
.msg-success { background: #e6f7ec; } .msg-warning { background: #fff4e0; }
.msg-info { background: #eef2f7; } .msg-error { background: #fde8e8; }
.status-overheated { color: #d11; font-weight: bold; }
.status-trend-break { color: #e70; }
.status-strong-buy, .status-strong-buy-confirmed { color: #0a4; font-weight: bold; }
.status-buy-interest { color: #b80; }
.status-hold { color: #16c; }
.status-sell-watch { color: #b0b; }
.status-neutral { color: #777; }
</style>
</head>
<body>
<nav>
<h2>🌍 글로벌 마켓 스캐너</h2>
<h4>시장 선택</h4>
{{range .Markets}}<a href="/markets/{{.ID}}"{{if .Active}} class="active"{{end}}>{{.Name}}</a>
{{end}}
{{if .Market.ID}}
<form method="get" action="/markets/{{.Market.ID}}">
<label>페이지 선택 (1-{{.TotalPages}})
<input type="number" name="page" min="1" max="{{.TotalPages}}" value="{{.Page}}"></label>
<select name="profile">{{$p := .Profile}}{{range .Profiles}}<option value="{{.}}"{{if eq . $p}} selected{{end}}>{{.}}</option>{{end}}</select>
<input type="hidden" name="run" value="1">
<p>현재 분석 대상: {{.TickerCount}} 종목</p>
<button type="submit">🚀 분석 시작</button>
</form>
{{if .FromFallback}}<p class="msg msg-warning">원격 종목 목록을 불러오지 못해 기본 목록을 사용합니다.</p>{{end}}
{{end}}
</nav>
<main>
{{with .Report}}
<h3>📊 {{.MarketName}} - {{.Page}}페이지 분석 결과</h3>
{{if .Results}}
<table>
<thead><tr><th>티커</th><th>등락률</th><th>현재가</th><th>20MA</th><th>이격률</th><th>상태</th><th>해석</th><th>차트</th></tr></thead>
<tbody>
{{range .Results}}<tr>
<td>{{.Ticker}}</td>
<td class="num">{{printf "%.2f" .ChangePct}}</td>
<td class="num">{{printf "%.2f" .LastClose}}</td>
<td class="num">{{printf "%.2f" .MA20}}</td>
<td class="num">{{.Disparity}}</td>
<td class="{{.StatusClass}}">{{.StatusLabel}}</td>
<td>{{.Trend}}</td>
<td>{{if .ChartURL}}<a href="{{.ChartURL}}" target="_blank" rel="noopener">차트</a>{{end}}</td>
</tr>
{{end}}</tbody>
</table>
{{end}}
{{if .Skipped}}<details><summary>건너뛴 종목 {{len .Skipped}}</summary><ul>
{{range .Skipped}}<li>{{.Ticker}}: {{.Reason}}</li>{{end}}
</ul></details>{{end}}
{{end}}
{{if .Message}}<p class="msg msg-{{.Level}}">{{.Message}}</p>{{end}}
</main>
</body>
</html>
`
