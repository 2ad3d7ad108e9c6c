package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/scanconfig"
	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/internal/scheduler/jobs"
	"github.com/wonny/signalscan/internal/signal"
	"github.com/wonny/signalscan/pkg/config"
	"github.com/wonny/signalscan/pkg/logger"
)

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := progressPrinter(&buf)

	p(scanner.Progress{Done: 3, Total: 40, Ticker: "AAPL"})
	p(scanner.Progress{Done: 4, Total: 40, Ticker: "XYZ", Err: &contracts.TickerError{Ticker: "XYZ", Err: contracts.ErrNoData}})

	assert.Equal(t, "[Scan] AAPL [3/40]\n[Scan] XYZ (건너뜀: no_data) [4/40]\n", buf.String())
}

func TestWriteReportJSON(t *testing.T) {
	report := &contracts.ScanReport{
		Market:  "dax",
		Page:    1,
		Outcome: contracts.OutcomeOK,
		Results: []contracts.ClassificationResult{
			{Ticker: "SAP.DE", DisparityPct: 7.9498, Status: contracts.StatusHold},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, true))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "OK", decoded["outcome"])

	rows := decoded["results"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "7.95%", rows[0].(map[string]interface{})["disparity"])
}

func TestWriteReportTable(t *testing.T) {
	report := &contracts.ScanReport{
		Market:     "dax",
		MarketName: "독일 (DAX)",
		Page:       1,
		TotalPages: 1,
		Outcome:    contracts.OutcomeNoResults,
		Skipped:    []contracts.Skip{{Ticker: "X", Reason: contracts.ReasonNoData}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, false))
	assert.Contains(t, buf.String(), "독일 (DAX)")
}

func TestRefreshPages(t *testing.T) {
	a := &app{
		cfg:     &config.Config{Scan: config.ScanConfig{RefreshMarkets: []string{"dax", "sp500:2"}}},
		scanCfg: &scanconfig.Config{},
	}

	pages, err := refreshPages(a)
	require.NoError(t, err)
	assert.Equal(t, []jobs.Page{{Market: "dax", Page: 1}, {Market: "sp500", Page: 2}}, pages)

	// YAML pages win over the env list
	a.scanCfg.Refresh.Pages = []scanconfig.RefreshPage{{Market: "dax", Page: 3}}
	pages, err = refreshPages(a)
	require.NoError(t, err)
	assert.Equal(t, []jobs.Page{{Market: "dax", Page: 3}}, pages)

	a.scanCfg.Refresh.Pages = nil
	a.cfg.Scan.RefreshMarkets = []string{"dax:0"}
	_, err = refreshPages(a)
	assert.Error(t, err)
}

func TestBuildSchedulerDisabled(t *testing.T) {
	a := &app{cfg: &config.Config{}, scanCfg: &scanconfig.Config{}}

	sched, err := buildScheduler(a)
	require.NoError(t, err)
	assert.Nil(t, sched)
}

func TestBuildSchedulerJobs(t *testing.T) {
	a := &app{
		cfg: &config.Config{Scan: config.ScanConfig{
			RefreshSchedule: "0 0 22 * * MON-FRI",
			RefreshMarkets:  []string{"dax"},
			UniverseReload:  "@every 6h",
		}},
		scanCfg: &scanconfig.Config{},
		log:     logger.Nop(),
	}

	sched, err := buildScheduler(a)
	require.NoError(t, err)
	require.NotNil(t, sched)

	list := sched.Jobs()
	require.Len(t, list, 2)
	assert.Equal(t, "scan_refresh", list[0].Name)
	assert.Equal(t, "0 0 22 * * MON-FRI", list[0].Schedule)
	assert.Equal(t, "universe_reload", list[1].Name)

	// YAML schedule wins over REFRESH_SCHEDULE
	a.scanCfg.Refresh.Schedule = "0 30 21 * * *"
	a.cfg.Scan.UniverseReload = ""
	sched, err = buildScheduler(a)
	require.NoError(t, err)
	list = sched.Jobs()
	require.Len(t, list, 1)
	assert.Equal(t, "0 30 21 * * *", list[0].Schedule)
}

func TestBuildClassifiers(t *testing.T) {
	classifiers, err := buildClassifiers(&scanconfig.Config{}, "https://finance.yahoo.com/quote/{ticker}")
	require.NoError(t, err)
	assert.Contains(t, classifiers, "classic")
	assert.Contains(t, classifiers, "enhanced")
	assert.Equal(t, "https://finance.yahoo.com/quote/AAPL", classifiers["classic"].ChartURL("AAPL"))

	// short window above the long window fails rule validation
	bad := &scanconfig.Config{Profiles: map[string]scanconfig.ProfileSpec{
		"tight": {Rules: signal.Rules{ShortWindow: 30}},
	}}
	_, err = buildClassifiers(bad, "")
	assert.Error(t, err)
}
