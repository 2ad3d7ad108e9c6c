package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/pkg/config"
	"github.com/wonny/signalscan/pkg/httputil"
	"github.com/wonny/signalscan/pkg/logger"
)

// 2026-03-02 .. 2026-03-05 08:00 UTC, one of them a holiday (null close)
const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "SAP.DE", "currency": "EUR", "gmtoffset": 3600},
      "timestamp": [1772697600, 1772438400, 1772524800, 1772611200],
      "indicators": {"quote": [{
        "close":  [103.5, 100.25, null, 102.0],
        "volume": [1300, 1000, null, null]
      }]}
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{HTTP: config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "signalscan-test"}}
	c := NewClient(httputil.New(cfg, logger.Nop()), logger.Nop(), server.URL)
	c.now = func() time.Time { return time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) }
	return c, server
}

func TestFetchDailyBars(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartJSON)
	})

	series, err := c.FetchDailyBars(context.Background(), "SAP.DE", 60)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/SAP.DE", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, fmt.Sprintf("period2=%d", time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC).Unix()))
	assert.Contains(t, gotQuery, fmt.Sprintf("period1=%d", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).Unix()))

	assert.Equal(t, "SAP.DE", series.Ticker)
	require.Equal(t, 3, series.Len(), "null close must be skipped")
	assert.Equal(t, []float64{100.25, 102.0, 103.5}, series.Closes(), "bars must be ascending")
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), series.Bars[0].Date)
	assert.True(t, series.Bars[0].HasVolume)
	assert.False(t, series.Bars[1].HasVolume)
	assert.False(t, series.HasVolume(0))
}

func TestFetchDailyBarsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusServiceUnavailable, "oops", contracts.ErrTransport},
		{"rate limited", http.StatusTooManyRequests, "", contracts.ErrTransport},
		{"not found status", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, contracts.ErrNoData},
		{"not found in body", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`, contracts.ErrNoData},
		{"other api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"invalid range"}}}`, contracts.ErrTransport},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, contracts.ErrNoData},
		{"all closes null", http.StatusOK, `{"chart":{"result":[{"timestamp":[1772438400],"indicators":{"quote":[{"close":[null],"volume":[null]}]}}],"error":null}}`, contracts.ErrNoData},
		{"malformed json", http.StatusOK, `{"chart":`, contracts.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := c.FetchDailyBars(context.Background(), "GONE.DE", 60)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "GONE.DE")
		})
	}
}

func TestFetchDailyBarsUnreachable(t *testing.T) {
	c, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := c.FetchDailyBars(context.Background(), "SAP.DE", 60)
	assert.ErrorIs(t, err, contracts.ErrTransport)
}

func TestFetchDailyBarsCanceled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchDailyBars(ctx, "SAP.DE", 60)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, contracts.ReasonCanceled, contracts.Reason(err))
}

func TestFetchDailyBarsEscapesTicker(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, chartJSON)
	})

	_, err := c.FetchDailyBars(context.Background(), "^GDAXI", 60)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gotPath, "/%5EGDAXI"), gotPath)
}

func TestParseChartKeepsLastBarOfDay(t *testing.T) {
	v1, v2, v3 := 100.0, 101.0, 101.5
	var chart chartResponse
	chart.Chart.Result = []chartResult{{
		Timestamp: []int64{1772438400, 1772524800, 1772550000},
	}}
	chart.Chart.Result[0].Indicators.Quote = []chartQuote{{Close: []*float64{&v1, &v2, &v3}}}

	bars, err := parseChart(chart)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 101.5, bars[1].Close)
}

func TestFetchDailyBarsRejectsNonPositiveDays(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.FetchDailyBars(context.Background(), "SAP.DE", 0)
	assert.Error(t, err)
}
