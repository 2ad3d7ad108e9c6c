package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/pkg/httputil"
	"github.com/wonny/signalscan/pkg/logger"
)

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches daily history from the Yahoo Finance chart API
// ⭐ SSOT: 시세 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// chartResponse is the /v8/finance/chart payload
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

// chartQuote holds nullable per-bar series
type chartQuote struct {
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchDailyBars returns the trailing `days` calendar days of daily bars, oldest first
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, days int) (contracts.PriceSeries, error) {
	series := contracts.PriceSeries{Ticker: ticker}
	if days <= 0 {
		return series, fmt.Errorf("yahoo %s: days must be positive, got %d", ticker, days)
	}

	end := c.now()
	start := end.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.Unix()))
	params.Set("interval", "1d")
	params.Set("events", "history")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		if ctx.Err() != nil {
			return series, fmt.Errorf("yahoo %s: %w", ticker, ctx.Err())
		}
		return series, fmt.Errorf("yahoo %s: %w: %v", ticker, contracts.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series, fmt.Errorf("yahoo %s: read body: %w: %v", ticker, contracts.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return series, fmt.Errorf("yahoo %s: status 404: %w", ticker, contracts.ErrNoData)
	case resp.StatusCode != http.StatusOK:
		return series, fmt.Errorf("yahoo %s: status %d: %w", ticker, resp.StatusCode, contracts.ErrTransport)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return series, fmt.Errorf("yahoo %s: decode: %w: %v", ticker, contracts.ErrTransport, err)
	}

	bars, err := parseChart(chart)
	if err != nil {
		return series, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	series.Bars = bars

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   len(bars),
		"days":   days,
	}).Debug("Fetched daily bars")

	return series, nil
}

// parseChart converts the payload into ascending bars
// 종가가 null 인 봉(휴장일)은 건너뛴다
func parseChart(chart chartResponse) ([]contracts.Bar, error) {
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("%s: %w", e.Description, contracts.ErrNoData)
		}
		return nil, fmt.Errorf("api error %s: %s: %w", e.Code, e.Description, contracts.ErrTransport)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty result: %w", contracts.ErrNoData)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("no bars: %w", contracts.ErrNoData)
	}
	quote := result.Indicators.Quote[0]
	offset := time.Duration(result.Meta.GMTOffset) * time.Second

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		closePrice := *quote.Close[i]
		if math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
			continue
		}

		bar := contracts.Bar{
			Date:  tradingDay(time.Unix(ts, 0).UTC().Add(offset)),
			Close: closePrice,
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
			bar.HasVolume = true
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("all bars empty: %w", contracts.ErrNoData)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return contracts.DedupeDays(bars), nil
}

func tradingDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
