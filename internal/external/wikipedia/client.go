package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/pkg/httputil"
	"github.com/wonny/signalscan/pkg/logger"
)

// DefaultSP500URL is the constituents page
const DefaultSP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Client scrapes index constituents from Wikipedia
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	sp500URL   string
}

// NewClient creates a new Wikipedia client
func NewClient(httpClient *httputil.Client, log *logger.Logger, sp500URL string) *Client {
	if sp500URL == "" {
		sp500URL = DefaultSP500URL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		sp500URL:   sp500URL,
	}
}

// FetchSP500 returns the raw Symbol column of the constituents table, in page order
func (c *Client) FetchSP500(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, c.sp500URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wikipedia: %w", ctx.Err())
		}
		return nil, fmt.Errorf("wikipedia: %w: %v", contracts.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia: status %d: %w", resp.StatusCode, contracts.ErrTransport)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wikipedia: read body: %w: %v", contracts.ErrTransport, err)
	}

	symbols, err := parseConstituents(string(body), "Symbol")
	if err != nil {
		return nil, fmt.Errorf("wikipedia: %w", err)
	}

	c.logger.WithField("symbols", len(symbols)).Debug("Fetched S&P 500 constituents")
	return symbols, nil
}

// parseConstituents extracts one column of the constituents table
// table#constituents 우선, 없으면 첫 번째 table.wikitable
func parseConstituents(html, column string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w: %v", contracts.ErrNoData, err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		table = doc.Find("table.wikitable").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found: %w", contracts.ErrNoData)
	}

	col := -1
	table.Find("tr").First().Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(th.Text()), column) {
			col = i
			return false
		}
		return true
	})
	if col < 0 {
		return nil, fmt.Errorf("column %q not found: %w", column, contracts.ErrNoData)
	}

	var symbols []string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= col {
			return
		}
		text := strings.TrimSpace(cells.Eq(col).Text())
		if text != "" {
			symbols = append(symbols, text)
		}
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("column %q is empty: %w", column, contracts.ErrNoData)
	}
	return symbols, nil
}
