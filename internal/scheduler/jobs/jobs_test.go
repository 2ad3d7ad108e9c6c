package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalscan/internal/contracts"
	"github.com/wonny/signalscan/internal/scanner"
	"github.com/wonny/signalscan/internal/universe"
	"github.com/wonny/signalscan/pkg/logger"
)

func TestParsePages(t *testing.T) {
	pages, err := ParsePages([]string{"dax", " SP500:3 ", "", "dax:1", "dax:2"})
	require.NoError(t, err)
	assert.Equal(t, []Page{
		{Market: "dax", Page: 1},
		{Market: "sp500", Page: 3},
		{Market: "dax", Page: 2},
	}, pages)

	for _, bad := range []string{"dax:0", "dax:x", ":2"} {
		_, err := ParsePages([]string{bad})
		assert.Error(t, err, bad)
	}
}

type recordingScanner struct {
	calls []scanner.Request
	fail  map[string]error
}

func (s *recordingScanner) Scan(ctx context.Context, req scanner.Request) (*contracts.ScanReport, error) {
	s.calls = append(s.calls, req)
	if err := s.fail[fmt.Sprintf("%s:%d", req.Market, req.Page)]; err != nil {
		return nil, err
	}
	return &contracts.ScanReport{Market: req.Market, Page: req.Page, Outcome: contracts.OutcomeOK}, nil
}

func TestRefreshJob(t *testing.T) {
	s := &recordingScanner{fail: map[string]error{"dax:2": universe.ErrPageOutOfRange}}
	pages := []Page{{"dax", 1}, {"dax", 2}, {"sp500", 1}}
	job := NewRefreshJob(s, pages, "0 0 22 * * MON-FRI", "enhanced", logger.Nop())

	assert.Equal(t, "scan_refresh", job.Name())
	assert.Equal(t, "0 0 22 * * MON-FRI", job.Schedule())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, universe.ErrPageOutOfRange)
	assert.Contains(t, err.Error(), "1/3 pages failed")

	// a failing page does not stop the others
	require.Len(t, s.calls, 3)
	assert.Equal(t, "sp500", s.calls[2].Market)
	assert.Equal(t, "enhanced", s.calls[0].Profile)
}

func TestRefreshJobCanceled(t *testing.T) {
	s := &recordingScanner{}
	job := NewRefreshJob(s, []Page{{"dax", 1}}, "@daily", "", logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.calls)
}

type fakeConstituents struct {
	tickers []string
	err     error
	calls   int
}

func (f *fakeConstituents) FetchSP500(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.calls++
	return f.tickers, f.err
}

func TestUniverseReloadJob(t *testing.T) {
	reg, err := universe.NewRegistry(universe.DefaultMarkets())
	require.NoError(t, err)

	remote := &fakeConstituents{tickers: []string{"AAPL", "MSFT"}}
	provider := universe.NewProvider(reg, remote, 0, logger.Nop())
	job := NewUniverseReloadJob(provider, "@every 24h", logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 2, remote.calls, "cache is dropped before each reload")

	remote.err = errors.New("wikipedia down")
	require.NoError(t, job.Run(context.Background()), "fallback is not a failure")

	list, err := provider.Tickers(context.Background(), universe.MarketSP500)
	require.NoError(t, err)
	assert.True(t, list.FromFallback)
}

func TestUniverseReloadJobCanceled(t *testing.T) {
	reg, err := universe.NewRegistry(universe.DefaultMarkets())
	require.NoError(t, err)
	provider := universe.NewProvider(reg, &fakeConstituents{tickers: []string{"AAPL"}}, time.Hour, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewUniverseReloadJob(provider, "@daily", logger.Nop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
