package csvbars

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalscan/internal/contracts"
)

func TestRead(t *testing.T) {
	data := "Date,Open,Close,Volume\n" +
		"2026-01-06,1,101.5,\"1,200\"\n" +
		"2026-01-05,1,100,1000\n" +
		"2026-01-07,1,,900\n" +
		"2026-01-08,1,102,\n"

	s, err := Read(strings.NewReader(data), "SAP.DE")
	require.NoError(t, err)

	assert.Equal(t, "SAP.DE", s.Ticker)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{100, 101.5, 102}, s.Closes())
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), s.Bars[0].Date)
	assert.Equal(t, 1200.0, s.Bars[1].Volume)
	assert.False(t, s.Bars[2].HasVolume)
	assert.False(t, s.HasVolume(0))
}

func TestReadHeaderVariants(t *testing.T) {
	data := "\ufeffdate, CLOSE\n2026/01/05,10\n2026-01-06T00:00:00Z,11\n"

	s, err := Read(strings.NewReader(data), "X")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, s.Closes())
	assert.False(t, s.HasVolume(0))
}

func TestReadDuplicateDates(t *testing.T) {
	data := "Date,Close,Volume\n" +
		"2026-01-06,101,10\n" +
		"2026-01-05,100,10\n" +
		"2026-01-06,105,30\n" +
		"2026-01-07,106,40\n"

	s, err := Read(strings.NewReader(data), "SAP.DE")
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{100, 105, 106}, s.Closes())
	assert.Equal(t, 30.0, s.Bars[1].Volume)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		noData bool
	}{
		{"empty", "", true},
		{"header only", "Date,Close\n", true},
		{"missing close column", "Date,Open\n2026-01-05,1\n", false},
		{"missing date column", "Close\n1\n", false},
		{"bad date", "Date,Close\n05.01.2026,1\n", false},
		{"bad close", "Date,Close\n2026-01-05,abc\n", false},
		{"nan close", "Date,Close\n2026-01-05,NaN\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data), "X")
			require.Error(t, err)
			if tt.noData {
				assert.ErrorIs(t, err, contracts.ErrNoData)
			}
		})
	}
}
