package csvbars

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/signalscan/internal/contracts"
)

// Accepted date layouts (first match wins)
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// Read parses a Date,Close[,Volume] CSV into a series
// ⭐ SSOT: 로컬 CSV → PriceSeries 변환은 여기서만
// 헤더 대소문자 무시 (Adj Close 는 사용하지 않음)
// 빈 종가 행은 건너뛰고, 결과는 날짜 오름차순
func Read(r io.Reader, ticker string) (contracts.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return contracts.PriceSeries{}, fmt.Errorf("csv %s: empty file: %w", ticker, contracts.ErrNoData)
		}
		return contracts.PriceSeries{}, fmt.Errorf("csv %s: read header: %w", ticker, err)
	}

	cols := columnIndex(header)
	dateCol, ok := cols["date"]
	if !ok {
		return contracts.PriceSeries{}, fmt.Errorf("csv %s: missing Date column", ticker)
	}
	closeCol, ok := cols["close"]
	if !ok {
		return contracts.PriceSeries{}, fmt.Errorf("csv %s: missing Close column", ticker)
	}
	volumeCol, hasVolume := cols["volume"]

	var bars []contracts.Bar
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("csv %s line %d: %w", ticker, line, err)
		}

		if field(record, closeCol) == "" {
			continue
		}

		date, err := parseDate(field(record, dateCol))
		if err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("csv %s line %d: %w", ticker, line, err)
		}
		closePrice, err := parseNumber(field(record, closeCol))
		if err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("csv %s line %d: close: %w", ticker, line, err)
		}

		bar := contracts.Bar{Date: date, Close: closePrice}
		if hasVolume {
			if raw := field(record, volumeCol); raw != "" {
				v, err := parseNumber(raw)
				if err != nil {
					return contracts.PriceSeries{}, fmt.Errorf("csv %s line %d: volume: %w", ticker, line, err)
				}
				bar.Volume, bar.HasVolume = v, true
			}
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return contracts.PriceSeries{}, fmt.Errorf("csv %s: no rows: %w", ticker, contracts.ErrNoData)
	}

	// 안정 정렬이라 같은 날짜는 파일 순서 유지, 마지막 행 우선
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return contracts.PriceSeries{Ticker: ticker, Bars: contracts.DedupeDays(bars)}, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}
