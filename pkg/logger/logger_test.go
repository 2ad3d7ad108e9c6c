package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalscan/pkg/config"
)

func jsonConfig(level string) *config.Config {
	return &config.Config{Env: "production", LogLevel: level, LogFormat: "json"}
}

// lines decodes one JSON object per log line
func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), sc.Text())
		out = append(out, entry)
	}
	return out
}

// swapStd replaces os.Stdout/os.Stderr with pipes while fn runs
func swapStd(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	fn()

	require.NoError(t, outW.Close())
	require.NoError(t, errW.Close())
	o, _ := io.ReadAll(outR)
	e, _ := io.ReadAll(errR)
	return string(o), string(e)
}

func TestNewLogsToStderrOnly(t *testing.T) {
	stdout, stderr := swapStd(t, func() {
		New(jsonConfig("info")).WithTicker("SAP.DE").Warn("Ticker skipped")
	})

	assert.Empty(t, stdout, "stdout carries only scan output")
	assert.Contains(t, stderr, `"ticker":"SAP.DE"`)
	assert.Contains(t, stderr, `"message":"Ticker skipped"`)
}

func TestServiceTag(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(jsonConfig("info"), &buf).Info("Scan started")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "signalscan", entries[0]["service"])
	assert.Equal(t, "production", entries[0]["env"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "Scan started", entries[0]["message"])
	assert.Contains(t, entries[0], zerolog.TimestampFieldName)
}

func TestLevelFilter(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"debug", "info", "warn", "error"}},
		{"info", []string{"info", "warn", "error"}},
		{"WARNING", []string{"warn", "error"}},
		{" error ", []string{"error"}},
		{"", []string{"info", "warn", "error"}},
		{"verbose", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(jsonConfig(tt.level), &buf)
			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e")

			var got []string
			for _, e := range lines(t, &buf) {
				got = append(got, e["level"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// 스캐너가 실제로 남기는 형태: 시장/페이지 필드 + 종목 태그 + 오류
func TestScanFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(jsonConfig("info"), &buf)

	scan := base.WithFields(map[string]interface{}{
		"market":  "dax",
		"page":    2,
		"profile": "enhanced",
	})
	scan.WithTicker("BMW.DE").
		WithError(errors.New("yahoo BMW.DE: no data")).
		WithField("reason", "NO_DATA").
		Warn("Ticker skipped")
	base.Info("Scan finished")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)

	skip := entries[0]
	assert.Equal(t, "dax", skip["market"])
	assert.Equal(t, 2.0, skip["page"])
	assert.Equal(t, "enhanced", skip["profile"])
	assert.Equal(t, "BMW.DE", skip["ticker"])
	assert.Equal(t, "yahoo BMW.DE: no data", skip["error"])
	assert.Equal(t, "NO_DATA", skip["reason"])
	assert.Equal(t, "warn", skip["level"])

	// child fields do not leak into the parent
	assert.NotContains(t, entries[1], "ticker")
	assert.NotContains(t, entries[1], "market")
}

func TestConsoleFormat(t *testing.T) {
	for _, format := range []string{"console", "pretty", "PRETTY"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{Env: "development", LogLevel: "info", LogFormat: format}
			NewWithWriter(cfg, &buf).WithTicker("AAPL").Info("Ticker classified")

			out := buf.String()
			assert.False(t, strings.HasPrefix(out, "{"), "console output is not JSON")
			assert.Contains(t, out, "Ticker classified")
			assert.Contains(t, out, "AAPL")
		})
	}
}

func TestNop(t *testing.T) {
	stdout, stderr := swapStd(t, func() {
		log := Nop()
		log.WithTicker("SAP.DE").WithError(errors.New("x")).Error("dropped")
		log.WithFields(map[string]interface{}{"page": 1}).Info("dropped")
	})
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}
