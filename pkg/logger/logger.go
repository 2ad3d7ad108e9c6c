package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/signalscan/pkg/config"
)

const service = "signalscan"

// Logger is the structured logger used across the scanner
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	zlog zerolog.Logger
}

// New logs to stderr; stdout carries only scan tables and JSON
func New(cfg *config.Config) *Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds the logger on out
// ⭐ SSOT: zerolog 인스턴스는 여기서만 생성
// LOG_FORMAT=console|pretty 면 사람용 출력, 그 외 JSON 한 줄
func NewWithWriter(cfg *config.Config, out io.Writer) *Logger {
	w := out
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "pretty":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zlog := zerolog.New(w).
		Level(levelOf(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", service).
		Str("env", cfg.Env).
		Logger()
	return &Logger{zlog: zlog}
}

// Nop discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// levelOf maps LOG_LEVEL; unknown values fall back to info
func levelOf(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zlog.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// WithField returns a child logger carrying key
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithFields returns a child logger carrying every entry of fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(fields).Logger()}
}

// WithError returns a child logger with the "error" field set
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// WithTicker tags per-ticker scan lines (ticker=SAP.DE)
func (l *Logger) WithTicker(ticker string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("ticker", ticker).Logger()}
}
