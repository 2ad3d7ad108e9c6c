package contracts

import (
	"context"
	"errors"
	"fmt"
)

// Per-ticker failure taxonomy
// 호출자는 errors.Is로 분류하고, 해당 종목만 건너뛴다 (배치 중단 없음)
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrNoData           = errors.New("no data")
	ErrTransport        = errors.New("transport failure")
	ErrComputation      = errors.New("computation error")
)

// Reason codes reported in skip records
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonNoData           = "no_data"
	ReasonTransport        = "transport_failure"
	ReasonComputation      = "computation_error"
	ReasonCanceled         = "canceled"
	ReasonUnknown          = "unknown"
)

// TickerError ties a failure to the ticker it happened on
type TickerError struct {
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error {
	return e.Err
}

// Reason maps an error onto its taxonomy code
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return ReasonInsufficientData
	case errors.Is(err, ErrNoData):
		return ReasonNoData
	case errors.Is(err, ErrTransport):
		return ReasonTransport
	case errors.Is(err, ErrComputation):
		return ReasonComputation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonUnknown
	}
}
