package universe

import (
	"errors"
	"fmt"
)

// DefaultPageSize is the number of tickers analysed per page
const DefaultPageSize = 40

// ErrPageOutOfRange is returned for a page outside [1, TotalPages]
var ErrPageOutOfRange = errors.New("page out of range")

// Page is one slice of a ticker list
type Page struct {
	Number       int      `json:"number"`
	Size         int      `json:"size"`
	TotalPages   int      `json:"total_pages"`
	TotalTickers int      `json:"total_tickers"`
	Tickers      []string `json:"tickers"`
}

// TotalPages returns ceil(n/size), at least 1
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate selects page (1-based) of tickers
func Paginate(tickers []string, size, page int) (Page, error) {
	if size <= 0 {
		return Page{}, fmt.Errorf("page size must be positive, got %d", size)
	}

	total := TotalPages(len(tickers), size)
	if page < 1 || page > total {
		return Page{}, fmt.Errorf("%w: %d (1-%d)", ErrPageOutOfRange, page, total)
	}

	start := (page - 1) * size
	end := start + size
	if start > len(tickers) {
		start = len(tickers)
	}
	if end > len(tickers) {
		end = len(tickers)
	}

	return Page{
		Number:       page,
		Size:         size,
		TotalPages:   total,
		TotalTickers: len(tickers),
		Tickers:      append([]string(nil), tickers[start:end]...),
	}, nil
}
