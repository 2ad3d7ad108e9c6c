package universe

import "strings"

// NormalizeSymbol trims and upper-cases a ticker
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// YahooShareClass rewrites share-class dots the way the chart API expects (BRK.B → BRK-B)
// 거래소 접미사(.DE 등)가 붙은 목록에는 적용하지 않는다
func YahooShareClass(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-")
}

// Dedupe drops empty and repeated symbols, keeping first occurrence order
func Dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalizeAll(symbols []string, shareClass bool) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		s = NormalizeSymbol(s)
		if shareClass {
			s = YahooShareClass(s)
		}
		out[i] = s
	}
	return Dedupe(out)
}
