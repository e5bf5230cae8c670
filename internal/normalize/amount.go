package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

// NormalizeAmount coerces the "amount" value of a decoded reply to a float64.
// Numbers pass through; strings are stripped of currency symbols, thousands
// separators, and other noise before parsing. Anything unparseable is 0.0.
func NormalizeAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return parseAmountString(n)
	default:
		return 0.0
	}
}

func parseAmountString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.0
	}

	var b strings.Builder
	seenDot := false
	seenDigit := false
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			seenDigit = true
		case r == '.' && !seenDot:
			b.WriteRune(r)
			seenDot = true
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	if !seenDigit {
		return 0.0
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0.0
	}
	return f
}
