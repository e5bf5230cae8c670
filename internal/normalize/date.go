package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first match wins. Month-first layouts
// precede day-first so ambiguous numeric dates resolve deterministically.
// Non-padded tokens accept both "1/5/2024" and "01/05/2024".
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"1/2/06",
	"2/1/06",
	"2006/1/2",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	"20060102",
}

// absentDateValues are treated as "no date on the document".
var absentDateValues = map[string]struct{}{
	"":             {},
	"n/a":          {},
	"na":           {},
	"none":         {},
	"null":         {},
	"unknown":      {},
	"not provided": {},
	"not found":    {},
}

// NormalizeDate maps an arbitrary date string to ISO 8601 (YYYY-MM-DD).
// Values that signal absence become the empty string; values that match no
// known layout are passed through unchanged so no information is lost.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if _, absent := absentDateValues[strings.ToLower(s)]; absent {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
