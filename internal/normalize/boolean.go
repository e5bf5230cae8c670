package normalize

import "strings"

// NormalizeBool coerces a decoded "is_deductible" value. Only an explicit
// true survives; ambiguity fails closed to non-deductible.
func NormalizeBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}
