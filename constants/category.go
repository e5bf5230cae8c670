package constants

import (
	"strings"
)

type Category string

// Guided vocabulary for the classifier. The vocabulary is open: the model may
// emit labels outside this list and they are kept as-is, but these are the
// examples the classifier prompt enumerates.
const (
	Beverage       Category = "Beverage"
	Entertainment  Category = "Entertainment"
	Food           Category = "Food"
	Groceries      Category = "Groceries"
	Healthcare     Category = "Healthcare"
	OfficeSupplies Category = "Office Supplies"
	Rent           Category = "Rent"
	Software       Category = "Software"
	Transportation Category = "Transportation"
	Travel         Category = "Travel"
	Utilities      Category = "Utilities"
	Other          Category = "Other"
)

var allCategories = []Category{
	Beverage,
	Entertainment,
	Food,
	Groceries,
	Healthcare,
	OfficeSupplies,
	Rent,
	Software,
	Transportation,
	Travel,
	Utilities,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize folds common synonyms onto the guided vocabulary. Unknown labels
// are returned unchanged (open vocabulary); only an empty input falls back to
// Other.
func Canonicalize(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return string(Other), false
	}

	normalized := strings.ToLower(trimmed)

	synonyms := map[string]Category{
		"meals":         Food,
		"restaurant":    Food,
		"dining":        Food,
		"drinks":        Beverage,
		"grocery":       Groceries,
		"supermarket":   Groceries,
		"medical":       Healthcare,
		"pharmacy":      Healthcare,
		"stationery":    OfficeSupplies,
		"office supply": OfficeSupplies,
		"saas":          Software,
		"subscription":  Software,
		"taxi":          Transportation,
		"ride-share":    Transportation,
		"fuel":          Transportation,
		"hotel":         Travel,
		"airline":       Travel,
		"flight":        Travel,
		"electricity":   Utilities,
		"internet":      Utilities,
		"water":         Utilities,
	}

	if cat, ok := synonyms[normalized]; ok {
		return string(cat), true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return string(cat), true
		}
	}

	return trimmed, false
}
