package normalize

import "github.com/taxlens/taxdoc/constants"

// NotApplicable is the sentinel for deduction fields with no value.
const NotApplicable = "N/A"

// StructuredRecord is the canonical output of the pipeline. Every field is
// always populated; a record is created once per request and never mutated
// after construction.
type StructuredRecord struct {
	Date             string  `json:"date"` // YYYY-MM-DD, or the raw string when unparseable, or ""
	CounterpartyName string  `json:"counterparty_name"`
	Amount           float64 `json:"amount"`
	Category         string  `json:"category"`
	IsDeductible     bool    `json:"is_deductible"`
	DeductionType    string  `json:"deduction_type"`
	DeductionDetails string  `json:"deduction_details"`
	Description      string  `json:"description"`
	RawExtractedText string  `json:"raw_extracted_text"`
}

// DefaultRecord is the deterministic fallback used when the candidate JSON
// cannot be decoded at all. The expense is presumed non-deductible.
func DefaultRecord(pinnedCategory string) StructuredRecord {
	category := pinnedCategory
	if category == "" {
		category = string(constants.Other)
	}
	return StructuredRecord{
		Date:             "",
		CounterpartyName: "",
		Amount:           0.0,
		Category:         category,
		IsDeductible:     false,
		DeductionType:    NotApplicable,
		DeductionDetails: NotApplicable,
		Description:      "",
		RawExtractedText: "",
	}
}
