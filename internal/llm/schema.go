package llm

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// candidate record the extractor is asked to produce. The normalizer uses it
// to tell a clean reply from one that needs field-level repair; validation
// failure is informational, never fatal.
func BuildRecordJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"date":              map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"counterparty_name": map[string]any{"type": "string"},
			"amount":            map[string]any{"type": "number"},
			"category":          map[string]any{"type": "string", "minLength": 1},
			"is_deductible":     map[string]any{"type": "boolean"},
			"deduction_type":    map[string]any{"type": "string"},
			"deduction_details": map[string]any{"type": "string"},
			"description":       map[string]any{"type": "string"},
		},
		"required": []string{"date", "counterparty_name", "amount", "category", "is_deductible"},
	}
}
