package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CleanReply(t *testing.T) {
	n := New(nil)

	raw := `{
		"date": "2024-03-15",
		"counterparty_name": "Acme Office Supplies",
		"amount": 42.50,
		"category": "ignored by pinning",
		"is_deductible": true,
		"deduction_type": "Business expenses",
		"deduction_details": "Office consumables are fully deductible.",
		"description": "Printer paper and toner"
	}`

	rec := n.Normalize(raw, "Office Supplies")

	assert.Equal(t, "2024-03-15", rec.Date)
	assert.Equal(t, "Acme Office Supplies", rec.CounterpartyName)
	assert.Equal(t, 42.50, rec.Amount)
	assert.Equal(t, "Office Supplies", rec.Category)
	assert.True(t, rec.IsDeductible)
	assert.Equal(t, "Business expenses", rec.DeductionType)
	assert.Equal(t, "Printer paper and toner", rec.Description)
}

func TestNormalize_FencedEqualsUnfenced(t *testing.T) {
	n := New(nil)
	body := `{"date":"2024-01-02","counterparty_name":"Cafe","amount":9.90,"category":"Food","is_deductible":false,"description":"lunch"}`

	plain := n.Normalize(body, "Food")
	fencedTagged := n.Normalize("```json\n"+body+"\n```", "Food")
	fencedBare := n.Normalize("```\n"+body+"\n```", "Food")

	assert.Equal(t, plain, fencedTagged)
	assert.Equal(t, plain, fencedBare)
}

func TestNormalize_UndecodableYieldsDefaults(t *testing.T) {
	n := New(nil)

	for _, raw := range []string{"", "not json at all", "{truncated", "[]"} {
		rec := n.Normalize(raw, "Travel")
		assert.Equal(t, "Travel", rec.Category, "raw=%q", raw)
		assert.Equal(t, 0.0, rec.Amount)
		assert.False(t, rec.IsDeductible)
		assert.Equal(t, NotApplicable, rec.DeductionType)
		assert.Equal(t, NotApplicable, rec.DeductionDetails)
		assert.Empty(t, rec.Date)
	}
}

func TestNormalize_PinnedCategoryOverridesModel(t *testing.T) {
	n := New(nil)
	rec := n.Normalize(`{"category":"Entertainment","amount":1}`, "Medical")
	assert.Equal(t, "Medical", rec.Category)
}

func TestNormalize_NoPinFallsBackToModelCategory(t *testing.T) {
	n := New(nil)

	rec := n.Normalize(`{"category":"food","amount":1}`, "")
	assert.Equal(t, "Food", rec.Category)

	rec = n.Normalize(`{"amount":1}`, "")
	assert.Equal(t, "Other", rec.Category)
}

func TestNormalize_NonDeductibleClearsDeductionFields(t *testing.T) {
	n := New(nil)
	rec := n.Normalize(`{
		"is_deductible": false,
		"deduction_type": "Business expenses",
		"deduction_details": "should be discarded"
	}`, "Other")

	assert.False(t, rec.IsDeductible)
	assert.Equal(t, NotApplicable, rec.DeductionType)
	assert.Equal(t, NotApplicable, rec.DeductionDetails)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(nil)
	first := n.Normalize(`{"date":"03/15/2024","amount":"RM 1,234.56","is_deductible":"true"}`, "Utilities")

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second := n.Normalize(string(encoded), "Utilities")

	first.RawExtractedText = ""
	second.RawExtractedText = ""
	assert.Equal(t, first, second)
}

func TestNormalizeDate_Layouts(t *testing.T) {
	cases := map[string]string{
		"2024-03-15":     "2024-03-15",
		"03/15/2024":     "2024-03-15",
		"15/03/2024":     "2024-03-15",
		"03-15-2024":     "2024-03-15",
		"15-03-2024":     "2024-03-15",
		"03/15/24":       "2024-03-15",
		"2024/03/15":     "2024-03-15",
		"Mar 15, 2024":   "2024-03-15",
		"15 Mar 2024":    "2024-03-15",
		"March 15, 2024": "2024-03-15",
		"15 March 2024":  "2024-03-15",
		"20240315":       "2024-03-15",
		// unpadded components must parse like padded ones
		"3/14/2024": "2024-03-14",
		"1/5/2024":  "2024-01-05",
		"14/3/2024": "2024-03-14",
		"1-5-2024":  "2024-01-05",
		"3/5/24":    "2024-03-05",
		"2024/3/5":  "2024-03-05",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDate(in), "input %q", in)
	}
}

func TestNormalizeDate_AmbiguousPrefersMonthFirst(t *testing.T) {
	// both layouts match; month-first wins by order
	assert.Equal(t, "2024-01-02", NormalizeDate("01/02/2024"))
	// day > 12 only matches day-first
	assert.Equal(t, "2024-02-13", NormalizeDate("13/02/2024"))
}

func TestNormalizeDate_AbsentAndUnparseable(t *testing.T) {
	for _, in := range []string{"", "n/a", "N/A", "none", "unknown", "Not Provided", "  "} {
		assert.Empty(t, NormalizeDate(in), "input %q", in)
	}
	// unmatched values pass through so no information is lost
	assert.Equal(t, "sometime last spring", NormalizeDate("sometime last spring"))
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{42.5, 42.5},
		{"RM 1,234.56", 1234.56},
		{"$99.00", 99.0},
		{"1,234", 1234.0},
		{"USD 15.00 (card)", 15.0},
		{"-12.30", -12.30},
		{"unknown", 0.0},
		{"", 0.0},
		{nil, 0.0},
		{true, 0.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeAmount(tc.in), "input %v", tc.in)
	}
}

func TestNormalizeBool_FailsClosed(t *testing.T) {
	assert.True(t, NormalizeBool(true))
	assert.True(t, NormalizeBool("true"))
	assert.True(t, NormalizeBool(" TRUE "))
	assert.False(t, NormalizeBool(false))
	assert.False(t, NormalizeBool("yes"))
	assert.False(t, NormalizeBool("maybe"))
	assert.False(t, NormalizeBool(1.0))
	assert.False(t, NormalizeBool(nil))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  ```json\n{\"a\":1}\n```  "))
	// single-line fences with the tag glued to the payload
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```{\"a\":1}```"))
}

func TestNormalize_SingleLineFencedReply(t *testing.T) {
	n := New(nil)
	rec := n.Normalize("```json{\"amount\": 5, \"is_deductible\": true}```", "Food")
	assert.Equal(t, 5.0, rec.Amount)
	assert.True(t, rec.IsDeductible)
}
