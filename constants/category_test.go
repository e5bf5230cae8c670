package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		known bool
	}{
		{"Food", "Food", true},
		{"food", "Food", true},
		{" FOOD ", "Food", true},
		{"meals", "Food", true},
		{"taxi", "Transportation", true},
		{"office supply", "Office Supplies", true},
		{"electricity", "Utilities", true},
		{"Cryptocurrency Fees", "Cryptocurrency Fees", false}, // open vocabulary
		{"", "Other", false},
		{"   ", "Other", false},
	}
	for _, tc := range cases {
		got, known := Canonicalize(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
		assert.Equal(t, tc.known, known, "input %q", tc.in)
	}
}

func TestAsStringSlice(t *testing.T) {
	got := AsStringSlice()
	assert.Contains(t, got, "Food")
	assert.Contains(t, got, "Other")
	assert.Len(t, got, len(allCategories))
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "png", NormalizeExt(".PNG"))
	assert.Equal(t, "jpeg", NormalizeExt("jpeg"))
	assert.Equal(t, "", NormalizeExt("."))
}
