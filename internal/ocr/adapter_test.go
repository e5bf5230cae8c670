package ocr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLines_RecTextsMap(t *testing.T) {
	raw := json.RawMessage(`{"rec_texts": ["ACME STORE", "TOTAL 12.50"], "rec_scores": [0.99, 0.97]}`)
	assert.Equal(t, []string{"ACME STORE", "TOTAL 12.50"}, ExtractLines(raw))
}

func TestExtractLines_RecResMap(t *testing.T) {
	raw := json.RawMessage(`{"rec_res": [["ACME STORE", 0.99], ["TOTAL 12.50", 0.97]]}`)
	assert.Equal(t, []string{"ACME STORE", "TOTAL 12.50"}, ExtractLines(raw))
}

func TestExtractLines_StringList(t *testing.T) {
	raw := json.RawMessage(`["ACME STORE", "TOTAL 12.50"]`)
	assert.Equal(t, []string{"ACME STORE", "TOTAL 12.50"}, ExtractLines(raw))
}

func TestExtractLines_TupleList(t *testing.T) {
	raw := json.RawMessage(`[
		[[[0,0],[10,0],[10,5],[0,5]], ["ACME STORE", 0.99]],
		[[[0,6],[10,6],[10,11],[0,11]], ["TOTAL 12.50", 0.97]]
	]`)
	assert.Equal(t, []string{"ACME STORE", "TOTAL 12.50"}, ExtractLines(raw))
}

func TestExtractLines_OuterListUnwrap(t *testing.T) {
	// per-image result wrapped in an outer single-element list
	raw := json.RawMessage(`[{"rec_texts": ["ACME STORE"]}]`)
	assert.Equal(t, []string{"ACME STORE"}, ExtractLines(raw))

	// a single-element string list is a result, not a wrapper
	raw = json.RawMessage(`["ACME STORE"]`)
	assert.Equal(t, []string{"ACME STORE"}, ExtractLines(raw))
}

func TestExtractLines_UnrecognizedShapes(t *testing.T) {
	for _, raw := range []string{
		``,
		`null`,
		`42`,
		`"just a string"`,
		`{"totally": "different"}`,
		`[]`,
		`{not json`,
	} {
		assert.Nil(t, ExtractLines(json.RawMessage(raw)), "raw=%q", raw)
	}
}

func TestExtractLines_SkipsMalformedEntries(t *testing.T) {
	raw := json.RawMessage(`{"rec_res": [["good line", 0.9], "bad entry", ["also good", 0.8]]}`)
	assert.Equal(t, []string{"good line", "also good"}, ExtractLines(raw))
}

func TestJoinLines(t *testing.T) {
	assert.Equal(t, "a\nb", JoinLines([]string{"a", "b"}))
	assert.Equal(t, "", JoinLines(nil))
}

func TestDetectFormat(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}

	mt, ok := DetectFormat(pngHeader)
	assert.True(t, ok)
	assert.Equal(t, "image/png", mt)

	mt, ok = DetectFormat(jpegHeader)
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", mt)

	mt, ok = DetectFormat([]byte("%PDF-1.7 ..."))
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", mt)

	_, ok = DetectFormat([]byte("plain text, not a document"))
	assert.False(t, ok)

	_, ok = DetectFormat(nil)
	assert.False(t, ok)
}
