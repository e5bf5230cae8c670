package ocr

import (
	"encoding/json"
	"strings"
)

// resultShape classifies the engine result structure. The engine's output
// format is not fixed; each recognized shape maps to a pure extraction
// function, and anything else degrades to empty text rather than failing.
type resultShape int

const (
	shapeUnrecognized resultShape = iota
	shapeRecTextsMap              // {"rec_texts": ["line", ...]}
	shapeRecResMap                // {"rec_res": [["line", 0.98], ...]}
	shapeStringList               // ["line", ...]
	shapeTupleList                // [[box, ["line", 0.98]], ...]
)

// ExtractLines normalizes a raw engine result into an ordered line sequence.
// An undecodable or unrecognized payload yields nil; downstream stages must
// tolerate empty input.
func ExtractLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	// some engines wrap the per-image result in an outer single-element list
	if outer, ok := v.([]any); ok && len(outer) == 1 {
		if _, isStr := outer[0].(string); !isStr {
			v = outer[0]
		}
	}

	switch classifyShape(v) {
	case shapeRecTextsMap:
		return linesFromRecTexts(v.(map[string]any))
	case shapeRecResMap:
		return linesFromRecRes(v.(map[string]any))
	case shapeStringList:
		return linesFromStrings(v.([]any))
	case shapeTupleList:
		return linesFromTuples(v.([]any))
	default:
		return nil
	}
}

func classifyShape(v any) resultShape {
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t["rec_texts"].([]any); ok {
			return shapeRecTextsMap
		}
		if _, ok := t["rec_res"].([]any); ok {
			return shapeRecResMap
		}
	case []any:
		if len(t) == 0 {
			return shapeUnrecognized
		}
		if _, ok := t[0].(string); ok {
			return shapeStringList
		}
		if pair, ok := t[0].([]any); ok && len(pair) == 2 {
			if _, ok := pair[1].([]any); ok {
				return shapeTupleList
			}
		}
	}
	return shapeUnrecognized
}

func linesFromRecTexts(m map[string]any) []string {
	items, _ := m["rec_texts"].([]any)
	var lines []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			lines = append(lines, s)
		}
	}
	return lines
}

// linesFromRecRes handles [["text", confidence], ...] entries.
func linesFromRecRes(m map[string]any) []string {
	items, _ := m["rec_res"].([]any)
	var lines []string
	for _, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			lines = append(lines, s)
		}
	}
	return lines
}

func linesFromStrings(items []any) []string {
	var lines []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			lines = append(lines, s)
		}
	}
	return lines
}

// linesFromTuples handles [[boundingBox, ["text", confidence]], ...] entries.
func linesFromTuples(items []any) []string {
	var lines []string
	for _, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		inner, ok := pair[1].([]any)
		if !ok || len(inner) < 1 {
			continue
		}
		if s, ok := inner[0].(string); ok {
			lines = append(lines, s)
		}
	}
	return lines
}

// JoinLines concatenates extracted lines with newline separators.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
