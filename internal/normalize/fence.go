package normalize

import "strings"

// StripCodeFence removes a wrapping markdown code fence, with or without a
// language tag. Text that is not fenced is returned trimmed but otherwise
// unchanged.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = s[3:]
	// drop a language tag like "json"; some models glue it to the payload
	// with no newline in between
	i := 0
	for i < len(s) && s[i] >= 'a' && s[i] <= 'z' {
		i++
	}
	if i > 0 && (i == len(s) || isTagBoundary(s[i])) {
		s = s[i:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isTagBoundary(c byte) bool {
	switch c {
	case '\n', '\r', ' ', '\t', '{', '[', '"':
		return true
	}
	return false
}
