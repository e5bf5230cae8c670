package ocr

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/taxlens/taxdoc/constants"
)

// DetectFormat sniffs the real media type of an upload from its leading bytes
// and reports whether the content is a decodable supported document. The
// declared content type is never trusted on its own.
func DetectFormat(data []byte) (mediaType string, ok bool) {
	if len(data) == 0 {
		return "", false
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return "application/pdf", true
	}
	sniffed := http.DetectContentType(data)
	// strip any parameters, e.g. "text/plain; charset=utf-8"
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = strings.TrimSpace(sniffed[:i])
	}
	if _, supported := constants.SupportedMediaTypes[sniffed]; supported {
		return sniffed, true
	}
	return sniffed, false
}
