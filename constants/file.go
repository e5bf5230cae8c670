package constants

import "strings"

// SupportedMediaTypes holds the media types the document endpoint accepts.
var SupportedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/bmp":       {},
	"image/gif":       {},
	"application/pdf": {},
}

// SupportedMediaTypesList returns the accepted media types for error messages.
func SupportedMediaTypesList() string {
	return "image/jpeg, image/png, image/webp, image/bmp, image/gif, application/pdf"
}

// AllowedExtensions maps file extensions to the media type we trust them as
// when the client declares no usable content type.
var AllowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
