// Package receipt decides which selected files are acceptable expense receipts.
package receipt

import (
	"mime"
	"strings"

	"github.com/garyjia/billed/internal/domain/entity"
)

// acceptedKinds are the raster image kinds a receipt may declare
var acceptedKinds = map[string]bool{
	"image/jpeg":  true,
	"image/jpg":   true,
	"image/pjpeg": true,
	"image/png":   true,
	"image/x-png": true,
}

// IsAcceptable reports whether the file declares a JPEG or PNG content kind.
// A nil file or a file without a declared kind is not acceptable.
func IsAcceptable(file *entity.ReceiptFile) bool {
	if file == nil {
		return false
	}
	return IsAcceptableKind(file.MimeType)
}

// IsAcceptableKind reports whether a content kind is an accepted raster image kind.
// Parameters such as charset are ignored.
func IsAcceptableKind(kind string) bool {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(kind)
	if err != nil {
		return false
	}
	return acceptedKinds[strings.ToLower(mediaType)]
}
