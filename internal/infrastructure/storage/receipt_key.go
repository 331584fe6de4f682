package storage

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeFolderChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// allowedExtensions maps receipt extensions to their normalised form
var allowedExtensions = map[string]string{
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".png":  ".png",
}

// NewReceiptKey builds a fresh storage key for a receipt: one folder per
// submitter and a random file name keeping the original extension.
func NewReceiptKey(email, fileName string) string {
	folder := SanitizeFolderName(email)
	if folder == "" {
		folder = "anonymous"
	}

	ext := allowedExtensions[strings.ToLower(filepath.Ext(fileName))]
	return path.Join(folder, uuid.NewString()+ext)
}

// SanitizeFolderName returns a filesystem-safe folder name.
// "@" and "." become "_" so that distinct emails stay distinct.
func SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.NewReplacer("@", "_at_", ".", "_").Replace(name)
	return unsafeFolderChars.ReplaceAllString(name, "")
}
