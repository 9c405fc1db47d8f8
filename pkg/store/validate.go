package store

import (
	"path/filepath"
	"strings"
)

const (
	maxImageSize = 5 * 1024 * 1024
	maxPDFSize   = 10 * 1024 * 1024
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// validateUpload выполняется до любого сетевого вызова.
func validateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExts[ext]:
		if size > maxImageSize {
			return ErrPayloadTooLarge
		}
	case ext == ".pdf":
		if size > maxPDFSize {
			return ErrPayloadTooLarge
		}
	default:
		return ErrUnsupportedType
	}
	return nil
}
