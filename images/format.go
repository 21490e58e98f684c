package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported still image formats.
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
)

// FormatFromPath infers the format from a file extension.
//
// Arguments:
//   - path: A file name or path.
//
// Returns:
//   - ImageFormat: The detected format.
//   - bool: false when the extension is not a supported image format.
func FormatFromPath(path string) (ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, true
	case ".png":
		return FormatPNG, true
	case ".bmp":
		return FormatBMP, true
	case ".webp":
		return FormatWebP, true
	}
	return "", false
}
