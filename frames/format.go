package frames

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format is an image file format.
type Format int

const (
	UNKNOWN Format = iota
	JPEG
	PNG
	GIF
	TIFF
	WEBP
	BMP
)

// ErrUnsupportedFormat means the given image format cannot be read or written.
var ErrUnsupportedFormat = errors.New("frames: unsupported image format")

var format_exts = map[string]Format{
	"jpg":  JPEG,
	"jpeg": JPEG,
	"png":  PNG,
	"apng": PNG,
	"gif":  GIF,
	"tif":  TIFF,
	"tiff": TIFF,
	"webp": WEBP,
	"bmp":  BMP,
}

var format_names = map[Format]string{
	JPEG: "JPEG",
	PNG:  "PNG",
	GIF:  "GIF",
	TIFF: "TIFF",
	WEBP: "WEBP",
	BMP:  "BMP",
}

func (f Format) String() string {
	if n, ok := format_names[f]; ok {
		return n
	}
	return "UNKNOWN"
}

// format_from_decoder maps the names image.Decode reports to a Format
func format_from_decoder(name string) Format {
	switch strings.ToLower(name) {
	case "jpeg":
		return JPEG
	case "png", "apng":
		return PNG
	case "gif":
		return GIF
	case "tiff":
		return TIFF
	case "webp":
		return WEBP
	case "bmp":
		return BMP
	}
	return UNKNOWN
}

// FormatFromExtension parses an image format from a filename extension,
// with or without the leading dot.
func FormatFromExtension(ext string) (Format, error) {
	if f, ok := format_exts[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return f, nil
	}
	return UNKNOWN, ErrUnsupportedFormat
}

func FormatFromFilename(filename string) (Format, error) {
	return FormatFromExtension(filepath.Ext(filename))
}
