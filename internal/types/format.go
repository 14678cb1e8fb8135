package types

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/simonhull/promptmeta/internal/binary"
)

// Format represents the detected image container format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatPNG represents PNG images (metadata in text chunks).
	FormatPNG
	// FormatJPEG represents JPEG images (metadata in EXIF).
	FormatJPEG
	// FormatWebP represents WebP images (metadata in an EXIF chunk).
	FormatWebP
	// FormatText represents a plain text parameters file.
	FormatText
)

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatWebP:
		return "WebP"
	case FormatText:
		return "TXT"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatPNG:
		return []string{".png"}
	case FormatJPEG:
		return []string{".jpg", ".jpeg"}
	case FormatWebP:
		return []string{".webp"}
	case FormatText:
		return []string{".txt"}
	case FormatUnknown:
		return nil
	default:
		return nil
	}
}

// Container returns the label used to title raw parts read from this format.
func (f Format) Container() string {
	switch f {
	case FormatPNG:
		return "PNG tEXt"
	case FormatJPEG, FormatWebP:
		return "EXIF"
	case FormatText:
		return "TXT"
	default:
		return "metadata"
	}
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// DetectFormat determines the image format by examining magic bytes.
//
// Supported formats: PNG, JPEG, WebP. Files without a known signature whose
// name ends in ".txt" are treated as plain text parameter files.
//
// Detection does not validate the entire file structure.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size >= 2 {
		sr := binary.NewSafeReader(r, size, path)

		n := min(size, 12)
		magic := make([]byte, n)
		if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
			return FormatUnknown, &UnsupportedFormatError{
				Path:   path,
				Reason: "failed to read file header",
			}
		}

		// PNG signature (8 bytes)
		if len(magic) >= 8 && string(magic[:8]) == string(pngMagic) {
			return FormatPNG, nil
		}

		// JPEG SOI marker (FF D8)
		if magic[0] == 0xFF && magic[1] == 0xD8 {
			return FormatJPEG, nil
		}

		// RIFF....WEBP
		if len(magic) >= 12 && string(magic[:4]) == "RIFF" && string(magic[8:12]) == "WEBP" {
			return FormatWebP, nil
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return FormatText, nil
	}

	if size < 2 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unsupported file format",
	}
}
