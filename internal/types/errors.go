package types

import "fmt"

// UnsupportedFormatError is returned when a file is not a container any
// reader understands.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when a container is recognized but its
// framing is broken before any metadata could be read.
type CorruptedFileError struct {
	Path   string
	Format Format
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	if e.Format == FormatUnknown {
		return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: corrupted %s file at offset %d: %s", e.Path, e.Format, e.Offset, e.Reason)
}

// Warning stages.
const (
	StageChunks   = "chunks"   // PNG or RIFF chunk framing
	StageSegments = "segments" // JPEG marker segments
	StageHeader   = "header"   // image dimensions
	StageText     = "text"     // PNG text chunk payloads
	StageEXIF     = "exif"     // TIFF directories inside an EXIF payload
	StageStealth  = "stealth"  // pixel payload decoding
)

// Warning is a non-fatal problem met while reading a container, such as a
// zTXt chunk that fails to inflate or a truncated EXIF directory. Whatever
// was read before the problem is still used.
type Warning struct {
	Stage   string
	Message string
	// Offset in the file, 0 when not applicable.
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
