package exif

import (
	"bytes"
	"fmt"
	"io"

	"github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

// JPEG markers
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
	markerCOM  = 0xFE
)

func init() {
	registry.RegisterContainer(types.FormatJPEG, &jpegParser{})
}

// jpegParser implements registry.ContainerReader for JPEG files
type jpegParser struct{}

// Read walks the marker segments up to the start of scan. EXIF comes from
// the APP1 segment, a COM segment is kept as the Comment blob and the
// dimensions come from the frame header.
func (p *jpegParser) Read(r io.ReaderAt, size int64, path string) (*types.Extraction, error) {
	sr := binary.NewSafeReader(r, size, path)

	soi, err := sr.ReadBytes(0, 2, "JPEG SOI")
	if err != nil {
		return nil, fmt.Errorf("read JPEG SOI: %w", err)
	}
	if soi[0] != 0xFF || soi[1] != markerSOI {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Format: types.FormatJPEG,
			Reason: "missing JPEG SOI marker",
		}
	}

	ext := types.NewExtraction()
	offset := int64(2)
	for offset+2 <= size {
		head, err := sr.ReadBytes(offset, 2, "segment marker")
		if err != nil {
			ext.Warn(types.StageSegments, err.Error(), offset)
			break
		}
		if head[0] != 0xFF {
			ext.Warn(types.StageSegments, fmt.Sprintf("expected marker, found 0x%02X", head[0]), offset)
			break
		}

		marker := head[1]
		switch {
		case marker == 0xFF: // fill byte
			offset++
			continue
		case marker == markerEOI || marker == markerSOS:
			return ext, nil
		case standalone(marker):
			offset += 2
			continue
		}

		length, err := binary.Read[uint16](sr, offset+2, "segment length")
		if err != nil {
			ext.Warn(types.StageSegments, err.Error(), offset)
			break
		}
		if length < 2 {
			ext.Warn(types.StageSegments, fmt.Sprintf("segment 0x%02X declares length %d", marker, length), offset)
			break
		}
		dataStart := offset + 4
		next := offset + 2 + int64(length)
		if next > size {
			ext.Warn(types.StageSegments, fmt.Sprintf("segment 0x%02X of %d bytes is truncated", marker, length), offset)
			break
		}
		n := int(length) - 2

		switch {
		case marker == markerAPP1:
			readAPP1(sr, dataStart, n, ext)
		case marker == markerCOM:
			if data, err := sr.ReadBytes(dataStart, n, "COM segment"); err == nil {
				ext.SetBlob(types.KeyComment, parsing.DecodeLatin1(bytes.TrimRight(data, "\x00")))
			}
		case startOfFrame(marker):
			readFrame(sr, dataStart, ext)
		}

		offset = next
	}

	return ext, nil
}

// standalone reports markers that carry no length field.
func standalone(marker byte) bool {
	return marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7)
}

// startOfFrame reports the SOFn markers. C4, C8 and CC share the range but
// are not frame headers.
func startOfFrame(marker byte) bool {
	if marker < 0xC0 || marker > 0xCF {
		return false
	}
	return marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

// readAPP1 reads an EXIF payload. XMP and other APP1 payloads are skipped.
func readAPP1(sr *binary.SafeReader, offset int64, n int, ext *types.Extraction) {
	if n < len(exifHeader) {
		return
	}
	data, err := sr.ReadBytes(offset, n, "APP1 segment")
	if err != nil {
		ext.Warn(types.StageEXIF, err.Error(), offset)
		return
	}
	if !bytes.HasPrefix(data, exifHeader) {
		return
	}
	base := offset + int64(len(exifHeader))
	if err := readTIFF(data, base, sr.Path(), ext); err != nil {
		ext.Warn(types.StageEXIF, err.Error(), base)
	}
}

func readFrame(sr *binary.SafeReader, offset int64, ext *types.Extraction) {
	cr := binary.NewChainReader(binary.NewReader(sr, offset))
	binary.ReadChained[uint8](cr, "frame precision")
	height := binary.ReadChained[uint16](cr, "frame height")
	width := binary.ReadChained[uint16](cr, "frame width")
	if err := cr.Error(); err != nil {
		ext.Warn(types.StageHeader, err.Error(), offset)
		return
	}
	ext.Width, ext.Height = int(width), int(height)
}
