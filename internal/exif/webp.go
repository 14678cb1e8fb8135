package exif

import (
	"fmt"
	"io"

	"github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

// RIFF chunk identifiers
const (
	chunkVP8X = "VP8X"
	chunkVP8  = "VP8 "
	chunkVP8L = "VP8L"
	chunkEXIF = "EXIF"
)

func init() {
	registry.RegisterContainer(types.FormatWebP, &webpParser{})
}

// webpParser implements registry.ContainerReader for WebP files
type webpParser struct{}

// Read walks the RIFF chunks. The canvas size comes from VP8X when present,
// otherwise from the bitstream header of a simple file.
func (p *webpParser) Read(r io.ReaderAt, size int64, path string) (*types.Extraction, error) {
	sr := binary.NewSafeReader(r, size, path)

	header, err := sr.ReadBytes(0, 12, "RIFF header")
	if err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WEBP" {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Format: types.FormatWebP,
			Reason: "invalid WebP RIFF header",
		}
	}

	ext := types.NewExtraction()
	riffSize, _ := binary.ReadLE[uint32](sr, 4, "RIFF size")
	size = min(size, 8+int64(riffSize))

	offset := int64(12)
	for offset+8 <= size {
		fourcc, err := sr.ReadBytes(offset, 4, "chunk id")
		if err != nil {
			ext.Warn(types.StageChunks, err.Error(), offset)
			break
		}
		length, err := binary.ReadLE[uint32](sr, offset+4, "chunk size")
		if err != nil {
			ext.Warn(types.StageChunks, err.Error(), offset)
			break
		}

		dataStart := offset + 8
		if dataStart+int64(length) > size {
			ext.Warn(types.StageChunks, fmt.Sprintf("%s chunk of %d bytes is truncated", fourcc, length), offset)
			break
		}

		switch string(fourcc) {
		case chunkVP8X:
			readVP8X(sr, dataStart, ext)
		case chunkVP8:
			if ext.Width == 0 {
				readVP8(sr, dataStart, ext)
			}
		case chunkVP8L:
			if ext.Width == 0 {
				readVP8L(sr, dataStart, ext)
			}
		case chunkEXIF:
			data, err := sr.ReadBytes(dataStart, int(length), "EXIF chunk")
			if err != nil {
				ext.Warn(types.StageEXIF, err.Error(), dataStart)
				break
			}
			if err := readTIFF(data, dataStart, path, ext); err != nil {
				ext.Warn(types.StageEXIF, err.Error(), dataStart)
			}
		}

		// Chunks are padded to an even size
		offset = dataStart + int64(length) + int64(length&1)
	}

	return ext, nil
}

// readVP8X reads the 24-bit canvas width and height, both stored minus one.
func readVP8X(sr *binary.SafeReader, offset int64, ext *types.Extraction) {
	b, err := sr.ReadBytes(offset+4, 6, "VP8X canvas size")
	if err != nil {
		ext.Warn(types.StageHeader, err.Error(), offset)
		return
	}
	ext.Width = int(uint32(b[0])|uint32(b[1])<<8|uint32(b[2])<<16) + 1
	ext.Height = int(uint32(b[3])|uint32(b[4])<<8|uint32(b[5])<<16) + 1
}

// readVP8 reads the frame size of a lossy key frame.
func readVP8(sr *binary.SafeReader, offset int64, ext *types.Extraction) {
	b, err := sr.ReadBytes(offset, 10, "VP8 frame header")
	if err != nil {
		ext.Warn(types.StageHeader, err.Error(), offset)
		return
	}
	if b[3] != 0x9D || b[4] != 0x01 || b[5] != 0x2A {
		ext.Warn(types.StageHeader, "VP8 start code not found", offset)
		return
	}
	ext.Width = int(uint16(b[6])|uint16(b[7])<<8) & 0x3FFF
	ext.Height = int(uint16(b[8])|uint16(b[9])<<8) & 0x3FFF
}

// readVP8L reads the 14-bit width and height of a lossless bitstream.
func readVP8L(sr *binary.SafeReader, offset int64, ext *types.Extraction) {
	sig, err := binary.Read[uint8](sr, offset, "VP8L signature")
	if err != nil || sig != 0x2F {
		ext.Warn(types.StageHeader, "VP8L signature not found", offset)
		return
	}
	bits, err := binary.ReadLE[uint32](sr, offset+1, "VP8L size")
	if err != nil {
		ext.Warn(types.StageHeader, err.Error(), offset)
		return
	}
	ext.Width = int(bits&0x3FFF) + 1
	ext.Height = int((bits>>14)&0x3FFF) + 1
}
