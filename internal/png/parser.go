// Package png reads the text chunks and dimensions of PNG images.
//
// Generation tools store their metadata in tEXt, zTXt and iTXt chunks keyed
// by name ("parameters", "prompt", "workflow", "Comment", ...). Pixel data
// is never read.
package png

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/crc32"

	"github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

// Chunk types
const (
	chunkIHDR = "IHDR"
	chunkTEXT = "tEXt"
	chunkZTXT = "zTXt"
	chunkITXT = "iTXt"
	chunkIEND = "IEND"
)

// Signature is the 8-byte PNG file signature.
var Signature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func init() {
	registry.RegisterContainer(types.FormatPNG, &parser{})
}

// parser implements registry.ContainerReader for PNG files
type parser struct{}

// Read walks the chunk list up to IEND and collects every text chunk.
// Structural damage after the signature ends the walk with a warning and
// whatever was collected so far.
func (p *parser) Read(r io.ReaderAt, size int64, path string) (*types.Extraction, error) {
	sr := binary.NewSafeReader(r, size, path)

	magic, err := sr.ReadBytes(0, len(Signature), "PNG signature")
	if err != nil {
		return nil, fmt.Errorf("read PNG signature: %w", err)
	}
	if !bytes.Equal(magic, Signature) {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Format: types.FormatPNG,
			Reason: "invalid PNG signature",
		}
	}

	ext := types.NewExtraction()
	offset := int64(len(Signature))
	for offset+8 <= size {
		length, err := binary.Read[uint32](sr, offset, "chunk length")
		if err != nil {
			ext.Warn(types.StageChunks, err.Error(), offset)
			break
		}
		typ, err := sr.ReadBytes(offset+4, 4, "chunk type")
		if err != nil {
			ext.Warn(types.StageChunks, err.Error(), offset)
			break
		}

		dataStart := offset + 8
		next := dataStart + int64(length) + 4 // data + CRC
		if next > size {
			ext.Warn(types.StageChunks, fmt.Sprintf("%s chunk of %d bytes is truncated", typ, length), offset)
			break
		}

		switch string(typ) {
		case chunkIHDR:
			readHeader(sr, dataStart, length, ext)

		case chunkTEXT, chunkZTXT, chunkITXT:
			readText(sr, string(typ), dataStart, length, ext)

		case chunkIEND:
			return ext, nil

		default:
			// Image data and ancillary chunks are skipped
		}

		offset = next
	}

	return ext, nil
}

// readHeader records the image dimensions from IHDR.
func readHeader(sr *binary.SafeReader, offset int64, length uint32, ext *types.Extraction) {
	if length < 8 {
		ext.Warn(types.StageHeader, fmt.Sprintf("IHDR is %d bytes, expected 13", length), offset)
		return
	}
	cr := binary.NewChainReader(binary.NewReader(sr, offset))
	width := binary.ReadChained[uint32](cr, "IHDR width")
	height := binary.ReadChained[uint32](cr, "IHDR height")
	if err := cr.Error(); err != nil {
		ext.Warn(types.StageHeader, err.Error(), offset)
		return
	}
	ext.Width = int(width)
	ext.Height = int(height)
}

func readText(sr *binary.SafeReader, typ string, offset int64, length uint32, ext *types.Extraction) {
	data, err := sr.ReadBytes(offset, int(length), typ+" chunk")
	if err != nil {
		ext.Warn(types.StageText, err.Error(), offset)
		return
	}

	stored, err := binary.Read[uint32](sr, offset+int64(length), typ+" CRC")
	if err == nil && stored != checksum(typ, data) {
		ext.Warn(types.StageText, typ+" chunk CRC mismatch", offset)
	}

	var key, text string
	switch typ {
	case chunkTEXT:
		key, text, err = decodeTEXT(data)
	case chunkZTXT:
		key, text, err = decodeZTXT(data)
	case chunkITXT:
		key, text, err = decodeITXT(data)
	}
	if err != nil {
		ext.Warn(types.StageText, fmt.Sprintf("%s chunk: %v", typ, err), offset)
		return
	}
	ext.SetBlob(key, text)
}

// checksum computes the CRC-32 of a chunk's type and data.
func checksum(typ string, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write([]byte(typ))
	h.Write(data)
	return h.Sum32()
}
