package promptmeta_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/crc32"
)

// text is one tEXt chunk.
type text struct {
	key, value string
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func pngChunk(buf *bytes.Buffer, typ string, data []byte, crc uint32) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	binary.Write(buf, binary.BigEndian, crc)
}

func checksum(typ string, data []byte) uint32 {
	return crc32.ChecksumIEEE(append([]byte(typ), data...))
}

// buildPNG creates a PNG with an IHDR, the given text chunks and no pixel
// data.
func buildPNG(width, height uint32, texts ...text) []byte {
	buf := &bytes.Buffer{}
	buf.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], width)
	binary.BigEndian.PutUint32(ihdr[4:], height)
	ihdr[8], ihdr[9] = 8, 6
	pngChunk(buf, "IHDR", ihdr, checksum("IHDR", ihdr))

	for _, t := range texts {
		data := append([]byte(t.key+"\x00"), t.value...)
		pngChunk(buf, "tEXt", data, checksum("tEXt", data))
	}

	pngChunk(buf, "IEND", nil, checksum("IEND", nil))
	return buf.Bytes()
}

func writeFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

func writePNG(tb testing.TB, width, height uint32, texts ...text) string {
	tb.Helper()
	return writeFile(tb, "image.png", buildPNG(width, height, texts...))
}

// fixture reads a test fixture shared with the internal packages.
func fixture(tb testing.TB, path string) string {
	tb.Helper()
	data, err := os.ReadFile(filepath.Join("internal", path))
	if err != nil {
		tb.Fatal(err)
	}
	return string(data)
}

const flatParameters = "cat\nNegative prompt: dog\nSteps: 28, Sampler: Euler a, CFG scale: 5.5, Seed: 123456789, Size: 512x768, Model: sdxl.safetensors"

const apiGraph = `{
	"3": {"class_type": "KSampler", "inputs": {"seed": 42, "steps": 20, "cfg": 7.0, "sampler_name": "euler",
	      "positive": ["6", 0], "negative": ["7", 0]}},
	"6": {"class_type": "CLIPTextEncode", "inputs": {"text": "a red fox in the snow"}},
	"7": {"class_type": "CLIPTextEncode", "inputs": {"text": "ugly, deformed"}},
	"9": {"class_type": "SaveImage", "inputs": {"images": ["3", 0]}}
}`
