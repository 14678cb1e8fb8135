package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	binutil "github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/types"
)

type tag struct {
	id    uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiTag(id uint16, s string) tag {
	d := append([]byte(s), 0)
	return tag{id: id, typ: typeASCII, count: uint32(len(d)), data: d}
}

func shortTag(order binary.ByteOrder, id, v uint16) tag {
	d := make([]byte, 2)
	order.PutUint16(d, v)
	return tag{id: id, typ: typeShort, count: 1, data: d}
}

func commentTag(data []byte) tag {
	return tag{id: tagUserComment, typ: typeUndefined, count: uint32(len(data)), data: data}
}

func ifdSize(n int) int { return 2 + 12*n + 4 }

// buildTIFF lays out a header, IFD0, an optional Exif IFD and then the
// out-of-line values.
func buildTIFF(order binary.ByteOrder, ifd0, sub []tag) []byte {
	if len(sub) > 0 {
		ifd0 = append(ifd0, tag{id: tagExifIFD, typ: typeLong, count: 1})
	}
	subAt := 8 + ifdSize(len(ifd0))
	end := subAt
	if len(sub) > 0 {
		end += ifdSize(len(sub))
	}

	out := make([]byte, end)
	if order == binary.LittleEndian {
		copy(out, "II")
	} else {
		copy(out, "MM")
	}
	order.PutUint16(out[2:], 42)
	order.PutUint32(out[4:], 8)

	write := func(at int, tags []tag) {
		order.PutUint16(out[at:], uint16(len(tags)))
		for i, tg := range tags {
			e := out[at+2+12*i:]
			order.PutUint16(e[0:], tg.id)
			order.PutUint16(e[2:], tg.typ)
			order.PutUint32(e[4:], tg.count)
			switch {
			case tg.id == tagExifIFD:
				order.PutUint32(e[8:], uint32(subAt))
			case len(tg.data) <= 4:
				copy(e[8:12], tg.data)
			default:
				order.PutUint32(e[8:], uint32(len(out)))
				out = append(out, tg.data...)
			}
		}
	}
	write(8, ifd0)
	if len(sub) > 0 {
		write(subAt, sub)
	}
	return out
}

func utf16Bytes(t *testing.T, endian unicode.Endianness, s string) []byte {
	t.Helper()
	b, err := unicode.UTF16(endian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func unicodeComment(t *testing.T, endian unicode.Endianness, s string) []byte {
	return append([]byte("UNICODE\x00"), utf16Bytes(t, endian, s)...)
}

const a1111Params = "a cat\nNegative prompt: blurry\nSteps: 20, Sampler: Euler a"

func TestReadTIFF_ByteOrders(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			data := buildTIFF(order,
				[]tag{
					asciiTag(tagImageDescription, "a long description of the picture"),
					asciiTag(tagSoftware, "NovelAI"),
				},
				[]tag{
					// piexif always writes UNICODE comments big-endian
					commentTag(unicodeComment(t, unicode.BigEndian, a1111Params)),
					shortTag(order, tagPixelXDimension, 832),
					shortTag(order, tagPixelYDimension, 1216),
				},
			)

			ext := types.NewExtraction()
			require.NoError(t, readTIFF(data, 0, "test.jpg", ext))

			assert.Equal(t, types.Blobs{
				types.KeyImageDescription: "a long description of the picture",
				types.KeySoftware:         "NovelAI",
				types.KeyUserComment:      a1111Params,
			}, ext.Blobs)
			assert.Equal(t, 832, ext.Width)
			assert.Equal(t, 1216, ext.Height)
			assert.Empty(t, ext.Warnings)
		})
	}
}

func TestReadTIFF_KeepsKnownDimensions(t *testing.T) {
	data := buildTIFF(binary.BigEndian, nil, []tag{
		shortTag(binary.BigEndian, tagPixelXDimension, 64),
		shortTag(binary.BigEndian, tagPixelYDimension, 64),
	})
	ext := types.NewExtraction()
	ext.Width, ext.Height = 512, 768

	require.NoError(t, readTIFF(data, 0, "test.webp", ext))
	assert.Equal(t, 512, ext.Width)
	assert.Equal(t, 768, ext.Height)
}

func TestReadTIFF_Errors(t *testing.T) {
	good := buildTIFF(binary.LittleEndian, []tag{asciiTag(tagSoftware, "x")}, nil)

	badMagic := append([]byte(nil), good...)
	badMagic[2] = 43

	badIFD := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badIFD[4:], 4096)

	tests := []struct {
		name string
		data []byte
	}{
		{"byte order", append([]byte("XX"), good[2:]...)},
		{"magic", badMagic},
		{"IFD0 out of range", badIFD},
		{"short", []byte("II")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := readTIFF(tt.data, 0, "test.jpg", types.NewExtraction())
			assert.Error(t, err)
		})
	}
}

func TestReadTIFF_DamagedExifIFD(t *testing.T) {
	data := buildTIFF(binary.BigEndian,
		[]tag{asciiTag(tagSoftware, "ComfyUI")},
		[]tag{commentTag([]byte("ASCII\x00\x00\x00hello world"))},
	)
	// Point the Exif IFD past the payload.
	binary.BigEndian.PutUint32(data[8+2+12+8:], 9999)

	ext := types.NewExtraction()
	require.NoError(t, readTIFF(data, 100, "test.jpg", ext))

	assert.Equal(t, "ComfyUI", ext.Blobs[types.KeySoftware])
	assert.False(t, ext.Blobs.Has(types.KeyUserComment))
	require.Len(t, ext.Warnings, 1)
	assert.Equal(t, "exif", ext.Warnings[0].Stage)
	assert.Equal(t, int64(100+9999), ext.Warnings[0].Offset)
}

func TestDecodeUserComment(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		order binutil.Endianness
		want  string
	}{
		{"ascii", []byte("ASCII\x00\x00\x00Steps: 20\x00"), binutil.BigEndian, "Steps: 20"},
		{"undefined code", append(make([]byte, 8), "Steps: 20"...), binutil.BigEndian, "Steps: 20"},
		{"unicode big-endian in II file", unicodeComment(t, unicode.BigEndian, "cat, dog"), binutil.LittleEndian, "cat, dog"},
		{"unicode little-endian", unicodeComment(t, unicode.LittleEndian, "cat, dog"), binutil.BigEndian, "cat, dog"},
		{"unicode tie uses TIFF order", unicodeComment(t, unicode.LittleEndian, "猫犬"), binutil.LittleEndian, "猫犬"},
		{"unicode with BOM", append([]byte("UNICODE\x00\xFF\xFE"), utf16Bytes(t, unicode.LittleEndian, "猫犬")...), binutil.BigEndian, "猫犬"},
		{"unknown code keeps everything", []byte("Steps: 20, Seed: 1"), binutil.BigEndian, "Steps: 20, Seed: 1"},
		{"short", []byte("hi\x00"), binutil.BigEndian, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeUserComment(tt.data, tt.order))
		})
	}
}

// jpegSegment encodes one marker segment.
func jpegSegment(marker byte, data []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(data)+2))
	return append(seg, data...)
}

func sof0(width, height uint16) []byte {
	d := []byte{8, 0, 0, 0, 0, 3}
	binary.BigEndian.PutUint16(d[1:], height)
	binary.BigEndian.PutUint16(d[3:], width)
	return jpegSegment(0xC0, d)
}

func buildJPEG(segments ...[]byte) []byte {
	out := []byte{0xFF, markerSOI}
	for _, s := range segments {
		out = append(out, s...)
	}
	out = append(out, jpegSegment(markerSOS, []byte{1, 1, 0, 0, 63, 0})...)
	out = append(out, 0x12, 0x34, 0xFF, markerEOI)
	return out
}

func TestJPEG_Read(t *testing.T) {
	tiffData := buildTIFF(binary.LittleEndian, nil, []tag{
		commentTag(unicodeComment(t, unicode.BigEndian, a1111Params)),
		shortTag(binary.LittleEndian, tagPixelXDimension, 1),
		shortTag(binary.LittleEndian, tagPixelYDimension, 1),
	})
	data := buildJPEG(
		jpegSegment(0xE0, []byte("JFIF\x00\x01\x02")),
		jpegSegment(markerAPP1, []byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta/>")),
		jpegSegment(markerAPP1, append([]byte("Exif\x00\x00"), tiffData...)),
		jpegSegment(markerCOM, []byte("made with love")),
		[]byte{0xFF, 0xD0}, // stray restart marker
		sof0(1024, 1536),
	)

	ext, err := (&jpegParser{}).Read(bytes.NewReader(data), int64(len(data)), "test.jpg")
	require.NoError(t, err)

	assert.Equal(t, a1111Params, ext.Blobs[types.KeyUserComment])
	assert.Equal(t, "made with love", ext.Blobs[types.KeyComment])
	assert.Equal(t, 1024, ext.Width, "frame header wins over EXIF dimensions")
	assert.Equal(t, 1536, ext.Height)
	assert.Empty(t, ext.Warnings)
}

func TestJPEG_Damage(t *testing.T) {
	t.Run("invalid SOI", func(t *testing.T) {
		data := []byte{0x00, 0x01, 0x02, 0x03}
		_, err := (&jpegParser{}).Read(bytes.NewReader(data), int64(len(data)), "bad.jpg")
		var corrupt *types.CorruptedFileError
		assert.True(t, errors.As(err, &corrupt))
	})

	t.Run("truncated segment", func(t *testing.T) {
		data := []byte{0xFF, markerSOI}
		data = append(data, sof0(64, 64)...)
		data = append(data, jpegSegment(markerCOM, []byte("cut short"))[:8]...)

		ext, err := (&jpegParser{}).Read(bytes.NewReader(data), int64(len(data)), "cut.jpg")
		require.NoError(t, err)
		assert.Equal(t, 64, ext.Width)
		require.Len(t, ext.Warnings, 1)
		assert.Equal(t, "segments", ext.Warnings[0].Stage)
	})

	t.Run("garbage between segments", func(t *testing.T) {
		data := []byte{0xFF, markerSOI, 0x00, 0x00, 0x00, 0x00}
		ext, err := (&jpegParser{}).Read(bytes.NewReader(data), int64(len(data)), "junk.jpg")
		require.NoError(t, err)
		require.Len(t, ext.Warnings, 1)
		assert.Equal(t, int64(2), ext.Warnings[0].Offset)
	})

	t.Run("bad EXIF payload", func(t *testing.T) {
		data := buildJPEG(jpegSegment(markerAPP1, []byte("Exif\x00\x00XX\x00\x2a")), sof0(8, 8))
		ext, err := (&jpegParser{}).Read(bytes.NewReader(data), int64(len(data)), "exif.jpg")
		require.NoError(t, err)
		assert.Equal(t, 8, ext.Width)
		require.Len(t, ext.Warnings, 1)
		assert.Equal(t, "exif", ext.Warnings[0].Stage)
	})
}

func riffChunk(id string, data []byte) []byte {
	out := []byte(id)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, data...)
	if len(data)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func buildWebP(chunks ...[]byte) []byte {
	var body []byte
	for _, c := range chunks {
		body = append(body, c...)
	}
	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)+4))
	out = append(out, "WEBP"...)
	return append(out, body...)
}

func vp8x(width, height int) []byte {
	d := make([]byte, 10)
	d[0] = 0x08 // EXIF flag
	w, h := uint32(width-1), uint32(height-1)
	d[4], d[5], d[6] = byte(w), byte(w>>8), byte(w>>16)
	d[7], d[8], d[9] = byte(h), byte(h>>8), byte(h>>16)
	return riffChunk(chunkVP8X, d)
}

func TestWebP_Read(t *testing.T) {
	tiffData := buildTIFF(binary.BigEndian, []tag{asciiTag(tagSoftware, "Fooocus")},
		[]tag{commentTag([]byte("ASCII\x00\x00\x00" + a1111Params))})

	tests := []struct {
		name string
		exif []byte
	}{
		{"bare TIFF", tiffData},
		{"Exif header prefix", append([]byte("Exif\x00\x00"), tiffData...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWebP(
				vp8x(2048, 1024),
				riffChunk(chunkVP8, []byte{0x10, 0x02, 0x00, 0x9D, 0x01, 0x2A, 0x40, 0x00, 0x40, 0x00}),
				riffChunk(chunkEXIF, tt.exif),
				riffChunk("XMP ", []byte("<x/>")),
			)

			ext, err := (&webpParser{}).Read(bytes.NewReader(data), int64(len(data)), "test.webp")
			require.NoError(t, err)

			assert.Equal(t, a1111Params, ext.Blobs[types.KeyUserComment])
			assert.Equal(t, "Fooocus", ext.Blobs[types.KeySoftware])
			assert.Equal(t, 2048, ext.Width)
			assert.Equal(t, 1024, ext.Height)
			assert.Empty(t, ext.Warnings)
		})
	}
}

func TestWebP_SimpleDimensions(t *testing.T) {
	lossy := riffChunk(chunkVP8, []byte{0x10, 0x02, 0x00, 0x9D, 0x01, 0x2A, 0x00, 0x02, 0x00, 0x03})

	// 14-bit width-1 and height-1 packed after the 0x2F signature.
	bits := uint32(640-1) | uint32(480-1)<<14
	lossless := riffChunk(chunkVP8L, binary.LittleEndian.AppendUint32([]byte{0x2F}, bits))

	tests := []struct {
		name          string
		chunk         []byte
		width, height int
	}{
		{"VP8", lossy, 512, 768},
		{"VP8L", lossless, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWebP(tt.chunk)
			ext, err := (&webpParser{}).Read(bytes.NewReader(data), int64(len(data)), "simple.webp")
			require.NoError(t, err)
			assert.Equal(t, tt.width, ext.Width)
			assert.Equal(t, tt.height, ext.Height)
			assert.Empty(t, ext.Blobs)
		})
	}
}

func TestWebP_Damage(t *testing.T) {
	t.Run("invalid header", func(t *testing.T) {
		data := []byte("RIFF\x04\x00\x00\x00WAVE")
		_, err := (&webpParser{}).Read(bytes.NewReader(data), int64(len(data)), "bad.webp")
		var corrupt *types.CorruptedFileError
		assert.True(t, errors.As(err, &corrupt))
	})

	t.Run("too short", func(t *testing.T) {
		data := []byte("RIFF")
		_, err := (&webpParser{}).Read(bytes.NewReader(data), int64(len(data)), "short.webp")
		assert.Error(t, err)
	})

	t.Run("truncated chunk", func(t *testing.T) {
		data := buildWebP(vp8x(16, 16), riffChunk(chunkEXIF, make([]byte, 64)))
		data = data[:len(data)-10]
		binary.LittleEndian.PutUint32(data[4:], uint32(len(data)-8))

		ext, err := (&webpParser{}).Read(bytes.NewReader(data), int64(len(data)), "cut.webp")
		require.NoError(t, err)
		assert.Equal(t, 16, ext.Width)
		require.Len(t, ext.Warnings, 1)
		assert.Equal(t, "chunks", ext.Warnings[0].Stage)
	})
}
