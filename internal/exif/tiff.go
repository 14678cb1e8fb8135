// Package exif reads the EXIF text and dimensions of JPEG and WebP images.
//
// Both containers embed a TIFF structure. Only the handful of tags that
// generation tools write are read: ImageDescription and Software from IFD0,
// UserComment and the pixel dimensions from the Exif sub-IFD.
package exif

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/types"
)

// Tags
const (
	tagImageDescription = 0x010E
	tagSoftware         = 0x0131
	tagExifIFD          = 0x8769
	tagUserComment      = 0x9286
	tagPixelXDimension  = 0xA002
	tagPixelYDimension  = 0xA003
)

// Field types
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSByte     = 6
	typeUndefined = 7
	typeSShort    = 8
	typeSLong     = 9
	typeSRational = 10
	typeFloat     = 11
	typeDouble    = 12
)

// maxEntries caps the entry count of one IFD.
const maxEntries = 1024

// exifHeader prefixes the TIFF payload in JPEG APP1 segments and in some
// WebP EXIF chunks.
var exifHeader = []byte("Exif\x00\x00")

// UserComment character code prefixes.
var (
	codeASCII     = []byte("ASCII\x00\x00\x00")
	codeUnicode   = []byte("UNICODE\x00")
	codeUndefined = make([]byte, 8)
)

// entry is one 12-byte IFD record. valueAt is the offset of its 4-byte
// value field.
type entry struct {
	tag     uint16
	typ     uint16
	count   uint32
	valueAt int64
}

func typeSize(typ uint16) int {
	switch typ {
	case typeByte, typeASCII, typeSByte, typeUndefined:
		return 1
	case typeShort, typeSShort:
		return 2
	case typeLong, typeSLong, typeFloat:
		return 4
	case typeRational, typeSRational, typeDouble:
		return 8
	default:
		return 0
	}
}

// tiff reads one TIFF payload. base is the payload's offset in the file
// and is only used to report warnings.
type tiff struct {
	r    *binary.Reader
	base int64
}

// readTIFF extracts the known tags from a TIFF payload into ext. Damage in
// the header is returned; damage past it is recorded as a warning.
func readTIFF(data []byte, base int64, path string, ext *types.Extraction) error {
	data = bytes.TrimPrefix(data, exifHeader)
	t := &tiff{r: binary.NewReader(binary.NewBytesReader(data, path), 0), base: base}

	mark, err := t.r.ReadString(2, "TIFF byte order")
	if err != nil {
		return err
	}
	switch mark {
	case "II":
		t.r.SetOrder(binary.LittleEndian)
	case "MM":
		t.r.SetOrder(binary.BigEndian)
	default:
		return fmt.Errorf("invalid TIFF byte order %q", mark)
	}

	cr := binary.NewChainReader(t.r)
	magic := binary.ReadChained[uint16](cr, "TIFF magic")
	ifd0 := binary.ReadChained[uint32](cr, "IFD0 offset")
	if err := cr.Error(); err != nil {
		return err
	}
	if magic != 42 {
		return fmt.Errorf("invalid TIFF magic %d", magic)
	}

	entries, err := t.readIFD(int64(ifd0))
	if err != nil {
		return fmt.Errorf("IFD0: %w", err)
	}

	exifAt := int64(-1)
	for _, e := range entries {
		switch e.tag {
		case tagImageDescription, tagSoftware:
			t.readASCII(e, ext)
		case tagExifIFD:
			if off, err := t.integer(e); err == nil {
				exifAt = int64(off)
			}
		}
	}
	if exifAt < 0 {
		return nil
	}

	entries, err = t.readIFD(exifAt)
	if err != nil {
		ext.Warn(types.StageEXIF, "Exif IFD: "+err.Error(), base+exifAt)
		return nil
	}

	var width, height uint32
	for _, e := range entries {
		switch e.tag {
		case tagUserComment:
			data, err := t.value(e)
			if err != nil {
				ext.Warn(types.StageEXIF, "UserComment: "+err.Error(), base+e.valueAt)
				continue
			}
			ext.SetBlob(types.KeyUserComment, decodeUserComment(data, t.r.Order()))
		case tagPixelXDimension:
			width, _ = t.integer(e)
		case tagPixelYDimension:
			height, _ = t.integer(e)
		}
	}
	if ext.Width == 0 && ext.Height == 0 && width > 0 && height > 0 {
		ext.Width, ext.Height = int(width), int(height)
	}
	return nil
}

func (t *tiff) readIFD(offset int64) ([]entry, error) {
	t.r.Seek(offset)
	count, err := binary.ReadValue[uint16](t.r, "IFD entry count")
	if err != nil {
		return nil, err
	}
	if count > maxEntries {
		return nil, fmt.Errorf("IFD declares %d entries", count)
	}

	entries := make([]entry, 0, count)
	cr := binary.NewChainReader(t.r)
	for range count {
		e := entry{
			tag:   binary.ReadChained[uint16](cr, "IFD entry tag"),
			typ:   binary.ReadChained[uint16](cr, "IFD entry type"),
			count: binary.ReadChained[uint32](cr, "IFD entry count"),
		}
		e.valueAt = t.r.Offset()
		t.r.Skip(4)
		entries = append(entries, e)
	}
	if err := cr.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

// value returns the raw bytes of an entry, following the offset when the
// value does not fit in the entry itself.
func (t *tiff) value(e entry) ([]byte, error) {
	size := typeSize(e.typ)
	if size == 0 {
		return nil, fmt.Errorf("unknown field type %d", e.typ)
	}
	n := int64(size) * int64(e.count)
	if n > t.r.Size() {
		return nil, fmt.Errorf("value of %d bytes exceeds payload", n)
	}
	at := e.valueAt
	if n > 4 {
		off, err := binary.ReadEndian[uint32](t.r.SafeReader, e.valueAt, "value offset", t.r.Order())
		if err != nil {
			return nil, err
		}
		at = int64(off)
	}
	return t.r.ReadBytes(at, int(n), "tag value")
}

// integer reads a single SHORT or LONG value.
func (t *tiff) integer(e entry) (uint32, error) {
	switch e.typ {
	case typeShort:
		v, err := binary.ReadEndian[uint16](t.r.SafeReader, e.valueAt, "SHORT value", t.r.Order())
		return uint32(v), err
	case typeLong:
		return binary.ReadEndian[uint32](t.r.SafeReader, e.valueAt, "LONG value", t.r.Order())
	default:
		return 0, fmt.Errorf("field type %d is not an integer", e.typ)
	}
}

func (t *tiff) readASCII(e entry, ext *types.Extraction) {
	data, err := t.value(e)
	if err != nil {
		ext.Warn(types.StageEXIF, fmt.Sprintf("tag 0x%04X: %v", e.tag, err), t.base+e.valueAt)
		return
	}
	key := types.KeyImageDescription
	if e.tag == tagSoftware {
		key = types.KeySoftware
	}
	ext.SetBlob(key, parsing.DecodeLatin1(bytes.TrimRight(data, "\x00")))
}

// decodeUserComment strips the 8-byte character code and decodes the rest.
// UNICODE text carries no byte order of its own; a BOM wins, otherwise the
// order is guessed from where the zero bytes of ASCII characters fall, and
// the TIFF order breaks ties.
func decodeUserComment(data []byte, order binary.Endianness) string {
	if len(data) < 8 {
		return parsing.DecodeLatin1(bytes.TrimRight(data, "\x00"))
	}

	code, body := data[:8], data[8:]
	switch {
	case bytes.Equal(code, codeUnicode):
		return decodeUTF16(body, order)
	case bytes.Equal(code, codeASCII), bytes.Equal(code, codeUndefined):
		return parsing.DecodeLatin1(bytes.TrimRight(body, "\x00"))
	default:
		return parsing.DecodeLatin1(bytes.TrimRight(data, "\x00"))
	}
}

func decodeUTF16(body []byte, order binary.Endianness) string {
	if len(body)%2 != 0 {
		body = body[:len(body)-1]
	}

	var evenZeros, oddZeros int
	for i := 0; i+1 < len(body); i += 2 {
		if body[i] == 0 {
			evenZeros++
		}
		if body[i+1] == 0 {
			oddZeros++
		}
	}
	endian := unicode.BigEndian
	switch {
	case oddZeros > evenZeros:
		endian = unicode.LittleEndian
	case oddZeros == evenZeros && order == binary.LittleEndian:
		endian = unicode.LittleEndian
	}

	text, err := unicode.UTF16(endian, unicode.UseBOM).NewDecoder().Bytes(body)
	if err != nil {
		return ""
	}
	return string(bytes.TrimRight(text, "\x00"))
}
