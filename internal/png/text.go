package png

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/simonhull/promptmeta/internal/parsing"
)

// maxInflated caps the decompressed size of one text chunk.
const maxInflated = 32 << 20

var errNoKeyword = errors.New("missing keyword separator")

// splitKeyword cuts a chunk at its keyword's NUL terminator.
func splitKeyword(data []byte) (string, []byte, error) {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return "", nil, errNoKeyword
	}
	return parsing.DecodeLatin1(data[:idx]), data[idx+1:], nil
}

// decodeTEXT reads keyword\0text.
func decodeTEXT(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	return key, parsing.DecodeLatin1(rest), nil
}

// decodeZTXT reads keyword\0 method compressed-text.
func decodeZTXT(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	if len(rest) < 1 {
		return "", "", errors.New("missing compression method")
	}
	if rest[0] != 0 {
		return "", "", fmt.Errorf("unknown compression method %d", rest[0])
	}
	text, err := inflate(rest[1:])
	if err != nil {
		return "", "", err
	}
	return key, parsing.DecodeLatin1(text), nil
}

// decodeITXT reads keyword\0 flag method language\0 translated-keyword\0 text.
func decodeITXT(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	if len(rest) < 2 {
		return "", "", errors.New("missing compression fields")
	}
	compressed, method := rest[0] == 1, rest[1]
	rest = rest[2:]

	// Skip the language tag and the translated keyword.
	for range 2 {
		idx := bytes.IndexByte(rest, 0)
		if idx < 0 {
			return "", "", errors.New("unterminated language field")
		}
		rest = rest[idx+1:]
	}

	if !compressed {
		return key, string(rest), nil
	}
	if method != 0 {
		return "", "", fmt.Errorf("unknown compression method %d", method)
	}
	text, err := inflate(rest)
	if err != nil {
		return "", "", err
	}
	return key, string(text), nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxInflated+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(out) > maxInflated {
		return nil, fmt.Errorf("inflated text exceeds %d bytes", maxInflated)
	}
	return out, nil
}
