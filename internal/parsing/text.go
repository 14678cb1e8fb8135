// Package parsing holds the small text heuristics shared by the tool parsers:
// settings-string splitting, scalar normalization, checkpoint filename
// shapes and resolution strings.
package parsing

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/promptmeta/internal/types"
)

// checkpointFile matches model weight filenames.
var checkpointFile = regexp.MustCompile(`(?i)^.*\.(safetensors|ckpt|pt)$`)

// resolutionPatterns are tried in order against size-like strings.
var resolutionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\(\s*(\d+)\s*,\s*(\d+)\s*\)$`),   // "(1024, 1024)"
	regexp.MustCompile(`^\[\s*(\d+)\s*,\s*(\d+)\s*\]$`),   // "[1024, 1024]"
	regexp.MustCompile(`^(\d+)\s*[x×*]\s*(\d+)$`),         // "1024x1024", "1024 × 1024"
	regexp.MustCompile(`^(\d+)\s*,\s*(\d+)$`),             // "1024, 1024"
	regexp.MustCompile(`^(\d+)\s*[x×]\s*(\d+)\s*\(.*\)$`), // "1024x1024 (1:1)"
}

// SplitSettings parses a "Key: value, Key: value" string into entries.
//
// The string is split on every comma and each segment on its first colon.
// Segments without a colon, or with a blank key or value, are dropped.
// There is no escaping: a value that itself contains a comma is cut at that
// comma.
func SplitSettings(s string) []types.SettingEntry {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var entries []types.SettingEntry
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		idx := strings.IndexByte(seg, ':')
		if idx <= 0 || idx >= len(seg)-1 {
			continue
		}
		key := strings.TrimSpace(seg[:idx])
		value := strings.TrimSpace(seg[idx+1:])
		if key == "" || value == "" {
			continue
		}
		entries = append(entries, types.SettingEntry{Key: key, Value: value})
	}
	return entries
}

// Scalar renders a decoded JSON literal as display text.
//
// Strings are trimmed and stripped of wrapping quotes; numbers keep the
// exact text they were written with; booleans render as true/false.
// Blank strings, the literal "null", nil and composite values report false.
func Scalar(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = strings.Trim(strings.TrimSpace(t), `"'`)
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return "", false
	}
	return s, true
}

// Int reads a positive integer out of a decoded JSON literal.
func Int(v any) (int, bool) {
	s, ok := Scalar(v)
	if !ok {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, true
	}
	// "512.0" style floats
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

// IsCheckpointFile reports whether s looks like a model weights filename.
func IsCheckpointFile(s string) bool {
	return checkpointFile.MatchString(strings.TrimSpace(s))
}

// ParseResolution extracts width and height from size-like strings such as
// "(1024, 1024)" or "832x1216".
func ParseResolution(s string) (width, height int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	for _, re := range resolutionPatterns {
		m := re.FindStringSubmatch(s)
		if len(m) != 3 {
			continue
		}
		w, errW := strconv.Atoi(m[1])
		h, errH := strconv.Atoi(m[2])
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return 0, 0, false
		}
		return w, h, true
	}
	return 0, 0, false
}

// FormatSize renders a "WxH" size value.
func FormatSize(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// TrimJSONPrefix drops anything before the first '{' or '['. Some writers
// store the workflow after a stray "null" line.
func TrimJSONPrefix(s string) string {
	idx := strings.IndexAny(s, "{[")
	if idx < 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[idx:])
}

// DecodeLatin1 decodes text that its container defines as Latin-1. Many
// writers put UTF-8 there anyway, so valid UTF-8 is kept as is.
func DecodeLatin1(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
