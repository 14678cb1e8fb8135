package types

import (
	"iter"
	"slices"
	"strings"
)

// Well-known blob names. PNG text chunks use the first group, EXIF-carrying
// containers (JPEG, WebP) the second.
const (
	KeyParameters  = "parameters"
	KeyPrompt      = "prompt"
	KeyWorkflow    = "workflow"
	KeyComment     = "Comment"
	KeySoftware    = "Software"
	KeyDescription = "Description"

	KeyUserComment      = "UserComment"
	KeyImageDescription = "ImageDescription"
)

// keyOrder is the display order of well-known blobs in raw dumps.
var keyOrder = []string{
	KeyParameters,
	KeyPrompt,
	KeyWorkflow,
	KeyUserComment,
	KeyComment,
	KeyDescription,
	KeyImageDescription,
	KeySoftware,
}

// Blobs maps a container-specific name to the text stored under it.
//
// Blobs are supplied by the container readers and are never modified by
// the parsers.
type Blobs map[string]string

// Get returns the blob stored under key.
func (b Blobs) Get(key string) (string, bool) {
	v, ok := b[key]
	return v, ok
}

// Has reports whether a blob exists under key, blank or not.
func (b Blobs) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// First returns the first non-blank blob among keys, along with its key.
func (b Blobs) First(keys ...string) (key, value string, ok bool) {
	for k, v := range b.NonBlank(keys...) {
		return k, v, true
	}
	return "", "", false
}

// NonBlank yields the non-blank blobs among keys, in the order given.
func (b Blobs) NonBlank(keys ...string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range keys {
			v, found := b[k]
			if !found || strings.TrimSpace(v) == "" {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Empty reports whether every blob is blank.
func (b Blobs) Empty() bool {
	for _, v := range b {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Keys returns blob names with well-known keys first, in display order,
// followed by the rest sorted by name.
func (b Blobs) Keys() []string {
	keys := make([]string, 0, len(b))
	for _, k := range keyOrder {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range b {
		if !slices.Contains(keyOrder, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// Parts returns every non-blank blob as a raw part titled
// "<container>: <key>".
func (b Blobs) Parts(container string) []RawPart {
	if container == "" {
		container = "metadata"
	}
	var parts []RawPart
	for _, k := range b.Keys() {
		v := b[k]
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, RawPart{Title: container + ": " + k, Text: v})
	}
	return parts
}

// Dump renders every blob as "key: value" lines for diagnostics.
func (b Blobs) Dump() string {
	var sb strings.Builder
	for _, k := range b.Keys() {
		v := b[k]
		if strings.TrimSpace(v) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
	}
	return sb.String()
}
