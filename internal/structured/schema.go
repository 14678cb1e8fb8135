// Package structured parses tool metadata stored as a single JSON object of
// generation parameters.
//
// A Schema names the keys a tool uses for each logical field. Each field is
// read from an ordered list of synonyms and the first non-blank literal wins,
// which lets one schema cover the several spellings a tool has used across
// versions.
package structured

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/types"
)

// Field maps one display setting to the JSON keys that may carry it.
type Field struct {
	// Label is the display key, e.g. "Model".
	Label string
	// Keys are tried in order.
	Keys []string
}

// Schema describes one tool's JSON parameter object.
type Schema struct {
	Tool types.Tool

	// PositiveKeys and NegativeKeys name the prompt fields. They are tried
	// in order and removed from the detail view.
	PositiveKeys []string
	NegativeKeys []string

	// Fields are emitted in order.
	Fields []Field

	// WidthKeys and HeightKeys are combined into a single "Size" entry
	// appended after Fields. ResolutionKeys are size strings such as
	// "(1024, 1024)" consulted when no width/height pair is found.
	WidthKeys      []string
	HeightKeys     []string
	ResolutionKeys []string
}

// SizeLabel is the display key of the combined width/height entry.
const SizeLabel = "Size"

// Positive returns the positive prompt held by params.
func (s *Schema) Positive(params *ordered.Object) string {
	return firstText(params, s.PositiveKeys)
}

// Negative returns the negative prompt held by params.
func (s *Schema) Negative(params *ordered.Object) string {
	return firstText(params, s.NegativeKeys)
}

// Entries builds the display settings found in params.
func (s *Schema) Entries(params *ordered.Object) []types.SettingEntry {
	var entries []types.SettingEntry
	for _, f := range s.Fields {
		if v, ok := first(params, f.Keys); ok {
			entries = append(entries, types.SettingEntry{Key: f.Label, Value: v})
		}
	}
	if size, ok := s.size(params); ok {
		entries = append(entries, types.SettingEntry{Key: SizeLabel, Value: size})
	}
	return entries
}

func (s *Schema) size(params *ordered.Object) (string, bool) {
	w, wok := firstInt(params, s.WidthKeys)
	h, hok := firstInt(params, s.HeightKeys)
	if wok && hok {
		return parsing.FormatSize(w, h), true
	}
	for _, k := range s.ResolutionKeys {
		v, ok := params.Get(k)
		if !ok {
			continue
		}
		if w, h, ok := resolution(v); ok {
			return parsing.FormatSize(w, h), true
		}
	}
	return "", false
}

// resolution reads a size from either a string such as "(W, H)" or a
// two-element array.
func resolution(v any) (int, int, bool) {
	if arr, ok := v.([]any); ok {
		if len(arr) != 2 {
			return 0, 0, false
		}
		w, wok := parsing.Int(arr[0])
		h, hok := parsing.Int(arr[1])
		return w, h, wok && hok
	}
	s, ok := parsing.Scalar(v)
	if !ok {
		return 0, 0, false
	}
	return parsing.ParseResolution(s)
}

// Detail returns params without its prompt fields as indented JSON.
func (s *Schema) Detail(params *ordered.Object) string {
	return ordered.Indent(s.withoutPrompts(params))
}

func (s *Schema) withoutPrompts(params *ordered.Object) *ordered.Object {
	c := params.Clone()
	if c == nil {
		return ordered.NewObject()
	}
	for _, k := range s.PositiveKeys {
		c.Delete(k)
	}
	for _, k := range s.NegativeKeys {
		c.Delete(k)
	}
	return c
}

// Parse builds a result from params. A nil params yields an empty result
// tagged with the schema's tool.
func (s *Schema) Parse(params *ordered.Object) types.ParseResult {
	if params == nil {
		params = ordered.NewObject()
	}

	positive := s.Positive(params)
	negative := s.Negative(params)
	entries := s.Entries(params)

	setting := types.JoinSetting(entries)
	if setting == "" {
		setting = FlatText(s.withoutPrompts(params))
	}

	return types.ParseResult{
		Tool:           s.Tool,
		Positive:       positive,
		Negative:       negative,
		Setting:        setting,
		SettingDetail:  s.Detail(params),
		SettingEntries: entries,
		Raw:            types.JoinNonBlank("\n", positive, negative, ordered.Compact(params)),
	}
}

// FlatText renders an object as a loose one-line summary: compact JSON with
// its braces and quotes stripped.
func FlatText(obj *ordered.Object) string {
	s := ordered.Compact(obj)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

func first(params *ordered.Object, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := params.Get(k)
		if !ok {
			continue
		}
		if s, ok := parsing.Scalar(v); ok {
			return s, true
		}
	}
	return "", false
}

// firstText is first for prompt fields, which keep their inner quotes.
func firstText(params *ordered.Object, keys []string) string {
	for _, k := range keys {
		if s, ok := params.String(k); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstInt(params *ordered.Object, keys []string) (int, bool) {
	for _, k := range keys {
		v, ok := params.Get(k)
		if !ok {
			continue
		}
		if n, ok := parsing.Int(v); ok {
			return n, true
		}
	}
	return 0, false
}
