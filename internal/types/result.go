// Package types provides core data structures for image generation metadata.
//
// This package defines the ParseResult, SettingEntry, RawPart and Blobs types
// shared by every tool-specific parser, plus the normalization helpers the
// dispatcher applies to each result before handing it to callers.
package types

import (
	"slices"
	"strings"
)

// Tool names the application that authored an image's metadata.
type Tool string

// Known authoring tools.
const (
	ToolUnknown       Tool = "Unknown"
	ToolA1111         Tool = "A1111 webUI"
	ToolComfyUI       Tool = "ComfyUI"
	ToolComfyUIA1111  Tool = "ComfyUI (A1111 compatible)"
	ToolStableSwarmUI Tool = "StableSwarmUI"
	ToolNovelAI       Tool = "NovelAI"
	ToolFooocus       Tool = "Fooocus"
)

// String returns the display name of the tool.
func (t Tool) String() string {
	return string(t)
}

// SettingEntry is one display-ready generation setting.
type SettingEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// String renders the entry as "Key: value".
func (e SettingEntry) String() string {
	return e.Key + ": " + e.Value
}

// RawPart is one titled section of the diagnostic raw dump.
type RawPart struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

// ParseResult is the normalized metadata recovered from one image.
//
// A ParseResult is built once per image by exactly one parser and is not
// modified afterwards. SettingEntries is in display order and never holds two
// entries whose keys are equal after trimming and case folding.
type ParseResult struct {
	Tool           Tool           `json:"tool" yaml:"tool"`
	Positive       string         `json:"positive" yaml:"positive"`
	Negative       string         `json:"negative" yaml:"negative"`
	Setting        string         `json:"setting" yaml:"setting"`
	SettingDetail  string         `json:"setting_detail,omitempty" yaml:"setting_detail,omitempty"`
	SettingEntries []SettingEntry `json:"setting_entries" yaml:"setting_entries"`
	Raw            string         `json:"raw" yaml:"raw"`
	RawParts       []RawPart      `json:"raw_parts,omitempty" yaml:"raw_parts,omitempty"`
	DetectionPath  string         `json:"detection_path,omitempty" yaml:"detection_path,omitempty"`
	Evidence       []string       `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Get returns the value of the first setting entry whose normalized key
// matches key.
func (r ParseResult) Get(key string) (string, bool) {
	want := NormalizeKey(key)
	for _, e := range r.SettingEntries {
		if NormalizeKey(e.Key) == want {
			return e.Value, true
		}
	}
	return "", false
}

// CombinedRaw renders Raw and RawParts as a single sectioned string.
func (r ParseResult) CombinedRaw() string {
	return BuildCombinedRaw(r.Raw, r.RawParts)
}

// IsUnknown reports whether no known encoding matched.
func (r ParseResult) IsUnknown() bool {
	return r.Tool == ToolUnknown || r.Tool == ""
}

// Clone returns a copy that shares no slices with r.
func (r ParseResult) Clone() ParseResult {
	c := r
	c.SettingEntries = slices.Clone(r.SettingEntries)
	c.RawParts = slices.Clone(r.RawParts)
	c.Evidence = slices.Clone(r.Evidence)
	return c
}

// JoinSetting renders entries as the flat "Key: value, Key: value" string.
func JoinSetting(entries []SettingEntry) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
