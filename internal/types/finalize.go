package types

import "strings"

// Finalize enforces the invariants every ParseResult must satisfy before it
// leaves the engine: trimmed prompts, unique settings keys, model-first
// ordering, a flat setting string and a non-empty raw dump whenever the
// input carried any text.
func Finalize(r ParseResult, in Blobs) ParseResult {
	r.Positive = strings.TrimSpace(r.Positive)
	r.Negative = strings.TrimSpace(r.Negative)
	before := len(r.SettingEntries)
	r.SettingEntries = OrderForDisplay(Dedupe(r.SettingEntries))
	if r.SettingEntries == nil {
		r.SettingEntries = []SettingEntry{}
	}
	// A parser-supplied string is kept unless it repeats a dropped key.
	if len(r.SettingEntries) < before || strings.TrimSpace(r.Setting) == "" {
		r.Setting = JoinSetting(r.SettingEntries)
	}
	if strings.TrimSpace(r.Raw) == "" {
		r.Raw = in.Dump()
	}
	if r.Tool == "" {
		r.Tool = ToolUnknown
	}
	return r
}
