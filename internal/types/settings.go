package types

import "strings"

// priorityKeys are moved to the front of a settings list for display.
var priorityKeys = map[string]bool{
	"model":           true,
	"checkpoint":      true,
	"checkpoint_name": true,
	"ckpt_name":       true,
	"ckpt":            true,
}

// NormalizeKey trims and case-folds a settings key for comparison.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// IsPriorityKey reports whether key names the model or checkpoint.
func IsPriorityKey(key string) bool {
	return priorityKeys[NormalizeKey(key)]
}

// OrderForDisplay moves model and checkpoint entries to the front.
//
// The partition is stable: relative order inside both groups is kept.
// The input slice is not modified.
func OrderForDisplay(entries []SettingEntry) []SettingEntry {
	if len(entries) == 0 {
		return entries
	}
	out := make([]SettingEntry, 0, len(entries))
	for _, e := range entries {
		if IsPriorityKey(e.Key) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return append(out, entries...)
	}
	for _, e := range entries {
		if !IsPriorityKey(e.Key) {
			out = append(out, e)
		}
	}
	return out
}

// Dedupe drops entries whose normalized key was already seen. The first
// occurrence wins.
func Dedupe(entries []SettingEntry) []SettingEntry {
	if len(entries) == 0 {
		return entries
	}
	seen := make(map[string]bool, len(entries))
	out := make([]SettingEntry, 0, len(entries))
	for _, e := range entries {
		k := NormalizeKey(e.Key)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// MergeEntries appends the entries of secondary whose normalized key is not
// already present in primary. Entries of primary always win.
func MergeEntries(primary, secondary []SettingEntry) []SettingEntry {
	out := Dedupe(append([]SettingEntry(nil), primary...))
	seen := make(map[string]bool, len(out))
	for _, e := range out {
		seen[NormalizeKey(e.Key)] = true
	}
	for _, e := range secondary {
		k := NormalizeKey(e.Key)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// Limits bounds the recursive heuristics of the node-graph resolver.
//
// Neither value carries meaning beyond keeping pathological inputs from
// recursing without bound.
type Limits struct {
	// TextDepth caps the hops followed while resolving prompt text.
	TextDepth int `mapstructure:"text_depth" json:"text_depth" yaml:"text_depth"`
	// ChainDepth caps the hops followed along a model loader chain.
	ChainDepth int `mapstructure:"chain_depth" json:"chain_depth" yaml:"chain_depth"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{TextDepth: 50, ChainDepth: 30}
}

// OrDefault fills zero or negative fields from DefaultLimits.
func (l Limits) OrDefault() Limits {
	d := DefaultLimits()
	if l.TextDepth <= 0 {
		l.TextDepth = d.TextDepth
	}
	if l.ChainDepth <= 0 {
		l.ChainDepth = d.ChainDepth
	}
	return l
}
